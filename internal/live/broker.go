package live

import "sync"

// Broker fans events out to the active subscriptions of each recipient. Every
// subscription receives its own copy of every publish, so one slow consumer
// never delays or drops events for another. A publish with no subscribers is
// silently discarded.
type Broker struct {
	mu   sync.RWMutex
	subs map[int64]map[*Subscription]struct{}
}

// NewBroker creates an empty broker
func NewBroker() *Broker {
	return &Broker{subs: make(map[int64]map[*Subscription]struct{})}
}

// Subscribe registers a new subscription for a recipient. Each call creates an
// independent queue with no replay of past events; the caller owns the
// subscription and must Close it when the client disconnects.
func (b *Broker) Subscribe(recipientID int64) *Subscription {
	sub := newSubscription(b, recipientID)

	b.mu.Lock()
	set, ok := b.subs[recipientID]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.subs[recipientID] = set
	}
	set[sub] = struct{}{}
	b.mu.Unlock()

	go sub.pump()
	return sub
}

// Publish enqueues the event on every subscription of the recipient and
// returns the number of subscriptions reached. It never blocks on a consumer.
func (b *Broker) Publish(recipientID int64, event Event) int {
	b.mu.RLock()
	targets := make([]*Subscription, 0, len(b.subs[recipientID]))
	for sub := range b.subs[recipientID] {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		sub.enqueue(event)
	}
	return len(targets)
}

// Broadcast enqueues the event on every subscription across all recipients
// and returns the number of subscriptions reached.
func (b *Broker) Broadcast(event Event) int {
	b.mu.RLock()
	var targets []*Subscription
	for _, set := range b.subs {
		for sub := range set {
			targets = append(targets, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		sub.enqueue(event)
	}
	return len(targets)
}

// ActiveSubscriptionCount returns the number of registered subscriptions
func (b *Broker) ActiveSubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, set := range b.subs {
		count += len(set)
	}
	return count
}

// remove deregisters a subscription. Called synchronously from Close so a
// closed subscription can never linger in the registry.
func (b *Broker) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.subs[sub.recipientID]
	if !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(b.subs, sub.recipientID)
	}
}
