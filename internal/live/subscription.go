package live

import "sync"

// Subscription is one consumer's live-event queue, tied to a single connected
// client. The queue is unbounded so a publisher is never back-pressured by a
// stalled reader; memory growth is bounded by the connection's lifetime.
type Subscription struct {
	broker      *Broker
	recipientID int64

	mu      sync.Mutex
	backlog []Event

	// wake has capacity 1 so enqueue never blocks signalling the pump.
	wake chan struct{}
	done chan struct{}

	events    chan Event
	closeOnce sync.Once
}

// newSubscription creates a detached subscription; NewStandalone and
// Broker.Subscribe are the entry points.
func newSubscription(broker *Broker, recipientID int64) *Subscription {
	return &Subscription{
		broker:      broker,
		recipientID: recipientID,
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
		events:      make(chan Event),
	}
}

// NewStandalone creates a subscription that is not registered with a broker.
// Used for per-connection outbound queues that are fanned to directly rather
// than through recipient-keyed publishing.
func NewStandalone() *Subscription {
	sub := newSubscription(nil, 0)
	go sub.pump()
	return sub
}

// RecipientID returns the recipient the subscription was registered for
func (s *Subscription) RecipientID() int64 {
	return s.recipientID
}

// Events returns the channel the subscription delivers on. The channel is
// closed after Close.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Enqueue appends an event to the queue. It never blocks and is a no-op once
// the subscription is closed.
func (s *Subscription) Enqueue(event Event) {
	s.enqueue(event)
}

// Close deregisters the subscription and discards its queue. Idempotent; safe
// to call while a consumer is blocked on Events.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		if s.broker != nil {
			s.broker.remove(s)
		}
		close(s.done)
	})
}

func (s *Subscription) enqueue(event Event) {
	select {
	case <-s.done:
		return
	default:
	}

	s.mu.Lock()
	s.backlog = append(s.backlog, event)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// pump moves events from the unbounded backlog to the consumer channel,
// preserving FIFO order. It exits and closes the channel once the
// subscription is closed.
func (s *Subscription) pump() {
	defer close(s.events)

	for {
		s.mu.Lock()
		var next Event
		var ok bool
		if len(s.backlog) > 0 {
			next, ok = s.backlog[0], true
			s.backlog = s.backlog[1:]
		}
		s.mu.Unlock()

		if !ok {
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}

		select {
		case s.events <- next:
		case <-s.done:
			return
		}
	}
}
