package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/omaralkhatib/roomly/internal/live"
)

// Service coordinates notification delivery: every notify call writes to the
// ledger first, then pushes a live event to any connected subscribers. The
// ledger write must succeed or the call fails; the live push is best-effort,
// so a disconnected recipient simply finds the record on their next fetch.
type Service struct {
	store  Store
	broker *live.Broker
}

// NewService creates a new notification service
func NewService(store Store, broker *live.Broker) *Service {
	return &Service{store: store, broker: broker}
}

// Notify appends a notification to the recipient's ledger and pushes a live
// event to their active subscriptions
func (s *Service) Notify(ctx context.Context, recipientID int64, title, message, actionType, actionTarget string, senderID int64) (*Notification, error) {
	n := &Notification{
		Title:        title,
		Message:      message,
		ActionType:   actionType,
		ActionTarget: actionTarget,
		CreatedBy:    senderID,
		SenderID:     senderID,
		RecipientID:  recipientID,
	}
	if err := s.store.Append(ctx, n); err != nil {
		return nil, err
	}

	// The record is durable at this point; a subscriber that is not
	// connected misses only the push, never the notification.
	s.broker.Publish(recipientID, liveEventFrom(n))
	return n, nil
}

// ListUnread returns the recipient's unread notifications, newest first
func (s *Service) ListUnread(ctx context.Context, recipientID int64) ([]*Notification, error) {
	return s.store.ListUnread(ctx, recipientID)
}

// ListRead returns the recipient's read archive, newest first
func (s *Service) ListRead(ctx context.Context, recipientID int64) ([]*Notification, error) {
	return s.store.ListRead(ctx, recipientID)
}

// CountUnread returns the recipient's unread count
func (s *Service) CountUnread(ctx context.Context, recipientID int64) (int, error) {
	return s.store.CountUnread(ctx, recipientID)
}

// MarkRead moves a notification from the unread set into the read archive
func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.store.MarkRead(ctx, id)
}

// MarkAllRead moves all of the recipient's unread notifications into the read
// archive and returns the number moved
func (s *Service) MarkAllRead(ctx context.Context, recipientID int64) (int, error) {
	return s.store.MarkAllRead(ctx, recipientID)
}

// Delete removes a notification from the ledger
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Subscribe opens a live-event subscription for the recipient. The caller
// owns the subscription and must Close it on disconnect.
func (s *Service) Subscribe(recipientID int64) *live.Subscription {
	return s.broker.Subscribe(recipientID)
}

// Helper methods for creating specific notification types

// NotifyApplicationStatus notifies an applicant that their application moved
// to a new status
func (s *Service) NotifyApplicationStatus(ctx context.Context, recipientID int64, status string, applicationID int64, senderID int64) (*Notification, error) {
	message := "Your application status changed to: " + status
	target := fmt.Sprintf("/applications/%d", applicationID)
	return s.Notify(ctx, recipientID, "Application Update", message, string(ActionTypeApplication), target, senderID)
}

// NotifyNewMessage notifies a recipient about a chat message they may have
// missed while disconnected
func (s *Service) NotifyNewMessage(ctx context.Context, recipientID int64, senderName string, senderID int64) (*Notification, error) {
	message := "New message from " + senderName
	target := fmt.Sprintf("/messages/%d", senderID)
	return s.Notify(ctx, recipientID, "New Message", message, string(ActionTypeMessage), target, senderID)
}

// NotifySystemAlert broadcasts a system announcement to every connected
// subscriber. System alerts are live-only; persisting one per user is the
// caller's loop if a durable copy is needed.
func (s *Service) NotifySystemAlert(title, message string) int {
	return s.broker.Broadcast(live.Event{
		Type:      string(live.EventTypeSystemAlert),
		Title:     title,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// liveEventFrom builds the push envelope for a ledger record
func liveEventFrom(n *Notification) live.Event {
	return live.Event{
		Type:      string(live.EventTypeNotification),
		Title:     n.Title,
		Message:   n.Message,
		Timestamp: n.CreatedAt,
		ActionURL: n.ActionTarget,
		Payload:   n,
	}
}
