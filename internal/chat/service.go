package chat

import (
	"context"
	"time"

	"github.com/omaralkhatib/roomly/internal/live"
)

// Service handles chat business logic: messages persist first, then fan out
// to the live connections of both parties, so a disconnected recipient never
// loses a message and every open tab of a participant stays in sync.
type Service struct {
	store  MessageStore
	groups *Groups
}

// NewService creates a new chat service
func NewService(store MessageStore, groups *Groups) *Service {
	return &Service{store: store, groups: groups}
}

// Join registers a live connection for a user
func (s *Service) Join(connectionID string, userID int64) *Conn {
	return s.groups.Join(connectionID, userID)
}

// Leave removes a live connection; called on disconnect
func (s *Service) Leave(connectionID string) {
	s.groups.Leave(connectionID)
}

// Send persists a message, then delivers it to every connection of the
// receiver and a sent confirmation to every connection of the sender. The
// sender echo keeps all of their open tabs consistent.
func (s *Service) Send(ctx context.Context, senderID, receiverID int64, text string) (*Message, error) {
	m := &Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
	}
	if err := s.store.Create(ctx, m); err != nil {
		return nil, err
	}

	s.groups.Send(receiverID, live.Event{
		Type:      string(live.EventTypeMessageReceived),
		Timestamp: m.SentAt,
		Payload:   m,
	})
	s.groups.Send(senderID, live.Event{
		Type:      string(live.EventTypeMessageSent),
		Timestamp: m.SentAt,
		Payload:   m,
	})
	return m, nil
}

// MarkRead flips the message's read flag and delivers a read receipt to the
// original sender's connections
func (s *Service) MarkRead(ctx context.Context, messageID string) error {
	m, err := s.store.MarkRead(ctx, messageID)
	if err != nil {
		return err
	}

	s.groups.Send(m.SenderID, live.Event{
		Type:      string(live.EventTypeMessageRead),
		Timestamp: time.Now().UTC(),
		Payload:   map[string]string{"message_id": m.ID},
	})
	return nil
}

// NotifyTyping delivers a transient typing indicator to the target's
// connections. Never persisted; clients age the indicator out themselves.
func (s *Service) NotifyTyping(fromID, toID int64) {
	s.groups.Send(toID, live.Event{
		Type:      string(live.EventTypeTyping),
		Timestamp: time.Now().UTC(),
		Payload:   map[string]int64{"user_id": fromID},
	})
}

// Conversation returns the full message history between two users, oldest
// first
func (s *Service) Conversation(ctx context.Context, userA, userB int64) ([]*Message, error) {
	return s.store.Conversation(ctx, userA, userB)
}
