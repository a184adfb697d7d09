package chat

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrMessageNotFound = errors.New("message not found")
)

// MessageStore is the chat message persistence contract
type MessageStore interface {
	// Create inserts a new message, assigning ID and SentAt if unset.
	Create(ctx context.Context, m *Message) error

	// MarkRead flips the message's read flag in place and returns the
	// updated message. Returns ErrMessageNotFound for an unknown id.
	MarkRead(ctx context.Context, id string) (*Message, error)

	// Conversation returns every message exchanged between the two users,
	// oldest first.
	Conversation(ctx context.Context, userA, userB int64) ([]*Message, error)
}
