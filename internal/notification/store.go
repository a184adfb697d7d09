package notification

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// Store is the ledger persistence contract. The unread and read sets are
// disjoint: a given id is in at most one of them at any time, and MarkRead is
// the only operation that moves a record between them.
type Store interface {
	// Append inserts a new record into the unread set, assigning ID and
	// CreatedAt if unset.
	Append(ctx context.Context, n *Notification) error

	// ListUnread returns the recipient's unread records, newest first.
	ListUnread(ctx context.Context, recipientID int64) ([]*Notification, error)

	// ListRead returns the recipient's read archive, newest first.
	ListRead(ctx context.Context, recipientID int64) ([]*Notification, error)

	// CountUnread returns the size of the recipient's unread set.
	CountUnread(ctx context.Context, recipientID int64) (int, error)

	// MarkRead atomically moves a record from the unread set into the read
	// archive. If the id is not in the unread set it returns
	// ErrNotificationNotFound. On any failure the record remains in the
	// unread set untouched, so the call is safe to retry.
	MarkRead(ctx context.Context, id string) error

	// MarkAllRead applies the read transition to every unread record of the
	// recipient. Each record's move is individually atomic; on failure the
	// remaining records stay unread. Returns the number of records moved.
	MarkAllRead(ctx context.Context, recipientID int64) (int, error)

	// Delete removes a record from whichever set currently holds it.
	Delete(ctx context.Context, id string) error
}
