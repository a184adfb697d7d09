package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory ledger used when no database is configured and
// by the tests. One mutex guards both sets, which makes the read transition
// trivially atomic: a record is never observable in both or in neither.
type MemoryStore struct {
	mu     sync.Mutex
	unread map[string]*Notification
	read   map[string]*Notification
}

// NewMemoryStore creates an empty in-memory ledger
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		unread: make(map[string]*Notification),
		read:   make(map[string]*Notification),
	}
}

// Append inserts a new record into the unread set
func (s *MemoryStore) Append(_ context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	n.IsRead = false

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *n
	s.unread[n.ID] = &stored
	return nil
}

// ListUnread returns the recipient's unread records, newest first
func (s *MemoryStore) ListUnread(_ context.Context, recipientID int64) ([]*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return collect(s.unread, recipientID), nil
}

// ListRead returns the recipient's read archive, newest first
func (s *MemoryStore) ListRead(_ context.Context, recipientID int64) ([]*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return collect(s.read, recipientID), nil
}

// CountUnread returns the size of the recipient's unread set
func (s *MemoryStore) CountUnread(_ context.Context, recipientID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.unread {
		if n.RecipientID == recipientID {
			count++
		}
	}
	return count, nil
}

// MarkRead moves a record from the unread set into the read archive
func (s *MemoryStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markReadLocked(id)
}

func (s *MemoryStore) markReadLocked(id string) error {
	n, ok := s.unread[id]
	if !ok {
		return ErrNotificationNotFound
	}

	moved := *n
	moved.IsRead = true
	s.read[id] = &moved
	delete(s.unread, id)
	return nil
}

// MarkAllRead applies the read transition to every unread record of the
// recipient
func (s *MemoryStore) MarkAllRead(_ context.Context, recipientID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved := 0
	for id, n := range s.unread {
		if n.RecipientID != recipientID {
			continue
		}
		if err := s.markReadLocked(id); err == nil {
			moved++
		}
	}
	return moved, nil
}

// Delete removes a record from whichever set currently holds it
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.unread[id]; ok {
		delete(s.unread, id)
		return nil
	}
	if _, ok := s.read[id]; ok {
		delete(s.read, id)
		return nil
	}
	return ErrNotificationNotFound
}

func collect(set map[string]*Notification, recipientID int64) []*Notification {
	var out []*Notification
	for _, n := range set {
		if n.RecipientID != recipientID {
			continue
		}
		copied := *n
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
