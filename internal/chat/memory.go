package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory message store used when no database is
// configured and by the tests
type MemoryStore struct {
	mu       sync.Mutex
	messages map[string]*Message
	order    int64
}

// NewMemoryStore creates an empty in-memory message store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{messages: make(map[string]*Message)}
}

// Create inserts a new message
func (s *MemoryStore) Create(_ context.Context, m *Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *m
	s.order++
	stored.seq = s.order
	s.messages[m.ID] = &stored
	return nil
}

// MarkRead flips the message's read flag in place and returns the updated
// message
func (s *MemoryStore) MarkRead(_ context.Context, id string) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, ErrMessageNotFound
	}
	m.IsRead = true

	copied := *m
	return &copied, nil
}

// Conversation returns every message exchanged between the two users, oldest
// first
func (s *MemoryStore) Conversation(_ context.Context, userA, userB int64) ([]*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Message
	for _, m := range s.messages {
		pair := (m.SenderID == userA && m.ReceiverID == userB) ||
			(m.SenderID == userB && m.ReceiverID == userA)
		if !pair {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out, nil
}
