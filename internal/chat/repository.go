package chat

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_messages (
	id              TEXT PRIMARY KEY,
	sender_id       BIGINT NOT NULL,
	receiver_id     BIGINT NOT NULL,
	text            TEXT NOT NULL,
	is_read         BOOLEAN NOT NULL DEFAULT FALSE,
	attachment_url  TEXT NOT NULL DEFAULT '',
	attachment_name TEXT NOT NULL DEFAULT '',
	sent_at         TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_messages_pair
	ON chat_messages (sender_id, receiver_id, sent_at);
`

// PostgresStore persists chat messages in Postgres
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a message store backed by Postgres and ensures its
// table exists
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to ensure chat schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Create inserts a new message
func (s *PostgresStore) Create(ctx context.Context, m *Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}

	query := `
		INSERT INTO chat_messages
			(id, sender_id, receiver_id, text, is_read, attachment_url, attachment_name, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		m.ID, m.SenderID, m.ReceiverID, m.Text, m.IsRead,
		m.AttachmentURL, m.AttachmentName, m.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// MarkRead flips the message's read flag in place and returns the updated
// message
func (s *PostgresStore) MarkRead(ctx context.Context, id string) (*Message, error) {
	query := `
		UPDATE chat_messages
		SET is_read = TRUE
		WHERE id = $1
		RETURNING id, sender_id, receiver_id, text, is_read, attachment_url, attachment_name, sent_at
	`

	m := &Message{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.IsRead,
		&m.AttachmentURL, &m.AttachmentName, &m.SentAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark message as read: %w", err)
	}
	return m, nil
}

// Conversation returns every message exchanged between the two users, oldest
// first
func (s *PostgresStore) Conversation(ctx context.Context, userA, userB int64) ([]*Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, text, is_read, attachment_url, attachment_name, sent_at
		FROM chat_messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY sent_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		m := &Message{}
		if err := rows.Scan(
			&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.IsRead,
			&m.AttachmentURL, &m.AttachmentName, &m.SentAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
