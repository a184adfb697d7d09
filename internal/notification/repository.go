package notification

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const schema = `
CREATE TABLE IF NOT EXISTS notifications_unread (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	message       TEXT NOT NULL,
	action_type   TEXT NOT NULL DEFAULT '',
	action_target TEXT NOT NULL DEFAULT '',
	created_by    BIGINT NOT NULL,
	sender_id     BIGINT NOT NULL,
	recipient_id  BIGINT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications_read (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	message       TEXT NOT NULL,
	action_type   TEXT NOT NULL DEFAULT '',
	action_target TEXT NOT NULL DEFAULT '',
	created_by    BIGINT NOT NULL,
	sender_id     BIGINT NOT NULL,
	recipient_id  BIGINT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_unread_recipient
	ON notifications_unread (recipient_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_read_recipient
	ON notifications_read (recipient_id, created_at DESC);
`

// PostgresStore persists the ledger in two tables: the unread hot set and the
// read archive. MarkRead moves rows between them inside one transaction.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a ledger store backed by Postgres and ensures its
// tables exist
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to ensure notification schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Append inserts a new record into the unread set
func (s *PostgresStore) Append(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	n.IsRead = false

	query := `
		INSERT INTO notifications_unread
			(id, title, message, action_type, action_target, created_by, sender_id, recipient_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		n.ID, n.Title, n.Message, n.ActionType, n.ActionTarget,
		n.CreatedBy, n.SenderID, n.RecipientID, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append notification: %w", err)
	}
	return nil
}

// ListUnread returns the recipient's unread records, newest first
func (s *PostgresStore) ListUnread(ctx context.Context, recipientID int64) ([]*Notification, error) {
	return s.list(ctx, "notifications_unread", recipientID, false)
}

// ListRead returns the recipient's read archive, newest first
func (s *PostgresStore) ListRead(ctx context.Context, recipientID int64) ([]*Notification, error) {
	return s.list(ctx, "notifications_read", recipientID, true)
}

func (s *PostgresStore) list(ctx context.Context, table string, recipientID int64, isRead bool) ([]*Notification, error) {
	query := fmt.Sprintf(`
		SELECT id, title, message, action_type, action_target, created_by, sender_id, recipient_id, created_at
		FROM %s
		WHERE recipient_id = $1
		ORDER BY created_at DESC
	`, table)

	rows, err := s.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n := &Notification{IsRead: isRead}
		if err := rows.Scan(
			&n.ID, &n.Title, &n.Message, &n.ActionType, &n.ActionTarget,
			&n.CreatedBy, &n.SenderID, &n.RecipientID, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// CountUnread returns the size of the recipient's unread set
func (s *PostgresStore) CountUnread(ctx context.Context, recipientID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications_unread WHERE recipient_id = $1`
	if err := s.db.QueryRowContext(ctx, query, recipientID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead moves a record from the unread set into the read archive. The
// select, insert and delete run in one transaction: if any step fails the
// transaction rolls back and the record stays in the unread set untouched.
func (s *PostgresStore) MarkRead(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin read transition: %w", err)
	}
	defer tx.Rollback()

	n := &Notification{}
	query := `
		SELECT id, title, message, action_type, action_target, created_by, sender_id, recipient_id, created_at
		FROM notifications_unread
		WHERE id = $1
		FOR UPDATE
	`
	err = tx.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.Title, &n.Message, &n.ActionType, &n.ActionTarget,
		&n.CreatedBy, &n.SenderID, &n.RecipientID, &n.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return ErrNotificationNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read notification for transition: %w", err)
	}

	insert := `
		INSERT INTO notifications_read
			(id, title, message, action_type, action_target, created_by, sender_id, recipient_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := tx.ExecContext(ctx, insert,
		n.ID, n.Title, n.Message, n.ActionType, n.ActionTarget,
		n.CreatedBy, n.SenderID, n.RecipientID, n.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to archive notification: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM notifications_unread WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to remove unread notification: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit read transition: %w", err)
	}
	return nil
}

// MarkAllRead applies the read transition to every unread record of the
// recipient. Each record moves in its own transaction; a failure part-way
// leaves the remainder unread, which is safe to retry.
func (s *PostgresStore) MarkAllRead(ctx context.Context, recipientID int64) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM notifications_unread WHERE recipient_id = $1`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to list unread ids: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan unread id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	moved := 0
	for _, id := range ids {
		err := s.MarkRead(ctx, id)
		if err == ErrNotificationNotFound {
			// A concurrent caller moved it first.
			continue
		}
		if err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

// Delete removes a record from whichever set currently holds it
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications_unread WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if count, _ := res.RowsAffected(); count > 0 {
		return nil
	}

	res, err = s.db.ExecContext(ctx, `DELETE FROM notifications_read WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
