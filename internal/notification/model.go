package notification

import "time"

// Notification represents a notification record in the ledger. A record lives
// in exactly one of the two sets, Unread or Read, until it is deleted.
type Notification struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	ActionType   string    `json:"action_type,omitempty"`
	ActionTarget string    `json:"action_target,omitempty"`
	IsRead       bool      `json:"is_read"`
	CreatedBy    int64     `json:"created_by"`
	SenderID     int64     `json:"sender_id"`
	RecipientID  int64     `json:"recipient_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ActionType represents the kind of entity a notification points at. Kept as
// a plain string in the record so callers can introduce new action types
// without a redeploy of this core.
type ActionType string

const (
	ActionTypeApplication ActionType = "application"
	ActionTypeMessage     ActionType = "message"
	ActionTypeListing     ActionType = "listing"
	ActionTypePayment     ActionType = "payment"
	ActionTypeReview      ActionType = "review"
	ActionTypeSystem      ActionType = "system"
)
