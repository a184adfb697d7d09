package live

import "time"

// Event is an ephemeral envelope pushed to connected clients. Events are not
// persisted; a recipient with no active subscription never sees one (the
// notification ledger is the durable path).
type Event struct {
	Type      string      `json:"type"`
	Title     string      `json:"title,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	ActionURL string      `json:"action_url,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
}

// EventType represents the type of a live event
type EventType string

const (
	EventTypeNotification    EventType = "notification"
	EventTypeMessageReceived EventType = "message_received"
	EventTypeMessageSent     EventType = "message_sent"
	EventTypeMessageRead     EventType = "message_read"
	EventTypeTyping          EventType = "typing"
	EventTypeSystemAlert     EventType = "system_alert"
)
