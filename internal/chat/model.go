package chat

import "time"

// Message represents a chat message between two users. Messages are durable:
// they are created on send and their read flag is flipped in place on receipt
// acknowledgment, so the sender's conversation view always sees them where
// they were. This core never deletes them.
type Message struct {
	ID             string    `json:"id"`
	SenderID       int64     `json:"sender_id"`
	ReceiverID     int64     `json:"receiver_id"`
	Text           string    `json:"text"`
	IsRead         bool      `json:"is_read"`
	AttachmentURL  string    `json:"attachment_url,omitempty"`
	AttachmentName string    `json:"attachment_name,omitempty"`
	SentAt         time.Time `json:"sent_at"`

	// seq is a store-assigned insertion counter so conversation order is
	// stable when wall-clock timestamps collide.
	seq int64
}
