package chat

// SendMessageRequest represents the request body for sending a chat message
type SendMessageRequest struct {
	ReceiverID int64  `json:"receiver_id" validate:"required"`
	Text       string `json:"text" validate:"required"`
}

// TypingRequest represents the request body for a typing indicator
type TypingRequest struct {
	ReceiverID int64 `json:"receiver_id" validate:"required"`
}

// MessageResponse represents the response for a single chat message
type MessageResponse struct {
	ID             string `json:"id"`
	SenderID       int64  `json:"sender_id"`
	ReceiverID     int64  `json:"receiver_id"`
	Text           string `json:"text"`
	IsRead         bool   `json:"is_read"`
	AttachmentURL  string `json:"attachment_url,omitempty"`
	AttachmentName string `json:"attachment_name,omitempty"`
	SentAt         string `json:"sent_at"`
}

// ToResponse converts a Message to a MessageResponse
func (m *Message) ToResponse() *MessageResponse {
	return &MessageResponse{
		ID:             m.ID,
		SenderID:       m.SenderID,
		ReceiverID:     m.ReceiverID,
		Text:           m.Text,
		IsRead:         m.IsRead,
		AttachmentURL:  m.AttachmentURL,
		AttachmentName: m.AttachmentName,
		SentAt:         m.SentAt.Format("2006-01-02T15:04:05Z"),
	}
}

func toResponses(messages []*Message) []*MessageResponse {
	responses := make([]*MessageResponse, len(messages))
	for i, m := range messages {
		responses[i] = m.ToResponse()
	}
	return responses
}
