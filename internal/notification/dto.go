package notification

// NotifyRequest represents the request body for sending a notification
type NotifyRequest struct {
	RecipientID  int64  `json:"recipient_id" validate:"required"`
	Title        string `json:"title" validate:"required"`
	Message      string `json:"message" validate:"required"`
	ActionType   string `json:"action_type,omitempty"`
	ActionTarget string `json:"action_target,omitempty"`
}

// NotificationResponse represents the response for a single notification
type NotificationResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	ActionType   string `json:"action_type,omitempty"`
	ActionTarget string `json:"action_target,omitempty"`
	IsRead       bool   `json:"is_read"`
	SenderID     int64  `json:"sender_id"`
	RecipientID  int64  `json:"recipient_id"`
	CreatedAt    string `json:"created_at"`
}

// ToResponse converts a Notification to a NotificationResponse
func (n *Notification) ToResponse() *NotificationResponse {
	return &NotificationResponse{
		ID:           n.ID,
		Title:        n.Title,
		Message:      n.Message,
		ActionType:   n.ActionType,
		ActionTarget: n.ActionTarget,
		IsRead:       n.IsRead,
		SenderID:     n.SenderID,
		RecipientID:  n.RecipientID,
		CreatedAt:    n.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func toResponses(notifications []*Notification) []*NotificationResponse {
	responses := make([]*NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = n.ToResponse()
	}
	return responses
}
