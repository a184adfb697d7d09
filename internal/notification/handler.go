package notification

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/omaralkhatib/roomly/pkg/middleware"
	"github.com/omaralkhatib/roomly/pkg/response"
)

// Handler handles HTTP requests for notification operations
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for notification endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Notify)
	r.Get("/", h.ListUnread)
	r.Get("/history", h.ListRead)
	r.Get("/unread-count", h.GetUnreadCount)
	r.Get("/stream", h.Stream)
	r.Post("/{id}/read", h.MarkAsRead)
	r.Post("/read-all", h.MarkAllAsRead)
	r.Delete("/{id}", h.Delete)

	return r
}

// Notify handles POST /notifications
// @Summary      Send a notification
// @Description  Appends a notification to the recipient's ledger and pushes a live event to their open streams
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        request body NotifyRequest true "Notification request"
// @Success      201 {object} response.APIResponse{data=NotificationResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /notifications [post]
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.RecipientID == 0 || req.Title == "" || req.Message == "" {
		response.BadRequest(w, "recipient_id, title and message are required")
		return
	}

	senderID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	n, err := h.service.Notify(r.Context(), req.RecipientID, req.Title, req.Message, req.ActionType, req.ActionTarget, senderID)
	if err != nil {
		response.InternalError(w, "Failed to send notification")
		return
	}

	response.JSON(w, http.StatusCreated, n.ToResponse())
}

// ListUnread handles GET /notifications
// @Summary      List unread notifications
// @Tags         notifications
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]NotificationResponse}
// @Router       /notifications [get]
func (h *Handler) ListUnread(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	notifications, err := h.service.ListUnread(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list notifications")
		return
	}

	response.JSON(w, http.StatusOK, toResponses(notifications))
}

// ListRead handles GET /notifications/history
// @Summary      List read notifications
// @Tags         notifications
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]NotificationResponse}
// @Router       /notifications/history [get]
func (h *Handler) ListRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	notifications, err := h.service.ListRead(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list notification history")
		return
	}

	response.JSON(w, http.StatusOK, toResponses(notifications))
}

// GetUnreadCount handles GET /notifications/unread-count
// @Summary      Get unread notification count
// @Tags         notifications
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Router       /notifications/unread-count [get]
func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	count, err := h.service.CountUnread(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to get unread count")
		return
	}

	response.JSON(w, http.StatusOK, map[string]int{"unread_count": count})
}

// MarkAsRead handles POST /notifications/{id}/read
// @Summary      Mark a notification as read
// @Description  Moves the notification from the unread set into the read archive
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /notifications/{id}/read [post]
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Notification ID is required")
		return
	}

	if err := h.service.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to mark notification as read")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// MarkAllAsRead handles POST /notifications/read-all
// @Summary      Mark all notifications as read
// @Tags         notifications
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Router       /notifications/read-all [post]
func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	moved, err := h.service.MarkAllRead(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to mark all notifications as read")
		return
	}

	response.JSON(w, http.StatusOK, map[string]int{"marked_read": moved})
}

// Delete handles DELETE /notifications/{id}
// @Summary      Delete a notification
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /notifications/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Notification ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete notification")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Notification deleted"})
}

// Stream handles GET /notifications/stream. It holds the connection open and
// renders each live event as a server-sent event until the client disconnects.
// @Summary      Open a live notification stream
// @Description  Server-sent events; each event is rendered as "event: <type>" and "data: <json>"
// @Tags         notifications
// @Produce      text/event-stream
// @Success      200
// @Router       /notifications/stream [get]
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalError(w, "Streaming not supported")
		return
	}

	sub := h.service.Subscribe(userID)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-sub.Events():
			if !open {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		}
	}
}
