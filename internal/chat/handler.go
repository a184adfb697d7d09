package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/omaralkhatib/roomly/pkg/middleware"
	"github.com/omaralkhatib/roomly/pkg/response"
)

// Handler handles HTTP requests for chat operations
type Handler struct {
	service *Service
}

// NewHandler creates a new chat handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for chat endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/messages", h.SendMessage)
	r.Get("/messages/{userID}", h.Conversation)
	r.Post("/messages/{id}/read", h.MarkMessageRead)
	r.Post("/typing", h.Typing)
	r.Get("/stream", h.Stream)

	return r
}

// SendMessage handles POST /chat/messages
// @Summary      Send a chat message
// @Description  Persists the message, then delivers it live to all of the receiver's connections and echoes it to the sender's
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request body SendMessageRequest true "Message request"
// @Success      201 {object} response.APIResponse{data=MessageResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /chat/messages [post]
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	senderID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.ReceiverID == 0 || req.Text == "" {
		response.BadRequest(w, "receiver_id and text are required")
		return
	}

	m, err := h.service.Send(r.Context(), senderID, req.ReceiverID, req.Text)
	if err != nil {
		response.InternalError(w, "Failed to send message")
		return
	}

	response.JSON(w, http.StatusCreated, m.ToResponse())
}

// Conversation handles GET /chat/messages/{userID}
// @Summary      Get the conversation with another user
// @Tags         chat
// @Produce      json
// @Param        userID path int true "Other user ID"
// @Success      200 {object} response.APIResponse{data=[]MessageResponse}
// @Router       /chat/messages/{userID} [get]
func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	otherID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	messages, err := h.service.Conversation(r.Context(), userID, otherID)
	if err != nil {
		response.InternalError(w, "Failed to load conversation")
		return
	}

	response.JSON(w, http.StatusOK, toResponses(messages))
}

// MarkMessageRead handles POST /chat/messages/{id}/read
// @Summary      Mark a chat message as read
// @Description  Flips the read flag and delivers a read receipt to the sender's connections
// @Tags         chat
// @Produce      json
// @Param        id path string true "Message ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /chat/messages/{id}/read [post]
func (h *Handler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Message ID is required")
		return
	}

	if err := h.service.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to mark message as read")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Message marked as read"})
}

// Typing handles POST /chat/typing
// @Summary      Send a typing indicator
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request body TypingRequest true "Typing request"
// @Success      200 {object} response.APIResponse
// @Router       /chat/typing [post]
func (h *Handler) Typing(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req TypingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.ReceiverID == 0 {
		response.BadRequest(w, "receiver_id is required")
		return
	}

	h.service.NotifyTyping(userID, req.ReceiverID)
	response.JSON(w, http.StatusOK, map[string]string{"message": "Typing indicator sent"})
}

// Stream handles GET /chat/stream. The connection joins the caller's group
// for its lifetime: chat events for the user are rendered as server-sent
// events until the client disconnects, at which point the connection leaves
// its group.
// @Summary      Open a live chat stream
// @Description  Server-sent events; each event is rendered as "event: <type>" and "data: <json>"
// @Tags         chat
// @Produce      text/event-stream
// @Success      200
// @Router       /chat/stream [get]
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

	connectionID := uuid.NewString()
	conn := h.service.Join(connectionID, userID)
	defer h.service.Leave(connectionID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-conn.Events():
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
