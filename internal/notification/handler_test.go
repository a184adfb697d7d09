package notification

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/omaralkhatib/roomly/internal/live"
	"github.com/omaralkhatib/roomly/pkg/middleware"
)

func newTestRouter(service *Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.TestUserMiddleware)
	r.Mount("/notifications", NewHandler(service).Routes())
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, handler http.Handler, method, path string, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Test-User-ID", userID)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestNotifyEndpointCreatesUnreadRecord(t *testing.T) {
	service := NewService(NewMemoryStore(), live.NewBroker())
	router := newTestRouter(service)

	rec := doJSON(t, router, http.MethodPost, "/notifications", "10", NotifyRequest{
		RecipientID:  42,
		Title:        "New Application",
		Message:      "Someone applied to your listing",
		ActionType:   "application",
		ActionTarget: "/applications/7",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	var created NotificationResponse
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode notification: %v", err)
	}
	if created.RecipientID != 42 || created.SenderID != 10 || created.IsRead {
		t.Fatalf("unexpected created record: %+v", created)
	}

	list := doJSON(t, router, http.MethodGet, "/notifications", "42", nil)
	if list.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", list.Code)
	}
	if !strings.Contains(list.Body.String(), created.ID) {
		t.Fatalf("unread list missing new record: %s", list.Body.String())
	}
}

func TestNotifyEndpointRejectsInvalidBody(t *testing.T) {
	service := NewService(NewMemoryStore(), live.NewBroker())
	router := newTestRouter(service)

	rec := doJSON(t, router, http.MethodPost, "/notifications", "10", NotifyRequest{Title: "missing recipient"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMarkAsReadEndpoint(t *testing.T) {
	service := NewService(NewMemoryStore(), live.NewBroker())
	router := newTestRouter(service)

	n, err := service.Notify(context.Background(), 42, "title", "message", "", "", 10)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	rec := doJSON(t, router, http.MethodPost, "/notifications/"+n.ID+"/read", "42", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// The record has moved; a second mark-read must 404.
	rec = doJSON(t, router, http.MethodPost, "/notifications/"+n.ID+"/read", "42", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second mark-read, got %d", rec.Code)
	}
}

func TestUnreadCountEndpoint(t *testing.T) {
	service := NewService(NewMemoryStore(), live.NewBroker())
	router := newTestRouter(service)

	for i := 0; i < 3; i++ {
		if _, err := service.Notify(context.Background(), 42, "title", "message", "", "", 10); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/notifications/unread-count", "42", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"unread_count":3`) {
		t.Fatalf("expected unread_count 3, got %s", rec.Body.String())
	}
}

func TestDeleteEndpointNotFound(t *testing.T) {
	service := NewService(NewMemoryStore(), live.NewBroker())
	router := newTestRouter(service)

	rec := doJSON(t, router, http.MethodDelete, "/notifications/no-such-id", "42", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestStreamDeliversServerSentEvents(t *testing.T) {
	broker := live.NewBroker()
	service := NewService(NewMemoryStore(), broker)
	server := httptest.NewServer(newTestRouter(service))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/notifications/stream", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("X-Test-User-ID", "42")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", got)
	}

	// Wait for the stream's subscription to register before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for broker.ActiveSubscriptionCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if _, err := service.Notify(context.Background(), 42, "New Application", "body", "application", "/applications/7", 10); err != nil {
		t.Fatalf("notify: %v", err)
	}

	reader := bufio.NewReader(resp.Body)
	eventLine, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read event line: %v", err)
	}
	if strings.TrimSpace(eventLine) != "event: notification" {
		t.Fatalf("expected event line, got %q", eventLine)
	}
	dataLine, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read data line: %v", err)
	}
	if !strings.HasPrefix(dataLine, "data: ") || !strings.Contains(dataLine, "New Application") {
		t.Fatalf("expected data line with payload, got %q", dataLine)
	}
}
