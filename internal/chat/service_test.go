package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/omaralkhatib/roomly/internal/live"
)

func receiveChat(t *testing.T, conn *Conn) live.Event {
	t.Helper()
	select {
	case event, ok := <-conn.Events():
		if !ok {
			t.Fatal("connection channel closed unexpectedly")
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for chat event")
	}
	return live.Event{}
}

// expectNoEvent asserts the connection's queue is empty right now.
func expectNoEvent(t *testing.T, conn *Conn) {
	t.Helper()
	select {
	case event := <-conn.Events():
		t.Fatalf("expected no event, got %q", event.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func newTestService() *Service {
	return NewService(NewMemoryStore(), NewGroups())
}

func TestSendDeliversToAllReceiverConnections(t *testing.T) {
	service := newTestService()

	// Recipient 5 has two open tabs, sender 9 has one.
	tabA := service.Join("conn-5a", 5)
	tabB := service.Join("conn-5b", 5)
	senderTab := service.Join("conn-9", 9)

	m, err := service.Send(context.Background(), 9, 5, "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if m.ID == "" || m.IsRead {
		t.Fatalf("unexpected persisted message: %+v", m)
	}

	for _, tab := range []*Conn{tabA, tabB} {
		event := receiveChat(t, tab)
		if event.Type != string(live.EventTypeMessageReceived) {
			t.Fatalf("expected message_received, got %q", event.Type)
		}
		payload, ok := event.Payload.(*Message)
		if !ok || payload.Text != "hello" {
			t.Fatalf("unexpected payload: %+v", event.Payload)
		}
	}

	// The sender's own tab gets a sent confirmation.
	event := receiveChat(t, senderTab)
	if event.Type != string(live.EventTypeMessageSent) {
		t.Fatalf("expected message_sent, got %q", event.Type)
	}
}

func TestSendPersistsWithNoConnections(t *testing.T) {
	service := newTestService()

	if _, err := service.Send(context.Background(), 9, 5, "hello offline"); err != nil {
		t.Fatalf("send: %v", err)
	}

	conversation, err := service.Conversation(context.Background(), 5, 9)
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if len(conversation) != 1 || conversation[0].Text != "hello offline" {
		t.Fatalf("expected persisted message, got %+v", conversation)
	}
}

func TestPerPairMessageOrdering(t *testing.T) {
	service := newTestService()
	receiver := service.Join("conn-b", 2)

	const count = 10
	for i := 0; i < count; i++ {
		if _, err := service.Send(context.Background(), 1, 2, fmt.Sprintf("m%d", i)); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	for i := 0; i < count; i++ {
		event := receiveChat(t, receiver)
		payload := event.Payload.(*Message)
		if want := fmt.Sprintf("m%d", i); payload.Text != want {
			t.Fatalf("expected %q at position %d, got %q", want, i, payload.Text)
		}
	}
}

func TestMarkReadSendsReceiptToSenderOnly(t *testing.T) {
	service := newTestService()
	senderTab := service.Join("conn-9", 9)
	receiverTab := service.Join("conn-5", 5)

	m, err := service.Send(context.Background(), 9, 5, "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	// Drain the delivery events.
	receiveChat(t, receiverTab)
	receiveChat(t, senderTab)

	if err := service.MarkRead(context.Background(), m.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	receipt := receiveChat(t, senderTab)
	if receipt.Type != string(live.EventTypeMessageRead) {
		t.Fatalf("expected message_read, got %q", receipt.Type)
	}
	payload := receipt.Payload.(map[string]string)
	if payload["message_id"] != m.ID {
		t.Fatalf("expected receipt for %s, got %+v", m.ID, payload)
	}

	expectNoEvent(t, receiverTab)

	conversation, _ := service.Conversation(context.Background(), 9, 5)
	if len(conversation) != 1 || !conversation[0].IsRead {
		t.Fatal("expected message flagged read in place")
	}
}

func TestMarkReadUnknownMessage(t *testing.T) {
	service := newTestService()

	if err := service.MarkRead(context.Background(), "no-such-id"); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
}

func TestTypingIsTransientAndTargeted(t *testing.T) {
	service := newTestService()
	target := service.Join("conn-5", 5)
	bystander := service.Join("conn-7", 7)

	service.NotifyTyping(9, 5)

	event := receiveChat(t, target)
	if event.Type != string(live.EventTypeTyping) {
		t.Fatalf("expected typing, got %q", event.Type)
	}
	payload := event.Payload.(map[string]int64)
	if payload["user_id"] != 9 {
		t.Fatalf("expected typing from user 9, got %+v", payload)
	}

	expectNoEvent(t, bystander)

	// Typing is never persisted.
	conversation, _ := service.Conversation(context.Background(), 9, 5)
	if len(conversation) != 0 {
		t.Fatalf("expected empty conversation, got %d messages", len(conversation))
	}
}

func TestConversationInterleavesBothDirections(t *testing.T) {
	service := newTestService()

	service.Send(context.Background(), 1, 2, "hi")
	service.Send(context.Background(), 2, 1, "hey")
	service.Send(context.Background(), 1, 2, "how are you")
	service.Send(context.Background(), 3, 2, "unrelated")

	conversation, err := service.Conversation(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if len(conversation) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(conversation))
	}
	want := []string{"hi", "hey", "how are you"}
	for i, m := range conversation {
		if m.Text != want[i] {
			t.Fatalf("expected %q at position %d, got %q", want[i], i, m.Text)
		}
	}
}
