package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/omaralkhatib/roomly/internal/live"
)

// faultyStore fails the read transition without touching the record,
// simulating a transaction that could not commit.
type faultyStore struct {
	Store
	markReadErr error
}

func (s *faultyStore) MarkRead(ctx context.Context, id string) error {
	if s.markReadErr != nil {
		return s.markReadErr
	}
	return s.Store.MarkRead(ctx, id)
}

func receiveLive(t *testing.T, sub *live.Subscription) live.Event {
	t.Helper()
	select {
	case event, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscription channel closed unexpectedly")
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for live event")
	}
	return live.Event{}
}

func TestNotifyAppendsAndPushesToConnectedSubscriber(t *testing.T) {
	broker := live.NewBroker()
	service := NewService(NewMemoryStore(), broker)

	sub := broker.Subscribe(42)
	defer sub.Close()

	n, err := service.Notify(context.Background(), 42, "New Application",
		"Someone applied to your listing", "application", "/applications/7", 10)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if n.ID == "" {
		t.Fatal("expected an assigned notification id")
	}

	unread, err := service.ListUnread(context.Background(), 42)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 1 || unread[0].ID != n.ID {
		t.Fatalf("expected exactly the new record unread, got %d records", len(unread))
	}

	event := receiveLive(t, sub)
	if event.Type != string(live.EventTypeNotification) {
		t.Fatalf("expected notification event, got %q", event.Type)
	}
	if event.Title != "New Application" || event.ActionURL != "/applications/7" {
		t.Fatalf("unexpected event contents: %+v", event)
	}
}

func TestNotifyWithoutSubscriberStillPersists(t *testing.T) {
	service := NewService(NewMemoryStore(), live.NewBroker())

	if _, err := service.Notify(context.Background(), 42, "title", "message", "", "", 10); err != nil {
		t.Fatalf("notify: %v", err)
	}

	unread, err := service.ListUnread(context.Background(), 42)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 1 {
		t.Fatalf("expected 1 unread record, got %d", len(unread))
	}
}

func TestMarkReadScenario(t *testing.T) {
	service := NewService(NewMemoryStore(), live.NewBroker())

	n, err := service.Notify(context.Background(), 42, "New Application",
		"Someone applied to your listing", "application", "/applications/7", 10)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	if err := service.MarkRead(context.Background(), n.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	unread, _ := service.ListUnread(context.Background(), 42)
	if len(unread) != 0 {
		t.Fatalf("expected empty unread set, got %d records", len(unread))
	}
	archive, _ := service.ListRead(context.Background(), 42)
	if len(archive) != 1 || !archive[0].IsRead {
		t.Fatal("expected the record in the read archive")
	}

	if err := service.MarkRead(context.Background(), n.ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound on second mark read, got %v", err)
	}
}

func TestFailedMarkReadLeavesRecordUnread(t *testing.T) {
	memory := NewMemoryStore()
	store := &faultyStore{Store: memory, markReadErr: errors.New("commit failed")}
	service := NewService(store, live.NewBroker())

	n, err := service.Notify(context.Background(), 42, "title", "message", "", "", 10)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	original := *n

	if err := service.MarkRead(context.Background(), n.ID); err == nil {
		t.Fatal("expected mark read to fail")
	}

	unread, _ := service.ListUnread(context.Background(), 42)
	if len(unread) != 1 {
		t.Fatalf("expected record still unread, got %d records", len(unread))
	}
	got := unread[0]
	if got.ID != original.ID || got.Title != original.Title || got.Message != original.Message ||
		got.IsRead != original.IsRead || !got.CreatedAt.Equal(original.CreatedAt) {
		t.Fatalf("record changed across a failed transition: %+v vs %+v", got, original)
	}

	// Retrying against a healthy store succeeds.
	store.markReadErr = nil
	if err := service.MarkRead(context.Background(), n.ID); err != nil {
		t.Fatalf("retry mark read: %v", err)
	}
}

func TestNotifyHelpersComposeActionTargets(t *testing.T) {
	service := NewService(NewMemoryStore(), live.NewBroker())

	n, err := service.NotifyApplicationStatus(context.Background(), 42, "approved", 7, 10)
	if err != nil {
		t.Fatalf("notify application status: %v", err)
	}
	if n.ActionType != string(ActionTypeApplication) || n.ActionTarget != "/applications/7" {
		t.Fatalf("unexpected action fields: %+v", n)
	}

	n, err = service.NotifyNewMessage(context.Background(), 42, "Dana", 9)
	if err != nil {
		t.Fatalf("notify new message: %v", err)
	}
	if n.ActionType != string(ActionTypeMessage) || n.ActionTarget != "/messages/9" {
		t.Fatalf("unexpected action fields: %+v", n)
	}
}

func TestSystemAlertBroadcastsToAllSubscribers(t *testing.T) {
	broker := live.NewBroker()
	service := NewService(NewMemoryStore(), broker)

	sub1 := broker.Subscribe(1)
	sub2 := broker.Subscribe(2)
	defer sub1.Close()
	defer sub2.Close()

	if delivered := service.NotifySystemAlert("Maintenance", "Back at noon"); delivered != 2 {
		t.Fatalf("expected broadcast to 2 subscribers, got %d", delivered)
	}
	for _, sub := range []*live.Subscription{sub1, sub2} {
		if event := receiveLive(t, sub); event.Type != string(live.EventTypeSystemAlert) {
			t.Fatalf("expected system_alert, got %q", event.Type)
		}
	}
}
