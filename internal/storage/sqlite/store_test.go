package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/overlay/internal/storage"
	"github.com/louisbranch/overlay/observability/audit/events"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen_RequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestAppendAuditEvent_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	appended := storage.AuditEvent{
		EventName: events.TicketRejected,
		Severity:  "WARN",
		Role:      "predictor",
		Ticket:    7,
		Outcome:   "rejected",
		Timestamp: time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC),
		Attributes: map[string]any{
			"affected": []any{"sword", "shield"},
		},
	}
	if err := store.AppendAuditEvent(ctx, appended); err != nil {
		t.Fatalf("AppendAuditEvent returned error: %v", err)
	}

	listed, err := store.ListAuditEvents(ctx, 10)
	if err != nil {
		t.Fatalf("ListAuditEvents returned error: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed = %d, want 1", len(listed))
	}
	got := listed[0]
	if got.EventName != appended.EventName {
		t.Fatalf("event name = %s, want %s", got.EventName, appended.EventName)
	}
	if got.Ticket != 7 {
		t.Fatalf("ticket = %d, want 7", got.Ticket)
	}
	if !got.Timestamp.Equal(appended.Timestamp) {
		t.Fatalf("timestamp = %v, want %v", got.Timestamp, appended.Timestamp)
	}
	affected, ok := got.Attributes["affected"].([]any)
	if !ok || len(affected) != 2 {
		t.Fatalf("attributes = %v, want affected list of 2", got.Attributes)
	}
}

func TestAppendAuditEvent_RequiresEventName(t *testing.T) {
	store := openTestStore(t)
	err := store.AppendAuditEvent(context.Background(), storage.AuditEvent{})
	if err == nil {
		t.Fatal("expected error for missing event name")
	}
}

func TestListAuditEvents_NewestFirst(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	for i, name := range []string{events.OpApplied, events.TicketConfirmed, events.StaleTicket} {
		evt := storage.AuditEvent{
			EventName: name,
			Severity:  "INFO",
			Role:      "predictor",
			Ticket:    uint64(i + 1),
		}
		if err := store.AppendAuditEvent(ctx, evt); err != nil {
			t.Fatalf("append %s: %v", name, err)
		}
	}

	listed, err := store.ListAuditEvents(ctx, 2)
	if err != nil {
		t.Fatalf("ListAuditEvents returned error: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("listed = %d, want 2", len(listed))
	}
	if listed[0].EventName != events.StaleTicket {
		t.Fatalf("first listed = %s, want %s", listed[0].EventName, events.StaleTicket)
	}
	if listed[1].EventName != events.TicketConfirmed {
		t.Fatalf("second listed = %s, want %s", listed[1].EventName, events.TicketConfirmed)
	}
}
