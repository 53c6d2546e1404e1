package overlay_test

import (
	"reflect"
	"testing"

	"github.com/louisbranch/overlay"
	"github.com/louisbranch/overlay/overlaytest"
)

func TestOnConfirmed_ClearsOnlyConfirmedTicket(t *testing.T) {
	engine := overlay.New[item](overlay.RolePredictor)
	engine.OnEntryReplicated("gem", overlay.KindAdd, item{Name: "Gem", Qty: 1}, overlay.TicketNone)
	if err := engine.Record("gem", overlay.KindChange, item{Name: "Gem", Qty: 2}, 1); err != nil {
		t.Fatalf("t1 change: %v", err)
	}
	if err := engine.Record("gem", overlay.KindChange, item{Name: "Gem", Qty: 5}, 2); err != nil {
		t.Fatalf("t2 change: %v", err)
	}

	engine.OnConfirmed(1)

	if engine.HasPending(1) {
		t.Fatal("expected ticket 1 to be terminal")
	}
	if !engine.HasPending(2) {
		t.Fatal("expected ticket 2 to remain pending")
	}
	// The overlay survives because ticket 2 still has an op on it, and the
	// replay result reflects only the survivors.
	if engine.OverlayLen() != 1 {
		t.Fatalf("OverlayLen = %d, want 1", engine.OverlayLen())
	}
	view := engine.EffectiveView()
	got, ok := view["gem"]
	if !ok {
		t.Fatal("expected gem in view while ticket 2's change is pending over the base")
	}
	if got.Qty != 5 {
		t.Fatalf("gem.Qty = %d, want 5", got.Qty)
	}
}

func TestOnConfirmed_DeletesEmptyOverlay(t *testing.T) {
	engine := overlay.New[item](overlay.RolePredictor)
	if err := engine.Record("gem", overlay.KindAdd, item{Name: "Gem", Qty: 1}, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	engine.OnConfirmed(1)

	if engine.OverlayLen() != 0 {
		t.Fatalf("OverlayLen = %d, want 0 after last op removal", engine.OverlayLen())
	}
}

func TestRollback_RestoresPriorView(t *testing.T) {
	engine := overlay.New[item](overlay.RolePredictor)
	engine.OnEntryReplicated("coin", overlay.KindAdd, item{Name: "Coin", Qty: 10}, overlay.TicketNone)

	if err := engine.Record("coin", overlay.KindChange, item{Name: "Coin", Qty: 7}, 1); err != nil {
		t.Fatalf("t1 change: %v", err)
	}
	before := cloneView(engine.EffectiveView())

	// Interleave another ticket before and after the one we will reject.
	if err := engine.Record("coin", overlay.KindChange, item{Name: "Coin", Qty: 3}, 2); err != nil {
		t.Fatalf("t2 change: %v", err)
	}
	if err := engine.Record("relic", overlay.KindAdd, item{Name: "Relic", Qty: 1}, 2); err != nil {
		t.Fatalf("t2 add: %v", err)
	}
	if err := engine.Record("coin", overlay.KindRemove, item{}, 3); err != nil {
		t.Fatalf("t3 remove: %v", err)
	}

	engine.OnRejected(2)
	engine.OnRejected(3)

	after := engine.EffectiveView()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("view after rollback = %v, want %v", after, before)
	}
}

func TestOnRejected_EmitsRejectionBeforeClearing(t *testing.T) {
	collector := &overlaytest.Collector{}
	engine := overlay.New[item](overlay.RolePredictor,
		overlay.WithRejectionSink[item](collector),
		overlay.WithObserver[item](collector),
	)
	if err := engine.Record("b-item", overlay.KindAdd, item{Qty: 1}, 4); err != nil {
		t.Fatalf("add b-item: %v", err)
	}
	if err := engine.Record("a-item", overlay.KindAdd, item{Qty: 1}, 4); err != nil {
		t.Fatalf("add a-item: %v", err)
	}

	engine.OnRejected(4)

	want := []overlay.Rejection{
		{ID: "a-item", Ticket: 4},
		{ID: "b-item", Ticket: 4},
	}
	if !reflect.DeepEqual(collector.Rejections, want) {
		t.Fatalf("rejections = %v, want %v", collector.Rejections, want)
	}
	if len(collector.Resolved) != 1 {
		t.Fatalf("resolved notes = %d, want 1", len(collector.Resolved))
	}
	if collector.Resolved[0].Outcome != overlay.OutcomeRejected {
		t.Fatalf("outcome = %s, want %s", collector.Resolved[0].Outcome, overlay.OutcomeRejected)
	}
}

func TestTerminalSignals_Idempotent(t *testing.T) {
	collector := &overlaytest.Collector{}
	engine := overlay.New[item](overlay.RolePredictor,
		overlay.WithRejectionSink[item](collector),
		overlay.WithObserver[item](collector),
	)
	if err := engine.Record("gem", overlay.KindAdd, item{Qty: 1}, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	engine.OnConfirmed(1)
	viewOnce := cloneView(engine.EffectiveView())

	engine.OnConfirmed(1)
	engine.OnRejected(1)

	if !reflect.DeepEqual(cloneView(engine.EffectiveView()), viewOnce) {
		t.Fatal("expected repeated terminal signals to leave the view unchanged")
	}
	if len(collector.Rejections) != 0 {
		t.Fatalf("rejections = %d, want 0 for already-cleared ticket", len(collector.Rejections))
	}
	if len(collector.Stale) != 2 {
		t.Fatalf("stale notes = %d, want 2", len(collector.Stale))
	}
}

func TestStaleTicket_NeverRecorded(t *testing.T) {
	collector := &overlaytest.Collector{}
	engine := overlay.New[item](overlay.RolePredictor, overlay.WithObserver[item](collector))

	engine.OnConfirmed(42)

	if len(collector.Stale) != 1 {
		t.Fatalf("stale notes = %d, want 1", len(collector.Stale))
	}
	if collector.Stale[0].Ticket != 42 || collector.Stale[0].Outcome != overlay.OutcomeConfirmed {
		t.Fatalf("stale note = %+v, want ticket 42 confirmed", collector.Stale[0])
	}
}

func cloneView(view map[overlay.ID]item) map[overlay.ID]item {
	cloned := make(map[overlay.ID]item, len(view))
	for id, payload := range view {
		cloned[id] = payload
	}
	return cloned
}
