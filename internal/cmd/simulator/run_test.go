package simulator

import (
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/louisbranch/overlay/internal/storage/sqlite"
	"github.com/louisbranch/overlay/observability/audit/events"
)

func TestParseConfig_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("OVERLAY_SIM_TICKS", "12")

	fs := flag.NewFlagSet("simulator", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-ticks", "5", "-seed", "99"})
	if err != nil {
		t.Fatalf("ParseConfig returned error: %v", err)
	}
	if cfg.Ticks != 5 {
		t.Fatalf("Ticks = %d, want 5", cfg.Ticks)
	}
	if cfg.Seed != 99 {
		t.Fatalf("Seed = %d, want 99", cfg.Seed)
	}
	if cfg.RejectEvery != 4 {
		t.Fatalf("RejectEvery = %d, want default 4", cfg.RejectEvery)
	}
}

func TestRunSimulation_Converges(t *testing.T) {
	cfg := Config{
		DBPath:      filepath.Join(t.TempDir(), "audit.db"),
		Ticks:       50,
		Seed:        7,
		RejectEvery: 3,
		LagTicks:    2,
	}
	if err := runSimulation(context.Background(), cfg); err != nil {
		t.Fatalf("runSimulation returned error: %v", err)
	}
}

func TestRunSimulation_NoLagNoRejections(t *testing.T) {
	cfg := Config{
		DBPath: filepath.Join(t.TempDir(), "audit.db"),
		Ticks:  20,
		Seed:   1,
	}
	if err := runSimulation(context.Background(), cfg); err != nil {
		t.Fatalf("runSimulation returned error: %v", err)
	}
}

func TestRunSimulation_WritesAuditTrail(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	cfg := Config{
		DBPath:      dbPath,
		Ticks:       30,
		Seed:        3,
		RejectEvery: 2,
		LagTicks:    1,
	}
	if err := runSimulation(context.Background(), cfg); err != nil {
		t.Fatalf("runSimulation returned error: %v", err)
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen audit store: %v", err)
	}
	defer store.Close()

	listed, err := store.ListAuditEvents(context.Background(), 1000)
	if err != nil {
		t.Fatalf("ListAuditEvents returned error: %v", err)
	}
	if len(listed) == 0 {
		t.Fatal("expected audit events from the simulation")
	}

	seen := make(map[string]int)
	for _, evt := range listed {
		seen[evt.EventName]++
	}
	if seen[events.OpApplied] == 0 {
		t.Fatal("expected op_applied audit events")
	}
	if seen[events.TicketConfirmed] == 0 {
		t.Fatal("expected ticket_confirmed audit events")
	}
	if seen[events.TicketRejected] == 0 {
		t.Fatal("expected ticket_rejected audit events")
	}
}

func TestRunSimulation_ValidatesConfig(t *testing.T) {
	if err := runSimulation(context.Background(), Config{DBPath: "x.db", Ticks: 0}); err == nil {
		t.Fatal("expected error for zero ticks")
	}
	if err := runSimulation(context.Background(), Config{DBPath: "x.db", Ticks: 1, LagTicks: -1}); err == nil {
		t.Fatal("expected error for negative lag")
	}
}
