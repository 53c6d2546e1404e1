// Package simulator parses simulator flags and drives two linked engines
// through a scripted reconciliation workload.
package simulator

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/overlay/internal/platform/cmd"
)

// Config holds simulator command configuration.
type Config struct {
	// DBPath is where the audit event store is written.
	DBPath string `env:"OVERLAY_SIM_DB" envDefault:"simulator-audit.db"`
	// Ticks is the number of update ticks to simulate.
	Ticks int `env:"OVERLAY_SIM_TICKS" envDefault:"64"`
	// Seed seeds the deterministic workload generator.
	Seed int64 `env:"OVERLAY_SIM_SEED" envDefault:"1"`
	// RejectEvery rejects every Nth ticket instead of confirming it.
	// Zero disables rejections.
	RejectEvery int `env:"OVERLAY_SIM_REJECT_EVERY" envDefault:"4"`
	// LagTicks delays replication and terminal signals by this many ticks,
	// widening the speculative window.
	LagTicks int `env:"OVERLAY_SIM_LAG_TICKS" envDefault:"2"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the audit event database")
	fs.IntVar(&cfg.Ticks, "ticks", cfg.Ticks, "Number of update ticks to simulate")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Workload generator seed")
	fs.IntVar(&cfg.RejectEvery, "reject-every", cfg.RejectEvery, "Reject every Nth ticket (0 disables)")
	fs.IntVar(&cfg.LagTicks, "lag", cfg.LagTicks, "Ticks of replication and signal lag")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the simulation under shared telemetry plumbing.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSimulator, func(ctx context.Context) error {
		return runSimulation(ctx, cfg)
	})
}
