package simulator

import (
	"context"
	"fmt"
	"log"
	"maps"
	"math/rand"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/overlay"
	"github.com/louisbranch/overlay/internal/platform/errors"
	"github.com/louisbranch/overlay/internal/storage/sqlite"
	"github.com/louisbranch/overlay/observability/audit"
)

// Item is the payload the simulated inventory tracks.
type Item struct {
	Name string
	Qty  int
}

// mutation is one generated step of a ticket's batch.
type mutation struct {
	id   overlay.ID
	kind overlay.Kind
	item Item
}

// delayedDelta is a replication delta held back by the configured lag.
type delayedDelta struct {
	dueTick int
	delta   overlay.Delta[Item]
}

// delayedSignal is a terminal signal held back by the configured lag.
type delayedSignal struct {
	dueTick int
	ticket  overlay.Ticket
	outcome overlay.Outcome
}

// logSink logs batched change notifications, standing in for the UI layer.
type logSink struct {
	role overlay.Role
}

func (s *logSink) HandleChanges(batch []overlay.Change) {
	log.Printf("%s: %d change(s) flushed", s.role, len(batch))
}

// logRejectionSink surfaces per-identity rejection feedback.
type logRejectionSink struct{}

func (s *logRejectionSink) HandleRejection(r overlay.Rejection) {
	log.Printf("predictor: action on %s failed (ticket %d)", r.ID, r.Ticket)
}

// simulation owns the two engines and the in-process loopback between them.
type simulation struct {
	cfg       Config
	rng       *rand.Rand
	tracer    trace.Tracer
	authority *overlay.Engine[Item]
	predictor *overlay.Engine[Item]
	minter    overlay.TicketMinter

	// model mirrors the authority's store for workload generation, so the
	// generator never produces a batch the authority would refuse.
	model map[overlay.ID]Item

	deltas  []delayedDelta
	signals []delayedSignal

	nextItem  int
	confirmed int
	rejected  int
}

func runSimulation(ctx context.Context, cfg Config) error {
	if cfg.Ticks <= 0 {
		return fmt.Errorf("ticks must be positive")
	}
	if cfg.LagTicks < 0 {
		return fmt.Errorf("lag must not be negative")
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open audit store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close audit store: %v", err)
		}
	}()

	sim := &simulation{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		tracer: otel.Tracer("github.com/louisbranch/overlay/internal/cmd/simulator"),
		authority: overlay.New[Item](overlay.RoleAuthority,
			overlay.WithObserver[Item](audit.NewRecorder(store, overlay.RoleAuthority)),
		),
		predictor: overlay.New[Item](overlay.RolePredictor,
			overlay.WithObserver[Item](audit.NewRecorder(store, overlay.RolePredictor)),
			overlay.WithSink[Item](&logSink{role: overlay.RolePredictor}),
			overlay.WithRejectionSink[Item](&logRejectionSink{}),
		),
		model: make(map[overlay.ID]Item),
	}
	return sim.run(ctx)
}

func (s *simulation) run(ctx context.Context) error {
	for tick := 0; tick < s.cfg.Ticks; tick++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.step(ctx, tick); err != nil {
			return err
		}
	}

	// Quiesce: deliver everything still in flight, then the views must agree.
	s.deliverDue(s.cfg.Ticks + s.cfg.LagTicks)
	s.predictor.Flush()
	s.authority.Flush()

	if err := s.checkConvergence(); err != nil {
		return err
	}
	log.Printf("converged after %d ticks: %d confirmed, %d rejected, %d entities",
		s.cfg.Ticks, s.confirmed, s.rejected, s.authority.AuthoritativeLen())
	return nil
}

// step runs one update tick: generate a ticket's batch, process it on the
// authority (or decide to reject it), deliver lagged replication and terminal
// signals, and flush notifications.
func (s *simulation) step(ctx context.Context, tick int) error {
	_, span := s.tracer.Start(ctx, "simulator.tick",
		trace.WithAttributes(attribute.Int("tick", tick)))
	defer span.End()

	ticket := s.minter.Next()
	reject := s.cfg.RejectEvery > 0 && int(ticket)%s.cfg.RejectEvery == 0

	if reject {
		for _, m := range s.generateSpeculative() {
			if err := s.predictor.Record(m.id, m.kind, m.item, ticket); err != nil {
				return fmt.Errorf("tick %d predict %s %s: %w", tick, m.kind, m.id, err)
			}
		}
		// The authority refuses the whole batch; only the signal travels.
		s.signals = append(s.signals, delayedSignal{
			dueTick: tick + s.cfg.LagTicks,
			ticket:  ticket,
			outcome: overlay.OutcomeRejected,
		})
		s.rejected++
	} else {
		for _, m := range s.generateAgainstModel() {
			if err := s.predictor.Record(m.id, m.kind, m.item, ticket); err != nil {
				return fmt.Errorf("tick %d predict %s %s: %w", tick, m.kind, m.id, err)
			}
			if err := s.authority.Record(m.id, m.kind, m.item, ticket); err != nil {
				return fmt.Errorf("tick %d apply %s %s: %w", tick, m.kind, m.id, err)
			}
			s.applyToModel(m)
		}
		for _, delta := range s.authority.DrainDeltas() {
			s.deltas = append(s.deltas, delayedDelta{dueTick: tick + s.cfg.LagTicks, delta: delta})
		}
		s.signals = append(s.signals, delayedSignal{
			dueTick: tick + s.cfg.LagTicks,
			ticket:  ticket,
			outcome: overlay.OutcomeConfirmed,
		})
		s.confirmed++
	}

	s.deliverDue(tick)
	s.predictor.Flush()
	s.authority.Flush()

	span.SetAttributes(
		attribute.Int("overlays", s.predictor.OverlayLen()),
		attribute.Int("entities", s.authority.AuthoritativeLen()),
	)
	return nil
}

// deliverDue replays every delta and terminal signal due at or before tick.
// Deltas land before signals so a confirmation never races ahead of the base
// entry it refers to.
func (s *simulation) deliverDue(tick int) {
	remaining := s.deltas[:0]
	for _, d := range s.deltas {
		if d.dueTick > tick {
			remaining = append(remaining, d)
			continue
		}
		s.predictor.OnEntryReplicated(d.delta.ID, d.delta.Kind, d.delta.Payload, d.delta.Stamp)
	}
	s.deltas = remaining

	pending := s.signals[:0]
	for _, sig := range s.signals {
		if sig.dueTick > tick {
			pending = append(pending, sig)
			continue
		}
		switch sig.outcome {
		case overlay.OutcomeConfirmed:
			s.predictor.OnConfirmed(sig.ticket)
		case overlay.OutcomeRejected:
			s.predictor.OnRejected(sig.ticket)
		}
	}
	s.signals = pending
}

// generateAgainstModel produces a batch that the authority will accept.
func (s *simulation) generateAgainstModel() []mutation {
	count := 1 + s.rng.Intn(3)
	batch := make([]mutation, 0, count)
	staged := make(map[overlay.ID]Item, len(s.model))
	maps.Copy(staged, s.model)
	for i := 0; i < count; i++ {
		m := s.generateOne(staged)
		batch = append(batch, m)
		switch m.kind {
		case overlay.KindRemove:
			delete(staged, m.id)
		default:
			staged[m.id] = m.item
		}
	}
	return batch
}

// generateSpeculative produces a batch destined for rejection. It draws on
// the predictor's effective view, so it may touch speculative state the
// authority never sees.
func (s *simulation) generateSpeculative() []mutation {
	view := s.predictor.EffectiveView()
	staged := make(map[overlay.ID]Item, len(view))
	maps.Copy(staged, view)
	count := 1 + s.rng.Intn(2)
	batch := make([]mutation, 0, count)
	for i := 0; i < count; i++ {
		m := s.generateOne(staged)
		batch = append(batch, m)
		switch m.kind {
		case overlay.KindRemove:
			delete(staged, m.id)
		default:
			staged[m.id] = m.item
		}
	}
	return batch
}

// generateOne picks one valid mutation against the staged state.
func (s *simulation) generateOne(staged map[overlay.ID]Item) mutation {
	if len(staged) == 0 || s.rng.Intn(3) == 0 {
		s.nextItem++
		id := overlay.ID(fmt.Sprintf("item-%04d", s.nextItem))
		return mutation{id: id, kind: overlay.KindAdd, item: Item{Name: string(id), Qty: 1 + s.rng.Intn(9)}}
	}

	ids := make([]overlay.ID, 0, len(staged))
	for id := range staged {
		ids = append(ids, id)
	}
	id := ids[s.rng.Intn(len(ids))]
	if s.rng.Intn(4) == 0 {
		return mutation{id: id, kind: overlay.KindRemove}
	}
	existing := staged[id]
	existing.Qty = 1 + s.rng.Intn(99)
	return mutation{id: id, kind: overlay.KindChange, item: existing}
}

func (s *simulation) applyToModel(m mutation) {
	switch m.kind {
	case overlay.KindRemove:
		delete(s.model, m.id)
	default:
		s.model[m.id] = m.item
	}
}

// checkConvergence asserts the predictor's view equals the authority's once
// nothing is in flight.
func (s *simulation) checkConvergence() error {
	if s.predictor.OverlayLen() != 0 {
		return errors.WithMetadata(errors.CodeSimulatorDiverged,
			"predictor retains overlays after quiescence",
			map[string]string{"overlays": fmt.Sprint(s.predictor.OverlayLen())})
	}
	authorityView := s.authority.EffectiveView()
	predictorView := s.predictor.EffectiveView()
	if !maps.Equal(authorityView, predictorView) {
		return errors.WithMetadata(errors.CodeSimulatorDiverged,
			"predictor view does not match authority view",
			map[string]string{
				"authority_entities": fmt.Sprint(len(authorityView)),
				"predictor_entities": fmt.Sprint(len(predictorView)),
			})
	}
	return nil
}
