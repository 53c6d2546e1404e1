// Package overlaytest provides shared fixtures for exercising the overlay
// engine in tests and in the simulator.
package overlaytest

import (
	"github.com/louisbranch/overlay"
)

// Collector records every notification an engine emits, for assertions.
// It implements overlay.Sink, overlay.RejectionSink, and overlay.Observer.
type Collector struct {
	Batches    [][]overlay.Change
	Rejections []overlay.Rejection
	Applied    []AppliedNote
	Resolved   []ResolvedNote
	Stale      []StaleNote
}

// AppliedNote records one OpApplied notification.
type AppliedNote struct {
	ID     overlay.ID
	Kind   overlay.Kind
	Phase  overlay.Phase
	Ticket overlay.Ticket
}

// ResolvedNote records one TicketResolved notification.
type ResolvedNote struct {
	Ticket   overlay.Ticket
	Outcome  overlay.Outcome
	Affected []overlay.ID
}

// StaleNote records one StaleTicket notification.
type StaleNote struct {
	Ticket  overlay.Ticket
	Outcome overlay.Outcome
}

// HandleChanges implements overlay.Sink.
func (c *Collector) HandleChanges(batch []overlay.Change) {
	c.Batches = append(c.Batches, batch)
}

// HandleRejection implements overlay.RejectionSink.
func (c *Collector) HandleRejection(r overlay.Rejection) {
	c.Rejections = append(c.Rejections, r)
}

// OpApplied implements overlay.Observer.
func (c *Collector) OpApplied(id overlay.ID, kind overlay.Kind, phase overlay.Phase, ticket overlay.Ticket) {
	c.Applied = append(c.Applied, AppliedNote{ID: id, Kind: kind, Phase: phase, Ticket: ticket})
}

// TicketResolved implements overlay.Observer.
func (c *Collector) TicketResolved(ticket overlay.Ticket, outcome overlay.Outcome, affected []overlay.ID) {
	c.Resolved = append(c.Resolved, ResolvedNote{Ticket: ticket, Outcome: outcome, Affected: affected})
}

// StaleTicket implements overlay.Observer.
func (c *Collector) StaleTicket(ticket overlay.Ticket, outcome overlay.Outcome) {
	c.Stale = append(c.Stale, StaleNote{Ticket: ticket, Outcome: outcome})
}

// Changes flattens every collected batch into one slice.
func (c *Collector) Changes() []overlay.Change {
	var all []overlay.Change
	for _, batch := range c.Batches {
		all = append(all, batch...)
	}
	return all
}

// Reset clears all collected notifications.
func (c *Collector) Reset() {
	c.Batches = nil
	c.Rejections = nil
	c.Applied = nil
	c.Resolved = nil
	c.Stale = nil
}

// Replicate drains the authority's queued deltas into the predictor, in
// recording order, and reports how many were delivered.
func Replicate[P any](authority, predictor *overlay.Engine[P]) int {
	deltas := authority.DrainDeltas()
	for _, d := range deltas {
		predictor.OnEntryReplicated(d.ID, d.Kind, d.Payload, d.Stamp)
	}
	return len(deltas)
}
