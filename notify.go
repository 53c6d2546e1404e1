package overlay

// Phase identifies which side of the replication relationship produced a
// change record.
type Phase string

const (
	// PhasePredicted marks a speculative change recorded locally.
	PhasePredicted Phase = "predicted"
	// PhaseAuthoritative marks a direct mutation of the ground-truth store.
	PhaseAuthoritative Phase = "authoritative"
	// PhaseReplicated marks an authoritative delta ingested by a predictor.
	PhaseReplicated Phase = "replicated"
)

// Change is one accumulated change record. Changes from both recording and
// replication ingest gather in a single buffer and broadcast as one batch per
// Flush, so a caller mutating many identities inside one ticket produces one
// refresh, not N.
type Change struct {
	ID    ID
	Kind  Kind
	Phase Phase
}

// Rejection carries "this action failed" feedback for one identity touched by
// a rejected ticket. It is emitted before the ticket's ops are cleared.
type Rejection struct {
	ID     ID
	Ticket Ticket
}

// Outcome is the terminal state of a ticket.
type Outcome string

const (
	// OutcomeConfirmed means the authority caught up with the ticket's ops.
	OutcomeConfirmed Outcome = "confirmed"
	// OutcomeRejected means the authority refused the ticket's ops.
	OutcomeRejected Outcome = "rejected"
)

// Sink consumes batched change notifications from Flush. The batch slice is
// owned by the sink after the call.
type Sink interface {
	HandleChanges(batch []Change)
}

// RejectionSink consumes per-identity rejection notices.
type RejectionSink interface {
	HandleRejection(r Rejection)
}

// Observer receives engine lifecycle notifications for operational
// visibility. All methods are optional no-ops from the engine's perspective:
// observers must not call back into the engine.
type Observer interface {
	// OpApplied fires after a mutation is recorded, on either role.
	OpApplied(id ID, kind Kind, phase Phase, ticket Ticket)
	// TicketResolved fires after a ticket's ops are cleared.
	TicketResolved(ticket Ticket, outcome Outcome, affected []ID)
	// StaleTicket fires when a terminal signal references a ticket with no
	// index entry. This is benign: the ticket was already cleared or never
	// recorded any ops.
	StaleTicket(ticket Ticket, outcome Outcome)
}

// accumulate appends one change record to the pending buffer.
func (e *Engine[P]) accumulate(id ID, kind Kind, phase Phase) {
	e.pending = append(e.pending, Change{ID: id, Kind: kind, Phase: phase})
}

// Flush broadcasts the accumulated change batch to every registered sink and
// clears the buffer. It is intended to run once per logical update tick, not
// per operation. Flushing an empty buffer is a no-op and broadcasts nothing.
func (e *Engine[P]) Flush() {
	if len(e.pending) == 0 {
		return
	}
	batch := e.pending
	e.pending = nil
	for _, sink := range e.sinks {
		sink.HandleChanges(batch)
	}
}

// PendingChanges reports how many change records await the next Flush.
func (e *Engine[P]) PendingChanges() int {
	return len(e.pending)
}
