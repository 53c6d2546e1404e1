package overlay

import "sort"

// OnConfirmed handles the authority's "caught up" signal for a ticket. Exactly
// the ops bearing the ticket are removed from every overlay they touched; ops
// from other pending tickets on the same identities survive. Overlays whose op
// log empties are deleted. An unknown ticket is a benign no-op (already
// cleared, or it never recorded an op), which also makes repeated terminal
// signals idempotent.
func (e *Engine[P]) OnConfirmed(ticket Ticket) {
	e.clearTicket(ticket, OutcomeConfirmed)
}

// OnRejected handles the authority's refusal of a ticket. Clearing is shared
// with OnConfirmed; the only difference is that every affected identity first
// emits a rejection notice so the caller layer can surface failure feedback.
// Rejection is the engine's cancellation path: after it the effective view is
// exactly what it would have been had the ticket's ops never been recorded.
func (e *Engine[P]) OnRejected(ticket Ticket) {
	e.clearTicket(ticket, OutcomeRejected)
}

// clearTicket removes every op tagged with the ticket from every affected
// overlay, deletes the ticket's index entry, and marks the view dirty. The
// index guarantees this touches only affected identities.
func (e *Engine[P]) clearTicket(ticket Ticket, outcome Outcome) {
	ids, ok := e.index.take(ticket)
	if !ok {
		for _, o := range e.observers {
			o.StaleTicket(ticket, outcome)
		}
		return
	}

	affected := make([]ID, 0, len(ids))
	for id := range ids {
		affected = append(affected, id)
	}
	sort.Slice(affected, func(i, j int) bool { return affected[i] < affected[j] })

	if outcome == OutcomeRejected {
		for _, id := range affected {
			for _, sink := range e.rejectionSinks {
				sink.HandleRejection(Rejection{ID: id, Ticket: ticket})
			}
		}
	}

	for _, id := range affected {
		ov, ok := e.overlays[id]
		if !ok {
			continue
		}
		_, empty := ov.dropTicket(ticket)
		if empty {
			delete(e.overlays, id)
			delete(e.dirty, id)
			continue
		}
		// Removing some ops changes the replay result for the survivors.
		e.markDirty(id)
	}

	e.viewDirty = true
	for _, o := range e.observers {
		o.TicketResolved(ticket, outcome, affected)
	}
}
