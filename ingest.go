package overlay

// Delta describes one authoritative mutation awaiting replication to
// predicting peers. The authority queues deltas in recording order, which
// preserves the per-identity FIFO guarantee the transport contract requires.
type Delta[P any] struct {
	ID      ID
	Kind    Kind
	Payload P
	Stamp   Ticket
}

// DrainDeltas returns the queued replication deltas in recording order and
// clears the queue. Only the authority role produces deltas.
func (e *Engine[P]) DrainDeltas() []Delta[P] {
	deltas := e.deltas
	e.deltas = nil
	return deltas
}

// OnEntryReplicated ingests one authoritative delta on the predicting role.
// The delta is applied to the local replicated base in delivery order; the
// engine does not reorder or deduplicate what the transport delivers.
//
// If an overlay exists for the identity its cache is invalidated: the base it
// replays on top of just changed, so the cached effective value is stale
// whether or not any local ops changed. Ingest never clears overlay ops —
// that is strictly the ticket lifecycle's job. A delta can arrive before or
// after its ticket's terminal signal, and clearing here would discard ops
// whose ticket is still pending, causing a visible flicker.
func (e *Engine[P]) OnEntryReplicated(id ID, kind Kind, payload P, stamp Ticket) {
	switch kind {
	case KindAdd, KindChange:
		e.auth.upsert(id, payload, stamp)
	case KindRemove:
		e.auth.remove(id)
	default:
		return
	}
	if _, ok := e.overlays[id]; ok {
		e.markDirty(id)
	}
	e.viewDirty = true
	e.accumulate(id, kind, PhaseReplicated)
}
