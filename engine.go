package overlay

import "strings"

// Engine is one role's instance of the reconciliation core. An authority
// engine mutates the ground-truth store directly; a predictor engine records
// speculative ops into overlays and reconciles them against replicated
// authoritative deltas.
//
// The engine is not safe for concurrent use: each role owns its instance
// exclusively and serializes its own calls (single-threaded event loop or an
// external mutex).
type Engine[P any] struct {
	role Role

	auth     *authorityStore[P]
	overlays map[ID]*entityOverlay[P]
	index    ticketIndex

	// dirty tracks identities whose overlay cache must be rebuilt before the
	// next view composition.
	dirty map[ID]struct{}

	viewDirty bool
	view      map[ID]P

	// deltas queues authority-side mutations awaiting replication pickup, in
	// recording order.
	deltas []Delta[P]

	pending        []Change
	sinks          []Sink
	rejectionSinks []RejectionSink
	observers      []Observer
}

// Option configures an Engine.
type Option[P any] func(*Engine[P])

// WithSink registers a sink for batched change notifications.
func WithSink[P any](s Sink) Option[P] {
	return func(e *Engine[P]) {
		if s != nil {
			e.sinks = append(e.sinks, s)
		}
	}
}

// WithRejectionSink registers a sink for per-identity rejection notices.
func WithRejectionSink[P any](s RejectionSink) Option[P] {
	return func(e *Engine[P]) {
		if s != nil {
			e.rejectionSinks = append(e.rejectionSinks, s)
		}
	}
}

// WithObserver registers an observer for engine lifecycle notifications.
func WithObserver[P any](o Observer) Option[P] {
	return func(e *Engine[P]) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// New creates an engine for the given role.
func New[P any](role Role, opts ...Option[P]) *Engine[P] {
	e := &Engine[P]{
		role:      role,
		auth:      newAuthorityStore[P](),
		overlays:  make(map[ID]*entityOverlay[P]),
		index:     make(ticketIndex),
		dirty:     make(map[ID]struct{}),
		viewDirty: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Role reports which role this engine serves.
func (e *Engine[P]) Role() Role {
	return e.role
}

// Record is the single entry point mutations pass through. With authority it
// mutates the ground-truth store directly, stamps the entry with the ticket,
// and queues the delta for replication. Without authority it appends a
// speculative op to the identity's overlay and tags it with the ticket so the
// later terminal signal can clear exactly this batch.
//
// Change and Remove require the identity to already exist somewhere: on the
// predictor in an overlay or in the replicated base, on the authority in the
// ground-truth store. Violations return ErrUnknownIdentity.
func (e *Engine[P]) Record(id ID, kind Kind, payload P, ticket Ticket) error {
	if strings.TrimSpace(string(id)) == "" {
		return ErrEmptyIdentity
	}
	if !kind.IsValid() {
		return ErrInvalidKind
	}
	if e.role == RoleAuthority {
		return e.recordAuthoritative(id, kind, payload, ticket)
	}
	return e.recordPredicted(id, kind, payload, ticket)
}

// recordAuthoritative applies the mutation to the ground-truth store and
// queues it for replication.
func (e *Engine[P]) recordAuthoritative(id ID, kind Kind, payload P, ticket Ticket) error {
	switch kind {
	case KindAdd:
		e.auth.upsert(id, payload, ticket)
	case KindChange:
		if !e.auth.has(id) {
			return ErrUnknownIdentity
		}
		e.auth.upsert(id, payload, ticket)
	case KindRemove:
		if !e.auth.remove(id) {
			return ErrUnknownIdentity
		}
	}
	e.deltas = append(e.deltas, Delta[P]{ID: id, Kind: kind, Payload: payload, Stamp: ticket})
	e.viewDirty = true
	e.accumulate(id, kind, PhaseAuthoritative)
	for _, o := range e.observers {
		o.OpApplied(id, kind, PhaseAuthoritative, ticket)
	}
	return nil
}

// recordPredicted appends a speculative op to the identity's overlay, creating
// the overlay on first use, and keeps the ticket index in step.
func (e *Engine[P]) recordPredicted(id ID, kind Kind, payload P, ticket Ticket) error {
	if ticket == TicketNone {
		return ErrInvalidTicket
	}
	ov, exists := e.overlays[id]
	if kind != KindAdd && !exists && !e.auth.has(id) {
		return ErrUnknownIdentity
	}
	if !exists {
		ov = &entityOverlay[P]{}
		e.overlays[id] = ov
	}
	ov.append(Op[P]{Ticket: ticket, Kind: kind, Payload: payload})
	e.markDirty(id)
	e.index.insert(ticket, id)
	e.viewDirty = true
	e.accumulate(id, kind, PhasePredicted)
	for _, o := range e.observers {
		o.OpApplied(id, kind, PhasePredicted, ticket)
	}
	return nil
}

// markDirty flags an identity's overlay cache for rebuild. The dirty set and
// the per-overlay flag always move together.
func (e *Engine[P]) markDirty(id ID) {
	if ov, ok := e.overlays[id]; ok {
		ov.cacheDirty = true
	}
	e.dirty[id] = struct{}{}
}

// AuthoritativeEntry returns the ground-truth (or replicated base) entry for
// an identity, ignoring any overlay state.
func (e *Engine[P]) AuthoritativeEntry(id ID) (Entry[P], bool) {
	return e.auth.get(id)
}

// AuthoritativeLen reports the number of ground-truth entries.
func (e *Engine[P]) AuthoritativeLen() int {
	return e.auth.len()
}

// OverlayLen reports the number of live overlays. Useful for asserting the
// empty-overlays-are-removed invariant.
func (e *Engine[P]) OverlayLen() int {
	return len(e.overlays)
}

// HasPending reports whether the ticket still has uncleared speculative ops.
func (e *Engine[P]) HasPending(ticket Ticket) bool {
	return e.index.contains(ticket)
}
