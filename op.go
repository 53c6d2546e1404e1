package overlay

// ID identifies one logical entity across its lifetime. IDs are the join key
// between the authoritative base and the speculative overlays.
type ID string

// Ticket scopes one causal batch of speculative operations. A ticket is
// pending until the authority delivers exactly one terminal signal for it;
// once terminal it is never reused.
type Ticket uint64

// TicketNone marks authoritative entries that were not produced by a
// predicted batch.
const TicketNone Ticket = 0

// Kind identifies the type of a mutation.
type Kind string

const (
	// KindAdd introduces an entity, or re-introduces a removed one.
	KindAdd Kind = "add"
	// KindChange replaces the payload of an existing entity.
	KindChange Kind = "change"
	// KindRemove deletes an entity.
	KindRemove Kind = "remove"
)

// IsValid reports whether the kind is one of the defined mutations.
func (k Kind) IsValid() bool {
	switch k {
	case KindAdd, KindChange, KindRemove:
		return true
	}
	return false
}

// Role identifies which side of the replication relationship an engine
// instance serves.
type Role string

const (
	// RoleAuthority owns the ground-truth store and mutates it directly.
	RoleAuthority Role = "authority"
	// RolePredictor records speculative operations awaiting confirmation.
	RolePredictor Role = "predictor"
)

// Op is one recorded speculative mutation. Ops for an identity replay in
// recording order: the last Change wins for the value, and a trailing Remove
// tombstones regardless of preceding Adds.
type Op[P any] struct {
	Ticket  Ticket
	Kind    Kind
	Payload P
}

// TicketMinter mints monotonically increasing tickets for a predicting peer.
// The zero value is ready to use; the first minted ticket is 1.
type TicketMinter struct {
	last Ticket
}

// Next mints a fresh ticket. Minted tickets are never reused.
func (m *TicketMinter) Next() Ticket {
	m.last++
	return m.last
}
