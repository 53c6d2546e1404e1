package overlay

// entityOverlay is the per-identity log of speculative ops plus the lazily
// rebuilt cache of their replayed effect.
//
// Invariant: when cacheDirty is false, cachedValue and cachedTombstone equal
// the result of replaying ops on the current authoritative base for this
// identity. Invariant: an overlay with an empty ops log must not exist in the
// store; the last op removal deletes the overlay.
type entityOverlay[P any] struct {
	ops             []Op[P]
	cacheDirty      bool
	cachedTombstone bool
	cachedValue     P
}

// append records one op at the end of the log and invalidates the cache.
func (o *entityOverlay[P]) append(op Op[P]) {
	o.ops = append(o.ops, op)
	o.cacheDirty = true
}

// rebuild replays the op log on top of the given base. Replay is pure: kind
// transitions apply in stored order and are never coalesced, so a Remove
// followed by an Add within the same batch correctly yields "exists with the
// Add's payload". Existence and value are tracked independently: a later
// Change overrides the value but a trailing Remove still tombstones.
func (o *entityOverlay[P]) rebuild(base P, baseExists bool) {
	exists := baseExists
	current := base
	for _, op := range o.ops {
		switch op.Kind {
		case KindAdd:
			exists = true
			current = op.Payload
		case KindChange:
			current = op.Payload
		case KindRemove:
			exists = false
		}
	}
	o.cachedTombstone = !exists
	o.cachedValue = current
	o.cacheDirty = false
}

// dropTicket removes every op bearing the given ticket, preserving the order
// of the survivors. It reports whether anything was removed and whether the
// log is now empty.
func (o *entityOverlay[P]) dropTicket(t Ticket) (removed, empty bool) {
	kept := o.ops[:0]
	for _, op := range o.ops {
		if op.Ticket == t {
			removed = true
			continue
		}
		kept = append(kept, op)
	}
	o.ops = kept
	return removed, len(o.ops) == 0
}

// hasTicket reports whether any op in the log bears the given ticket.
func (o *entityOverlay[P]) hasTicket(t Ticket) bool {
	for _, op := range o.ops {
		if op.Ticket == t {
			return true
		}
	}
	return false
}
