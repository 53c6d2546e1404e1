package overlay

// ticketIndex is the reverse map from ticket to the set of identities its ops
// touched. It keeps ticket termination O(affected identities) instead of
// O(all overlays).
//
// Invariant: every (ticket, identity) pair present in any overlay's op log
// appears here, and vice versa. The index is mutated only through the paired
// helpers below; maintaining it ad hoc silently degrades to stale overlays
// that are never cleared.
type ticketIndex map[Ticket]map[ID]struct{}

// insert records that ticket t touched identity id.
func (x ticketIndex) insert(t Ticket, id ID) {
	ids, ok := x[t]
	if !ok {
		ids = make(map[ID]struct{})
		x[t] = ids
	}
	ids[id] = struct{}{}
}

// take removes and returns the identity set for t. The second return is false
// when the ticket is unknown (already terminal or never recorded).
func (x ticketIndex) take(t Ticket) (map[ID]struct{}, bool) {
	ids, ok := x[t]
	if !ok {
		return nil, false
	}
	delete(x, t)
	return ids, true
}

// contains reports whether t has an index entry.
func (x ticketIndex) contains(t Ticket) bool {
	_, ok := x[t]
	return ok
}
