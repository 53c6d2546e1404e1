package overlay

// Entry is the ground-truth record for one identity. On the authority role it
// is mutated directly; on the predictor role it is the replicated base that
// overlays replay on top of. Stamp correlates the entry to the ticket that
// produced it, for echo-back to the predicting peer.
type Entry[P any] struct {
	ID      ID
	Payload P
	Stamp   Ticket
}

// authorityStore is the ordered ground-truth collection. Entries keep their
// insertion order; re-adding a removed identity appends it again.
type authorityStore[P any] struct {
	entries map[ID]*Entry[P]
	order   []ID
}

func newAuthorityStore[P any]() *authorityStore[P] {
	return &authorityStore[P]{entries: make(map[ID]*Entry[P])}
}

func (s *authorityStore[P]) get(id ID) (Entry[P], bool) {
	entry, ok := s.entries[id]
	if !ok {
		return Entry[P]{}, false
	}
	return *entry, true
}

func (s *authorityStore[P]) has(id ID) bool {
	_, ok := s.entries[id]
	return ok
}

// upsert inserts or replaces the entry for id, preserving insertion order for
// existing identities.
func (s *authorityStore[P]) upsert(id ID, payload P, stamp Ticket) {
	if entry, ok := s.entries[id]; ok {
		entry.Payload = payload
		entry.Stamp = stamp
		return
	}
	s.entries[id] = &Entry[P]{ID: id, Payload: payload, Stamp: stamp}
	s.order = append(s.order, id)
}

func (s *authorityStore[P]) remove(id ID) bool {
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// each visits entries in insertion order.
func (s *authorityStore[P]) each(fn func(Entry[P])) {
	for _, id := range s.order {
		fn(*s.entries[id])
	}
}

func (s *authorityStore[P]) len() int {
	return len(s.entries)
}
