package overlay

// EffectiveView returns the merged projection of overlay state over the
// authoritative base: one payload per live identity. Overlay presence always
// wins for an identity it covers — a predicted Remove suppresses an
// authoritative entry whose deletion has not replicated yet, and a predicted
// Add shows an entity before the authority's Add arrives. Identities not
// covered by any overlay fall through to their authoritative entry.
//
// The result is memoized: repeated calls without intervening mutations return
// the same map, and only caches flagged dirty are rebuilt. Callers must treat
// the returned map as read-only.
func (e *Engine[P]) EffectiveView() map[ID]P {
	if !e.viewDirty {
		return e.view
	}

	for id := range e.dirty {
		ov, ok := e.overlays[id]
		if !ok {
			continue
		}
		base, exists := e.auth.get(id)
		ov.rebuild(base.Payload, exists)
	}
	clear(e.dirty)

	view := make(map[ID]P, len(e.overlays)+e.auth.len())
	processed := make(map[ID]struct{}, len(e.overlays))
	for id, ov := range e.overlays {
		processed[id] = struct{}{}
		if ov.cachedTombstone {
			continue
		}
		view[id] = ov.cachedValue
	}
	e.auth.each(func(entry Entry[P]) {
		if _, ok := processed[entry.ID]; ok {
			return
		}
		view[entry.ID] = entry.Payload
	})

	e.view = view
	e.viewDirty = false
	return view
}
