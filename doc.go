// Package overlay implements a predictive overlay reconciliation engine for
// replicated, per-identity keyed state.
//
// A predicting peer speculatively applies mutations before the authority
// confirms them, layering per-identity operation logs (overlays) on top of the
// replicated authoritative base. Each causal batch of speculative operations
// is scoped by a Ticket; when the authority signals the ticket's terminal
// state (confirmed or rejected) exactly the operations bearing that ticket are
// cleared, leaving unrelated predictions intact. The effective view merges
// overlay state with the authoritative base, with overlay presence always
// taking precedence, and is rebuilt lazily from dirty-tracked caches.
//
// The engine is a pure in-memory core. It owns no persistence, no transport,
// and no timers: the surrounding protocol delivers authoritative deltas to
// OnEntryReplicated and exactly one terminal signal per ticket to OnConfirmed
// or OnRejected. Each role (authority, predictor) owns its engine exclusively
// and must serialize its own calls; no operation blocks.
package overlay
