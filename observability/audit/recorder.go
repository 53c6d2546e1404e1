package audit

import (
	"context"
	"log"

	"github.com/louisbranch/overlay"
	"github.com/louisbranch/overlay/internal/storage"
	"github.com/louisbranch/overlay/observability/audit/events"
)

// Recorder adapts the engine's observer hook to durable audit writes. It
// implements overlay.Observer; register it with overlay.WithObserver.
//
// Emit failures are logged and swallowed: audit is best-effort and must never
// feed back into reconciliation.
type Recorder struct {
	emitter *Emitter
	role    overlay.Role
}

// NewRecorder creates a recorder writing to the given store on behalf of the
// given engine role.
func NewRecorder(store storage.AuditEventStore, role overlay.Role) *Recorder {
	return &Recorder{emitter: NewEmitter(store), role: role}
}

// OpApplied implements overlay.Observer.
func (r *Recorder) OpApplied(id overlay.ID, kind overlay.Kind, phase overlay.Phase, ticket overlay.Ticket) {
	r.emit(storage.AuditEvent{
		EventName: events.OpApplied,
		Severity:  string(SeverityInfo),
		Ticket:    uint64(ticket),
		EntityID:  string(id),
		Attributes: map[string]any{
			"kind":  string(kind),
			"phase": string(phase),
		},
	})
}

// TicketResolved implements overlay.Observer.
func (r *Recorder) TicketResolved(ticket overlay.Ticket, outcome overlay.Outcome, affected []overlay.ID) {
	name := events.TicketConfirmed
	severity := SeverityInfo
	if outcome == overlay.OutcomeRejected {
		name = events.TicketRejected
		severity = SeverityWarn
	}
	ids := make([]string, 0, len(affected))
	for _, id := range affected {
		ids = append(ids, string(id))
	}
	r.emit(storage.AuditEvent{
		EventName: name,
		Severity:  string(severity),
		Ticket:    uint64(ticket),
		Outcome:   string(outcome),
		Attributes: map[string]any{
			"affected": ids,
		},
	})
}

// StaleTicket implements overlay.Observer.
func (r *Recorder) StaleTicket(ticket overlay.Ticket, outcome overlay.Outcome) {
	r.emit(storage.AuditEvent{
		EventName: events.StaleTicket,
		Severity:  string(SeverityInfo),
		Ticket:    uint64(ticket),
		Outcome:   string(outcome),
	})
}

func (r *Recorder) emit(evt storage.AuditEvent) {
	if r == nil || r.emitter == nil {
		return
	}
	evt.Role = string(r.role)
	if err := r.emitter.Emit(context.Background(), evt); err != nil {
		log.Printf("audit emit %s: %v", evt.EventName, err)
	}
}
