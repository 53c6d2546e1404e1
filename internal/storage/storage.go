// Package storage defines persistence interfaces and records shared by the
// observability layer and the simulator.
package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/overlay/internal/platform/errors"
)

// ErrNotFound indicates a requested persistence record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// AuditEvent is one durable record of a reconciliation outcome. The engine
// itself stays in-memory; audit events are written from outside via the
// engine's observer hook.
type AuditEvent struct {
	// EventName identifies what happened (see observability/audit/events).
	EventName string
	// Severity is INFO, WARN, or ERROR.
	Severity string
	// Role is the engine role that produced the event.
	Role string
	// Ticket is the ticket the event concerns, zero when not ticket-scoped.
	Ticket uint64
	// EntityID is the identity the event concerns, empty for ticket-level events.
	EntityID string
	// Outcome is the terminal outcome for ticket-level events.
	Outcome string
	// Timestamp is when the event was recorded.
	Timestamp time.Time
	// Attributes holds event-specific context.
	Attributes map[string]any
}

// AuditEventStore appends audit events to durable storage.
type AuditEventStore interface {
	AppendAuditEvent(ctx context.Context, evt AuditEvent) error
}

// AuditEventLister reads back persisted audit events, newest first.
type AuditEventLister interface {
	ListAuditEvents(ctx context.Context, limit int) ([]AuditEvent, error)
}
