// Package events names the audit events the reconciliation layer emits.
package events

const (
	// OpApplied records one mutation applied on either role.
	OpApplied = "overlay.op_applied"
	// TicketConfirmed records a ticket reaching its confirmed terminal state.
	TicketConfirmed = "overlay.ticket_confirmed"
	// TicketRejected records a ticket reaching its rejected terminal state.
	TicketRejected = "overlay.ticket_rejected"
	// StaleTicket records a terminal signal for an unknown ticket.
	StaleTicket = "overlay.stale_ticket"
)
