// Package audit contains durable in-product audit writes for reconciliation
// outcomes.
//
// This package owns persisted operational audit events that are used for
// incident analysis and cross-peer debugging: which tickets were confirmed or
// rejected, which terminal signals arrived stale, and which mutations each
// role applied. For distributed tracing, use package `internal/platform/otel`.
package audit
