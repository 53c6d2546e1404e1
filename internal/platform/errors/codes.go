// Package errors provides structured error handling for the overlay engine.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Engine errors
	CodeUnknownIdentity Code = "ENGINE_UNKNOWN_IDENTITY"
	CodeInvalidKind     Code = "ENGINE_INVALID_KIND"
	CodeInvalidTicket   Code = "ENGINE_INVALID_TICKET"
	CodeEmptyIdentity   Code = "ENGINE_EMPTY_IDENTITY"

	// Storage errors
	CodeNotFound           Code = "NOT_FOUND"
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"

	// Simulator errors
	CodeSimulatorDiverged Code = "SIMULATOR_DIVERGED"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidKind,
		CodeInvalidTicket,
		CodeEmptyIdentity:
		return codes.InvalidArgument

	// FailedPrecondition - caller state desynced from engine state
	case CodeUnknownIdentity:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	// Unavailable - backing store not usable
	case CodeStorageUnavailable:
		return codes.Unavailable

	// Internal - invariant violations
	case CodeSimulatorDiverged:
		return codes.Internal

	default:
		return codes.Unknown
	}
}
