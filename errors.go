package overlay

import (
	apperrors "github.com/louisbranch/overlay/internal/platform/errors"
)

var (
	// ErrUnknownIdentity indicates a Change or Remove referenced an identity
	// with no overlay and no authoritative entry. This is a caller contract
	// violation: the caller's view has desynced from the engine's state.
	ErrUnknownIdentity = apperrors.New(apperrors.CodeUnknownIdentity, "identity has no overlay and no authoritative entry")
	// ErrInvalidKind indicates a mutation with an undefined kind.
	ErrInvalidKind = apperrors.New(apperrors.CodeInvalidKind, "mutation kind is not valid")
	// ErrInvalidTicket indicates a predicted mutation without a minted ticket.
	ErrInvalidTicket = apperrors.New(apperrors.CodeInvalidTicket, "predicted mutation requires a minted ticket")
	// ErrEmptyIdentity indicates a mutation with an empty identity.
	ErrEmptyIdentity = apperrors.New(apperrors.CodeEmptyIdentity, "identity is required")
)
