package models

import "errors"

var (
	// ErrInvalidInput is returned for malformed engagement numbers or reward modes.
	ErrInvalidInput = errors.New("invalid input")
	// ErrLedgerUnavailable marks a soft failure of the backing store.
	ErrLedgerUnavailable = errors.New("ledger unavailable")
	// ErrUnknownViolationType is reported when a caller passes an unrecognized
	// classification. The violation is still recorded as low-confidence.
	ErrUnknownViolationType = errors.New("unknown violation type")
	ErrCorruptRecord        = errors.New("corrupt ledger record")
	ErrInvalidIdentity      = errors.New("invalid identity")
)
