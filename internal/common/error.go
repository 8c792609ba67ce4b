// Package common defines the sentinel errors shared by the roster layers.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound  = errors.New("not found")
	ErrUnknownUser = errors.New("unknown user")

	// Validation errors.
	ErrorValidation    = errors.New("validation error")
	ErrInvalidSequence = errors.New("invalid sequence definition")

	// Identifier issuance errors.
	//
	// ErrStoreUnavailable means the counter storage could not be reached; no
	// number was issued and none may be fabricated locally.
	ErrStoreUnavailable      = errors.New("sequence store unavailable")
	ErrSequenceNotConfigured = errors.New("sequence not configured")
	ErrInvalidIdentifier     = errors.New("invalid identifier")

	// ErrDuplicateIdentifier signals that storage rejected a freshly minted
	// identifier as already taken. Reservations never overlap, so seeing this
	// means the counter and the entity tables disagree.
	ErrDuplicateIdentifier = errors.New("duplicate identifier detected")
)
