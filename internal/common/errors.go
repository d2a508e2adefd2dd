// Package common defines shared constants and sentinel errors used across
// the contactsync layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors raised at the service boundary.
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvalidState marks a sync log entry in a state that does not
	// allow the requested transition (e.g. resolving a non-conflict entry).
	ErrInvalidState = errors.New("invalid state")

	// Generic service-level failure.
	ErrInternal = errors.New("internal error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
