// Package common defines shared sentinel errors used across the document
// service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")

	// Validation errors (malformed upload, bad request payload).
	ErrorBadRequest = errors.New("bad request")

	// Access to a document that is not both published and public
	// through the unauthenticated slug path.
	ErrorForbidden = errors.New("forbidden")

	// Mutation attempted against a locked version. A specialization of
	// conflict; errors.Is(err, ErrorConflict) also matches it.
	ErrorVersionLocked = newConflict("version is locked")

	// Stored bytes no longer match the hash captured at creation time.
	// Surfaced as a fatal error from the download path only; the verify
	// endpoints report a boolean instead.
	ErrorIntegrity = errors.New("integrity check failed")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// Auth errors (invalid or malformed actor token).
	ErrInvalidToken = errors.New("invalid token")
)

type conflictError struct{ msg string }

func (e *conflictError) Error() string { return e.msg }

func (e *conflictError) Is(target error) bool { return target == ErrorConflict }

func newConflict(msg string) error { return &conflictError{msg: msg} }
