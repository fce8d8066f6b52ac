// Package errs defines the failure kinds surfaced by the custody engine.
//
// Every operation failure wraps exactly one of the root errors below, so
// callers can classify a failure with the Is helpers while still reading the
// specific message from the wrap.
package errs

import (
	"github.com/pkg/errors"
)

var (
	// ErrPrecondition is returned for bad or missing input.
	ErrPrecondition = errors.New("precondition failed")

	// ErrUnauthorized is returned when the caller identity is not allowed
	// to perform the operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound abstracts the standard not found error.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write would collide with existing
	// state, like a duplicate holder or withdraw id.
	ErrConflict = errors.New("conflict")

	// ErrInvariant is returned when a configuration fails a structural
	// validation check.
	ErrInvariant = errors.New("invariant violated")
)

// Precondition wraps ErrPrecondition with a message.
func Precondition(msg string) error {
	return errors.Wrap(ErrPrecondition, msg)
}

// Unauthorized wraps ErrUnauthorized with a message.
func Unauthorized(msg string) error {
	return errors.Wrap(ErrUnauthorized, msg)
}

// NotFound wraps ErrNotFound with a message.
func NotFound(msg string) error {
	return errors.Wrap(ErrNotFound, msg)
}

// Conflict wraps ErrConflict with a message.
func Conflict(msg string) error {
	return errors.Wrap(ErrConflict, msg)
}

// Invariant wraps ErrInvariant with a message.
func Invariant(msg string) error {
	return errors.Wrap(ErrInvariant, msg)
}

func IsPrecondition(err error) bool { return errors.Cause(err) == ErrPrecondition }
func IsUnauthorized(err error) bool { return errors.Cause(err) == ErrUnauthorized }
func IsNotFound(err error) bool     { return errors.Cause(err) == ErrNotFound }
func IsConflict(err error) bool     { return errors.Cause(err) == ErrConflict }
func IsInvariant(err error) bool    { return errors.Cause(err) == ErrInvariant }
