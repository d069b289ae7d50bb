// Package apperrors defines the request-scoped error taxonomy shared by the
// store, services and HTTP layer. No kind is fatal to the process.
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError marks malformed input: non-positive quantity, equal
// source/destination base, inverted date range, unknown reference. Always
// rejected before any durable write.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// AuthorizationError marks an actor without access to the requested data.
// Never silently downgraded to an empty result.
type AuthorizationError struct {
	msg string
}

func (e *AuthorizationError) Error() string { return e.msg }

// Authorizationf builds an AuthorizationError from a format string.
func Authorizationf(format string, args ...any) error {
	return &AuthorizationError{msg: fmt.Sprintf(format, args...)}
}

// IsAuthorization reports whether err is (or wraps) an AuthorizationError.
func IsAuthorization(err error) bool {
	var target *AuthorizationError
	return errors.As(err, &target)
}

// UnavailableError marks an unreachable durability layer. Retryable by the
// caller; no partial write happens on this path.
type UnavailableError struct {
	msg string
	err error
}

func (e *UnavailableError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *UnavailableError) Unwrap() error { return e.err }

// Unavailable wraps a store failure as retryable.
func Unavailable(msg string, err error) error {
	return &UnavailableError{msg: msg, err: err}
}

// IsUnavailable reports whether err is (or wraps) an UnavailableError.
func IsUnavailable(err error) bool {
	var target *UnavailableError
	return errors.As(err, &target)
}
