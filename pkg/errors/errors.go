// Package errors provides common domain error types for the meeting summarizer.
//
// This package defines sentinel errors for common domain conditions like "not found"
// or "validation error" that can be used across all packages. Using typed errors
// enables consistent error handling patterns with errors.Is() checks.
//
// Usage:
//
//	import mserrors "github.com/Rahulrocknov18/meetingsummarizer/pkg/errors"
//
//	// Return a domain error
//	return nil, mserrors.ErrNotFound
//
//	// Check for domain errors
//	if mserrors.IsNotFound(err) {
//	    // handle not found case
//	}
package errors

import "errors"

// Domain errors - common sentinel errors for domain conditions.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid input or validation failure.
	ErrValidation = errors.New("validation error")

	// ErrInvalidState indicates the operation is not valid for the current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrPayloadTooLarge indicates an upload exceeded the size ceiling.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrUnavailable indicates an external capability is misconfigured or
	// unreachable. Operator-actionable, not retried.
	ErrUnavailable = errors.New("upstream unavailable")
)

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidState reports whether any error in err's chain is ErrInvalidState.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsPayloadTooLarge reports whether any error in err's chain is ErrPayloadTooLarge.
func IsPayloadTooLarge(err error) bool {
	return errors.Is(err, ErrPayloadTooLarge)
}

// IsUnavailable reports whether any error in err's chain is ErrUnavailable.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
