package errors

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitError reports that an external capability throttled the request.
// It carries the wait interval suggested by the capability so callers can
// surface retry guidance instead of retrying blindly.
type RateLimitError struct {
	// Capability names the throttling service (e.g. "transcription").
	Capability string

	// RetryAfter is the suggested wait before retrying. Zero when the
	// capability gave no hint.
	RetryAfter time.Duration

	// Message is the raw upstream message, kept for operator context.
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limit exceeded, retry after %s", e.Capability, e.RetryAfter)
	}
	return fmt.Sprintf("%s rate limit exceeded", e.Capability)
}

// RetryHint returns a human-readable wait suggestion.
func (e *RateLimitError) RetryHint() string {
	if e.RetryAfter > 0 {
		return e.RetryAfter.String()
	}
	return "a few minutes"
}

// AsRateLimit returns the RateLimitError in err's chain, if any.
func AsRateLimit(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}

// IsRateLimit reports whether any error in err's chain is a RateLimitError.
func IsRateLimit(err error) bool {
	_, ok := AsRateLimit(err)
	return ok
}
