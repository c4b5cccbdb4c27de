package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"direct match", ErrNotFound, true},
		{"wrapped once", fmt.Errorf("get meeting: %w", ErrNotFound), true},
		{"wrapped twice", fmt.Errorf("stage: %w", fmt.Errorf("repo: %w", ErrNotFound)), true},
		{"different error", ErrValidation, false},
		{"nil error", nil, false},
		{"unrelated error", errors.New("something else"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"direct match", ErrValidation, true},
		{"wrapped", fmt.Errorf("input: %w", ErrValidation), true},
		{"different error", ErrNotFound, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.want {
				t.Errorf("IsValidation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsInvalidState(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"direct match", ErrInvalidState, true},
		{"wrapped", fmt.Errorf("transition: %w", ErrInvalidState), true},
		{"different error", ErrValidation, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInvalidState(tt.err); got != tt.want {
				t.Errorf("IsInvalidState() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsPayloadTooLarge(t *testing.T) {
	if !IsPayloadTooLarge(fmt.Errorf("upload: %w", ErrPayloadTooLarge)) {
		t.Error("IsPayloadTooLarge() = false, want true for wrapped error")
	}
	if IsPayloadTooLarge(ErrValidation) {
		t.Error("IsPayloadTooLarge() = true, want false for ErrValidation")
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	// Ensure all sentinel errors are distinct
	allErrors := []error{
		ErrNotFound,
		ErrValidation,
		ErrInvalidState,
		ErrPayloadTooLarge,
		ErrUnavailable,
	}

	for i, e1 := range allErrors {
		for j, e2 := range allErrors {
			if i != j && errors.Is(e1, e2) {
				t.Errorf("errors should be distinct: %v and %v", e1, e2)
			}
		}
	}
}

func TestRateLimitError(t *testing.T) {
	rle := &RateLimitError{
		Capability: "transcription",
		RetryAfter: 90 * time.Second,
		Message:    "rate_limit_exceeded",
	}
	wrapped := fmt.Errorf("transcribe meeting: %w", rle)

	if !IsRateLimit(wrapped) {
		t.Fatal("IsRateLimit() = false, want true for wrapped RateLimitError")
	}

	got, ok := AsRateLimit(wrapped)
	if !ok {
		t.Fatal("AsRateLimit() ok = false, want true")
	}
	if got.RetryAfter != 90*time.Second {
		t.Errorf("RetryAfter = %v, want %v", got.RetryAfter, 90*time.Second)
	}
	if got.RetryHint() != "1m30s" {
		t.Errorf("RetryHint() = %q, want %q", got.RetryHint(), "1m30s")
	}
}

func TestRateLimitErrorNoHint(t *testing.T) {
	rle := &RateLimitError{Capability: "analysis"}
	if rle.RetryHint() != "a few minutes" {
		t.Errorf("RetryHint() = %q, want fallback guidance", rle.RetryHint())
	}
	if IsRateLimit(ErrValidation) {
		t.Error("IsRateLimit() = true for non-rate-limit error")
	}
}
