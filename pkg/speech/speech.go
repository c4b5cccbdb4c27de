// Package speech provides the external speech-to-text capability used by
// the transcription stage.
package speech

import "context"

// Result is the verbose transcription output: the text plus the detected
// language and the audio duration in seconds.
type Result struct {
	Text            string
	Language        string
	DurationSeconds float64

	// Confidence is an optional overall confidence score in [0,1],
	// derived from segment log probabilities when available.
	Confidence *float64
}

// Request carries the audio payload to transcribe.
type Request struct {
	// Filename hints the audio container format to the capability.
	Filename string

	// Payload is the raw audio bytes.
	Payload []byte

	// Language is an optional language hint (e.g. "en").
	Language string
}

// Transcriber is the external speech-to-text capability. Implementations
// may report throttling via *errors.RateLimitError.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (*Result, error)
}
