package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	mserrors "github.com/Rahulrocknov18/meetingsummarizer/pkg/errors"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/logging"
)

// Defaults for the Groq Whisper API.
const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "whisper-large-v3-turbo"

	defaultTimeout = 10 * time.Minute
)

// GroqConfig configures the Groq transcription client.
type GroqConfig struct {
	// APIKey is the Groq API key. Required.
	APIKey string

	// BaseURL overrides the API endpoint (for testing).
	BaseURL string

	// Model overrides the Whisper model.
	Model string

	// Timeout bounds a single transcription call.
	Timeout time.Duration
}

// GroqTranscriber calls the Groq audio transcription API with verbose
// output (text, detected language, duration).
type GroqTranscriber struct {
	cfg    GroqConfig
	client *http.Client
	logger logging.Logger
}

// NewGroqTranscriber creates a Groq-backed Transcriber.
func NewGroqTranscriber(cfg GroqConfig, logger logging.Logger) *GroqTranscriber {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &GroqTranscriber{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(logging.F("component", "groq_transcriber")),
	}
}

// verboseResponse is the verbose_json transcription response shape.
type verboseResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		AvgLogprob float64 `json:"avg_logprob"`
	} `json:"segments"`
}

// apiError is the error envelope returned by the API.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Transcribe submits the audio payload and returns the verbose result.
func (t *GroqTranscriber) Transcribe(ctx context.Context, req Request) (*Result, error) {
	if t.cfg.APIKey == "" {
		return nil, fmt.Errorf("transcription API key is not configured: %w", mserrors.ErrUnavailable)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("model", t.cfg.Model); err != nil {
		return nil, fmt.Errorf("building transcription request: %w", err)
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("building transcription request: %w", err)
	}
	if req.Language != "" {
		if err := mw.WriteField("language", req.Language); err != nil {
			return nil, fmt.Errorf("building transcription request: %w", err)
		}
	}

	filename := req.Filename
	if filename == "" {
		filename = "audio.mp3"
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("building transcription request: %w", err)
	}
	if _, err := fw.Write(req.Payload); err != nil {
		return nil, fmt.Errorf("building transcription request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building transcription request: %w", err)
	}

	url := t.cfg.BaseURL + "/audio/transcriptions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("building transcription request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+t.cfg.APIKey)
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading transcription response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, t.asAPIError(resp, respBody)
	}

	var vr verboseResponse
	if err := json.Unmarshal(respBody, &vr); err != nil {
		return nil, fmt.Errorf("parsing transcription response: %w", err)
	}

	result := &Result{
		Text:            vr.Text,
		Language:        vr.Language,
		DurationSeconds: vr.Duration,
		Confidence:      segmentConfidence(vr),
	}
	if result.Language == "" {
		result.Language = "en"
	}

	t.logger.Debug("Transcription completed",
		logging.F("language", result.Language),
		logging.F("duration_seconds", result.DurationSeconds),
		logging.F("latency", time.Since(start)))

	return result, nil
}

// retryInPattern matches the wait suggestion embedded in Groq rate-limit
// messages, e.g. "Please try again in 2m59.56s".
var retryInPattern = regexp.MustCompile(`[Tt]ry again in ((?:\d+h)?(?:\d+m)?\d+(?:\.\d+)?s)`)

// asAPIError converts a non-200 response to a typed error. Rate limiting
// becomes *mserrors.RateLimitError carrying the suggested wait.
func (t *GroqTranscriber) asAPIError(resp *http.Response, body []byte) error {
	var ae apiError
	_ = json.Unmarshal(body, &ae)
	message := ae.Error.Message
	if message == "" {
		message = strings.TrimSpace(string(body))
	}

	if resp.StatusCode == http.StatusTooManyRequests || ae.Error.Code == "rate_limit_exceeded" {
		return &mserrors.RateLimitError{
			Capability: "transcription",
			RetryAfter: retryAfterHint(resp.Header.Get("Retry-After"), message),
			Message:    message,
		}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("transcription API rejected credentials: %s: %w", message, mserrors.ErrUnavailable)
	}

	return fmt.Errorf("transcription API error (HTTP %d): %s", resp.StatusCode, message)
}

// retryAfterHint extracts a wait duration from the Retry-After header or,
// failing that, from the upstream message text.
func retryAfterHint(header, message string) time.Duration {
	if header != "" {
		if secs, err := strconv.ParseFloat(header, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}

	if m := retryInPattern.FindStringSubmatch(message); m != nil {
		if d, err := time.ParseDuration(m[1]); err == nil {
			return d
		}
	}

	return 0
}

// segmentConfidence derives an overall confidence in [0,1] from the
// per-segment average log probabilities, when segments are present.
func segmentConfidence(vr verboseResponse) *float64 {
	if len(vr.Segments) == 0 {
		return nil
	}

	var sum float64
	for _, seg := range vr.Segments {
		sum += math.Exp(seg.AvgLogprob)
	}
	confidence := sum / float64(len(vr.Segments))
	if confidence > 1 {
		confidence = 1
	}
	return &confidence
}
