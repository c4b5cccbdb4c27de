// Package client provides the HTTP client for the meeting summarizer API.
// It handles multipart uploads, stage triggers, and typed error decoding
// so the CLI can react to rate limiting and state conflicts.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Rahulrocknov18/meetingsummarizer/pkg/logging"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/meetings"
)

// Default client settings.
const (
	DefaultServerURL     = "http://localhost:8080"
	DefaultTimeout       = 30 * time.Second
	DefaultUploadTimeout = 5 * time.Minute
)

// contentTypeByExt maps audio file extensions to their declared media type.
var contentTypeByExt = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/m4a",
	".mp4":  "audio/mp4",
	".aac":  "audio/aac",
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
}

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
	RetryAfter string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (HTTP %d, %s)", e.Message, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// RateLimited reports whether the server rejected the call for quota
// reasons; RetryAfter then carries the suggested wait.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Options configures the Client.
type Options struct {
	// ServerURL is the API base URL.
	ServerURL string

	// Timeout applies to every call except uploads.
	Timeout time.Duration

	// UploadTimeout applies to multipart uploads, which move audio payloads.
	UploadTimeout time.Duration
}

// Client talks to the meeting summarizer API.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	uploadClient *http.Client
	logger       logging.Logger
}

// New creates a client. Zero-value options fall back to the defaults.
func New(opts Options, logger logging.Logger) *Client {
	if opts.ServerURL == "" {
		opts.ServerURL = DefaultServerURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = DefaultUploadTimeout
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{
		baseURL:      strings.TrimRight(opts.ServerURL, "/"),
		httpClient:   &http.Client{Timeout: opts.Timeout},
		uploadClient: &http.Client{Timeout: opts.UploadTimeout},
		logger:       logger,
	}
}

// UploadRequest describes one audio upload.
type UploadRequest struct {
	Title       string
	Filename    string
	ContentType string
	Data        io.Reader
}

// TranscriptionResponse is the trigger-transcription reply.
type TranscriptionResponse struct {
	Success    bool                 `json:"success"`
	Transcript *meetings.Transcript `json:"transcript"`
	Duration   float64              `json:"duration"`
	Message    string               `json:"message,omitempty"`
}

// SummarizationResponse is the trigger-summarization reply.
type SummarizationResponse struct {
	Success     bool                  `json:"success"`
	Summary     *meetings.Summary     `json:"summary"`
	ActionItems []meetings.ActionItem `json:"action_items"`
	Message     string                `json:"message,omitempty"`
}

// Upload sends an audio payload and returns the created meeting.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (*meetings.Meeting, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, req.Filename))
	hdr.Set("Content-Type", req.ContentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	if _, err := io.Copy(part, req.Data); err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	if req.Title != "" {
		if err := mw.WriteField("title", req.Title); err != nil {
			return nil, fmt.Errorf("build upload request: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/meetings", &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	var resp struct {
		Meeting *meetings.Meeting `json:"meeting"`
	}
	if err := c.do(c.uploadClient, httpReq, http.StatusCreated, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug("meeting uploaded",
		logging.F("meeting_id", resp.Meeting.ID),
		logging.F("filename", req.Filename))

	return resp.Meeting, nil
}

// UploadFile uploads a local audio file, deriving the media type from its
// extension. The title defaults server-side to the filename.
func (c *Client) UploadFile(ctx context.Context, path, title string) (*meetings.Meeting, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	contentType, ok := contentTypeByExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		contentType = "audio/mpeg"
	}

	return c.Upload(ctx, UploadRequest{
		Title:       title,
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Data:        f,
	})
}

// ListMeetings returns all meetings, newest first.
func (c *Client) ListMeetings(ctx context.Context) ([]*meetings.Meeting, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/meetings", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Meetings []*meetings.Meeting `json:"meetings"`
	}
	if err := c.do(c.httpClient, req, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Meetings, nil
}

// GetMeeting returns one meeting with its transcript, summary, and action
// items.
func (c *Client) GetMeeting(ctx context.Context, id string) (*meetings.Detail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/meetings/"+id, nil)
	if err != nil {
		return nil, err
	}

	var detail meetings.Detail
	if err := c.do(c.httpClient, req, http.StatusOK, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// TriggerTranscription starts (or short-circuits) the transcription stage.
func (c *Client) TriggerTranscription(ctx context.Context, id string) (*TranscriptionResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/meetings/"+id+"/transcribe", nil)
	if err != nil {
		return nil, err
	}

	var resp TranscriptionResponse
	if err := c.do(c.httpClient, req, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TriggerSummarization starts (or short-circuits) the summarization stage.
func (c *Client) TriggerSummarization(ctx context.Context, id string) (*SummarizationResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/meetings/"+id+"/summarize", nil)
	if err != nil {
		return nil, err
	}

	var resp SummarizationResponse
	if err := c.do(c.httpClient, req, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do executes the request and decodes either the expected body or the
// server's error envelope.
func (c *Client) do(httpClient *http.Client, req *http.Request, wantStatus int, out any) error {
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var envelope struct {
			Error      string `json:"error"`
			Code       string `json:"code"`
			RetryAfter string `json:"retry_after"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == "" {
			envelope.Error = strings.TrimSpace(string(body))
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    envelope.Error,
			Code:       envelope.Code,
			RetryAfter: envelope.RetryAfter,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
