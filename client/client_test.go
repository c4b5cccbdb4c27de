package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Options{ServerURL: server.URL}, nil)
}

func TestUploadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "standup.mp3")
	require.NoError(t, os.WriteFile(path, []byte("audio-bytes"), 0o644))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/meetings", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Standup", r.FormValue("title"))

		file, header, err := r.FormFile("audio")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "standup.mp3", header.Filename)
		assert.Equal(t, "audio/mpeg", header.Header.Get("Content-Type"))

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"meeting": {"id": "m1", "title": "Standup", "status": "uploaded"}}`)
	})

	m, err := c.UploadFile(context.Background(), path, "Standup")
	require.NoError(t, err)
	assert.Equal(t, "m1", m.ID)
}

func TestUploadRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": "invalid file type"}`)
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.mp3")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := c.UploadFile(context.Background(), path, "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "invalid file type", apiErr.Message)
	assert.False(t, apiErr.RateLimited())
}

func TestListMeetings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/meetings", r.URL.Path)
		fmt.Fprint(w, `{"meetings": [{"id": "m2"}, {"id": "m1"}]}`)
	})

	list, err := c.ListMeetings(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "m2", list[0].ID)
}

func TestGetMeeting(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/meetings/m1", r.URL.Path)
		fmt.Fprint(w, `{
			"meeting": {"id": "m1", "status": "completed"},
			"transcript": {"id": "t1", "full_text": "hello"},
			"summary": {"id": "s1", "summary_text": "Planned Q3."},
			"action_items": [{"id": "a1", "task_description": "Draft notes"}]
		}`)
	})

	detail, err := c.GetMeeting(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", detail.Meeting.ID)
	assert.Equal(t, "hello", detail.Transcript.FullText)
	assert.Equal(t, "Planned Q3.", detail.Summary.SummaryText)
	require.Len(t, detail.ActionItems, 1)
}

func TestGetMeetingNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": "meeting not found"}`)
	})

	_, err := c.GetMeeting(context.Background(), "nope")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestTriggerTranscription(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/meetings/m1/transcribe", r.URL.Path)
		fmt.Fprint(w, `{"success": true, "transcript": {"id": "t1"}, "duration": 125.6}`)
	})

	resp, err := c.TriggerTranscription(context.Background(), "m1")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "t1", resp.Transcript.ID)
	assert.Equal(t, 125.6, resp.Duration)
}

func TestTriggerTranscriptionRateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": "Rate limit exceeded.", "code": "RATE_LIMIT_EXCEEDED", "retry_after": "1m30s"}`)
	})

	_, err := c.TriggerTranscription(context.Background(), "m1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.RateLimited())
	assert.Equal(t, "1m30s", apiErr.RetryAfter)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", apiErr.Code)
}

func TestTriggerSummarization(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/meetings/m1/summarize", r.URL.Path)
		fmt.Fprint(w, `{"success": true, "summary": {"id": "s1"}, "action_items": [], "message": "Summary already exists"}`)
	})

	resp, err := c.TriggerSummarization(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "s1", resp.Summary.ID)
	assert.Equal(t, "Summary already exists", resp.Message)
}

func TestNonJSONErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream timeout")
	})

	_, err := c.ListMeetings(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "upstream timeout", apiErr.Message)
}
