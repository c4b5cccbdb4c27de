package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mserrors "github.com/Rahulrocknov18/meetingsummarizer/pkg/errors"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/logging"
)

func newTestAnalyzer(t *testing.T, handler http.HandlerFunc) *GroqAnalyzer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewGroqAnalyzer(GroqConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	}, logging.NewNopLogger())
}

func chatReply(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(body)
}

func TestAnalyzeSuccess(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		assert.InDelta(t, 0.3, req.Temperature, 0.001)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "quarterly planning transcript")

		fmt.Fprint(w, chatReply(`{
			"summary": "The team planned Q3.",
			"key_decisions": ["Ship on Friday"],
			"participants": ["Alice", "Bob"],
			"action_items": [
				{"task": "Draft release notes", "assignee": "Alice", "priority": "high", "due_date": "2026-09-04"},
				{"task": "Book retro room", "assignee": null, "priority": "low", "due_date": null}
			]
		}`))
	})

	result, err := analyzer.Analyze(context.Background(), "quarterly planning transcript")
	require.NoError(t, err)

	assert.Equal(t, "The team planned Q3.", result.Summary)
	assert.Equal(t, []string{"Ship on Friday"}, result.KeyDecisions)
	assert.Equal(t, []string{"Alice", "Bob"}, result.Participants)
	require.Len(t, result.ActionItems, 2)
	assert.Equal(t, "Draft release notes", result.ActionItems[0].Task)
	assert.Equal(t, "Alice", result.ActionItems[0].Assignee)
	assert.Equal(t, "high", result.ActionItems[0].Priority)
	assert.Equal(t, "2026-09-04", result.ActionItems[0].DueDate)
	assert.Empty(t, result.ActionItems[1].Assignee)
	assert.Empty(t, result.ActionItems[1].DueDate)
}

func TestAnalyzeStripsMarkdownFences(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply("```json\n{\"summary\": \"Fenced.\", \"participants\": []}\n```"))
	})

	result, err := analyzer.Analyze(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, "Fenced.", result.Summary)
}

func TestAnalyzeNormalizesNames(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		// "José" decomposed (e + combining acute) and padded whitespace.
		fmt.Fprint(w, chatReply(`{
			"summary": "s",
			"participants": ["José   García", "  "],
			"action_items": [{"task": "Follow up", "assignee": " José  García ", "priority": "medium"}]
		}`))
	})

	result, err := analyzer.Analyze(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, []string{"José García"}, result.Participants)
	require.Len(t, result.ActionItems, 1)
	assert.Equal(t, "José García", result.ActionItems[0].Assignee)
}

func TestAnalyzeSkipsEmptyTasks(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply(`{
			"summary": "s",
			"action_items": [{"task": "  ", "priority": "low"}, {"task": "Real task", "priority": "medium"}]
		}`))
	})

	result, err := analyzer.Analyze(context.Background(), "t")
	require.NoError(t, err)
	require.Len(t, result.ActionItems, 1)
	assert.Equal(t, "Real task", result.ActionItems[0].Task)
}

func TestAnalyzeRateLimited(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "Rate limit reached. Please try again in 1m4.5s", "code": "rate_limit_exceeded"}}`)
	})

	_, err := analyzer.Analyze(context.Background(), "t")
	rle, ok := mserrors.AsRateLimit(err)
	require.True(t, ok, "expected a rate-limit error, got %v", err)
	assert.Equal(t, "analysis", rle.Capability)

	want, parseErr := time.ParseDuration("1m4.5s")
	require.NoError(t, parseErr)
	assert.Equal(t, want, rle.RetryAfter)
}

func TestAnalyzeUnauthorized(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "invalid api key"}}`)
	})

	_, err := analyzer.Analyze(context.Background(), "t")
	require.Error(t, err)
	assert.True(t, mserrors.IsUnavailable(err))
}

func TestAnalyzeMissingAPIKey(t *testing.T) {
	analyzer := NewGroqAnalyzer(GroqConfig{}, logging.NewNopLogger())

	_, err := analyzer.Analyze(context.Background(), "t")
	require.Error(t, err)
	assert.True(t, mserrors.IsUnavailable(err))
}

func TestAnalyzeMalformedContent(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply("this is not json"))
	})

	_, err := analyzer.Analyze(context.Background(), "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse analysis content")
}
