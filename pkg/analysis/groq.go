package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	mserrors "github.com/Rahulrocknov18/meetingsummarizer/pkg/errors"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/logging"
)

const (
	// DefaultBaseURL is the OpenAI-compatible Groq API root.
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// DefaultModel is the chat model used for transcript analysis.
	DefaultModel = "llama-3.3-70b-versatile"

	defaultTimeout = 5 * time.Minute

	systemPrompt = `You are an expert meeting analyst. Analyze the meeting transcript and provide:
1. A concise summary (2-3 paragraphs)
2. Key decisions made
3. Participants mentioned
4. Action items with assignees, priority, and due dates if mentioned

Return your response as a JSON object with this structure:
{
  "summary": "string",
  "key_decisions": ["string"],
  "participants": ["string"],
  "action_items": [
    {
      "task": "string",
      "assignee": "string or null",
      "priority": "low|medium|high",
      "due_date": "YYYY-MM-DD or null"
    }
  ]
}`
)

// GroqConfig configures the Groq-backed analyzer.
type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// GroqAnalyzer implements Analyzer against the Groq chat completions API.
type GroqAnalyzer struct {
	cfg        GroqConfig
	httpClient *http.Client
	logger     logging.Logger
}

// NewGroqAnalyzer creates an analyzer. Zero-value config fields fall back
// to the package defaults.
func NewGroqAnalyzer(cfg GroqConfig, logger logging.Logger) *GroqAnalyzer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &GroqAnalyzer{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// chatMessage represents a message in the chat conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatRequest is the OpenAI-compatible chat completion request.
type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	Temperature    float32        `json:"temperature"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// llmActionItem mirrors the JSON shape the model is instructed to emit.
type llmActionItem struct {
	Task     string `json:"task"`
	Assignee string `json:"assignee"`
	Priority string `json:"priority"`
	DueDate  string `json:"due_date"`
}

type llmResult struct {
	Summary      string          `json:"summary"`
	KeyDecisions []string        `json:"key_decisions"`
	Participants []string        `json:"participants"`
	ActionItems  []llmActionItem `json:"action_items"`
}

// Analyze sends the transcript to the chat model and parses the structured
// JSON reply. Rate limiting surfaces as *mserrors.RateLimitError.
func (a *GroqAnalyzer) Analyze(ctx context.Context, transcript string) (*Result, error) {
	if a.cfg.APIKey == "" {
		return nil, fmt.Errorf("analysis capability: %w: API key is not configured", mserrors.ErrUnavailable)
	}

	start := time.Now()

	chatReq := chatRequest{
		Model: a.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Analyze this meeting transcript and extract key information:\n\n%s", transcript)},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
		Temperature:    0.3,
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis request: %w", err)
	}

	url := a.cfg.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create analysis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read analysis response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, a.asAPIError(resp, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("parse analysis response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("analysis response contained no choices")
	}

	// Clean up the response - sometimes LLMs wrap JSON in markdown
	content := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var parsed llmResult
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("parse analysis content: %w", err)
	}

	result := &Result{
		Summary:      strings.TrimSpace(parsed.Summary),
		KeyDecisions: parsed.KeyDecisions,
		Participants: normalizeNames(parsed.Participants),
	}
	for _, item := range parsed.ActionItems {
		task := strings.TrimSpace(item.Task)
		if task == "" {
			continue
		}
		result.ActionItems = append(result.ActionItems, ActionItem{
			Task:     task,
			Assignee: normalizeName(item.Assignee),
			Priority: item.Priority,
			DueDate:  strings.TrimSpace(item.DueDate),
		})
	}

	a.logger.Info("transcript analyzed",
		logging.F("model", a.cfg.Model),
		logging.F("duration_ms", time.Since(start).Milliseconds()),
		logging.F("action_items", len(result.ActionItems)),
	)

	return result, nil
}

func (a *GroqAnalyzer) asAPIError(resp *http.Response, body []byte) error {
	var envelope apiError
	_ = json.Unmarshal(body, &envelope)

	message := envelope.Error.Message
	if message == "" {
		message = strings.TrimSpace(string(body))
	}

	if resp.StatusCode == http.StatusTooManyRequests || envelope.Error.Code == "rate_limit_exceeded" {
		return &mserrors.RateLimitError{
			Capability: "analysis",
			RetryAfter: retryAfterHint(resp.Header.Get("Retry-After"), message),
			Message:    message,
		}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("analysis capability: %w: %s", mserrors.ErrUnavailable, message)
	}

	return fmt.Errorf("analysis API error (HTTP %d): %s", resp.StatusCode, message)
}

// retryInPattern matches Groq's "try again in 2m59.56s" hint, which is
// already in Go duration syntax.
var retryInPattern = regexp.MustCompile(`[Tt]ry again in ((?:\d+h)?(?:\d+m)?\d+(?:\.\d+)?s)`)

func retryAfterHint(header, message string) time.Duration {
	if header != "" {
		if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if m := retryInPattern.FindStringSubmatch(message); m != nil {
		if d, err := time.ParseDuration(m[1]); err == nil {
			return d
		}
	}
	return 0
}

// normalizeName canonicalizes a person name: unicode NFC plus collapsed
// internal whitespace. LLM output mixes composed and decomposed accents
// for the same speaker, which breaks naive equality downstream.
func normalizeName(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if normalized := normalizeName(n); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}
