// Package analysis extracts structured meeting intelligence from a
// transcript: a prose summary, key decisions, participants, and action
// items. Implementations call an LLM capability; callers depend only on
// the Analyzer interface.
package analysis

import "context"

// ActionItem is a single follow-up task extracted from a transcript.
// Assignee and DueDate are empty when the transcript did not mention them.
type ActionItem struct {
	Task     string `json:"task"`
	Assignee string `json:"assignee,omitempty"`
	Priority string `json:"priority"`
	DueDate  string `json:"due_date,omitempty"`
}

// Result holds everything the analyzer extracted from one transcript.
type Result struct {
	Summary      string       `json:"summary"`
	KeyDecisions []string     `json:"key_decisions"`
	Participants []string     `json:"participants"`
	ActionItems  []ActionItem `json:"action_items"`
}

// Analyzer turns a raw transcript into a structured Result.
type Analyzer interface {
	Analyze(ctx context.Context, transcript string) (*Result, error)
}
