// Package meetings defines the meeting pipeline data model and its
// database operations.
package meetings

import "time"

// Status represents the processing state of a meeting recording.
//
// A meeting moves strictly forward through
// uploaded -> transcribing -> transcribed -> summarizing -> completed.
// The failed state is reachable from either in-progress state and has no
// automatic outbound transition; a failed meeting only moves again when a
// stage is explicitly re-invoked.
type Status string

const (
	StatusUploaded     Status = "uploaded"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusSummarizing  Status = "summarizing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// transitions is the forward transition table. failed is additionally
// reachable from both in-progress states, and re-claimable by an explicit
// stage invocation (see TranscriptionClaimStates / SummarizationClaimStates).
var transitions = map[Status][]Status{
	StatusUploaded:     {StatusTranscribing},
	StatusTranscribing: {StatusTranscribed, StatusFailed},
	StatusTranscribed:  {StatusSummarizing},
	StatusSummarizing:  {StatusCompleted, StatusFailed},
	StatusCompleted:    {},
	StatusFailed:       {StatusTranscribing, StatusSummarizing},
}

// Claim state sets: the statuses from which each stage may start.
// failed is included so an explicit retry can re-enter the pipeline.
var (
	TranscriptionClaimStates = []Status{StatusUploaded, StatusFailed}
	SummarizationClaimStates = []Status{StatusTranscribed, StatusFailed}
)

// Valid reports whether s is one of the six pipeline statuses.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further automatic transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether moving from s to next is allowed by the
// state machine.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseStatus converts a stored string into a Status, reporting whether the
// value is one of the known states.
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	return s, s.Valid()
}

// Priority classifies the urgency of an action item.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ItemStatus tracks an action item's completion state. The pipeline only
// ever writes pending; the other states are reserved for user interaction.
type ItemStatus string

const (
	ItemStatusPending    ItemStatus = "pending"
	ItemStatusInProgress ItemStatus = "in_progress"
	ItemStatusCompleted  ItemStatus = "completed"
)

// Meeting is the top-level record tracking one uploaded recording through
// the pipeline. Exactly one Meeting exists per uploaded recording.
type Meeting struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	AudioURL        string    `json:"audio_url,omitempty"`
	AudioFilename   string    `json:"audio_filename,omitempty"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Transcript is the speech-to-text output for a meeting. Created once by
// the transcription stage and immutable afterward.
type Transcript struct {
	ID              string    `json:"id"`
	MeetingID       string    `json:"meeting_id"`
	FullText        string    `json:"full_text"`
	Language        string    `json:"language"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Summary is the text-analysis output for a meeting. Created once by the
// summarization stage and immutable afterward.
type Summary struct {
	ID           string    `json:"id"`
	MeetingID    string    `json:"meeting_id"`
	SummaryText  string    `json:"summary_text"`
	KeyDecisions []string  `json:"key_decisions"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
}

// ActionItem is a task extracted from the meeting during summarization.
type ActionItem struct {
	ID              string     `json:"id"`
	MeetingID       string     `json:"meeting_id"`
	TaskDescription string     `json:"task_description"`
	Assignee        string     `json:"assignee,omitempty"`
	DueDate         string     `json:"due_date,omitempty"`
	Priority        Priority   `json:"priority"`
	Status          ItemStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Detail is the read-only aggregate view assembled for display: the meeting
// plus its latest transcript, latest summary, and all action items.
type Detail struct {
	Meeting     *Meeting     `json:"meeting"`
	Transcript  *Transcript  `json:"transcript,omitempty"`
	Summary     *Summary     `json:"summary,omitempty"`
	ActionItems []ActionItem `json:"action_items"`
}
