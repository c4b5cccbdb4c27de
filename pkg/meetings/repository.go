package meetings

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	mserrors "github.com/Rahulrocknov18/meetingsummarizer/pkg/errors"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/logging"
)

// Repository provides database operations over the meetings, transcripts,
// summaries, and action_items tables.
type Repository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewRepository creates a new meetings repository.
func NewRepository(pool *pgxpool.Pool, logger logging.Logger) *Repository {
	return &Repository{
		pool:   pool,
		logger: logger.With(logging.F("component", "meetings_repository")),
	}
}

// NewMeeting describes the fields needed to create a meeting record.
type NewMeeting struct {
	Title         string
	AudioURL      string
	AudioFilename string
}

// CreateMeeting inserts a new meeting in the uploaded state and returns it.
func (r *Repository) CreateMeeting(ctx context.Context, in NewMeeting) (*Meeting, error) {
	query := `
		INSERT INTO meetings (id, title, audio_url, audio_filename, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	m := &Meeting{
		ID:            uuid.NewString(),
		Title:         in.Title,
		AudioURL:      in.AudioURL,
		AudioFilename: in.AudioFilename,
		Status:        StatusUploaded,
	}

	err := r.pool.QueryRow(ctx, query,
		m.ID, m.Title, m.AudioURL, m.AudioFilename, m.Status,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create meeting",
			logging.Err(err),
			logging.F("title", in.Title))
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	r.logger.Debug("Meeting created",
		logging.F("meeting_id", m.ID),
		logging.F("title", m.Title))

	return m, nil
}

// GetMeeting retrieves a meeting by ID.
func (r *Repository) GetMeeting(ctx context.Context, id string) (*Meeting, error) {
	query := `
		SELECT id, title, COALESCE(audio_url, ''), COALESCE(audio_filename, ''),
		       duration_seconds, status, created_at, updated_at
		FROM meetings
		WHERE id = $1
	`

	m := &Meeting{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.Title,
		&m.AudioURL,
		&m.AudioFilename,
		&m.DurationSeconds,
		&m.Status,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("meeting %s: %w", id, mserrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting %s: %w", id, err)
	}

	return m, nil
}

// ListMeetings returns all meetings, newest first.
func (r *Repository) ListMeetings(ctx context.Context) ([]*Meeting, error) {
	query := `
		SELECT id, title, COALESCE(audio_url, ''), COALESCE(audio_filename, ''),
		       duration_seconds, status, created_at, updated_at
		FROM meetings
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()

	var result []*Meeting
	for rows.Next() {
		m := &Meeting{}
		if err := rows.Scan(
			&m.ID, &m.Title, &m.AudioURL, &m.AudioFilename,
			&m.DurationSeconds, &m.Status, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meetings: %w", err)
	}

	return result, nil
}

// TransitionStatus moves a meeting to the given status, but only if its
// current status is one of from. The conditional write makes the claim a
// mutual-exclusion primitive: of two near-simultaneous callers, only one
// sees a row updated. A zero-row update maps to ErrInvalidState (or
// ErrNotFound when the meeting does not exist).
func (r *Repository) TransitionStatus(ctx context.Context, id string, from []Status, to Status) error {
	query := `
		UPDATE meetings
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = ANY($2)
	`

	fromStrs := make([]string, len(from))
	for i, s := range from {
		fromStrs[i] = string(s)
	}

	result, err := r.pool.Exec(ctx, query, id, fromStrs, to)
	if err != nil {
		return fmt.Errorf("failed to update meeting %s status: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		current, getErr := r.GetMeeting(ctx, id)
		if getErr != nil {
			return getErr
		}
		return fmt.Errorf("meeting %s is %s, expected one of %v: %w",
			id, current.Status, from, mserrors.ErrInvalidState)
	}

	r.logger.Debug("Meeting status updated",
		logging.F("meeting_id", id),
		logging.F("status", string(to)))

	return nil
}

// MarkFailed forces a meeting into the failed state regardless of its
// current in-progress status. Used by stages when an external call or a
// persistence step fails.
func (r *Repository) MarkFailed(ctx context.Context, id string) error {
	query := `
		UPDATE meetings
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, StatusFailed)
	if err != nil {
		return fmt.Errorf("failed to mark meeting %s failed: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("meeting %s: %w", id, mserrors.ErrNotFound)
	}

	r.logger.Debug("Meeting marked failed", logging.F("meeting_id", id))
	return nil
}

// SetTranscribed records a successful transcription: the meeting's duration
// in whole seconds and the transcribed status, in one write.
func (r *Repository) SetTranscribed(ctx context.Context, id string, durationSeconds int) error {
	query := `
		UPDATE meetings
		SET status = $2, duration_seconds = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, StatusTranscribed, durationSeconds)
	if err != nil {
		return fmt.Errorf("failed to set meeting %s transcribed: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("meeting %s: %w", id, mserrors.ErrNotFound)
	}

	r.logger.Debug("Meeting transcribed",
		logging.F("meeting_id", id),
		logging.F("duration_seconds", durationSeconds))

	return nil
}

// NewTranscript describes the fields needed to persist a transcript.
type NewTranscript struct {
	MeetingID       string
	FullText        string
	Language        string
	ConfidenceScore *float64
}

// CreateTranscript inserts a transcript for a meeting and returns it.
func (r *Repository) CreateTranscript(ctx context.Context, in NewTranscript) (*Transcript, error) {
	query := `
		INSERT INTO transcripts (id, meeting_id, full_text, language, confidence_score, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	tr := &Transcript{
		ID:              uuid.NewString(),
		MeetingID:       in.MeetingID,
		FullText:        in.FullText,
		Language:        in.Language,
		ConfidenceScore: in.ConfidenceScore,
	}

	err := r.pool.QueryRow(ctx, query,
		tr.ID, tr.MeetingID, tr.FullText, tr.Language, tr.ConfidenceScore,
	).Scan(&tr.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create transcript",
			logging.Err(err),
			logging.F("meeting_id", in.MeetingID))
		return nil, fmt.Errorf("failed to create transcript: %w", err)
	}

	r.logger.Debug("Transcript created",
		logging.F("transcript_id", tr.ID),
		logging.F("meeting_id", tr.MeetingID))

	return tr, nil
}

// LatestTranscript returns the most recent transcript for a meeting, or
// nil when none exists. The pipeline only ever writes one transcript per
// meeting, but the contract tolerates multiples and takes the newest.
func (r *Repository) LatestTranscript(ctx context.Context, meetingID string) (*Transcript, error) {
	query := `
		SELECT id, meeting_id, full_text, language, confidence_score, created_at
		FROM transcripts
		WHERE meeting_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	tr := &Transcript{}
	err := r.pool.QueryRow(ctx, query, meetingID).Scan(
		&tr.ID, &tr.MeetingID, &tr.FullText, &tr.Language, &tr.ConfidenceScore, &tr.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript for meeting %s: %w", meetingID, err)
	}

	return tr, nil
}

// NewSummary describes the fields needed to persist a summary.
type NewSummary struct {
	MeetingID    string
	SummaryText  string
	KeyDecisions []string
	Participants []string
}

// CreateSummary inserts a summary for a meeting and returns it.
func (r *Repository) CreateSummary(ctx context.Context, in NewSummary) (*Summary, error) {
	query := `
		INSERT INTO summaries (id, meeting_id, summary_text, key_decisions, participants, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	s := &Summary{
		ID:           uuid.NewString(),
		MeetingID:    in.MeetingID,
		SummaryText:  in.SummaryText,
		KeyDecisions: in.KeyDecisions,
		Participants: in.Participants,
	}
	if s.KeyDecisions == nil {
		s.KeyDecisions = []string{}
	}
	if s.Participants == nil {
		s.Participants = []string{}
	}

	err := r.pool.QueryRow(ctx, query,
		s.ID, s.MeetingID, s.SummaryText, s.KeyDecisions, s.Participants,
	).Scan(&s.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create summary",
			logging.Err(err),
			logging.F("meeting_id", in.MeetingID))
		return nil, fmt.Errorf("failed to create summary: %w", err)
	}

	r.logger.Debug("Summary created",
		logging.F("summary_id", s.ID),
		logging.F("meeting_id", s.MeetingID))

	return s, nil
}

// LatestSummary returns the most recent summary for a meeting, or nil when
// none exists.
func (r *Repository) LatestSummary(ctx context.Context, meetingID string) (*Summary, error) {
	query := `
		SELECT id, meeting_id, summary_text, key_decisions, participants, created_at
		FROM summaries
		WHERE meeting_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	s := &Summary{}
	err := r.pool.QueryRow(ctx, query, meetingID).Scan(
		&s.ID, &s.MeetingID, &s.SummaryText, &s.KeyDecisions, &s.Participants, &s.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary for meeting %s: %w", meetingID, err)
	}

	return s, nil
}

// NewActionItem describes the fields needed to persist one action item.
type NewActionItem struct {
	MeetingID       string
	TaskDescription string
	Assignee        string
	DueDate         string
	Priority        Priority
}

// CreateActionItem inserts a single action item in the pending state.
func (r *Repository) CreateActionItem(ctx context.Context, in NewActionItem) (*ActionItem, error) {
	priority := in.Priority
	if !priority.Valid() {
		priority = PriorityMedium
	}

	// Empty optional fields become NULL.
	var assignee, dueDate interface{}
	if in.Assignee != "" {
		assignee = in.Assignee
	}
	if in.DueDate != "" {
		dueDate = in.DueDate
	}

	query := `
		INSERT INTO action_items (id, meeting_id, task_description, assignee, due_date, priority, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	item := &ActionItem{
		ID:              uuid.NewString(),
		MeetingID:       in.MeetingID,
		TaskDescription: in.TaskDescription,
		Assignee:        in.Assignee,
		DueDate:         in.DueDate,
		Priority:        priority,
		Status:          ItemStatusPending,
	}

	err := r.pool.QueryRow(ctx, query,
		item.ID, item.MeetingID, item.TaskDescription, assignee, dueDate, item.Priority, item.Status,
	).Scan(&item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create action item: %w", err)
	}

	return item, nil
}

// ListActionItems returns all action items for a meeting in creation order.
func (r *Repository) ListActionItems(ctx context.Context, meetingID string) ([]ActionItem, error) {
	query := `
		SELECT id, meeting_id, task_description, COALESCE(assignee, ''),
		       COALESCE(due_date, ''), priority, status, created_at
		FROM action_items
		WHERE meeting_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list action items for meeting %s: %w", meetingID, err)
	}
	defer rows.Close()

	items := []ActionItem{}
	for rows.Next() {
		var item ActionItem
		if err := rows.Scan(
			&item.ID, &item.MeetingID, &item.TaskDescription, &item.Assignee,
			&item.DueDate, &item.Priority, &item.Status, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan action item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating action items: %w", err)
	}

	return items, nil
}

// GetDetail assembles the read-only aggregate view: the meeting plus its
// latest transcript, latest summary, and all action items. Purely additive;
// no state mutation.
func (r *Repository) GetDetail(ctx context.Context, meetingID string) (*Detail, error) {
	m, err := r.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	tr, err := r.LatestTranscript(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	s, err := r.LatestSummary(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	items, err := r.ListActionItems(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	return &Detail{
		Meeting:     m,
		Transcript:  tr,
		Summary:     s,
		ActionItems: items,
	}, nil
}

