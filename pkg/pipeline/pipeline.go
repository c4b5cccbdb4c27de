// Package pipeline orchestrates the meeting processing flow: audio ingest,
// transcription, and summarization. Stages claim a meeting through a
// conditional status transition so concurrent triggers cannot double-run,
// and short-circuit idempotently when the stage artifact already exists.
package pipeline

import (
	"context"

	"github.com/Rahulrocknov18/meetingsummarizer/pkg/meetings"
)

// Store is the record-store surface the pipeline needs. *meetings.Repository
// satisfies it; tests substitute a mock.
type Store interface {
	CreateMeeting(ctx context.Context, in meetings.NewMeeting) (*meetings.Meeting, error)
	GetMeeting(ctx context.Context, id string) (*meetings.Meeting, error)
	TransitionStatus(ctx context.Context, id string, from []meetings.Status, to meetings.Status) error
	MarkFailed(ctx context.Context, id string) error
	SetTranscribed(ctx context.Context, id string, durationSeconds int) error
	CreateTranscript(ctx context.Context, in meetings.NewTranscript) (*meetings.Transcript, error)
	LatestTranscript(ctx context.Context, meetingID string) (*meetings.Transcript, error)
	CreateSummary(ctx context.Context, in meetings.NewSummary) (*meetings.Summary, error)
	LatestSummary(ctx context.Context, meetingID string) (*meetings.Summary, error)
	CreateActionItem(ctx context.Context, in meetings.NewActionItem) (*meetings.ActionItem, error)
	ListActionItems(ctx context.Context, meetingID string) ([]meetings.ActionItem, error)
}
