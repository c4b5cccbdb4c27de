// Package poller drives a meeting through the pipeline from the client
// side: it polls the meeting status on a fixed interval and triggers the
// next stage when the previous one has landed.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rahulrocknov18/meetingsummarizer/client"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/logging"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/meetings"
)

// DefaultInterval is the poll cadence.
const DefaultInterval = 3 * time.Second

// ErrProcessingFailed reports that the meeting ended in the failed state.
var ErrProcessingFailed = errors.New("meeting processing failed")

// MeetingAPI is the client surface the poller needs. *client.Client
// satisfies it.
type MeetingAPI interface {
	GetMeeting(ctx context.Context, id string) (*meetings.Detail, error)
	TriggerTranscription(ctx context.Context, id string) (*client.TranscriptionResponse, error)
	TriggerSummarization(ctx context.Context, id string) (*client.SummarizationResponse, error)
}

// Poller follows one meeting until it completes or fails.
type Poller struct {
	api      MeetingAPI
	interval time.Duration
	logger   logging.Logger
}

// New creates a poller. A non-positive interval falls back to the default.
func New(api MeetingAPI, interval time.Duration, logger logging.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Poller{api: api, interval: interval, logger: logger}
}

// Follow polls the meeting and triggers the next stage on each observed
// status: transcription on uploaded, summarization on transcribed. Each
// stage is triggered at most once per Follow call. It returns the final
// detail view on completion, ErrProcessingFailed when the meeting lands
// in the failed state, a trigger error (rate limiting included) as soon
// as one occurs, and ctx.Err() on cancellation.
func (p *Poller) Follow(ctx context.Context, meetingID string) (*meetings.Detail, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	triggered := make(map[meetings.Status]bool)

	for {
		detail, err := p.api.GetMeeting(ctx, meetingID)
		if err != nil {
			return nil, err
		}

		status := detail.Meeting.Status
		p.logger.Debug("poll tick",
			logging.F("meeting_id", meetingID),
			logging.F("status", string(status)))

		switch status {
		case meetings.StatusCompleted:
			return detail, nil

		case meetings.StatusFailed:
			return detail, fmt.Errorf("%w: meeting %s", ErrProcessingFailed, meetingID)

		case meetings.StatusUploaded:
			if !triggered[status] {
				triggered[status] = true
				if _, err := p.api.TriggerTranscription(ctx, meetingID); err != nil {
					return detail, err
				}
				continue
			}

		case meetings.StatusTranscribed:
			if !triggered[status] {
				triggered[status] = true
				if _, err := p.api.TriggerSummarization(ctx, meetingID); err != nil {
					return detail, err
				}
				continue
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
