package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/Rahulrocknov18/meetingsummarizer/pkg/analysis"
	mserrors "github.com/Rahulrocknov18/meetingsummarizer/pkg/errors"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/logging"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/meetings"
)

// SummarizationResult is the outcome of one summarization run.
type SummarizationResult struct {
	Summary        *meetings.Summary     `json:"summary"`
	ActionItems    []meetings.ActionItem `json:"action_items"`
	AlreadyExisted bool                  `json:"already_existed"`
}

// SummarizationStage turns a meeting's transcript into a summary with
// extracted action items.
type SummarizationStage struct {
	store    Store
	analyzer analysis.Analyzer
	logger   logging.Logger
	metrics  *Metrics
	tracer   *Tracer
}

// NewSummarizationStage wires the stage. metrics may be nil.
func NewSummarizationStage(store Store, analyzer analysis.Analyzer, logger logging.Logger, metrics *Metrics) *SummarizationStage {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SummarizationStage{
		store:    store,
		analyzer: analyzer,
		logger:   logger,
		metrics:  metrics,
		tracer:   NewTracer(),
	}
}

// Run summarizes the meeting's latest transcript. A second run returns the
// existing summary without calling the analysis capability. A meeting with
// no transcript fails with a not-found condition and its status is left
// untouched. Action-item persistence is partial-success: a bad item is
// logged and skipped, the summary still completes.
func (s *SummarizationStage) Run(ctx context.Context, meetingID string) (*SummarizationResult, error) {
	start := time.Now()
	ctx, span := s.tracer.StartStageSpan(ctx, StageSummarization, meetingID)

	result, err := s.run(ctx, meetingID)

	shortCircuit := result != nil && result.AlreadyExisted
	EndStageSpan(span, err, shortCircuit, time.Since(start).Milliseconds())

	switch {
	case err != nil:
		s.metrics.ObserveStage(StageSummarization, OutcomeFailed, 0)
	case shortCircuit:
		s.metrics.ObserveStage(StageSummarization, OutcomeShortCircuit, 0)
	default:
		s.metrics.ObserveStage(StageSummarization, OutcomeCompleted, time.Since(start).Seconds())
	}
	return result, err
}

func (s *SummarizationStage) run(ctx context.Context, meetingID string) (*SummarizationResult, error) {
	if _, err := s.store.GetMeeting(ctx, meetingID); err != nil {
		return nil, err
	}

	existing, err := s.store.LatestSummary(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		items, err := s.store.ListActionItems(ctx, meetingID)
		if err != nil {
			return nil, err
		}
		s.logger.Info("summary already exists",
			logging.F("meeting_id", meetingID),
			logging.F("summary_id", existing.ID))
		return &SummarizationResult{Summary: existing, ActionItems: items, AlreadyExisted: true}, nil
	}

	transcript, err := s.store.LatestTranscript(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if transcript == nil {
		return nil, fmt.Errorf("%w: transcript not available, the transcription may still be in progress", mserrors.ErrNotFound)
	}

	if err := s.store.TransitionStatus(ctx, meetingID, meetings.SummarizationClaimStates, meetings.StatusSummarizing); err != nil {
		return nil, err
	}

	res, err := s.analyzer.Analyze(ctx, transcript.FullText)
	if err != nil {
		return nil, s.fail(ctx, meetingID, err)
	}

	summary, err := s.store.CreateSummary(ctx, meetings.NewSummary{
		MeetingID:    meetingID,
		SummaryText:  res.Summary,
		KeyDecisions: res.KeyDecisions,
		Participants: res.Participants,
	})
	if err != nil {
		return nil, s.fail(ctx, meetingID, err)
	}

	for _, item := range res.ActionItems {
		_, err := s.store.CreateActionItem(ctx, meetings.NewActionItem{
			MeetingID:       meetingID,
			TaskDescription: item.Task,
			Assignee:        item.Assignee,
			DueDate:         item.DueDate,
			Priority:        meetings.Priority(item.Priority),
		})
		if err != nil {
			s.logger.Error("failed to save action item",
				logging.Err(err),
				logging.F("meeting_id", meetingID),
				logging.F("task", item.Task))
		}
	}

	if err := s.store.TransitionStatus(ctx, meetingID, []meetings.Status{meetings.StatusSummarizing}, meetings.StatusCompleted); err != nil {
		return nil, s.fail(ctx, meetingID, err)
	}

	items, err := s.store.ListActionItems(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("meeting summarized",
		logging.F("meeting_id", meetingID),
		logging.F("summary_id", summary.ID),
		logging.F("action_items", len(items)))

	return &SummarizationResult{Summary: summary, ActionItems: items}, nil
}

func (s *SummarizationStage) fail(ctx context.Context, meetingID string, stageErr error) error {
	if err := s.store.MarkFailed(ctx, meetingID); err != nil {
		s.logger.Error("failed to mark meeting as failed",
			logging.Err(err),
			logging.F("meeting_id", meetingID))
	}
	return stageErr
}
