package pipeline

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/Rahulrocknov18/meetingsummarizer/pkg/blob"
	mserrors "github.com/Rahulrocknov18/meetingsummarizer/pkg/errors"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/logging"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/meetings"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/speech"
)

// TranscriptionResult is the outcome of one transcription run.
type TranscriptionResult struct {
	Transcript      *meetings.Transcript `json:"transcript"`
	DurationSeconds float64              `json:"duration"`
	AlreadyExisted  bool                 `json:"already_existed"`
}

// TranscriptionStage turns a meeting's stored audio into a transcript.
type TranscriptionStage struct {
	store       Store
	blobs       blob.Store
	transcriber speech.Transcriber
	logger      logging.Logger
	metrics     *Metrics
	tracer      *Tracer
}

// NewTranscriptionStage wires the stage. metrics may be nil.
func NewTranscriptionStage(store Store, blobs blob.Store, transcriber speech.Transcriber, logger logging.Logger, metrics *Metrics) *TranscriptionStage {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TranscriptionStage{
		store:       store,
		blobs:       blobs,
		transcriber: transcriber,
		logger:      logger,
		metrics:     metrics,
		tracer:      NewTracer(),
	}
}

// Run transcribes the meeting's audio. A second run on the same meeting
// returns the existing transcript without calling the speech capability.
// After the stage claims the meeting, any failure (rate limiting included)
// marks it failed; the meeting can be re-claimed by triggering again.
func (s *TranscriptionStage) Run(ctx context.Context, meetingID string) (*TranscriptionResult, error) {
	start := time.Now()
	ctx, span := s.tracer.StartStageSpan(ctx, StageTranscription, meetingID)

	result, err := s.run(ctx, meetingID)

	shortCircuit := result != nil && result.AlreadyExisted
	EndStageSpan(span, err, shortCircuit, time.Since(start).Milliseconds())

	switch {
	case err != nil:
		s.metrics.ObserveStage(StageTranscription, OutcomeFailed, 0)
	case shortCircuit:
		s.metrics.ObserveStage(StageTranscription, OutcomeShortCircuit, 0)
	default:
		s.metrics.ObserveStage(StageTranscription, OutcomeCompleted, time.Since(start).Seconds())
	}
	return result, err
}

func (s *TranscriptionStage) run(ctx context.Context, meetingID string) (*TranscriptionResult, error) {
	m, err := s.store.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if m.AudioURL == "" {
		return nil, fmt.Errorf("%w: no audio file found for this meeting", mserrors.ErrValidation)
	}

	// Idempotency: a transcript already recorded means a previous run won.
	existing, err := s.store.LatestTranscript(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Info("transcript already exists",
			logging.F("meeting_id", meetingID),
			logging.F("transcript_id", existing.ID))
		duration := 0.0
		if m.DurationSeconds != nil {
			duration = float64(*m.DurationSeconds)
		}
		return &TranscriptionResult{Transcript: existing, DurationSeconds: duration, AlreadyExisted: true}, nil
	}

	if err := s.store.TransitionStatus(ctx, meetingID, meetings.TranscriptionClaimStates, meetings.StatusTranscribing); err != nil {
		return nil, err
	}

	audio, err := s.blobs.Open(ctx, m.AudioURL)
	if err != nil {
		return nil, s.fail(ctx, meetingID, fmt.Errorf("download audio: %w", err))
	}
	payload, err := io.ReadAll(audio)
	audio.Close()
	if err != nil {
		return nil, s.fail(ctx, meetingID, fmt.Errorf("read audio: %w", err))
	}

	res, err := s.transcriber.Transcribe(ctx, speech.Request{
		Filename: m.AudioFilename,
		Payload:  payload,
		Language: "en",
	})
	if err != nil {
		return nil, s.fail(ctx, meetingID, err)
	}

	transcript, err := s.store.CreateTranscript(ctx, meetings.NewTranscript{
		MeetingID:       meetingID,
		FullText:        res.Text,
		Language:        res.Language,
		ConfidenceScore: res.Confidence,
	})
	if err != nil {
		return nil, s.fail(ctx, meetingID, err)
	}

	durationSeconds := int(math.Round(res.DurationSeconds))
	if err := s.store.SetTranscribed(ctx, meetingID, durationSeconds); err != nil {
		return nil, s.fail(ctx, meetingID, err)
	}

	s.logger.Info("meeting transcribed",
		logging.F("meeting_id", meetingID),
		logging.F("transcript_id", transcript.ID),
		logging.F("duration_seconds", durationSeconds))

	return &TranscriptionResult{Transcript: transcript, DurationSeconds: res.DurationSeconds}, nil
}

// fail marks the claimed meeting failed and passes the stage error through.
func (s *TranscriptionStage) fail(ctx context.Context, meetingID string, stageErr error) error {
	if err := s.store.MarkFailed(ctx, meetingID); err != nil {
		s.logger.Error("failed to mark meeting as failed",
			logging.Err(err),
			logging.F("meeting_id", meetingID))
	}
	return stageErr
}
