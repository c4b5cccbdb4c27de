package pipeline

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the name of the tracer for pipeline operations.
const TracerName = "pipeline"

// Span attribute keys
const (
	AttrMeetingID  = "meeting_id"
	AttrStage      = "stage"
	AttrDurationMs = "duration_ms"
	AttrShortCut   = "short_circuit"
)

// Stage names used in span names and metric labels.
const (
	StageTranscription = "transcription"
	StageSummarization = "summarization"
)

// Tracer provides distributed tracing for pipeline stages. Without a
// configured global trace provider the spans are no-ops.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a pipeline tracer.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(TracerName)}
}

// StartStageSpan starts a span for one stage run on one meeting.
func (t *Tracer) StartStageSpan(ctx context.Context, stage, meetingID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "pipeline.stage."+stage,
		trace.WithAttributes(
			attribute.String(AttrStage, stage),
			attribute.String(AttrMeetingID, meetingID),
		),
	)
}

// EndStageSpan finalizes a stage span with its outcome.
func EndStageSpan(span trace.Span, err error, shortCircuit bool, durationMs int64) {
	span.SetAttributes(
		attribute.Bool(AttrShortCut, shortCircuit),
		attribute.Int64(AttrDurationMs, durationMs),
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
