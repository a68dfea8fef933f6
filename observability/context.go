package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/seqkit/errors"
)

// StageTracker follows one pipeline stage from its first pull to its end.
type StageTracker struct {
	ServiceName string
	Stage       string
	RunID       string
	StartTime   time.Time
	Metrics     *Metrics
}

// NewStageTracker creates a tracker. If metrics is nil, metric recording
// is skipped.
func NewStageTracker(serviceName, stage, runID string, metrics *Metrics) *StageTracker {
	return &StageTracker{
		ServiceName: serviceName,
		Stage:       stage,
		RunID:       runID,
		Metrics:     metrics,
	}
}

type stageTrackerKey struct{}

// WithStageTracker stores a StageTracker in the context.
func WithStageTracker(ctx context.Context, st *StageTracker) context.Context {
	return context.WithValue(ctx, stageTrackerKey{}, st)
}

// StageTrackerFromContext returns the StageTracker in ctx, or nil.
func StageTrackerFromContext(ctx context.Context) *StageTracker {
	if st, ok := ctx.Value(stageTrackerKey{}).(*StageTracker); ok {
		return st
	}
	return nil
}

// Start records the start time, opens a span and marks the stage active.
func (st *StageTracker) Start(ctx context.Context) (context.Context, trace.Span) {
	st.StartTime = time.Now()
	ctx, span := StartSpan(ctx, SpanPipelineStage)
	span.SetAttributes(
		attribute.String(AttrServiceName, st.ServiceName),
		attribute.String(AttrStage, st.Stage),
	)
	if st.RunID != "" {
		span.SetAttributes(attribute.String(AttrRunID, st.RunID))
	}
	if st.Metrics != nil {
		st.Metrics.RecordStageStart(ctx, st.Stage)
	}
	return WithStageTracker(ctx, st), span
}

// End closes the span and records the stage outcome.
func (st *StageTracker) End(ctx context.Context, span trace.Span, elements int64, err error) {
	duration := st.Duration()
	status := StatusFor(err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(
			attribute.String(AttrErrorMessage, err.Error()),
			attribute.String(AttrErrorCode, ErrorCode(err)),
		)
	}
	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrElements, elements),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if st.Metrics != nil {
		st.Metrics.RecordStageEnd(ctx, st.Stage, elements, status, duration)
		if err != nil {
			st.Metrics.RecordError(ctx, ErrorCode(err), st.Stage)
		}
	}
}

// Duration returns the time elapsed since Start.
func (st *StageTracker) Duration() time.Duration {
	if st.StartTime.IsZero() {
		return 0
	}
	return time.Since(st.StartTime)
}

// StatusFor maps a stage error to a status attribute value.
func StatusFor(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
		apperrors.IsCode(err, apperrors.ErrCodeCanceled):
		return StatusCancelled
	default:
		return StatusError
	}
}

// ErrorCode returns the AppError code of err, or INTERNAL_ERROR.
func ErrorCode(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return string(apperrors.ErrCodeInternal)
}
