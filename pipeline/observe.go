package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
	"github.com/kbukum/seqkit/seq"
)

// stageObserver receives the lifecycle of one stage within one run.
type stageObserver interface {
	start(ctx context.Context)
	finish(ctx context.Context, elements int64, d time.Duration, err error)
}

// observe wraps p so that obs sees the first pull, each element and the
// end of the stage. A stage abandoned before exhaustion is finished when
// the run closes, with the run's context error if any.
func observe[T any](p *Pipeline[T], newObserver func(r *Run) stageObserver) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(r *Run) seq.Iterator[T] {
			it := &stageIter[T]{source: p.create(r), ctx: r.ctx, obs: newObserver(r)}
			r.OnClose(func() {
				err := it.err
				if err == nil && r.ctx.Err() != nil {
					err = errors.Canceled(r.ctx.Err())
				}
				it.finish(err)
			})
			return it
		},
	}
}

type stageIter[T any] struct {
	source   seq.Iterator[T]
	ctx      context.Context
	obs      stageObserver
	began    time.Time
	elements int64
	err      error
	started  bool
	finished bool
}

func (it *stageIter[T]) begin() {
	if !it.started {
		it.started = true
		it.began = time.Now()
		it.obs.start(it.ctx)
	}
}

func (it *stageIter[T]) finish(err error) {
	if !it.started || it.finished {
		return
	}
	it.finished = true
	it.obs.finish(it.ctx, it.elements, time.Since(it.began), err)
}

func (it *stageIter[T]) HasNext() bool {
	it.begin()
	if it.source.HasNext() {
		return true
	}
	it.finish(it.err)
	return false
}

func (it *stageIter[T]) Next() (T, error) {
	it.begin()
	v, err := it.source.Next()
	if err != nil {
		if it.err == nil {
			it.err = err
		}
		return v, err
	}
	it.elements++
	return v, nil
}

// WithLogging logs the stage at debug level when it starts and ends, and
// at error level when it ends with an error.
func WithLogging[T any](p *Pipeline[T], stage string) *Pipeline[T] {
	return observe(p, func(*Run) stageObserver {
		return &logObserver{stage: stage, log: logger.Get("pipeline")}
	})
}

type logObserver struct {
	stage string
	log   *logger.Logger
}

func (o *logObserver) start(ctx context.Context) {
	o.log.WithContext(ctx).Debug("stage started", logger.Fields(logger.FieldStage, o.stage))
}

func (o *logObserver) finish(ctx context.Context, elements int64, d time.Duration, err error) {
	log := o.log.WithContext(ctx)
	if err != nil {
		log.Error("stage failed", logger.StageFields(o.stage, elements, d), logger.ErrorFields(o.stage, err))
		return
	}
	log.Debug("stage finished", logger.StageFields(o.stage, elements, d))
}

// WithMetrics records active count, element count, duration and errors of
// the stage on m.
func WithMetrics[T any](p *Pipeline[T], stage string, m *observability.Metrics) *Pipeline[T] {
	if m == nil {
		return p
	}
	return observe(p, func(*Run) stageObserver {
		return &metricsObserver{stage: stage, metrics: m}
	})
}

type metricsObserver struct {
	stage   string
	metrics *observability.Metrics
}

func (o *metricsObserver) start(ctx context.Context) {
	o.metrics.RecordStageStart(ctx, o.stage)
}

func (o *metricsObserver) finish(ctx context.Context, elements int64, d time.Duration, err error) {
	o.metrics.RecordStageEnd(ctx, o.stage, elements, observability.StatusFor(err), d)
	if err != nil {
		o.metrics.RecordError(ctx, observability.ErrorCode(err), o.stage)
	}
}

// WithTracing opens a span for the stage, from its first pull to its end.
func WithTracing[T any](p *Pipeline[T], service, stage string) *Pipeline[T] {
	return observe(p, func(r *Run) stageObserver {
		return &traceObserver{tracker: observability.NewStageTracker(service, stage, r.ID(), nil)}
	})
}

type traceObserver struct {
	tracker *observability.StageTracker
	span    trace.Span
	ctx     context.Context
}

func (o *traceObserver) start(ctx context.Context) {
	o.ctx, o.span = o.tracker.Start(ctx)
}

func (o *traceObserver) finish(_ context.Context, elements int64, _ time.Duration, err error) {
	o.tracker.End(o.ctx, o.span, elements, err)
}
