package pipeline

import (
	"context"
	"iter"
	"slices"

	"github.com/google/uuid"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/seq"
)

// Pipeline is a lazy sequence description. No work happens until a
// terminal pulls values.
type Pipeline[T any] struct {
	create func(r *Run) seq.Iterator[T]
}

// Run is the scope of one pipeline execution.
type Run struct {
	ctx      context.Context
	id       string
	cleanups []func()
}

func newRun(ctx context.Context) *Run {
	id := uuid.NewString()
	return &Run{ctx: logger.ContextWithRunID(ctx, id), id: id}
}

// Context returns the run's context. It carries the run id for logging.
func (r *Run) Context() context.Context { return r.ctx }

// ID returns the unique id of this execution.
func (r *Run) ID() string { return r.id }

// OnClose registers fn to run when the terminal returns. Callbacks run in
// reverse registration order.
func (r *Run) OnClose(fn func()) {
	r.cleanups = append(r.cleanups, fn)
}

func (r *Run) close() {
	cleanups := r.cleanups
	r.cleanups = nil
	for _, fn := range slices.Backward(cleanups) {
		fn()
	}
}

// Runnable is a fully-configured pipeline ready to execute.
type Runnable struct {
	run func(ctx context.Context) error
}

// Run executes the pipeline until completion, error or cancellation.
func (r *Runnable) Run(ctx context.Context) error {
	return r.run(ctx)
}

// --- Constructors ---

// From creates a single-use pipeline from an existing iterator.
func From[T any](it seq.Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(*Run) seq.Iterator[T] { return it },
	}
}

// FromSlice creates a pipeline over items. It can be run any number of times.
func FromSlice[T any](items []T) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(*Run) seq.Iterator[T] { return seq.FromSlice(items) },
	}
}

// FromFunc creates a pipeline from a factory called once per run. A factory
// error is returned by the first pull.
func FromFunc[T any](fn func(ctx context.Context) (seq.Iterator[T], error)) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(r *Run) seq.Iterator[T] {
			it, err := fn(r.ctx)
			if err != nil {
				return seq.Failed[T](err)
			}
			return it
		},
	}
}

// FromSeq creates a pipeline from a push-style sequence. The coroutine
// behind it is stopped when the run ends.
func FromSeq[T any](s iter.Seq[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(r *Run) seq.Iterator[T] {
			it, stop := seq.FromSeq(s)
			r.OnClose(stop)
			return it
		},
	}
}

// Using ties cleanup to the pipeline's source. It runs exactly once per
// run: when the sequence is first seen to be exhausted, or when the
// terminal returns early.
func Using[T any](p *Pipeline[T], cleanup func()) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(r *Run) seq.Iterator[T] {
			var done bool
			once := func() {
				if !done {
					done = true
					cleanup()
				}
			}
			r.OnClose(once)
			return seq.AutoClose(p.create(r), once)
		},
	}
}

// Open creates a pipeline over a resource opened once per run. The
// returned close function runs exactly once, on exhaustion or when the run
// ends. A close error is logged.
func Open[T any](name string, open func(ctx context.Context) (seq.Iterator[T], func() error, error)) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(r *Run) seq.Iterator[T] {
			it, closeFn, err := open(r.ctx)
			if err != nil {
				return seq.Failed[T](err)
			}
			return Using(From(it), func() {
				if err := closeFn(); err != nil {
					logger.Get("pipeline").WithContext(r.ctx).Warn("close failed",
						logger.Fields(logger.FieldStage, name, logger.FieldError, err.Error()))
				}
			}).create(r)
		},
	}
}

// --- Terminals ---

// run executes p in a fresh scope and hands its iterator to consume.
func run[T any](ctx context.Context, p *Pipeline[T], consume func(r *Run, it seq.Iterator[T]) error) error {
	r := newRun(ctx)
	defer r.close()
	log := logger.Get("pipeline").WithContext(r.ctx)
	log.Debug("run started")

	err := consume(r, p.create(r))
	if err != nil {
		log.WithError(err).Debug("run failed")
		return err
	}
	log.Debug("run finished")
	return nil
}

// pull drives it until exhaustion, checking ctx before every element.
func pull[T any](ctx context.Context, it seq.Iterator[T], fn func(T) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return errors.Canceled(err)
		}
		if !it.HasNext() {
			return nil
		}
		v, err := it.Next()
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
}

// errStop ends a pull loop without an error.
var errStop = errors.New(errors.ErrCodeExhausted, "stop")

// Drain creates a Runnable that pulls all values and sends each to sink.
func Drain[T any](p *Pipeline[T], sink func(context.Context, T) error) *Runnable {
	return &Runnable{
		run: func(ctx context.Context) error {
			return run(ctx, p, func(r *Run, it seq.Iterator[T]) error {
				return pull(r.ctx, it, func(v T) error { return sink(r.ctx, v) })
			})
		},
	}
}

// ForEach pulls all values and calls fn for each.
func ForEach[T any](ctx context.Context, p *Pipeline[T], fn func(context.Context, T) error) error {
	return Drain(p, fn).Run(ctx)
}

// Collect runs the pipeline and returns all values. On error the values
// pulled so far are returned with it.
func Collect[T any](ctx context.Context, p *Pipeline[T]) ([]T, error) {
	var out []T
	err := run(ctx, p, func(r *Run, it seq.Iterator[T]) error {
		return pull(r.ctx, it, func(v T) error {
			out = append(out, v)
			return nil
		})
	})
	return out, err
}

// Count runs the pipeline and returns the number of values.
func Count[T any](ctx context.Context, p *Pipeline[T]) (int64, error) {
	var n int64
	err := run(ctx, p, func(r *Run, it seq.Iterator[T]) error {
		return pull(r.ctx, it, func(T) error {
			n++
			return nil
		})
	})
	return n, err
}

// First returns the first value, abandoning the rest of the sequence.
func First[T any](ctx context.Context, p *Pipeline[T]) (first T, ok bool, err error) {
	err = run(ctx, p, func(r *Run, it seq.Iterator[T]) error {
		return pull(r.ctx, it, func(v T) error {
			first, ok = v, true
			return errStop
		})
	})
	if err == errStop {
		err = nil
	}
	return first, ok, err
}

// Iter builds the pipeline's iterator for manual consumption. The returned
// release function ends the run and must be called once done.
func Iter[T any](ctx context.Context, p *Pipeline[T]) (seq.Iterator[T], func()) {
	r := newRun(ctx)
	return p.create(r), r.close
}
