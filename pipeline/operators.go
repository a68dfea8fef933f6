package pipeline

import (
	"context"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/seq"
)

// Map transforms each value using fn. An error from fn is returned by the
// Next that produced it.
func Map[I, O any](p *Pipeline[I], fn func(context.Context, I) (O, error)) *Pipeline[O] {
	return &Pipeline[O]{
		create: func(r *Run) seq.Iterator[O] {
			return seq.TryMap(p.create(r), func(v I) (O, error) { return fn(r.ctx, v) })
		},
	}
}

// FlatMap transforms each value into an iterator and flattens the results.
func FlatMap[I, O any](p *Pipeline[I], fn func(context.Context, I) (seq.Iterator[O], error)) *Pipeline[O] {
	return &Pipeline[O]{
		create: func(r *Run) seq.Iterator[O] {
			return seq.FlatMap(p.create(r), func(v I) seq.Iterator[O] {
				it, err := fn(r.ctx, v)
				if err != nil {
					return seq.Failed[O](err)
				}
				return it
			})
		},
	}
}

// Filter keeps only values that satisfy pred.
func Filter[T any](p *Pipeline[T], pred func(T) bool) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(r *Run) seq.Iterator[T] { return seq.Filter(p.create(r), pred) },
	}
}

// Tap calls fn for each value, then passes the value through unchanged.
func Tap[T any](p *Pipeline[T], fn func(context.Context, T) error) *Pipeline[T] {
	return Map(p, func(ctx context.Context, v T) (T, error) {
		if err := fn(ctx, v); err != nil {
			var zero T
			return zero, err
		}
		return v, nil
	})
}

// Limit truncates the pipeline to at most n values. It panics if n < 0.
func Limit[T any](p *Pipeline[T], n int) *Pipeline[T] {
	if n < 0 {
		panic(errors.InvalidArgument("limit", "must not be negative"))
	}
	return &Pipeline[T]{
		create: func(r *Run) seq.Iterator[T] { return seq.Limit(p.create(r), n) },
	}
}

// Sample keeps each value with probability step/max. Every run uses a
// fresh generator seeded with seed, so runs are reproducible.
func Sample[T any](p *Pipeline[T], step, max int, seed uint64) *Pipeline[T] {
	if step < 0 || max <= 0 {
		panic(errors.InvalidArgument("sample", "requires step >= 0 and max > 0"))
	}
	return &Pipeline[T]{
		create: func(r *Run) seq.Iterator[T] { return seq.SampleSeed(p.create(r), step, max, seed) },
	}
}

// Batch groups values into slices of at most size elements.
func Batch[T any](p *Pipeline[T], size int) *Pipeline[[]T] {
	if size <= 0 {
		panic(errors.InvalidArgument("batch size", "must be positive"))
	}
	return &Pipeline[[]T]{
		create: func(r *Run) seq.Iterator[[]T] { return seq.Batch(p.create(r), size) },
	}
}

// Concat joins pipelines sequentially. Each pipeline is only created once
// the previous one is exhausted.
func Concat[T any](pipelines ...*Pipeline[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(r *Run) seq.Iterator[T] {
			parts := seq.Map(seq.FromSlice(pipelines), func(p *Pipeline[T]) seq.Iterator[T] {
				return p.create(r)
			})
			return seq.Concat(parts)
		},
	}
}

// Reduce folds all values into a single result. The pipeline yields
// exactly one value, even when the input is empty.
func Reduce[T, R any](p *Pipeline[T], init R, fn func(R, T) R) *Pipeline[R] {
	return &Pipeline[R]{
		create: func(r *Run) seq.Iterator[R] {
			return &reduceIter[T, R]{source: p.create(r), acc: init, fn: fn}
		},
	}
}

type reduceIter[T, R any] struct {
	source seq.Iterator[T]
	acc    R
	fn     func(R, T) R
	done   bool
}

func (it *reduceIter[T, R]) HasNext() bool { return !it.done }

func (it *reduceIter[T, R]) Next() (R, error) {
	if it.done {
		var zero R
		return zero, errors.Exhausted()
	}
	for it.source.HasNext() {
		v, err := it.source.Next()
		if err != nil {
			var zero R
			return zero, err
		}
		it.acc = it.fn(it.acc, v)
	}
	it.done = true
	return it.acc, nil
}
