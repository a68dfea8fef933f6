package seq

import (
	"math/rand/v2"

	"github.com/kbukum/seqkit/errors"
)

// Map transforms each value with fn.
func Map[I, O any](it Iterator[I], fn func(I) O) Iterator[O] {
	if it == nil {
		invalidArgument("iterator", "is nil")
	}
	if fn == nil {
		invalidArgument("fn", "is nil")
	}
	return &mapIter[I, O]{source: it, fn: fn}
}

// TryMap transforms each value with a function that may fail. The
// function's error is returned from Next unchanged.
func TryMap[I, O any](it Iterator[I], fn func(I) (O, error)) Iterator[O] {
	if it == nil {
		invalidArgument("iterator", "is nil")
	}
	if fn == nil {
		invalidArgument("fn", "is nil")
	}
	return &tryMapIter[I, O]{source: it, fn: fn}
}

// Filter keeps only values that satisfy pred. The matched value is cached
// by HasNext, so the result also supports Peek.
func Filter[T any](it Iterator[T], pred func(T) bool) Peekable[T] {
	if it == nil {
		invalidArgument("iterator", "is nil")
	}
	if pred == nil {
		invalidArgument("pred", "is nil")
	}
	return &filterIter[T]{source: it, pred: pred}
}

// FlatMap maps each value to a child iterator and yields every child in
// turn. A nil child surfaces as an INVARIANT_VIOLATION error.
func FlatMap[I, O any](it Iterator[I], fn func(I) Iterator[O]) Iterator[O] {
	if fn == nil {
		invalidArgument("fn", "is nil")
	}
	return &concatIter[O]{outer: Map(it, fn), op: "flatMap"}
}

// Concat flattens an iterator of iterators in order, advancing to the next
// child only once the current one is exhausted.
func Concat[T any](its Iterator[Iterator[T]]) Iterator[T] {
	if its == nil {
		invalidArgument("iterators", "is nil")
	}
	return &concatIter[T]{outer: its, op: "concat"}
}

// ConcatAll yields all values of each iterator in argument order.
func ConcatAll[T any](its ...Iterator[T]) Iterator[T] {
	return Concat[T](FromSlice(its))
}

// Limit yields at most n values.
func Limit[T any](it Iterator[T], n int) Iterator[T] {
	if it == nil {
		invalidArgument("iterator", "is nil")
	}
	if n < 0 {
		invalidArgument("limit", "must be >= 0")
	}
	return &limitIter[T]{source: it, limit: n}
}

// Rand is the random source used by Sample. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	IntN(n int) int
}

// Sample keeps each value independently with probability step/max: a value
// is retained when rng.IntN(max) < step. A step of 0 keeps nothing and a
// step >= max keeps everything.
func Sample[T any](it Iterator[T], step, max int, rng Rand) Peekable[T] {
	if step < 0 {
		invalidArgument("step", "must be >= 0")
	}
	if max <= 0 {
		invalidArgument("max", "must be > 0")
	}
	if rng == nil {
		invalidArgument("rng", "is nil")
	}
	return Filter(it, func(T) bool { return rng.IntN(max) < step })
}

// SampleSeed is Sample with a deterministic PCG source derived from seed.
func SampleSeed[T any](it Iterator[T], step, max int, seed uint64) Peekable[T] {
	return Sample(it, step, max, rand.New(rand.NewPCG(seed, seed)))
}

// ZipIndex pairs each value with a counter starting at start.
func ZipIndex[T any](it Iterator[T], start int64) Iterator[Indexed[T]] {
	i := start
	return Map(it, func(v T) Indexed[T] {
		out := Indexed[T]{Value: v, Index: i}
		i++
		return out
	})
}

// AutoClose runs cleanup exactly once, the first time the wrapped iterator
// is observed to be exhausted: either by HasNext or right after the Next
// that yields the last value. Abandoning the iterator early never runs it.
func AutoClose[T any](it Iterator[T], cleanup func()) Iterator[T] {
	if it == nil {
		invalidArgument("iterator", "is nil")
	}
	if cleanup == nil {
		invalidArgument("cleanup", "is nil")
	}
	return &autoCloseIter[T]{source: it, cleanup: cleanup}
}

// Batch groups consecutive values into slices of up to size values. The
// last batch may be shorter.
func Batch[T any](it Iterator[T], size int) Iterator[[]T] {
	if it == nil {
		invalidArgument("iterator", "is nil")
	}
	if size <= 0 {
		invalidArgument("size", "must be > 0")
	}
	return &batchIter[T]{source: it, size: size}
}

// Failed returns an iterator that yields err once from Next.
func Failed[T any](err error) Iterator[T] {
	if err == nil {
		invalidArgument("err", "is nil")
	}
	return &failedIter[T]{err: err}
}

// --- Iterator implementations ---

type mapIter[I, O any] struct {
	source Iterator[I]
	fn     func(I) O
}

func (it *mapIter[I, O]) HasNext() bool { return it.source.HasNext() }

func (it *mapIter[I, O]) Next() (O, error) {
	v, err := it.source.Next()
	if err != nil {
		var zero O
		return zero, err
	}
	return it.fn(v), nil
}

type tryMapIter[I, O any] struct {
	source Iterator[I]
	fn     func(I) (O, error)
}

func (it *tryMapIter[I, O]) HasNext() bool { return it.source.HasNext() }

func (it *tryMapIter[I, O]) Next() (O, error) {
	v, err := it.source.Next()
	if err != nil {
		var zero O
		return zero, err
	}
	return it.fn(v)
}

type filterIter[T any] struct {
	source Iterator[T]
	pred   func(T) bool
	value  T
	ready  bool
	err    error
}

func (it *filterIter[T]) HasNext() bool {
	if it.ready || it.err != nil {
		return true
	}
	for it.source.HasNext() {
		v, err := it.source.Next()
		if err != nil {
			it.err = err
			return true
		}
		if it.pred(v) {
			it.value = v
			it.ready = true
			return true
		}
	}
	return false
}

func (it *filterIter[T]) Next() (T, error) {
	v, err := it.Peek()
	it.ready = false
	it.err = nil
	return v, err
}

func (it *filterIter[T]) Peek() (T, error) {
	if !it.HasNext() {
		return exhausted[T]()
	}
	if it.err != nil {
		var zero T
		return zero, it.err
	}
	return it.value, nil
}

type concatIter[T any] struct {
	outer Iterator[Iterator[T]]
	child Iterator[T]
	op    string
	err   error
}

func (it *concatIter[T]) HasNext() bool {
	if it.err != nil {
		return true
	}
	if it.child != nil && it.child.HasNext() {
		return true
	}
	for it.outer.HasNext() {
		child, err := it.outer.Next()
		if err != nil {
			it.err = err
			return true
		}
		if child == nil {
			it.err = errors.InvariantViolation(it.op, "function returned a nil iterator")
			return true
		}
		it.child = child
		if child.HasNext() {
			return true
		}
	}
	return false
}

func (it *concatIter[T]) Next() (T, error) {
	if !it.HasNext() {
		return exhausted[T]()
	}
	if err := it.err; err != nil {
		it.err = nil
		var zero T
		return zero, err
	}
	return it.child.Next()
}

type limitIter[T any] struct {
	source Iterator[T]
	limit  int
	count  int
}

func (it *limitIter[T]) HasNext() bool {
	return it.count < it.limit && it.source.HasNext()
}

func (it *limitIter[T]) Next() (T, error) {
	if !it.HasNext() {
		return exhausted[T]()
	}
	it.count++
	return it.source.Next()
}

type autoCloseIter[T any] struct {
	source  Iterator[T]
	cleanup func()
	closed  bool
}

func (it *autoCloseIter[T]) HasNext() bool {
	if it.source.HasNext() {
		return true
	}
	it.close()
	return false
}

func (it *autoCloseIter[T]) Next() (T, error) {
	if !it.HasNext() {
		return exhausted[T]()
	}
	v, err := it.source.Next()
	if err != nil {
		return v, err
	}
	if !it.source.HasNext() {
		it.close()
	}
	return v, nil
}

func (it *autoCloseIter[T]) close() {
	if it.closed {
		return
	}
	it.closed = true
	it.cleanup()
}

type batchIter[T any] struct {
	source Iterator[T]
	size   int
}

func (it *batchIter[T]) HasNext() bool { return it.source.HasNext() }

func (it *batchIter[T]) Next() ([]T, error) {
	if !it.source.HasNext() {
		return exhausted[[]T]()
	}
	batch := make([]T, 0, it.size)
	for len(batch) < it.size && it.source.HasNext() {
		v, err := it.source.Next()
		if err != nil {
			return batch, err
		}
		batch = append(batch, v)
	}
	return batch, nil
}

type failedIter[T any] struct {
	err error
}

func (it *failedIter[T]) HasNext() bool { return it.err != nil }

func (it *failedIter[T]) Next() (T, error) {
	if it.err == nil {
		return exhausted[T]()
	}
	err := it.err
	it.err = nil
	var zero T
	return zero, err
}
