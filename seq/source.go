package seq

import "iter"

// Empty returns an iterator with no elements.
func Empty[T any]() Peekable[T] {
	return emptyIter[T]{}
}

// Of returns an iterator over a single value.
func Of[T any](v T) Peekable[T] {
	return &singleIter[T]{value: v, hasNext: true, mark: true}
}

// FromSlice returns an iterator over items. The slice is not copied.
func FromSlice[T any](items []T) Peekable[T] {
	return &sliceIter[T]{items: items, end: len(items)}
}

// Values returns an iterator over its arguments.
func Values[T any](items ...T) Peekable[T] {
	return FromSlice(items)
}

// FromSliceRange returns an iterator over items[offset : offset+length].
func FromSliceRange[T any](items []T, offset, length int) Peekable[T] {
	if offset < 0 {
		invalidArgument("offset", "must be >= 0")
	}
	if length < 0 {
		invalidArgument("length", "must be >= 0")
	}
	if offset+length > len(items) {
		invalidArgument("offset+length", "must be <= len(items)")
	}
	return &sliceIter[T]{items: items, index: offset, end: offset + length, mark: offset}
}

// FromSeq pulls from a push-style sequence. The returned stop function
// releases the underlying coroutine and must be called if the iterator is
// abandoned before it is exhausted; calling it after exhaustion is harmless.
func FromSeq[T any](s iter.Seq[T]) (Peekable[T], func()) {
	if s == nil {
		invalidArgument("seq", "is nil")
	}
	next, stop := iter.Pull(s)
	return &pullIter[T]{next: next}, stop
}

// All adapts it to a range-over-func sequence. Iteration stops after the
// first error, which is yielded together with a zero value.
func All[T any](it Iterator[T]) iter.Seq2[T, error] {
	if it == nil {
		invalidArgument("iterator", "is nil")
	}
	return func(yield func(T, error) bool) {
		for it.HasNext() {
			v, err := it.Next()
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// --- Internal iterators ---

type emptyIter[T any] struct{}

func (emptyIter[T]) HasNext() bool    { return false }
func (emptyIter[T]) Next() (T, error) { return exhausted[T]() }
func (emptyIter[T]) Peek() (T, error) { return exhausted[T]() }
func (emptyIter[T]) Len() int         { return 0 }
func (emptyIter[T]) Mark()            {}
func (emptyIter[T]) Reset()           {}

type singleIter[T any] struct {
	value   T
	hasNext bool
	mark    bool
}

func (it *singleIter[T]) HasNext() bool { return it.hasNext }

func (it *singleIter[T]) Next() (T, error) {
	if !it.hasNext {
		return exhausted[T]()
	}
	it.hasNext = false
	return it.value, nil
}

func (it *singleIter[T]) Peek() (T, error) {
	if !it.hasNext {
		return exhausted[T]()
	}
	return it.value, nil
}

func (it *singleIter[T]) Mark()  { it.mark = it.hasNext }
func (it *singleIter[T]) Reset() { it.hasNext = it.mark }

func (it *singleIter[T]) Len() int {
	if it.hasNext {
		return 1
	}
	return 0
}

type sliceIter[T any] struct {
	items []T
	index int
	end   int
	mark  int
}

func (it *sliceIter[T]) HasNext() bool { return it.index < it.end }

func (it *sliceIter[T]) Next() (T, error) {
	if it.index >= it.end {
		return exhausted[T]()
	}
	v := it.items[it.index]
	it.index++
	return v, nil
}

func (it *sliceIter[T]) Peek() (T, error) {
	if it.index >= it.end {
		return exhausted[T]()
	}
	return it.items[it.index], nil
}

func (it *sliceIter[T]) Mark()    { it.mark = it.index }
func (it *sliceIter[T]) Reset()   { it.index = it.mark }
func (it *sliceIter[T]) Len() int { return it.end - it.index }

// reset points the iterator at a new backing slice from the start.
func (it *sliceIter[T]) reset(items []T) {
	it.items = items
	it.index = 0
	it.end = len(items)
	it.mark = 0
}

type pullIter[T any] struct {
	next  func() (T, bool)
	value T
	ready bool
	done  bool
}

func (it *pullIter[T]) HasNext() bool {
	if it.ready {
		return true
	}
	if it.done {
		return false
	}
	v, ok := it.next()
	if !ok {
		it.done = true
		return false
	}
	it.value = v
	it.ready = true
	return true
}

func (it *pullIter[T]) Next() (T, error) {
	if !it.HasNext() {
		return exhausted[T]()
	}
	it.ready = false
	v := it.value
	var zero T
	it.value = zero
	return v, nil
}

func (it *pullIter[T]) Peek() (T, error) {
	if !it.HasNext() {
		return exhausted[T]()
	}
	return it.value, nil
}
