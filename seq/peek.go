package seq

// PeekIterator adds one element of lookahead to it. Iterators that already
// implement Peekable are returned unchanged.
func PeekIterator[T any](it Iterator[T]) Peekable[T] {
	if it == nil {
		invalidArgument("iterator", "is nil")
	}
	if p, ok := it.(Peekable[T]); ok {
		return p
	}
	return &peekIter[T]{source: it}
}

// StopAtFirstMatching yields values from p until the next value satisfies
// stop. The matching value is left unconsumed in p, and once matched the
// iterator stays exhausted.
func StopAtFirstMatching[T any](p Peekable[T], stop func(T) bool) Peekable[T] {
	if p == nil {
		invalidArgument("iterator", "is nil")
	}
	if stop == nil {
		invalidArgument("stop", "is nil")
	}
	return &stopIter[T]{source: p, stop: stop}
}

// MapGroupSorted splits a key-sorted input into runs of equal keys and
// calls fn once per run with the key and an iterator over the run's values.
// The group iterator is a view over the shared input: fn must consume it
// before returning if it wants the next call to start at the next key.
// Values fn leaves unread are handed to the next call as a new group.
func MapGroupSorted[K comparable, V, O any](input Iterator[*KeyedValue[K, V]], fn func(K, Iterator[V]) (O, error)) Iterator[O] {
	if input == nil {
		invalidArgument("input", "is nil")
	}
	if fn == nil {
		invalidArgument("fn", "is nil")
	}
	return &mapGroupIter[K, V, O]{source: PeekIterator(input), fn: fn}
}

type peekIter[T any] struct {
	source Iterator[T]
	value  T
	err    error
	ready  bool
}

func (it *peekIter[T]) HasNext() bool { return it.ready || it.source.HasNext() }

func (it *peekIter[T]) Peek() (T, error) {
	if !it.ready {
		if !it.source.HasNext() {
			return exhausted[T]()
		}
		it.value, it.err = it.source.Next()
		it.ready = true
	}
	return it.value, it.err
}

func (it *peekIter[T]) Next() (T, error) {
	v, err := it.Peek()
	if !it.ready {
		return v, err
	}
	var zero T
	it.value, it.err, it.ready = zero, nil, false
	return v, err
}

type stopIter[T any] struct {
	source Peekable[T]
	stop   func(T) bool
	done   bool
}

func (it *stopIter[T]) HasNext() bool {
	if it.done || !it.source.HasNext() {
		return false
	}
	v, err := it.source.Peek()
	if err != nil {
		return true
	}
	if it.stop(v) {
		it.done = true
		return false
	}
	return true
}

func (it *stopIter[T]) Next() (T, error) {
	if !it.HasNext() {
		return exhausted[T]()
	}
	return it.source.Next()
}

func (it *stopIter[T]) Peek() (T, error) {
	if !it.HasNext() {
		return exhausted[T]()
	}
	return it.source.Peek()
}

type mapGroupIter[K comparable, V, O any] struct {
	source Peekable[*KeyedValue[K, V]]
	fn     func(K, Iterator[V]) (O, error)
}

func (it *mapGroupIter[K, V, O]) HasNext() bool { return it.source.HasNext() }

func (it *mapGroupIter[K, V, O]) Next() (O, error) {
	var zero O
	if !it.source.HasNext() {
		return exhausted[O]()
	}
	head, err := it.source.Peek()
	if err != nil {
		_, err = it.source.Next()
		return zero, err
	}
	key := head.Key()
	run := StopAtFirstMatching(it.source, func(kv *KeyedValue[K, V]) bool { return kv.Key() != key })
	return it.fn(key, Map[*KeyedValue[K, V], V](run, (*KeyedValue[K, V]).Value))
}
