package seq

// ReduceSorted folds adjacent values with equal keys using combine. The
// input must be sorted so that equal keys are adjacent. The first pair of
// each run is reused as the output pair and its value is updated in place.
func ReduceSorted[K comparable, V any](input Iterator[*KeyedValue[K, V]], combine func(a, b V) V) Iterator[*KeyedValue[K, V]] {
	if input == nil {
		invalidArgument("input", "is nil")
	}
	if combine == nil {
		invalidArgument("combine", "is nil")
	}
	return &reduceSortedIter[K, V]{source: input, combine: combine}
}

// ReduceHashSorted folds values with equal keys when the input is only
// ordered by cmp, a coarser order under which distinct keys may compare
// equal (for example, sorted by key hash). Each run of cmp-equal keys is
// buffered, matched by exact key equality and emitted in first-seen order.
//
// Each value is matched by a linear scan of the run's buffer, so a run with
// d distinct keys costs O(d²) comparisons and holds d pairs in memory.
func ReduceHashSorted[K comparable, V any](input Iterator[*KeyedValue[K, V]], combine func(a, b V) V, cmp func(a, b K) int) Iterator[*KeyedValue[K, V]] {
	if input == nil {
		invalidArgument("input", "is nil")
	}
	if combine == nil {
		invalidArgument("combine", "is nil")
	}
	if cmp == nil {
		invalidArgument("cmp", "is nil")
	}
	groups := &hashGroupIter[K, V]{source: PeekIterator(input), combine: combine, cmp: cmp}
	return Concat[*KeyedValue[K, V]](groups)
}

type reduceSortedIter[K comparable, V any] struct {
	source  Iterator[*KeyedValue[K, V]]
	combine func(a, b V) V
	pending *KeyedValue[K, V]
}

func (it *reduceSortedIter[K, V]) HasNext() bool {
	return it.pending != nil || it.source.HasNext()
}

func (it *reduceSortedIter[K, V]) Next() (*KeyedValue[K, V], error) {
	if it.pending == nil {
		if !it.source.HasNext() {
			return exhausted[*KeyedValue[K, V]]()
		}
		kv, err := it.source.Next()
		if err != nil {
			return nil, err
		}
		it.pending = kv
	}
	for it.source.HasNext() {
		kv, err := it.source.Next()
		if err != nil {
			return nil, err
		}
		if kv.Key() != it.pending.Key() {
			out := it.pending
			it.pending = kv
			return out, nil
		}
		it.pending.SetValue(it.combine(it.pending.Value(), kv.Value()))
	}
	out := it.pending
	it.pending = nil
	return out, nil
}

// hashGroupIter yields one reduced group per run of cmp-equal keys. The
// group buffer is reused, which is safe because Concat drains a child
// before asking for the next one.
type hashGroupIter[K comparable, V any] struct {
	source  Peekable[*KeyedValue[K, V]]
	combine func(a, b V) V
	cmp     func(a, b K) int
	buf     []*KeyedValue[K, V]
	group   sliceIter[*KeyedValue[K, V]]
}

func (it *hashGroupIter[K, V]) HasNext() bool { return it.source.HasNext() }

func (it *hashGroupIter[K, V]) Next() (Iterator[*KeyedValue[K, V]], error) {
	if !it.source.HasNext() {
		return exhausted[Iterator[*KeyedValue[K, V]]]()
	}
	first, err := it.source.Next()
	if err != nil {
		return nil, err
	}
	clear(it.buf)
	it.buf = append(it.buf[:0], first)
	for it.source.HasNext() {
		kv, err := it.source.Peek()
		if err != nil || it.cmp(kv.Key(), first.Key()) != 0 {
			// A failed peek ends the run; the error comes out of the next call.
			break
		}
		_, _ = it.source.Next()
		it.fold(kv)
	}
	it.group.reset(it.buf)
	return &it.group, nil
}

func (it *hashGroupIter[K, V]) fold(kv *KeyedValue[K, V]) {
	for _, acc := range it.buf {
		if acc.Key() == kv.Key() {
			acc.SetValue(it.combine(acc.Value(), kv.Value()))
			return
		}
	}
	it.buf = append(it.buf, kv)
}
