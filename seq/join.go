package seq

// MergeJoin performs an inner join of two inputs sorted by key under cmp.
// For every right pair it emits one output per left pair with an equal key,
// in left order, keyed by the left key and carrying both values as a Pair.
// Only the current run of equal left keys is buffered, so duplicate keys on
// both sides produce their full cross product.
//
// If either input is empty at construction the result is empty.
func MergeJoin[K, L, R any](cmp func(a, b K) int, left Iterator[*KeyedValue[K, L]], right Iterator[*KeyedValue[K, R]]) Iterator[*KeyedValue[K, Pair[L, R]]] {
	if cmp == nil {
		invalidArgument("cmp", "is nil")
	}
	if left == nil {
		invalidArgument("left", "is nil")
	}
	if right == nil {
		invalidArgument("right", "is nil")
	}
	if !left.HasNext() || !right.HasNext() {
		return Empty[*KeyedValue[K, Pair[L, R]]]()
	}
	return &joinIter[K, L, R]{cmp: cmp, left: PeekIterator(left), right: right}
}

type joinIter[K, L, R any] struct {
	cmp      func(a, b K) int
	left     Peekable[*KeyedValue[K, L]]
	right    Iterator[*KeyedValue[K, R]]
	group    []*KeyedValue[K, L]
	rightRow *KeyedValue[K, R]
	index    int
	done     bool
	err      error
}

func (it *joinIter[K, L, R]) HasNext() bool {
	if it.err != nil || it.index < len(it.group) {
		return true
	}
	for !it.done && it.right.HasNext() {
		r, err := it.right.Next()
		if err != nil {
			it.err = err
			return true
		}
		it.rightRow = r
		it.index = 0
		if len(it.group) > 0 && it.cmp(it.group[0].Key(), r.Key()) == 0 {
			return true
		}
		clear(it.group)
		it.group = it.group[:0]
		if it.collect(r.Key()) {
			return true
		}
	}
	return false
}

// collect skips left pairs below key and buffers the run equal to it.
// It reports whether there is something to emit.
func (it *joinIter[K, L, R]) collect(key K) bool {
	for it.left.HasNext() {
		l, err := it.left.Peek()
		if err != nil {
			_, it.err = it.left.Next()
			return true
		}
		c := it.cmp(l.Key(), key)
		if c > 0 {
			break
		}
		_, _ = it.left.Next()
		if c == 0 {
			it.group = append(it.group, l)
		}
	}
	if len(it.group) == 0 && !it.left.HasNext() {
		// Right keys only grow from here, so nothing else can match.
		it.done = true
	}
	return len(it.group) > 0
}

func (it *joinIter[K, L, R]) Next() (*KeyedValue[K, Pair[L, R]], error) {
	if !it.HasNext() {
		return exhausted[*KeyedValue[K, Pair[L, R]]]()
	}
	if err := it.err; err != nil {
		it.err = nil
		return nil, err
	}
	l := it.group[it.index]
	it.index++
	return NewKeyedValue(l.Key(), Pair[L, R]{First: l.Value(), Second: it.rightRow.Value()}), nil
}
