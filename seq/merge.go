package seq

import (
	"container/heap"
	"slices"
)

// MergeSorted merges inputs that are each sorted by cmp into one sorted
// iterator. It holds exactly one pending head per non-empty input in a
// binary min-heap, so each Next costs O(log k). Elements that compare equal
// may come out in any order.
//
// With no inputs the result is empty; a single input is returned as is.
// Every input is pulled once during construction; a failure there is
// returned by the first Next and the failed input is retried afterwards.
func MergeSorted[T any](cmp func(a, b T) int, inputs ...Iterator[T]) Iterator[T] {
	if cmp == nil {
		invalidArgument("cmp", "is nil")
	}
	for _, in := range inputs {
		if in == nil {
			invalidArgument("inputs", "contains a nil iterator")
		}
	}
	switch len(inputs) {
	case 0:
		return Empty[T]()
	case 1:
		return inputs[0]
	}

	m := &mergeIter[T]{
		h:       mergeHeap[T]{cmp: cmp, entries: make([]mergeEntry[T], 0, len(inputs))},
		pending: slices.Clone(inputs),
	}
	m.fill()
	return m
}

type mergeEntry[T any] struct {
	head T
	src  Iterator[T]
}

type mergeHeap[T any] struct {
	cmp     func(a, b T) int
	entries []mergeEntry[T]
}

func (h *mergeHeap[T]) Len() int           { return len(h.entries) }
func (h *mergeHeap[T]) Less(i, j int) bool { return h.cmp(h.entries[i].head, h.entries[j].head) < 0 }
func (h *mergeHeap[T]) Swap(i, j int)      { h.entries[i], h.entries[j] = h.entries[j], h.entries[i] }
func (h *mergeHeap[T]) Push(x any)         { h.entries = append(h.entries, x.(mergeEntry[T])) }

func (h *mergeHeap[T]) Pop() any {
	n := len(h.entries) - 1
	e := h.entries[n]
	h.entries[n] = mergeEntry[T]{}
	h.entries = h.entries[:n]
	return e
}

// mergeIter keeps sources that still owe a head in pending. A source whose
// pull failed stays there and is retried after the error is reported.
type mergeIter[T any] struct {
	h       mergeHeap[T]
	pending []Iterator[T]
	err     error
}

func (it *mergeIter[T]) fill() {
	for len(it.pending) > 0 {
		src := it.pending[0]
		if src.HasNext() {
			v, err := src.Next()
			if err != nil {
				it.err = err
				return
			}
			heap.Push(&it.h, mergeEntry[T]{head: v, src: src})
		}
		it.pending[0] = nil
		it.pending = it.pending[1:]
	}
}

func (it *mergeIter[T]) HasNext() bool {
	if it.err == nil {
		it.fill()
	}
	return it.err != nil || it.h.Len() > 0
}

func (it *mergeIter[T]) Next() (T, error) {
	if !it.HasNext() {
		return exhausted[T]()
	}
	if err := it.err; err != nil {
		it.err = nil
		var zero T
		return zero, err
	}
	top := &it.h.entries[0]
	v := top.head
	if !top.src.HasNext() {
		heap.Pop(&it.h)
		return v, nil
	}
	next, err := top.src.Next()
	if err != nil {
		e := heap.Pop(&it.h).(mergeEntry[T])
		it.pending = append(it.pending, e.src)
		it.err = err
		return v, nil
	}
	top.head = next
	heap.Fix(&it.h, 0)
	return v, nil
}

// Peek returns the smallest pending head.
func (it *mergeIter[T]) Peek() (T, error) {
	if !it.HasNext() {
		return exhausted[T]()
	}
	if it.err != nil {
		var zero T
		return zero, it.err
	}
	return it.h.entries[0].head, nil
}
