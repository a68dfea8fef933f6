package pipeline

import (
	"context"

	"github.com/kbukum/seqkit/seq"
)

// MergeSorted merges pipelines that are each sorted by cmp into one sorted
// pipeline.
func MergeSorted[T any](cmp func(a, b T) int, pipelines ...*Pipeline[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(r *Run) seq.Iterator[T] {
			inputs := make([]seq.Iterator[T], len(pipelines))
			for i, p := range pipelines {
				inputs[i] = p.create(r)
			}
			return seq.MergeSorted(cmp, inputs...)
		},
	}
}

// ReduceSorted folds adjacent values with equal keys. The input must be
// sorted by key.
func ReduceSorted[K comparable, V any](p *Pipeline[*seq.KeyedValue[K, V]], combine func(a, b V) V) *Pipeline[*seq.KeyedValue[K, V]] {
	return &Pipeline[*seq.KeyedValue[K, V]]{
		create: func(r *Run) seq.Iterator[*seq.KeyedValue[K, V]] {
			return seq.ReduceSorted(p.create(r), combine)
		},
	}
}

// ReduceHashSorted folds values with equal keys when the input is only
// sorted by the coarse order cmp.
func ReduceHashSorted[K comparable, V any](p *Pipeline[*seq.KeyedValue[K, V]], combine func(a, b V) V, cmp func(a, b K) int) *Pipeline[*seq.KeyedValue[K, V]] {
	return &Pipeline[*seq.KeyedValue[K, V]]{
		create: func(r *Run) seq.Iterator[*seq.KeyedValue[K, V]] {
			return seq.ReduceHashSorted(p.create(r), combine, cmp)
		},
	}
}

// MergeJoin inner-joins two pipelines sorted by key.
func MergeJoin[K, L, R any](cmp func(a, b K) int, left *Pipeline[*seq.KeyedValue[K, L]], right *Pipeline[*seq.KeyedValue[K, R]]) *Pipeline[*seq.KeyedValue[K, seq.Pair[L, R]]] {
	return &Pipeline[*seq.KeyedValue[K, seq.Pair[L, R]]]{
		create: func(r *Run) seq.Iterator[*seq.KeyedValue[K, seq.Pair[L, R]]] {
			return seq.MergeJoin(cmp, left.create(r), right.create(r))
		},
	}
}

// MapGroupSorted calls fn once per run of equal keys with an iterator over
// that run's values.
func MapGroupSorted[K comparable, V, O any](p *Pipeline[*seq.KeyedValue[K, V]], fn func(context.Context, K, seq.Iterator[V]) (O, error)) *Pipeline[O] {
	return &Pipeline[O]{
		create: func(r *Run) seq.Iterator[O] {
			return seq.MapGroupSorted(p.create(r), func(k K, values seq.Iterator[V]) (O, error) {
				return fn(r.ctx, k, values)
			})
		},
	}
}
