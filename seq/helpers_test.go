package seq

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	apperrors "github.com/kbukum/seqkit/errors"
)

var errBoom = errors.New("boom")

func kv[K, V any](k K, v V) *KeyedValue[K, V] { return NewKeyedValue(k, v) }

func kvs[K, V any](pairs ...*KeyedValue[K, V]) Iterator[*KeyedValue[K, V]] {
	return FromSlice(pairs)
}

func collectStrings[T any](t *testing.T, it Iterator[T]) []string {
	t.Helper()
	items, err := Collect(it)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := make([]string, len(items))
	for i, v := range items {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func collectInts(t *testing.T, it Iterator[int]) []int {
	t.Helper()
	got, err := Collect(it)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	return got
}

func assertInts(t *testing.T, got, want []int) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func assertStrings(t *testing.T, got, want []string) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func assertPanicCode(t *testing.T, code apperrors.ErrorCode, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic with code %s", code)
		}
		err, ok := r.(error)
		if !ok || !apperrors.IsCode(err, code) {
			t.Fatalf("expected panic with code %s, got %v", code, r)
		}
	}()
	fn()
}

// failingIter yields items but returns errBoom once when the element at
// failAt is about to be read, then carries on from the same position.
type failingIter[T any] struct {
	items  []T
	failAt int
	i      int
	failed bool
}

func (it *failingIter[T]) HasNext() bool { return it.i < len(it.items) }

func (it *failingIter[T]) Next() (T, error) {
	var zero T
	if it.i >= len(it.items) {
		return zero, ErrExhausted
	}
	if it.i == it.failAt && !it.failed {
		it.failed = true
		return zero, errBoom
	}
	v := it.items[it.i]
	it.i++
	return v, nil
}

// countingIter records how many elements were pulled.
type countingIter[T any] struct {
	Iterator[T]
	pulled int
}

func (it *countingIter[T]) Next() (T, error) {
	it.pulled++
	return it.Iterator.Next()
}

// hidePeek strips every capability except the base contract.
type hidePeek[T any] struct{ Iterator[T] }
