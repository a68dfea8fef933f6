package seq

import (
	"fmt"

	"github.com/kbukum/seqkit/errors"
)

// Iterator provides pull-based, single-pass access to a sequence of values.
type Iterator[T any] interface {
	// HasNext reports whether Next will return a value or a pending error.
	// It is idempotent until Next is called.
	HasNext() bool
	// Next returns the next value and advances. It returns an error
	// matching ErrExhausted when HasNext is false.
	Next() (T, error)
}

// Peekable is an Iterator with one element of lookahead.
type Peekable[T any] interface {
	Iterator[T]
	// Peek returns the next value without advancing. Repeated calls
	// return the same value until Next is called.
	Peek() (T, error)
}

// Markable is an Iterator that can rewind to a remembered position.
// Only materialized iterators implement it.
type Markable[T any] interface {
	Iterator[T]
	Mark()
	Reset()
}

// Sized is implemented by iterators that know how many elements remain.
type Sized interface {
	Len() int
}

// Exported error values for matching with errors.Is.
var (
	ErrExhausted          = errors.Exhausted()
	ErrInvalidArgument    = errors.New(errors.ErrCodeInvalidArgument, "invalid argument")
	ErrInvariantViolation = errors.New(errors.ErrCodeInvariantViolation, "invariant violation")
)

// KeyedValue is a key with a mutable value slot. Grouped reductions fold
// into the slot in place, so it is always passed by pointer.
type KeyedValue[K, V any] struct {
	key   K
	value V
}

// NewKeyedValue creates a KeyedValue.
func NewKeyedValue[K, V any](key K, value V) *KeyedValue[K, V] {
	return &KeyedValue[K, V]{key: key, value: value}
}

// Key returns the key.
func (kv *KeyedValue[K, V]) Key() K { return kv.key }

// Value returns the current value.
func (kv *KeyedValue[K, V]) Value() V { return kv.value }

// SetValue replaces the value.
func (kv *KeyedValue[K, V]) SetValue(v V) { kv.value = v }

func (kv *KeyedValue[K, V]) String() string {
	return fmt.Sprintf("(%v, %v)", kv.key, kv.value)
}

// Pair holds two values. MergeJoin emits the left and right values of a
// match as a Pair.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Indexed is a value tagged with its position, as produced by ZipIndex.
type Indexed[T any] struct {
	Value T
	Index int64
}

func exhausted[T any]() (T, error) {
	var zero T
	return zero, errors.Exhausted()
}

func invalidArgument(name, reason string) {
	panic(errors.InvalidArgument(name, reason))
}
