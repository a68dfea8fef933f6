package seq

// Collect drains it into a slice. On error it returns the values collected
// so far together with the error.
func Collect[T any](it Iterator[T]) ([]T, error) {
	if it == nil {
		invalidArgument("iterator", "is nil")
	}
	var out []T
	if s, ok := it.(Sized); ok {
		out = make([]T, 0, s.Len())
	}
	for it.HasNext() {
		v, err := it.Next()
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Count drains it and returns the number of values consumed.
func Count[T any](it Iterator[T]) (int64, error) {
	if it == nil {
		invalidArgument("iterator", "is nil")
	}
	var n int64
	for it.HasNext() {
		if _, err := it.Next(); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Reduce folds all values left to right with op. ok is false when the
// iterator was empty.
func Reduce[T any](it Iterator[T], op func(a, b T) T) (result T, ok bool, err error) {
	if it == nil {
		invalidArgument("iterator", "is nil")
	}
	if op == nil {
		invalidArgument("op", "is nil")
	}
	for it.HasNext() {
		v, err := it.Next()
		if err != nil {
			return result, ok, err
		}
		if !ok {
			result, ok = v, true
			continue
		}
		result = op(result, v)
	}
	return result, ok, nil
}

// ElementAt consumes values up to and including the one at index.
// ok is false when the iterator ends first.
func ElementAt[T any](it Iterator[T], index int) (T, bool, error) {
	if it == nil {
		invalidArgument("iterator", "is nil")
	}
	if index < 0 {
		invalidArgument("index", "must be >= 0")
	}
	for i := 0; it.HasNext(); i++ {
		v, err := it.Next()
		if err != nil || i == index {
			return v, err == nil, err
		}
	}
	var zero T
	return zero, false, nil
}

// Last drains it and returns the final value.
func Last[T any](it Iterator[T]) (last T, ok bool, err error) {
	if it == nil {
		invalidArgument("iterator", "is nil")
	}
	for it.HasNext() {
		v, err := it.Next()
		if err != nil {
			return last, ok, err
		}
		last, ok = v, true
	}
	return last, ok, nil
}

// ForEach calls fn for every value until the iterator is exhausted or
// returns an error.
func ForEach[T any](it Iterator[T], fn func(T)) error {
	if it == nil {
		invalidArgument("iterator", "is nil")
	}
	if fn == nil {
		invalidArgument("fn", "is nil")
	}
	for it.HasNext() {
		v, err := it.Next()
		if err != nil {
			return err
		}
		fn(v)
	}
	return nil
}

// IsEmpty reports whether it has no values. It may pull from the source to
// answer, like HasNext.
func IsEmpty[T any](it Iterator[T]) bool {
	if it == nil {
		invalidArgument("iterator", "is nil")
	}
	return !it.HasNext()
}
