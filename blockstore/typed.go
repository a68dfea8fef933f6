package blockstore

import (
	"context"
	"fmt"
	"io"

	"github.com/kbukum/seqkit/codec"
	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/seq"
)

// Map stores typed values in a Store.
type Map[V any] struct {
	store  Store
	encode func(V) ([]byte, error)
	decode func([]byte) (V, error)
}

// NewMap creates a Map that serializes values with encode and decode.
func NewMap[V any](store Store, encode func(V) ([]byte, error), decode func([]byte) (V, error)) *Map[V] {
	if store == nil || encode == nil || decode == nil {
		panic(errors.InvalidArgument("map", "requires a store, an encoder and a decoder"))
	}
	return &Map[V]{store: store, encode: encode, decode: decode}
}

// NewCodecMap creates a Map that serializes values with c.
func NewCodecMap[V any](store Store, c codec.Codec[V]) *Map[V] {
	return NewMap(store,
		func(v V) ([]byte, error) { return codec.Marshal(c, v), nil },
		func(b []byte) (V, error) { return codec.Unmarshal(c, b) },
	)
}

// Put stores v under key.
func (m *Map[V]) Put(ctx context.Context, key string, v V) error {
	b, err := m.encode(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return m.store.Put(ctx, key, b)
}

// Get returns the value under key. A missing key is a NOT_FOUND error.
func (m *Map[V]) Get(ctx context.Context, key string) (V, error) {
	b, err := m.store.Get(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}
	v, err := m.decode(b)
	if err != nil {
		return v, fmt.Errorf("decode %q: %w", key, err)
	}
	return v, nil
}

// Delete removes key.
func (m *Map[V]) Delete(ctx context.Context, key string) error {
	return m.store.Delete(ctx, key)
}

// Entries scans the store, decoding each value as it is pulled. A value
// that fails to decode is returned as an error without ending the scan.
func (m *Map[V]) Entries(ctx context.Context) seq.Iterator[*seq.KeyedValue[string, V]] {
	return seq.TryMap(m.store.Scan(ctx), func(e Entry) (*seq.KeyedValue[string, V], error) {
		v, err := m.decode(e.Value())
		if err != nil {
			return nil, fmt.Errorf("decode %q: %w", e.Key(), err)
		}
		return seq.NewKeyedValue(e.Key(), v), nil
	})
}

// Export writes every entry as one map payload, with values encoded by vc.
func (m *Map[V]) Export(ctx context.Context, w io.Writer, vc codec.Codec[V]) error {
	return codec.EncodeMap(w, m.Entries(ctx), codec.String(), vc)
}

// Import reads a map payload written by Export and stores its entries. A
// nil map imports nothing. It returns the number of entries stored.
func (m *Map[V]) Import(ctx context.Context, r io.Reader, vc codec.Codec[V]) (int, error) {
	entries, ok, err := codec.DecodeMap(r, codec.String(), vc)
	if err != nil || !ok {
		return 0, err
	}
	n := 0
	for entries.HasNext() {
		e, err := entries.Next()
		if err != nil {
			return n, err
		}
		if err := m.Put(ctx, e.Key(), e.Value()); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
