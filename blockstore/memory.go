package blockstore

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/observability"
	"github.com/kbukum/seqkit/seq"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	blocks map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blocks: make(map[string][]byte)}
}

var _ Store = (*Memory)(nil)

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks[key] = slices.Clone(value)
	return nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.blocks[key]
	if !ok {
		return nil, errors.NotFound("block", key)
	}
	return slices.Clone(v), nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blocks, key)
	return nil
}

func (m *Memory) Len(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.blocks)), nil
}

// Scan iterates over a snapshot taken at the call, in ascending key order.
func (m *Memory) Scan(context.Context) seq.Iterator[Entry] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := slices.Sorted(maps.Keys(m.blocks))
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = seq.NewKeyedValue(k, slices.Clone(m.blocks[k]))
	}
	return seq.FromSlice(entries)
}

func (m *Memory) Close() error { return nil }

// CheckHealth always reports the memory store as up.
func (m *Memory) CheckHealth(ctx context.Context) observability.Health {
	n, _ := m.Len(ctx)
	return observability.Health{
		Name:    "blockstore.memory",
		Status:  observability.HealthStatusUp,
		Details: map[string]string{"blocks": strconv.FormatInt(n, 10)},
	}
}
