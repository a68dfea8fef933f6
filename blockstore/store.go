package blockstore

import (
	"context"

	"github.com/kbukum/seqkit/seq"
)

// Entry is one stored block.
type Entry = *seq.KeyedValue[string, []byte]

// Store is a keyed block store.
type Store interface {
	// Put stores value under key, replacing any previous block.
	Put(ctx context.Context, key string, value []byte) error
	// Get returns the block under key, or a NOT_FOUND error.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Len returns the number of stored blocks.
	Len(ctx context.Context) (int64, error)
	// Scan returns a lazy iterator over all entries. Failures are
	// returned by the iterator's Next.
	Scan(ctx context.Context) seq.Iterator[Entry]
	// Close releases the store's resources.
	Close() error
}
