package blockstore

import (
	"context"
	"slices"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/seq"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mini.Close)

	store, err := NewRedis(RedisConfig{Addr: mini.Addr(), ScanCount: 2}, logger.Nop())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, mini
}

func backends(t *testing.T) map[string]Store {
	redisStore, _ := newTestRedis(t)
	return map[string]Store{
		"memory": NewMemory(),
		"redis":  redisStore,
	}
}

func scanKeys(t *testing.T, it seq.Iterator[Entry]) []string {
	t.Helper()
	entries, err := seq.Collect(it)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key()
	}
	return keys
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, "missing"); !errors.IsCode(err, errors.ErrCodeNotFound) {
				t.Errorf("expected NOT_FOUND, got %v", err)
			}

			for _, k := range []string{"c", "a", "e", "b", "d"} {
				if err := store.Put(ctx, k, []byte("v"+k)); err != nil {
					t.Fatalf("Put: %v", err)
				}
			}
			if err := store.Put(ctx, "a", []byte("new")); err != nil {
				t.Fatal(err)
			}
			got, err := store.Get(ctx, "a")
			if err != nil || string(got) != "new" {
				t.Errorf("Get(a) = %q, %v", got, err)
			}

			if err := store.Delete(ctx, "e"); err != nil {
				t.Fatal(err)
			}
			if err := store.Delete(ctx, "never"); err != nil {
				t.Errorf("delete of missing key: %v", err)
			}
			if n, err := store.Len(ctx); err != nil || n != 4 {
				t.Errorf("Len = %d, %v", n, err)
			}

			keys := scanKeys(t, store.Scan(ctx))
			slices.Sort(keys)
			if !slices.Equal(keys, []string{"a", "b", "c", "d"}) {
				t.Errorf("scanned %v", keys)
			}
		})
	}
}

func TestMemory_ScanIsSortedSnapshot(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, k := range []string{"b", "c", "a"} {
		_ = m.Put(ctx, k, []byte(k))
	}
	it := m.Scan(ctx)
	_ = m.Put(ctx, "0", nil)

	if keys := scanKeys(t, it); !slices.Equal(keys, []string{"a", "b", "c"}) {
		t.Errorf("got %v", keys)
	}
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	v := []byte("abc")
	_ = m.Put(ctx, "k", v)
	v[0] = 'x'
	got, _ := m.Get(ctx, "k")
	got[1] = 'y'
	if again, _ := m.Get(ctx, "k"); string(again) != "abc" {
		t.Errorf("stored value changed to %q", again)
	}
}

func TestMemory_FeedsMergeJoin(t *testing.T) {
	ctx := context.Background()
	left, right := NewMemory(), NewMemory()
	_ = left.Put(ctx, "a", []byte("1"))
	_ = left.Put(ctx, "b", []byte("2"))
	_ = right.Put(ctx, "b", []byte("x"))
	_ = right.Put(ctx, "c", []byte("y"))

	joined, err := seq.Collect(seq.MergeJoin(compareStrings, left.Scan(ctx), right.Scan(ctx)))
	if err != nil {
		t.Fatal(err)
	}
	if len(joined) != 1 || joined[0].Key() != "b" || string(joined[0].Value().Second) != "x" {
		t.Errorf("got %v", joined)
	}
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
