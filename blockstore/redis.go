package blockstore

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
	"github.com/kbukum/seqkit/seq"
)

// Redis is a Store backed by a single Redis hash.
type Redis struct {
	rdb    *goredis.Client
	log    *logger.Logger
	cfg    RedisConfig
	closed bool
	mu     sync.Mutex
}

var _ Store = (*Redis)(nil)

// NewRedis creates a Redis store. It does not contact the server; use Ping
// to verify connectivity.
func NewRedis(cfg RedisConfig, log *logger.Logger) (*Redis, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("blockstore redis config: %w", err)
	}
	dial, read, write := cfg.durations()

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  dial,
		ReadTimeout:  read,
		WriteTimeout: write,
	})

	log = log.WithComponent("blockstore")
	log.Info("Redis block store created", logger.Fields(
		logger.FieldBackend, "redis",
		"addr", cfg.Addr,
		"db", cfg.DB,
		"hash", cfg.Hash,
	))
	return &Redis{rdb: rdb, log: log, cfg: cfg}, nil
}

// Ping verifies the Redis connection is alive.
func (r *Redis) Ping(ctx context.Context) error {
	pong, err := r.rdb.Ping(ctx).Result()
	if err != nil {
		return errors.Storage("ping", err)
	}
	if pong != "PONG" {
		return errors.Storage("ping", fmt.Errorf("unexpected response %q", pong))
	}
	return nil
}

func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.HSet(ctx, r.cfg.Hash, key, value).Err(); err != nil {
		return errors.Storage("put", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.HGet(ctx, r.cfg.Hash, key).Bytes()
	if stderrors.Is(err, goredis.Nil) {
		return nil, errors.NotFound("block", key)
	}
	if err != nil {
		return nil, errors.Storage("get", err)
	}
	return v, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.rdb.HDel(ctx, r.cfg.Hash, key).Err(); err != nil {
		return errors.Storage("delete", err)
	}
	return nil
}

func (r *Redis) Len(ctx context.Context) (int64, error) {
	n, err := r.rdb.HLen(ctx, r.cfg.Hash).Result()
	if err != nil {
		return 0, errors.Storage("len", err)
	}
	return n, nil
}

// Scan walks the hash with HSCAN. Only the current page is held in memory.
// A field changed during the scan may be returned twice or not at all.
func (r *Redis) Scan(ctx context.Context) seq.Iterator[Entry] {
	return &scanIter{ctx: ctx, rdb: r.rdb, hash: r.cfg.Hash, count: r.cfg.ScanCount}
}

// Close closes the Redis connection. Safe to call multiple times.
func (r *Redis) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.log.Info("Closing Redis block store")
	r.closed = true
	return r.rdb.Close()
}

// CheckHealth pings Redis and reports the number of stored blocks.
func (r *Redis) CheckHealth(ctx context.Context) observability.Health {
	h := observability.Health{Name: "blockstore.redis", Status: observability.HealthStatusUp}
	if err := r.Ping(ctx); err != nil {
		h.Status = observability.HealthStatusDown
		h.Message = err.Error()
		return h
	}
	n, err := r.Len(ctx)
	if err != nil {
		h.Status = observability.HealthStatusDegraded
		h.Message = err.Error()
		return h
	}
	h.Details = map[string]string{"blocks": strconv.FormatInt(n, 10), "hash": r.cfg.Hash}
	return h
}

// Unwrap returns the underlying go-redis client.
func (r *Redis) Unwrap() *goredis.Client {
	return r.rdb
}

// scanIter buffers one HSCAN page of alternating field/value strings.
type scanIter struct {
	ctx    context.Context
	rdb    *goredis.Client
	hash   string
	count  int64
	cursor uint64
	page   []string
	pos    int
	done   bool
	err    error
}

func (it *scanIter) HasNext() bool {
	for it.err == nil && it.pos >= len(it.page) && !it.done {
		it.fetch()
	}
	return it.err != nil || it.pos < len(it.page)
}

func (it *scanIter) fetch() {
	if err := it.ctx.Err(); err != nil {
		it.err = errors.Canceled(err)
		return
	}
	ctx, span := observability.StartSpan(it.ctx, observability.SpanStoreScan)
	defer span.End()

	page, cursor, err := it.rdb.HScan(ctx, it.hash, it.cursor, "", it.count).Result()
	if err != nil {
		it.err = errors.Storage("scan", err)
		observability.SetSpanError(ctx, it.err)
		return
	}
	it.page, it.pos, it.cursor = page, 0, cursor
	it.done = cursor == 0
}

func (it *scanIter) Next() (Entry, error) {
	if it.err != nil {
		err := it.err
		it.err = nil
		return nil, err
	}
	if !it.HasNext() {
		return nil, errors.Exhausted()
	}
	if it.err != nil {
		return it.Next()
	}
	field, value := it.page[it.pos], it.page[it.pos+1]
	it.pos += 2
	return seq.NewKeyedValue(field, []byte(value)), nil
}
