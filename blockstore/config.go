package blockstore

import (
	"fmt"
	"time"

	"github.com/kbukum/seqkit/validation"
)

// RedisConfig holds the Redis backend configuration.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string `yaml:"addr" mapstructure:"addr" validate:"required,hostname_port"`

	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db" validate:"gte=0"`

	// Hash is the Redis key of the hash holding all blocks.
	Hash string `yaml:"hash" mapstructure:"hash" validate:"required"`

	// ScanCount is the HSCAN COUNT hint, the approximate page size.
	ScanCount int64 `yaml:"scan_count" mapstructure:"scan_count" validate:"gte=0"`

	PoolSize     int `yaml:"pool_size" mapstructure:"pool_size" validate:"gte=0"`
	MinIdleConns int `yaml:"min_idle_conns" mapstructure:"min_idle_conns" validate:"gte=0"`

	// MaxRetries is the maximum number of retries before giving up (0 = default 3).
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0"`

	// DialTimeout is the timeout for establishing new connections (e.g. "5s").
	DialTimeout string `yaml:"dial_timeout" mapstructure:"dial_timeout"`

	// ReadTimeout is the timeout for socket reads (e.g. "3s").
	ReadTimeout string `yaml:"read_timeout" mapstructure:"read_timeout"`

	// WriteTimeout is the timeout for socket writes (e.g. "3s").
	WriteTimeout string `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *RedisConfig) ApplyDefaults() {
	if c.Hash == "" {
		c.Hash = "seqkit:blocks"
	}
	if c.ScanCount <= 0 {
		c.ScanCount = 100
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns <= 0 {
		c.MinIdleConns = 2
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "5s"
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "3s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "3s"
	}
}

// Validate checks required fields and that the timeouts parse.
func (c *RedisConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	v := validation.New()
	for _, d := range []struct{ field, value string }{
		{"dial_timeout", c.DialTimeout},
		{"read_timeout", c.ReadTimeout},
		{"write_timeout", c.WriteTimeout},
	} {
		_, err := time.ParseDuration(d.value)
		v.Custom(err == nil, d.field, fmt.Sprintf("invalid duration %q", d.value))
	}
	return v.Err()
}

func (c *RedisConfig) durations() (dial, read, write time.Duration) {
	dial, _ = time.ParseDuration(c.DialTimeout)
	read, _ = time.ParseDuration(c.ReadTimeout)
	write, _ = time.ParseDuration(c.WriteTimeout)
	return dial, read, write
}
