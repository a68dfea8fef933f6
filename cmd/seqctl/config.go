package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/seqkit/blockstore"
	"github.com/kbukum/seqkit/config"
	"github.com/kbukum/seqkit/observability"
	"github.com/kbukum/seqkit/validation"
	"github.com/kbukum/seqkit/version"
)

const serviceName = "seqctl"

// Config is the seqctl configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// Separator splits each input line into key and value.
	Separator string `yaml:"separator" mapstructure:"separator" validate:"required"`
	// Limit caps the number of output lines. 0 means no limit.
	Limit int `yaml:"limit" mapstructure:"limit" validate:"gte=0"`

	Sample  SampleConfig               `yaml:"sample" mapstructure:"sample"`
	Store   StoreConfig                `yaml:"store" mapstructure:"store"`
	Metrics observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
	Tracing observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
}

// SampleConfig keeps each line with probability Step/Max.
type SampleConfig struct {
	Step int    `yaml:"step" mapstructure:"step" validate:"gte=0"`
	Max  int    `yaml:"max" mapstructure:"max" validate:"gt=0"`
	Seed uint64 `yaml:"seed" mapstructure:"seed"`
}

// StoreConfig selects the block store used by the store commands.
type StoreConfig struct {
	Backend string                 `yaml:"backend" mapstructure:"backend" validate:"oneof=memory redis"`
	Redis   blockstore.RedisConfig `yaml:"redis" mapstructure:"redis" validate:"-"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Store.Redis.ApplyDefaults()
	defaultMeter := observability.DefaultMeterConfig(c.Name)
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = c.Name
	}
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = defaultMeter.Endpoint
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = defaultMeter.Interval
	}
	if c.Metrics.ServiceVersion == "" {
		c.Metrics.ServiceVersion = version.Get().Short()
	}
	if c.Metrics.Environment == "" {
		c.Metrics.Environment = c.Environment
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = c.Name
	}
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = observability.DefaultTracerConfig(c.Name).Endpoint
	}
	if c.Tracing.ServiceVersion == "" {
		c.Tracing.ServiceVersion = c.Metrics.ServiceVersion
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = c.Environment
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return err
	}
	if c.Store.Backend == "redis" {
		if err := c.Store.Redis.Validate(); err != nil {
			return fmt.Errorf("config.store.redis: %w", err)
		}
	}
	return nil
}

// defaults are the lowest-precedence values. Keys bound to flags take
// their default from here, not from the flag.
var defaults = map[string]any{
	"name":          serviceName,
	"separator":     "\t",
	"sample.step":   1,
	"sample.max":    1,
	"store.backend": "memory",
}

// baseFlagKeys maps config keys to the root command's persistent flags.
var baseFlagKeys = map[string]string{
	"limit":            "limit",
	"separator":        "separator",
	"debug":            "debug",
	"logging.level":    "log-level",
	"logging.format":   "log-format",
	"store.backend":    "store",
	"store.redis.addr": "redis-addr",
	"store.redis.hash": "redis-hash",
	"metrics.enabled":  "metrics",
	"metrics.endpoint": "otlp-endpoint",
	"tracing.enabled":  "tracing",
	"tracing.endpoint": "otlp-endpoint",
}

// loadConfig reads the configuration for cmd. Flags set on the command
// line override environment variables, which override the config file.
func loadConfig(cmd *cobra.Command, extraFlagKeys map[string]string) (*Config, error) {
	keys := make(map[string]string, len(baseFlagKeys)+len(extraFlagKeys))
	for k, v := range baseFlagKeys {
		keys[k] = v
	}
	for k, v := range extraFlagKeys {
		keys[k] = v
	}

	opts := []config.LoaderOption{
		config.WithDefaults(defaults),
		config.WithFlags(cmd.Flags(), keys),
	}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}

	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
