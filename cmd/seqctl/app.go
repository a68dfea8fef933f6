package main

import (
	"bufio"
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/seqkit/blockstore"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
	"github.com/kbukum/seqkit/pipeline"
)

// app holds what one seqctl invocation needs.
type app struct {
	cfg      *Config
	log      *logger.Logger
	metrics  *observability.Metrics
	out      io.Writer
	shutdown []func(context.Context) error
}

func newApp(cmd *cobra.Command, extraFlagKeys map[string]string) (*app, error) {
	cfg, err := loadConfig(cmd, extraFlagKeys)
	if err != nil {
		return nil, err
	}
	logger.SetGlobalLogger(logger.NewWithWriter(&cfg.Logging, cmd.ErrOrStderr(), cfg.Name))
	a := &app{cfg: cfg, log: logger.Get(serviceName), out: cmd.OutOrStdout()}

	ctx := cmd.Context()
	if cfg.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, &cfg.Metrics)
		if err != nil {
			return nil, err
		}
		a.shutdown = append(a.shutdown, mp.Shutdown)
		if a.metrics, err = observability.NewMetrics(mp.Meter(serviceName)); err != nil {
			a.close(ctx)
			return nil, err
		}
	}
	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, cfg.Tracing)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		a.shutdown = append(a.shutdown, tp.Shutdown)
	}
	return a, nil
}

// close flushes telemetry. Errors are logged.
func (a *app) close(ctx context.Context) {
	for _, fn := range a.shutdown {
		if err := fn(context.WithoutCancel(ctx)); err != nil {
			a.log.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}
	a.shutdown = nil
}

func (a *app) openStore() (blockstore.Store, error) {
	if a.cfg.Store.Backend == "redis" {
		return blockstore.NewRedis(a.cfg.Store.Redis, a.log)
	}
	return blockstore.NewMemory(), nil
}

// emit runs p as the named stage and writes one formatted line per value.
func emit[T any](ctx context.Context, a *app, stage string, p *pipeline.Pipeline[T], format func(T) string) error {
	if a.cfg.Limit > 0 {
		p = pipeline.Limit(p, a.cfg.Limit)
	}
	p = pipeline.WithTracing(p, a.cfg.Name, stage)
	p = pipeline.WithMetrics(p, stage, a.metrics)
	p = pipeline.WithLogging(p, stage)

	w := bufio.NewWriter(a.out)
	err := pipeline.Drain(p, func(_ context.Context, v T) error {
		if _, err := w.WriteString(format(v)); err != nil {
			return err
		}
		return w.WriteByte('\n')
	}).Run(ctx)
	if flushErr := w.Flush(); err == nil {
		err = flushErr
	}
	return err
}
