package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/seqkit/blockstore"
	"github.com/kbukum/seqkit/codec"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
	"github.com/kbukum/seqkit/pipeline"
	"github.com/kbukum/seqkit/seq"
)

func newStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Move key/value lines in and out of the block store",
	}
	cmd.AddCommand(newStoreLoadCmd(), newStoreDumpCmd(), newStoreExportCmd(), newStoreImportCmd())
	return cmd
}

// withStore opens the configured store for the duration of fn.
func withStore(fn func(ctx context.Context, a *app, values *blockstore.Map[string], args []string) error) func(*cobra.Command, *app, []string) error {
	return func(cmd *cobra.Command, a *app, args []string) error {
		store, err := a.openStore()
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				a.log.Warn("closing store failed", logger.ErrorFields("close", err))
			}
		}()
		return fn(cmd.Context(), a, blockstore.NewCodecMap(store, codec.String()), args)
	}
}

func newStoreLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load FILE...",
		Short: "Store every line of the files; later lines replace earlier ones",
		Args:  cobra.MinimumNArgs(1),
		RunE: runE(nil, withStore(func(ctx context.Context, a *app, values *blockstore.Map[string], files []string) error {
			src := pipeline.WithLogging(pipeline.Concat(lineFiles(files, a.cfg.Separator)...), "load")
			src = pipeline.WithMetrics(src, "load", a.metrics)
			n := 0
			err := pipeline.ForEach(ctx, src, func(ctx context.Context, l line) error {
				n++
				return values.Put(ctx, l.Key(), l.Value())
			})
			if err != nil {
				return err
			}
			a.log.Info("lines stored", logger.Fields(logger.FieldElements, n, logger.FieldBackend, a.cfg.Store.Backend))
			return nil
		})),
	}
}

func newStoreDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print every stored entry",
		Args:  cobra.NoArgs,
		RunE: runE(nil, withStore(func(ctx context.Context, a *app, values *blockstore.Map[string], _ []string) error {
			entries := pipeline.FromFunc(func(ctx context.Context) (seq.Iterator[line], error) {
				return values.Entries(ctx), nil
			})
			return emit(ctx, a, "dump", entries, formatLine(a.cfg.Separator))
		})),
	}
}

func newStoreExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Write every stored entry to FILE as one binary map payload",
		Args:  cobra.ExactArgs(1),
		RunE: runE(nil, withStore(func(ctx context.Context, _ *app, values *blockstore.Map[string], args []string) error {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := values.Export(ctx, f, codec.String()); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		})),
	}
}

func newStoreImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Store the entries of a payload written by export",
		Args:  cobra.ExactArgs(1),
		RunE: runE(nil, withStore(func(ctx context.Context, a *app, values *blockstore.Map[string], args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			n, err := values.Import(ctx, f, codec.String())
			if err != nil {
				return err
			}
			a.log.Info("entries imported", logger.Fields(logger.FieldElements, n))
			return nil
		})),
	}
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the configured block store and print the result as JSON",
		Args:  cobra.NoArgs,
		RunE: runE(nil, func(cmd *cobra.Command, a *app, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var checkers []observability.HealthChecker
			if hc, ok := store.(observability.HealthChecker); ok {
				checkers = append(checkers, hc)
			}
			health := observability.CheckAll(cmd.Context(), a.cfg.Name, checkers...)

			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(health); err != nil {
				return err
			}
			if health.Status != observability.HealthStatusUp {
				return fmt.Errorf("store is %s", health.Status)
			}
			return nil
		}),
	}
}
