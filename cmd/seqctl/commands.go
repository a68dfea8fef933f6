package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/seqkit/pipeline"
	"github.com/kbukum/seqkit/seq"
	"github.com/kbukum/seqkit/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   serviceName,
		Short: "Stream operations over sorted key/value files",
		Long: "seqctl reads files of separator-delimited key/value lines, already sorted by key,\n" +
			"and merges, joins, reduces, groups or samples them without loading them into memory.",
		Version:      version.Get().String(),
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default: search ./cmd/seqctl/config.yml, ./seqctl.yml, ./config.yml)")
	pf.Int("limit", 0, "maximum number of output lines (0 = no limit)")
	pf.String("separator", "\t", "key/value separator")
	pf.Bool("debug", false, "enable debug logging")
	pf.String("log-level", "", "log level (trace, debug, info, warn, error)")
	pf.String("log-format", "", "log format (console, json)")
	pf.String("store", "", "block store backend (memory, redis)")
	pf.String("redis-addr", "", "redis address host:port")
	pf.String("redis-hash", "", "redis hash holding the blocks")
	pf.Bool("metrics", false, "export stage metrics over OTLP")
	pf.Bool("tracing", false, "export stage spans over OTLP")
	pf.String("otlp-endpoint", "", "OTLP HTTP endpoint host:port")

	root.AddCommand(
		newMergeCmd(),
		newJoinCmd(),
		newReduceCmd(),
		newGroupCmd(),
		newSampleCmd(),
		newStoreCmd(),
		newHealthCmd(),
	)
	return root
}

// runE adapts an app-level command body to cobra.
func runE(extraFlagKeys map[string]string, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, extraFlagKeys)
		if err != nil {
			return err
		}
		defer a.close(cmd.Context())
		return fn(cmd, a, args)
	}
}

func formatLine(sep string) func(line) string {
	return func(l line) string { return l.Key() + sep + l.Value() }
}

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge FILE...",
		Short: "Merge sorted files into one sorted stream",
		Args:  cobra.MinimumNArgs(1),
		RunE: runE(nil, func(cmd *cobra.Command, a *app, files []string) error {
			merged := pipeline.MergeSorted(byKey[string], lineFiles(files, a.cfg.Separator)...)
			return emit(cmd.Context(), a, "merge", merged, formatLine(a.cfg.Separator))
		}),
	}
}

func newJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join LEFT RIGHT",
		Short: "Inner-join two sorted files on their keys",
		Long:  "Prints key, left value and right value for every pair of lines with equal keys.",
		Args:  cobra.ExactArgs(2),
		RunE: runE(nil, func(cmd *cobra.Command, a *app, files []string) error {
			sep := a.cfg.Separator
			joined := pipeline.MergeJoin(strings.Compare, lineFile(files[0], sep), lineFile(files[1], sep))
			return emit(cmd.Context(), a, "join", joined, func(row *seq.KeyedValue[string, seq.Pair[string, string]]) string {
				return row.Key() + sep + row.Value().First + sep + row.Value().Second
			})
		}),
	}
}

func newReduceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reduce FILE...",
		Short: "Sum integer values per key",
		Long: "Merges the files and sums the values of equal keys.\n" +
			"With --hash the files must be ordered by the FNV-1a hash of their keys instead.",
		Args: cobra.MinimumNArgs(1),
		RunE: runE(nil, func(cmd *cobra.Command, a *app, files []string) error {
			hashed, _ := cmd.Flags().GetBool("hash")
			sep := a.cfg.Separator
			inputs := make([]*pipeline.Pipeline[*seq.KeyedValue[string, int64]], len(files))
			for i, f := range files {
				inputs[i] = parseInts(lineFile(f, sep))
			}

			sum := func(x, y int64) int64 { return x + y }
			var reduced *pipeline.Pipeline[*seq.KeyedValue[string, int64]]
			if hashed {
				merged := pipeline.MergeSorted(func(x, y *seq.KeyedValue[string, int64]) int {
					return fnvOrder(x.Key(), y.Key())
				}, inputs...)
				reduced = pipeline.ReduceHashSorted(merged, sum, fnvOrder)
			} else {
				reduced = pipeline.ReduceSorted(pipeline.MergeSorted(byKey[int64], inputs...), sum)
			}
			return emit(cmd.Context(), a, "reduce", reduced, func(kv *seq.KeyedValue[string, int64]) string {
				return kv.Key() + sep + strconv.FormatInt(kv.Value(), 10)
			})
		}),
	}
	cmd.Flags().Bool("hash", false, "inputs are ordered by key hash")
	return cmd
}

func newGroupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "group FILE...",
		Short: "Print each key with all of its values",
		Args:  cobra.MinimumNArgs(1),
		RunE: runE(nil, func(cmd *cobra.Command, a *app, files []string) error {
			sep := a.cfg.Separator
			merged := pipeline.MergeSorted(byKey[string], lineFiles(files, sep)...)
			groups := pipeline.MapGroupSorted(merged, func(_ context.Context, key string, values seq.Iterator[string]) (string, error) {
				vs, err := seq.Collect(values)
				if err != nil {
					return "", err
				}
				return key + sep + strings.Join(vs, ","), nil
			})
			return emit(cmd.Context(), a, "group", groups, func(s string) string { return s })
		}),
	}
}

func newSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample FILE...",
		Short: "Keep each line with probability step/max",
		Args:  cobra.MinimumNArgs(1),
		RunE: runE(map[string]string{
			"sample.step": "step",
			"sample.max":  "max",
			"sample.seed": "seed",
		}, func(cmd *cobra.Command, a *app, files []string) error {
			s := a.cfg.Sample
			if s.Step > s.Max {
				a.log.Warn(fmt.Sprintf("step %d exceeds max %d, every line is kept", s.Step, s.Max))
			}
			sampled := pipeline.Sample(pipeline.Concat(lineFiles(files, a.cfg.Separator)...), s.Step, s.Max, s.Seed)
			return emit(cmd.Context(), a, "sample", sampled, formatLine(a.cfg.Separator))
		}),
	}
	cmd.Flags().Int("step", 1, "lines kept per max")
	cmd.Flags().Int("max", 1, "sampling denominator")
	cmd.Flags().Uint64("seed", 0, "random seed")
	return cmd
}
