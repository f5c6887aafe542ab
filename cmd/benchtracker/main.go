// Package main provides the CLI entry point for benchtracker, a storage
// access benchmarking tool.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/weiihann/benchtracker/config"
	"github.com/weiihann/benchtracker/harness"
	"github.com/weiihann/benchtracker/report"
	"github.com/weiihann/benchtracker/tracker"
	"github.com/weiihann/benchtracker/workload"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		logger.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "benchtracker",
		Short: "Storage access benchmarking tool",
		Long: `Benchtracker replays the same deterministic workload of storage reads
and writes against one or more key-value backends. Every case runs once for real
and several more times as nested redundant passes, whose time is subtracted from
the total. The set of touched keys is summarized per 32-byte prefix and the
summaries of all backends are compared.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger))
	root.AddCommand(newGenerateCmd(logger))
	root.AddCommand(newReportCmd())

	return root
}

// override copies the value behind one flag from src to dst.
type override func(dst, src *config.Config)

// overrides maps each configuration flag to the field it sets, so that
// explicitly passed flags win over a config file.
var overrides = map[string]override{
	"keys":         func(d, s *config.Config) { d.Workload.Keys = s.Workload.Keys },
	"prefixes":     func(d, s *config.Config) { d.Workload.Prefixes = s.Workload.Prefixes },
	"partitions":   func(d, s *config.Config) { d.Workload.Partitions = s.Workload.Partitions },
	"operations":   func(d, s *config.Config) { d.Workload.Operations = s.Workload.Operations },
	"write-ratio":  func(d, s *config.Config) { d.Workload.WriteRatio = s.Workload.WriteRatio },
	"delete-ratio": func(d, s *config.Config) { d.Workload.DeleteRatio = s.Workload.DeleteRatio },
	"child-ratio":  func(d, s *config.Config) { d.Workload.ChildRatio = s.Workload.ChildRatio },
	"distribution": func(d, s *config.Config) { d.Workload.Distribution = s.Workload.Distribution },
	"seed":         func(d, s *config.Config) { d.Workload.Seed = s.Workload.Seed },
	"value-size":   func(d, s *config.Config) { d.Workload.ValueSize = s.Workload.ValueSize },
	"workload":     func(d, s *config.Config) { d.Workload.Path = s.Workload.Path },
	"backends":     func(d, s *config.Config) { d.Run.Backends = s.Run.Backends },
	"repeats":      func(d, s *config.Config) { d.Run.Repeats = s.Run.Repeats },
	"workers":      func(d, s *config.Config) { d.Run.Workers = s.Run.Workers },
	"db-dir":       func(d, s *config.Config) { d.Run.DBDir = s.Run.DBDir },
	"timeout":      func(d, s *config.Config) { d.Run.Timeout = s.Run.Timeout },
}

func addWorkloadFlags(flags *pflag.FlagSet, w *config.WorkloadConfig) {
	flags.IntVar(&w.Keys, "keys", w.Keys,
		"Number of distinct flat keys")
	flags.IntVar(&w.Prefixes, "prefixes", w.Prefixes,
		"Number of 32-byte storage prefixes the flat keys are spread over")
	flags.IntVar(&w.Partitions, "partitions", w.Partitions,
		"Number of child partitions")
	flags.IntVar(&w.Operations, "operations", w.Operations,
		"Number of operations in the workload")
	flags.Float64Var(&w.WriteRatio, "write-ratio", w.WriteRatio,
		"Fraction of operations that modify storage")
	flags.Float64Var(&w.DeleteRatio, "delete-ratio", w.DeleteRatio,
		"Fraction of modifications that are deletes")
	flags.Float64Var(&w.ChildRatio, "child-ratio", w.ChildRatio,
		"Fraction of operations that target a child partition")
	flags.StringVar(&w.Distribution, "distribution", w.Distribution,
		"Key hotness distribution: power-law, uniform, exponential")
	flags.Int64Var(&w.Seed, "seed", w.Seed,
		"Random seed (0 = use current time)")
	flags.IntVar(&w.ValueSize, "value-size", w.ValueSize,
		"Average value size in bytes")
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		flagCfg    = config.DefaultConfig()
		configPath string
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run access-tracked benchmarks across storage backends",
		Long: `Generate a deterministic workload (or load one with --workload) and
replay it against each backend, reporting elapsed, redundant and corrected
times together with the access summary of every case.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd.Flags(), flagCfg, configPath)
			if err != nil {
				return err
			}

			return runBenchmark(cmd.Context(), logger, cmd.OutOrStdout(), cfg, outputJSON)
		},
	}

	flags := cmd.Flags()
	addWorkloadFlags(flags, &flagCfg.Workload)
	flags.StringVar(&flagCfg.Workload.Path, "workload", "",
		"Path to pre-generated workload file (skip generation)")
	flags.StringSliceVar(&flagCfg.Run.Backends, "backends", flagCfg.Run.Backends,
		"Backends to benchmark (e.g. memory,pebble,leveldb,badger)")
	flags.IntVar(&flagCfg.Run.Repeats, "repeats", flagCfg.Run.Repeats,
		"Executions per case; all but the first are redundant")
	flags.IntVar(&flagCfg.Run.Workers, "workers", flagCfg.Run.Workers,
		"Goroutines executing each pass")
	flags.StringVar(&flagCfg.Run.DBDir, "db-dir", flagCfg.Run.DBDir,
		"Base directory for backend databases")
	flags.DurationVar(&flagCfg.Run.Timeout, "timeout", flagCfg.Run.Timeout,
		"Timeout of a single benchmark case")
	flags.StringVar(&configPath, "config", "",
		"Path to a YAML or JSON config file")
	flags.BoolVar(&outputJSON, "json", false,
		"Output results as JSON instead of table")

	return cmd
}

// resolveConfig layers the config file, the environment and the
// explicitly set flags, in that order.
func resolveConfig(flags *pflag.FlagSet, flagCfg *config.Config, path string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if path != "" {
		var err error

		cfg, err = config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
	}

	if err := config.LoadFromEnv(cfg); err != nil {
		return nil, err
	}

	flags.Visit(func(f *pflag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply(cfg, flagCfg)
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	out io.Writer,
	cfg *config.Config,
	outputJSON bool,
) error {
	logger.InfoContext(ctx, "starting benchmark",
		slog.Any("backends", cfg.Run.Backends),
		slog.Int("repeats", cfg.Run.Repeats),
		slog.Int("workers", cfg.Run.Workers),
	)

	// Step 1: Generate workload (or use pre-generated file).
	workloadPath := cfg.Workload.Path
	if workloadPath == "" {
		var err error

		workloadPath, err = generateWorkload(ctx, logger, cfg)
		if err != nil {
			return fmt.Errorf("generate workload: %w", err)
		}

		defer os.Remove(workloadPath)
	}

	// Step 2: Prepare DB directory.
	if err := os.MkdirAll(cfg.Run.DBDir, 0o755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}

	// Step 3: Run each backend sequentially against one shared tracker.
	t := tracker.New()
	results := make([]harness.Result, 0, len(cfg.Run.Backends))

	for _, backend := range cfg.Run.Backends {
		runner := harness.NewRunner(backend, t, cfg.Run.Workers, logger)

		result, err := runner.Run(ctx, harness.RunConfig{
			WorkloadPath: workloadPath,
			DBDir:        cfg.Run.DBDir,
			Repeats:      cfg.Run.Repeats,
			Timeout:      cfg.Run.Timeout,
		})
		if err != nil {
			return fmt.Errorf("run %s: %w", backend, err)
		}

		results = append(results, *result)
	}

	// Step 4: Generate report.
	if outputJSON {
		if err := report.GenerateJSON(out, results); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}
	} else {
		if err := report.Generate(out, results); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	logger.InfoContext(ctx, "benchmark complete")

	return nil
}

func generateWorkload(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config.Config,
) (string, error) {
	tmpFile, err := os.CreateTemp("", "benchtracker-workload-*.jsonl")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	summary, err := workload.NewGenerator(cfg.GeneratorConfig()).Generate(tmpFile)
	if err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())

		return "", fmt.Errorf("generate: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("close workload file: %w", err)
	}

	logWorkload(ctx, logger, tmpFile.Name(), summary)

	return tmpFile.Name(), nil
}

func logWorkload(ctx context.Context, logger *slog.Logger, path string, s workload.Summary) {
	logger.InfoContext(ctx, "workload generated",
		slog.String("path", path),
		slog.Int("operations", s.TotalOperations),
		slog.Int("reads", s.Reads),
		slog.Int("writes", s.Writes),
		slog.Int("deletes", s.Deletes),
		slog.Int("child_operations", s.ChildOperations),
	)
}

func newGenerateCmd(logger *slog.Logger) *cobra.Command {
	var (
		cfg     = config.DefaultConfig()
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a deterministic workload as JSONL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			w := cmd.OutOrStdout()
			name := "stdout"

			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()

				w, name = f, outPath
			}

			summary, err := workload.NewGenerator(cfg.GeneratorConfig()).Generate(w)
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}

			logWorkload(cmd.Context(), logger, name, summary)

			return nil
		},
	}

	flags := cmd.Flags()
	addWorkloadFlags(flags, &cfg.Workload)
	flags.StringVarP(&outPath, "out", "o", "",
		"Output file (default: stdout)")

	return cmd
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report [results.json]",
		Short: "Render saved JSON results as comparison tables",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()

			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open results: %w", err)
				}
				defer f.Close()

				r = f
			}

			results, err := harness.ParseResults(r)
			if err != nil {
				return err
			}

			return report.Generate(cmd.OutOrStdout(), results)
		},
	}
}
