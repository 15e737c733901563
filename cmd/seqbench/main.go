// Package main provides the CLI entry point for seqbench, an incremental
// edit benchmark for persistent and mutable sequence zippers.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/weiihann/seqbench/harness"
	"github.com/weiihann/seqbench/report"
	"github.com/weiihann/seqbench/workload"
)

func main() {
	root := newRootCmd(os.Stdout, nil)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "seqbench: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	verbose bool
	logger  *zap.Logger
}

// newRootCmd builds the command tree. Measurements go to out. A nil logger
// is built from the --verbose flag before any subcommand runs.
func newRootCmd(out io.Writer, logger *zap.Logger) *cobra.Command {
	opts := &rootOptions{logger: logger}

	root := &cobra.Command{
		Use:   "seqbench",
		Short: "Incremental edit benchmark for sequence zippers",
		Long: `Seqbench grows sequence containers by random-position insertions and
times every group of insertions. The same seeded workload is replayed
against each container variant so the timings are directly comparable.

Variants:
  RAZ   persistent zipper
  GRAZ  gauged persistent zipper
  MRAZ  gauged zipper behind a mutable handle`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.logger != nil {
				return nil
			}

			config := zap.NewProductionConfig()
			if opts.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}

			var err error
			opts.logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	root.SetOut(out)
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Debug logging on stderr")

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newMixCmd(opts))
	root.SetGlobalNormalizationFunc(underscoreFlags)

	return root
}

// underscoreFlags accepts snake_case spellings such as --save_mem.
func underscoreFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

type outputOptions struct {
	noHead  bool
	tag     string
	tagHead string
	summary bool
	json    bool
}

func (o *outputOptions) register(flags *pflag.FlagSet) {
	flags.BoolVar(&o.noHead, "nohead", false,
		"Suppress the CSV header")
	flags.StringVar(&o.tag, "tag", report.DefaultTag,
		"User tag written in the last column")
	flags.StringVar(&o.tagHead, "taghead", report.DefaultTagHeader,
		"Header title for the tag column")
	flags.BoolVar(&o.summary, "summary", false,
		"Write a per-variant summary table to stderr after the run")
	flags.BoolVar(&o.json, "json", false,
		"Write the summary as JSON instead of a table")
}

// emitter returns the CSV emitter and, when a summary is requested, a
// collector receiving the same measurements.
func (o *outputOptions) emitter(w io.Writer, seed int64) (*report.CSV, *report.Collector, harness.Emitter) {
	csv := report.NewCSV(w, report.CSVOptions{
		Seed:      seed,
		Tag:       o.tag,
		TagHeader: o.tagHead,
	})

	if !o.summary {
		return csv, nil, csv
	}

	collected := &report.Collector{}

	return csv, collected, report.Tee{csv, collected}
}

func (o *outputOptions) writeSummary(w io.Writer, experiment string, collected *report.Collector) error {
	if collected == nil {
		return nil
	}

	if o.json {
		if err := report.SummarizeJSON(w, experiment, collected.Measurements); err != nil {
			return fmt.Errorf("generate JSON summary: %w", err)
		}

		return nil
	}

	if err := report.Summarize(w, experiment, collected.Measurements); err != nil {
		return fmt.Errorf("generate summary: %w", err)
	}

	return nil
}

type runOptions struct {
	output     outputOptions
	configPath string
	seed       int64
	start      int
	insert     int
	groups     int
	reps       int
	gauge      int
	multi      bool
	saveMem    bool
	raz        bool
	graz       bool
	mraz       bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	o := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Time groups of random insertions into growing sequences",
		Long: `Prime each selected variant with --start elements, then for every run
insert --groups groups of --insert elements, timing each group. Every run
restarts from the primed sequence. Measurements are written as CSV.

PriorElements starts at --start and advances by --insert after each group.
RAZ and MRAZ insert whole batches of ten, so with an --insert (or an MRAZ
--start) that is not a multiple of ten the sequence holds fewer elements
than PriorElements reports.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.workload(cmd.Flags())
			if err != nil {
				return err
			}

			return runGrowth(cmd, root.logger, o, cfg)
		},
	}

	flags := cmd.Flags()
	o.output.register(flags)
	flags.StringVar(&o.configPath, "config", "",
		"YAML workload file; flags set explicitly override it")
	flags.Int64Var(&o.seed, "seed", workload.DefaultSeed,
		"Random seed for insertion positions")
	flags.BoolVar(&o.saveMem, "save-mem", false,
		"Retain intermediate values so nothing is released while timing")
	flags.IntVarP(&o.start, "start", "s", workload.DefaultStart,
		"Starting sequence length")
	flags.IntVarP(&o.insert, "insert", "i", workload.DefaultInsertions,
		"Number of timed insertions per group")
	flags.IntVarP(&o.groups, "groups", "g", workload.DefaultGroups,
		"Measured insertion groups per sequence")
	flags.IntVarP(&o.reps, "reps", "r", workload.DefaultRuns,
		"Number of sequences tested")
	flags.IntVar(&o.gauge, "gauge", workload.DefaultGauge,
		"Elements per chunk for gauged variants")
	flags.BoolVarP(&o.multi, "multi", "m", false,
		"Scale insertions per group by the run index")
	flags.BoolVarP(&o.raz, "raz", "z", false, "Test RAZ")
	flags.BoolVarP(&o.graz, "graz", "Z", false, "Test gauged RAZ zip interface")
	flags.BoolVarP(&o.mraz, "mraz", "R", false, "Test gauged RAZ mutable interface")

	return cmd
}

// workload merges the config file, if any, with the flags. Without a file
// every flag applies; with one only flags set on the command line do.
func (o *runOptions) workload(flags *pflag.FlagSet) (workload.Config, error) {
	cfg := workload.DefaultConfig()

	if o.configPath != "" {
		var err error
		cfg, err = workload.LoadConfig(o.configPath)
		if err != nil {
			return workload.Config{}, err
		}
	}

	set := func(name string) bool {
		return o.configPath == "" || flags.Changed(name)
	}

	if set("seed") {
		cfg.Seed = o.seed
	}
	if set("start") {
		cfg.Start = o.start
	}
	if set("insert") {
		cfg.Insertions = o.insert
	}
	if set("groups") {
		cfg.Groups = o.groups
	}
	if set("reps") {
		cfg.Runs = o.reps
	}
	if set("gauge") {
		cfg.Gauge = o.gauge
	}
	if set("multi") {
		cfg.Multi = o.multi
	}
	if set("save-mem") {
		cfg.SaveMem = o.saveMem
	}

	var variants []string
	if o.raz {
		variants = append(variants, harness.RAZ.Name)
	}
	if o.graz {
		variants = append(variants, harness.GRAZ.Name)
	}
	if o.mraz {
		variants = append(variants, harness.MRAZ.Name)
	}
	if len(variants) > 0 {
		cfg.Variants = variants
	}

	return cfg, cfg.Validate()
}

func runGrowth(cmd *cobra.Command, logger *zap.Logger, o *runOptions, cfg workload.Config) error {
	csv, collected, emit := o.output.emitter(cmd.OutOrStdout(), cfg.Seed)

	ctrl, err := harness.NewController(cfg, emit, logger)
	if err != nil {
		return fmt.Errorf("configure: %w", err)
	}

	if !o.output.noHead {
		if err := csv.Header(); err != nil {
			return err
		}
	}

	if err := ctrl.Execute(); err != nil {
		return err
	}

	return o.output.writeSummary(cmd.ErrOrStderr(), ctrl.ID().String(), collected)
}

type mixOptions struct {
	output   outputOptions
	variant  string
	seed     int64
	start    int
	batch    int
	rounds   int
	gauge    int
	edits    []string
	computes []string
}

func newMixCmd(root *rootOptions) *cobra.Command {
	o := &mixOptions{}

	cmd := &cobra.Command{
		Use:   "mix",
		Short: "Time a seeded mix of edits and computations on one variant",
		Long: `Create a sequence of --start elements, then for each round apply one
randomly chosen edit followed by every computation. One CSV line is written
per action with its total time.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMix(cmd, root.logger, o)
		},
	}

	flags := cmd.Flags()
	o.output.register(flags)
	flags.StringVar(&o.variant, "variant", harness.RAZ.Name,
		"Variant to test: RAZ, GRAZ or MRAZ")
	flags.Int64Var(&o.seed, "seed", workload.DefaultSeed,
		"Random seed for the action driver")
	flags.IntVarP(&o.start, "start", "s", 1000,
		"Starting sequence length")
	flags.IntVarP(&o.batch, "batch", "b", 100,
		"Elements added per edit")
	flags.IntVar(&o.rounds, "rounds", 10,
		"Number of edit rounds")
	flags.IntVar(&o.gauge, "gauge", workload.DefaultGauge,
		"Elements per chunk for gauged variants")
	flags.StringSliceVar(&o.edits, "edits", harness.EditActions,
		"Edit actions to choose from")
	flags.StringSliceVar(&o.computes, "computes", harness.ComputeActions,
		"Computations run after every edit")

	return cmd
}

func runMix(cmd *cobra.Command, logger *zap.Logger, o *mixOptions) error {
	v, err := harness.ParseVariant(o.variant)
	if err != nil {
		return err
	}

	cfg := harness.MixConfig{
		Start:    o.start,
		Batch:    o.batch,
		Rounds:   o.rounds,
		Seed:     o.seed,
		Gauge:    o.gauge,
		Edits:    o.edits,
		Computes: o.computes,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	csv, collected, emit := o.output.emitter(cmd.OutOrStdout(), o.seed)

	if !o.output.noHead {
		if err := csv.Header(); err != nil {
			return err
		}
	}

	if err := harness.Mix(v, cfg, emit, logger); err != nil {
		return err
	}

	return o.output.writeSummary(cmd.ErrOrStderr(), v.Name+"-mix", collected)
}
