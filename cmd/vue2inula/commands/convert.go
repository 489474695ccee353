package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/openInula/inula-sub000/pkg/config"
	"github.com/openInula/inula-sub000/pkg/engine"
	"github.com/openInula/inula-sub000/pkg/migrate"
	"github.com/openInula/inula-sub000/pkg/observability"
)

type convertFlags struct {
	outDir      string
	workers     int
	force       bool
	dryRun      bool
	stdout      bool
	jsonOutput  bool
	targetExt   string
	adapter     string
	metricsFile string
	exclude     []string
}

func newConvertCommand(global *globalFlags) *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert [path]",
		Short: "Convert one component or every component under a directory",
		Long: `Convert a .vue file, or every .vue file under a directory (default ".").

Generated modules and stylesheets are written next to each source, or into
--out with the source layout mirrored. Directory runs are incremental: files
not modified since the last successful run are skipped unless --force.

Examples:
  vue2inula convert src/components/TodoList.vue --stdout
  vue2inula convert src --out dist --workers 8
  vue2inula convert src --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}

			return runConvert(cmd, global, flags, path)
		},
	}

	cmd.Flags().StringVarP(&flags.outDir, "out", "o", "", "output directory (default: next to each source)")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "concurrent conversions (default: config, then GOMAXPROCS)")
	cmd.Flags().BoolVar(&flags.force, "force", false, "convert files even if unchanged since the last run")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print diffs instead of writing files")
	cmd.Flags().BoolVar(&flags.stdout, "stdout", false, "print the generated module of a single file to stdout")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "print the report as JSON")
	cmd.Flags().StringVar(&flags.targetExt, "target-ext", "", "extension of generated modules (e.g. .tsx)")
	cmd.Flags().StringVar(&flags.adapter, "adapter", "", "module providing the Vue compatibility hooks")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "extra names or globs to skip")

	return cmd
}

func runConvert(cmd *cobra.Command, global *globalFlags, flags *convertFlags, path string) error {
	cfg, providers, err := global.setup(observability.ModeCLI, flags.metricsFile)
	if err != nil {
		return err
	}
	defer shutdown(providers)

	metrics, err := observability.NewConversionMetrics(providers.Meter)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	opts := runnerOptions(cfg, flags)
	opts.Logger = providers.Logger
	opts.Metrics = metrics

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if !info.IsDir() {
		opts.Root = filepath.Dir(path)

		if flags.stdout {
			return printSingle(cmd, path, opts)
		}

		start := time.Now()
		result := migrate.New(opts).ConvertFile(ctx, path, time.Time{})
		report := &migrate.Report{Files: []migrate.FileResult{result}, Started: start, Elapsed: time.Since(start)}

		return finishReport(out, report, flags)
	}

	opts.Root = path
	opts.StateFile = cfg.Migrate.StateFile

	report, err := migrate.New(opts).Run(ctx)
	if report != nil {
		renderErr := finishReport(out, report, flags)
		if err == nil {
			err = renderErr
		}
	}

	return err
}

func runnerOptions(cfg *config.Config, flags *convertFlags) migrate.Options {
	engineOpts := cfg.Conversion.EngineOptions()
	if flags.targetExt != "" {
		engineOpts.TargetExtension = flags.targetExt
	}

	if flags.adapter != "" {
		engineOpts.AdapterSource = flags.adapter
	}

	workers := cfg.Migrate.Workers
	if flags.workers > 0 {
		workers = flags.workers
	}

	return migrate.Options{
		OutDir:  flags.outDir,
		Workers: workers,
		Exclude: append(append([]string{}, cfg.Migrate.Exclude...), flags.exclude...),
		Force:   flags.force,
		DryRun:  flags.dryRun,
		Engine:  engineOpts,
	}
}

func printSingle(cmd *cobra.Command, path string, opts migrate.Options) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	engineOpts := opts.Engine
	engineOpts.Logger = opts.Logger

	out, err := engine.ConvertSFC(cmd.Context(), path, src, engineOpts)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), out.Code)

	for _, d := range out.Diagnostics {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", d.String())
	}

	return nil
}

func finishReport(w io.Writer, report *migrate.Report, flags *convertFlags) error {
	if flags.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(NewReportJSON(report))
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	} else {
		RenderReport(w, report, flags.dryRun)
	}

	if report.Failed() {
		return fmt.Errorf("%w: %d of %d", migrate.ErrFilesFailed, report.Count(migrate.StatusFailed), len(report.Files))
	}

	return nil
}
