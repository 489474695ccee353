package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openInula/inula-sub000/pkg/migrate"
	"github.com/openInula/inula-sub000/pkg/observability"
)

// bytesPerMB converts configured megabytes to bytes.
const bytesPerMB = 1 << 20

func newWatchCommand(global *globalFlags) *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-convert components as they change",
		Long: `Convert every component under a directory once, then watch it and
re-convert each .vue file when it is created or saved. Stops on SIGINT or SIGTERM.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			return runWatch(cmd, global, flags, root)
		},
	}

	cmd.Flags().StringVarP(&flags.outDir, "out", "o", "", "output directory (default: next to each source)")
	cmd.Flags().StringVar(&flags.targetExt, "target-ext", "", "extension of generated modules (e.g. .tsx)")
	cmd.Flags().StringVar(&flags.adapter, "adapter", "", "module providing the Vue compatibility hooks")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "extra names or globs to skip")

	return cmd
}

func runWatch(cmd *cobra.Command, global *globalFlags, flags *convertFlags, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("watch: %s is not a directory", root)
	}

	cfg, providers, err := global.setup(observability.ModeWatch, "")
	if err != nil {
		return err
	}
	defer shutdown(providers)

	metrics, err := observability.NewConversionMetrics(providers.Meter)
	if err != nil {
		return err
	}

	opts := runnerOptions(cfg, flags)
	opts.Root = root
	opts.StateFile = cfg.Migrate.StateFile
	opts.Logger = providers.Logger
	opts.Metrics = metrics
	opts.CacheSize = int64(cfg.Migrate.CacheSizeMB) * bytesPerMB

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := migrate.New(opts)
	out := cmd.OutOrStdout()

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	RenderReport(out, report, false)

	watchErr := runner.Watch(ctx, func(res migrate.FileResult) {
		fmt.Fprintln(out, ResultLine(res))
	})

	stats := runner.CacheStats()
	providers.Logger.InfoContext(ctx, "watch stopped",
		"cache_hits", stats.Hits,
		"cache_misses", stats.Misses,
		"cache_hit_rate", stats.HitRate())

	return watchErr
}
