// Package commands implements the vue2inula sub-commands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/openInula/inula-sub000/pkg/config"
	"github.com/openInula/inula-sub000/pkg/observability"
	"github.com/openInula/inula-sub000/pkg/version"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	verbose    bool
	quiet      bool
	noColor    bool
}

// NewRootCommand builds the vue2inula command tree.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "vue2inula",
		Short: "Convert Vue single-file components into openInula function components",
		Long: `vue2inula rewrites Vue single-file components into openInula function
components built on the Vue compatibility adapter.

Commands:
  convert   Convert one component or every component under a directory
  watch     Re-convert components as they change
  mcp       Serve the converter as MCP tools on stdio
  tags      Validate or print the tag map schema`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if flags.noColor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default .vue2inula.yaml in CWD or $HOME)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		newConvertCommand(flags),
		newWatchCommand(flags),
		newMCPCommand(flags),
		newTagsCommand(),
		newVersionCommand(),
	)

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// setup loads configuration and starts observability for one command run.
// A non-empty metricsFile overrides the configured textfile path.
func (g *globalFlags) setup(mode observability.AppMode, metricsFile string) (*config.Config, observability.Providers, error) {
	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return nil, observability.Providers{}, err
	}

	obsCfg, err := observability.FromSettings(cfg.Logging, cfg.Telemetry, mode)
	if err != nil {
		return nil, observability.Providers{}, err
	}

	obsCfg.ServiceVersion = version.Version
	if metricsFile != "" {
		obsCfg.MetricsFile = metricsFile
	}

	switch {
	case g.verbose:
		obsCfg.LogLevel = slog.LevelDebug
	case g.quiet:
		obsCfg.LogLevel = slog.LevelError
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, observability.Providers{}, err
	}

	return cfg, providers, nil
}

func shutdown(providers observability.Providers) {
	err := providers.Shutdown(context.Background())
	if err != nil {
		providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}
