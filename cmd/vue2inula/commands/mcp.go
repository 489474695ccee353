package commands

import (
	"github.com/spf13/cobra"

	"github.com/openInula/inula-sub000/pkg/mcp"
	"github.com/openInula/inula-sub000/pkg/observability"
)

func newMCPCommand(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

Tools:
  - vue2inula_convert: convert an inline .vue component
  - vue2inula_validate_tags: validate a tag map document`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, providers, err := global.setup(observability.ModeMCP, "")
			if err != nil {
				return err
			}
			defer shutdown(providers)

			metrics, err := observability.NewToolMetrics(providers.Meter)
			if err != nil {
				return err
			}

			opts := cfg.Conversion.EngineOptions()
			opts.Logger = providers.Logger

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger:  providers.Logger,
				Metrics: metrics,
				Tracer:  providers.Tracer,
				Options: opts,
			})

			return srv.Run(cmd.Context())
		},
	}
}
