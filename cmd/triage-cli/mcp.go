package main

import (
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/dataset"
	"github.com/mikey/support-triage/internal/di"
	"github.com/mikey/support-triage/internal/mcp"
	"github.com/mikey/support-triage/internal/triage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

func mcpCmd(flags *di.CLIFlags) *cobra.Command {
	var datasetPath string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve triage tools over MCP on stdio",
		Long: `Serve analyze_message, list_emails and get_stats as Model Context Protocol
tools on stdin/stdout. With --dataset the inbox is preloaded from a CSV file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := di.BuildCLIContainer(flags)
			if err != nil {
				return err
			}

			return container.Invoke(func(
				logger *zap.Logger,
				pipeline *triage.Pipeline,
				inbox *core.InboxService,
				loader *dataset.Loader,
				gateway core.Gateway,
			) error {
				defer logger.Sync()
				defer closeGateway(logger, gateway)

				if datasetPath != "" {
					msgs, err := loader.LoadFile(datasetPath)
					if err != nil {
						return err
					}
					if _, err := inbox.Import(cmd.Context(), msgs); err != nil {
						return err
					}
				}

				logger.Info("MCP server starting on stdio")
				return mcp.NewServer(pipeline, inbox, version).Run(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "CSV dataset to load into the inbox")

	return cmd
}
