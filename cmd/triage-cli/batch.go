package main

import (
	"encoding/json"

	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/dataset"
	"github.com/mikey/support-triage/internal/di"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func batchCmd(flags *di.CLIFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <dataset.csv>",
		Short: "Triage every row of a CSV dataset",
		Long: `Triage every row of a CSV file with sender, subject, body and sent_date
columns and print the records as JSON, urgent first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := di.BuildCLIContainer(flags)
			if err != nil {
				return err
			}

			return container.Invoke(func(
				logger *zap.Logger,
				loader *dataset.Loader,
				inbox *core.InboxService,
				gateway core.Gateway,
			) error {
				defer logger.Sync()
				defer closeGateway(logger, gateway)

				msgs, err := loader.LoadFile(args[0])
				if err != nil {
					return err
				}
				if _, err := inbox.Import(cmd.Context(), msgs); err != nil {
					return err
				}

				records, err := inbox.List(cmd.Context())
				if err != nil {
					return err
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			})
		},
	}

	cmd.Flags().IntVar(&flags.Concurrency, "concurrency", 4, "Messages triaged in parallel")

	return cmd
}
