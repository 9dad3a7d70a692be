package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show the recorded performance and reliability metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			return c.app.Metrics(cmd.Context(), c.configPath, asJSON)
		},
	}
	cmd.Flags().Bool("json", false, "Print the metrics snapshot as JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Clear the recorded metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.ResetMetrics(cmd.Context(), c.configPath)
		},
	})

	return cmd
}
