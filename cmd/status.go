package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/harborlight/scout-cli/internal/monitoring"
)

// statusReport is the JSON shape the status command prints.
type statusReport struct {
	Store      string                      `json:"store"`
	StoreError string                      `json:"store_error,omitempty"`
	Metrics    *monitoring.MetricsSnapshot `json:"metrics"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report store health and recent extraction metrics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		report := statusReport{Store: "ok"}
		if probeErr := monitoring.CheckStore(ctx, env.Store); probeErr != nil {
			report.Store = "degraded"
			report.StoreError = probeErr.Error()
		}

		report.Metrics, err = monitoring.NewCollector(env.Engine).Collect(ctx, cfg.Monitoring.LookbackMins)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
