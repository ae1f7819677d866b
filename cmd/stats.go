package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize everything the engine has learned",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		stats := env.Engine.Stats()
		out := cmd.OutOrStdout()

		if statsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}

		fmt.Fprintf(out, "Records: %d (%d correct, %d incorrect, %d unverified)\n",
			stats.TotalRecords, stats.VerifiedCorrect, stats.VerifiedIncorrect, stats.Unverified)
		fmt.Fprintf(out, "Sites: %d\n\n", stats.Sites)

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FIELD\tATTEMPTS\tSUCCESSES\tFAILURES\tAVG CONF\tCORRECTIONS")
		for _, f := range stats.Fields {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.2f\t%d\n",
				f.Field, f.Attempts, f.Successes, f.Failures, f.AvgConfidence, f.Corrections)
		}
		return w.Flush()
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "emit JSON instead of a table")
	rootCmd.AddCommand(statsCmd)
}
