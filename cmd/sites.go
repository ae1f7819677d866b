package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sitesJSON bool

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List learned site profiles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		profiles := env.Engine.SiteProfiles()
		out := cmd.OutOrStdout()

		if sitesJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(profiles)
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DOMAIN\tATTEMPTS\tSUCCESS RATE\tAVG CONF\tSTRATEGIES\tLOCATIONS")
		for _, p := range profiles {
			fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%d\t%d\n",
				p.Domain, p.Stats.Attempts, p.Stats.SuccessRate(), p.Stats.AvgConfidence,
				len(p.Strategies), len(p.FieldLocations))
		}
		return w.Flush()
	},
}

var similarCmd = &cobra.Command{
	Use:   "similar <domain>",
	Short: "Find sites structurally similar to a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		similar := env.Engine.FindSimilarSites(args[0])

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(similar)
	},
}

func init() {
	sitesCmd.Flags().BoolVar(&sitesJSON, "json", false, "emit JSON instead of a table")
	sitesCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(sitesCmd)
}
