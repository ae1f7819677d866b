package main

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/harborlight/scout-cli/internal/model"
)

var (
	recommendField  string
	recommendDomain string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Print ranked recommendations for a (field, domain) pair",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		field, ok := env.Registry.Resolve(recommendField)
		if !ok {
			return eris.Errorf("unknown field %q (known: %s)",
				recommendField, strings.Join(env.Registry.Keys(), ", "))
		}

		def, _ := env.Registry.Get(field)
		recs := fieldGate(env.Engine.GetRecommendations(field, recommendDomain), def.ConfidenceThreshold)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	},
}

var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "Print the composed optimized strategy for a (field, domain) pair",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		field, ok := env.Registry.Resolve(recommendField)
		if !ok {
			return eris.Errorf("unknown field %q (known: %s)",
				recommendField, strings.Join(env.Registry.Keys(), ", "))
		}

		opt := env.Engine.GetOptimizedStrategy(field, recommendDomain)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(opt)
	},
}

// fieldGate drops a use-strategy recommendation whose confidence does
// not clear the field's catalog threshold. The engine gates on its
// configured default; stricter per-field thresholds tighten it here.
func fieldGate(recs []model.Recommendation, threshold float64) []model.Recommendation {
	out := recs[:0]
	for _, rec := range recs {
		if rec.Type == model.RecommendUseStrategy && rec.Strategy != nil &&
			rec.Strategy.Confidence <= threshold {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func init() {
	for _, c := range []*cobra.Command{recommendCmd, strategyCmd} {
		c.Flags().StringVar(&recommendField, "field", "", "field key or alias (required)")
		c.Flags().StringVar(&recommendDomain, "domain", "", "site domain (required)")
		_ = c.MarkFlagRequired("field")
		_ = c.MarkFlagRequired("domain")
		rootCmd.AddCommand(c)
	}
}
