package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harborlight/scout-cli/internal/model"
	"github.com/harborlight/scout-cli/internal/optimizer"
)

var (
	recordURL        string
	recordField      string
	recordStrategy   string
	recordValue      string
	recordConfidence float64
	recordPattern    string
	recordLocation   string
	recordSelector   string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record one extraction attempt",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		field, ok := env.Registry.Resolve(recordField)
		if !ok {
			return eris.Errorf("unknown field %q (known: %s)",
				recordField, strings.Join(env.Registry.Keys(), ", "))
		}

		obs := optimizer.Observation{
			URL:        recordURL,
			Field:      field,
			Strategy:   recordStrategy,
			Value:      parseValue(recordValue),
			Confidence: recordConfidence,
		}
		if recordPattern != "" || recordLocation != "" || recordSelector != "" {
			obs.Context = &model.ExtractionContext{
				Pattern:  recordPattern,
				Location: recordLocation,
				Selector: recordSelector,
			}
		}

		id := env.Engine.RecordExtraction(ctx, obs)
		env.Engine.Flush(ctx)

		zap.L().Info("extraction recorded",
			zap.String("id", id),
			zap.String("field", field),
			zap.String("strategy", recordStrategy),
		)
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

// parseValue accepts raw strings or JSON so list-valued fields can be
// passed as `--value '["CBT","DBT"]'`.
func parseValue(raw string) any {
	if raw == "" {
		return ""
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}

func init() {
	recordCmd.Flags().StringVar(&recordURL, "url", "", "page URL the value came from (required)")
	recordCmd.Flags().StringVar(&recordField, "field", "", "field key or alias (required)")
	recordCmd.Flags().StringVar(&recordStrategy, "strategy", "", "extraction strategy name (required)")
	recordCmd.Flags().StringVar(&recordValue, "value", "", "extracted value, raw or JSON")
	recordCmd.Flags().Float64Var(&recordConfidence, "confidence", 0, "self-reported confidence 0..1")
	recordCmd.Flags().StringVar(&recordPattern, "pattern", "", "pattern that matched, if any")
	recordCmd.Flags().StringVar(&recordLocation, "location", "", "page location the value was found at")
	recordCmd.Flags().StringVar(&recordSelector, "selector", "", "CSS selector used, if any")
	_ = recordCmd.MarkFlagRequired("url")
	_ = recordCmd.MarkFlagRequired("field")
	_ = recordCmd.MarkFlagRequired("strategy")
	rootCmd.AddCommand(recordCmd)
}
