package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	feedbackCorrect   bool
	feedbackIncorrect bool
	feedbackCorrected string
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <record-id>",
	Short: "Attach a human verdict to a recorded extraction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if feedbackCorrect == feedbackIncorrect {
			return eris.New("exactly one of --correct or --incorrect is required")
		}

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		var corrected any
		if feedbackCorrected != "" {
			corrected = parseValue(feedbackCorrected)
		}

		env.Engine.ProvideFeedback(ctx, args[0], feedbackCorrect, corrected)
		env.Engine.Flush(ctx)

		zap.L().Info("feedback applied",
			zap.String("id", args[0]),
			zap.Bool("correct", feedbackCorrect),
		)
		return nil
	},
}

func init() {
	feedbackCmd.Flags().BoolVar(&feedbackCorrect, "correct", false, "mark the extraction correct")
	feedbackCmd.Flags().BoolVar(&feedbackIncorrect, "incorrect", false, "mark the extraction incorrect")
	feedbackCmd.Flags().StringVar(&feedbackCorrected, "corrected-value", "", "the right value, raw or JSON (with --incorrect)")
	rootCmd.AddCommand(feedbackCmd)
}
