package main

import (
	"bufio"
	"encoding/json"
	"os"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harborlight/scout-cli/internal/optimizer"
)

var (
	importPath        string
	importConcurrency int
)

// importLine is one JSONL entry: an observation, optionally with the
// verdict already known (replaying a reviewed session).
type importLine struct {
	optimizer.Observation
	Verdict *importVerdict `json:"verdict,omitempty"`
}

type importVerdict struct {
	IsCorrect      bool `json:"is_correct"`
	CorrectedValue any  `json:"corrected_value,omitempty"`
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import extraction logs from a JSONL file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		f, err := os.Open(importPath)
		if err != nil {
			return eris.Wrapf(err, "open %s", importPath)
		}
		defer f.Close() //nolint:errcheck

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(importConcurrency)

		var imported, skipped atomic.Int64
		lineNo := 0

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
		for scanner.Scan() {
			lineNo++
			raw := make([]byte, len(scanner.Bytes()))
			copy(raw, scanner.Bytes())
			if len(raw) == 0 {
				continue
			}

			n := lineNo
			g.Go(func() error {
				var line importLine
				if err := json.Unmarshal(raw, &line); err != nil {
					skipped.Add(1)
					zap.L().Warn("skipping malformed line",
						zap.Int("line", n),
						zap.Error(err),
					)
					return nil // keep importing
				}

				id := env.Engine.RecordExtraction(gctx, line.Observation)
				if line.Verdict != nil {
					env.Engine.ProvideFeedback(gctx, id, line.Verdict.IsCorrect, line.Verdict.CorrectedValue)
				}
				imported.Add(1)
				return nil
			})
		}
		if err := scanner.Err(); err != nil {
			return eris.Wrap(err, "read jsonl")
		}
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "import")
		}

		env.Engine.Flush(ctx)

		zap.L().Info("import complete",
			zap.Int64("imported", imported.Load()),
			zap.Int64("skipped", skipped.Load()),
			zap.String("path", importPath),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importPath, "file", "", "path to JSONL file (required)")
	importCmd.Flags().IntVar(&importConcurrency, "concurrency", 8, "max concurrent imports")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
