package main

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/harborlight/scout-cli/internal/optimizer"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a learning report as XLSX or CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		switch {
		case strings.HasSuffix(exportOut, ".xlsx"):
			err = exportXLSX(env.Engine, exportOut)
		case strings.HasSuffix(exportOut, ".csv"):
			err = exportCSV(env.Engine, exportOut)
		default:
			return eris.Errorf("unsupported output %q, want .xlsx or .csv", exportOut)
		}
		if err != nil {
			return err
		}

		zap.L().Info("report exported", zap.String("path", exportOut))
		return nil
	},
}

func exportXLSX(eng *optimizer.Engine, path string) error {
	f := xlsx.NewFile()

	stats := eng.Stats()

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	addRow(summary, "Total Records", strconv.Itoa(stats.TotalRecords))
	addRow(summary, "Verified Correct", strconv.Itoa(stats.VerifiedCorrect))
	addRow(summary, "Verified Incorrect", strconv.Itoa(stats.VerifiedIncorrect))
	addRow(summary, "Unverified", strconv.Itoa(stats.Unverified))
	addRow(summary, "Sites", strconv.Itoa(stats.Sites))
	addRow(summary, "Generated At", stats.GeneratedAt.Format("2006-01-02 15:04:05"))

	fields, err := f.AddSheet("Fields")
	if err != nil {
		return eris.Wrap(err, "export: add fields sheet")
	}
	addRow(fields, "Field", "Attempts", "Successes", "Failures", "Avg Confidence", "Corrections")
	for _, fs := range stats.Fields {
		addRow(fields, fs.Field,
			strconv.Itoa(fs.Attempts), strconv.Itoa(fs.Successes), strconv.Itoa(fs.Failures),
			formatFloat(fs.AvgConfidence), strconv.Itoa(fs.Corrections))
	}

	strategies, err := f.AddSheet("Strategies")
	if err != nil {
		return eris.Wrap(err, "export: add strategies sheet")
	}
	addRow(strategies, "Field", "Strategy", "Attempts", "Successes", "Failures", "Avg Confidence")
	for _, field := range eng.Fields() {
		for _, r := range eng.StrategiesForField(field) {
			p := r.Performance
			addRow(strategies, field, r.Strategy,
				strconv.Itoa(p.Attempts), strconv.Itoa(p.Successes), strconv.Itoa(p.Failures),
				formatFloat(p.AvgConfidence))
		}
	}

	sites, err := f.AddSheet("Sites")
	if err != nil {
		return eris.Wrap(err, "export: add sites sheet")
	}
	addRow(sites, "Domain", "Attempts", "Successes", "Avg Confidence", "Strategies", "Located Fields")
	for _, p := range eng.SiteProfiles() {
		addRow(sites, p.Domain,
			strconv.Itoa(p.Stats.Attempts), strconv.Itoa(p.Stats.Successes),
			formatFloat(p.Stats.AvgConfidence),
			strconv.Itoa(len(p.Strategies)), strconv.Itoa(len(p.FieldLocations)))
	}

	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

func exportCSV(eng *optimizer.Engine, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write([]string{"field", "strategy", "attempts", "successes", "failures", "avg_confidence"}); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, field := range eng.Fields() {
		for _, r := range eng.StrategiesForField(field) {
			p := r.Performance
			rec := []string{
				field, r.Strategy,
				strconv.Itoa(p.Attempts), strconv.Itoa(p.Successes), strconv.Itoa(p.Failures),
				formatFloat(p.AvgConfidence),
			}
			if err := w.Write(rec); err != nil {
				return eris.Wrap(err, "export: write row")
			}
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "export: flush")
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path ending in .xlsx or .csv (required)")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}
