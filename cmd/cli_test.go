package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborlight/scout-cli/internal/model"
	"github.com/harborlight/scout-cli/internal/monitoring"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

// useTempWorkspace points the CLI at a sqlite store in a fresh temp dir
// so invocations share state without touching the developer's files.
func useTempWorkspace(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("SCOUT_STORE_DRIVER", "sqlite")
	t.Setenv("SCOUT_STORE_PATH", filepath.Join(dir, "scout.db"))
}

func TestCLI_RecordFeedbackStatsFlow(t *testing.T) {
	useTempWorkspace(t)

	out := runCLI(t, "record",
		"--url", "https://site.com/programs",
		"--field", "ages",
		"--strategy", "regex-range",
		"--value", "13-17",
		"--confidence", "0.9",
		"--location", "main > .ages",
	)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	runCLI(t, "feedback", id, "--incorrect", "--corrected-value", "6-12")

	out = runCLI(t, "stats", "--json")
	var stats model.EngineStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 1, stats.TotalRecords)
	assert.Equal(t, 1, stats.VerifiedIncorrect)
	require.Len(t, stats.Fields, 1)
	assert.Equal(t, "ages", stats.Fields[0].Field)
	assert.Equal(t, 1, stats.Fields[0].Corrections)
}

func TestCLI_RecordRejectsUnknownField(t *testing.T) {
	useTempWorkspace(t)

	rootCmd.SetArgs([]string{"record",
		"--url", "https://site.com/p",
		"--field", "favorite_color",
		"--strategy", "regex-range",
	})
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")
}

func TestCLI_FeedbackRequiresOneVerdict(t *testing.T) {
	useTempWorkspace(t)

	// Reset verdict flags touched by earlier invocations.
	feedbackCorrect, feedbackIncorrect = false, false

	rootCmd.SetArgs([]string{"feedback", "some-id"})
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--correct or --incorrect")
}

func TestCLI_ExportCSV(t *testing.T) {
	useTempWorkspace(t)

	runCLI(t, "record",
		"--url", "https://site.com/p",
		"--field", "insurance",
		"--strategy", "dom-label",
		"--value", `["Aetna","Cigna"]`,
		"--confidence", "0.8",
	)

	out := filepath.Join(t.TempDir(), "report.csv")
	runCLI(t, "export", "--out", out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "field,strategy,attempts")
	assert.Contains(t, content, "insurance,dom-label,1")
}

func TestCLI_Status(t *testing.T) {
	useTempWorkspace(t)

	runCLI(t, "record",
		"--url", "https://site.com/programs",
		"--field", "ages",
		"--strategy", "regex-range",
		"--value", "13-17",
		"--confidence", "0.9",
	)

	out := runCLI(t, "status")
	var report struct {
		Store   string                     `json:"store"`
		Metrics monitoring.MetricsSnapshot `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "ok", report.Store)
	assert.Equal(t, 1, report.Metrics.Total)
}

func TestFieldGate(t *testing.T) {
	recs := []model.Recommendation{
		{Type: model.RecommendUseStrategy, Priority: 1, Strategy: &model.OptimizedStrategy{Confidence: 0.75}},
		{Type: model.RecommendWarnings, Priority: 5},
	}
	assert.Len(t, fieldGate(recs, 0.7), 2)

	gated := fieldGate([]model.Recommendation{
		{Type: model.RecommendUseStrategy, Priority: 1, Strategy: &model.OptimizedStrategy{Confidence: 0.75}},
		{Type: model.RecommendWarnings, Priority: 5},
	}, 0.8)
	require.Len(t, gated, 1)
	assert.Equal(t, model.RecommendWarnings, gated[0].Type)
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, "", parseValue(""))
	assert.Equal(t, "13-17", parseValue("13-17"))
	assert.Equal(t, []any{"CBT", "DBT"}, parseValue(`["CBT","DBT"]`))
	assert.Equal(t, float64(12), parseValue("12"))
	assert.Equal(t, "Ages 13 to 17", parseValue("Ages 13 to 17"))
}
