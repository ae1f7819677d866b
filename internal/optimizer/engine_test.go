package optimizer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborlight/scout-cli/internal/model"
	"github.com/harborlight/scout-cli/internal/store"
)

// newTestEngine creates an engine on an in-memory backend with a
// deterministic clock that ticks one second per call.
func newTestEngine(t *testing.T) (*Engine, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemory()
	e := New(context.Background(), DefaultConfig(), st)

	var tick int64
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	t.Cleanup(func() {
		require.NoError(t, e.Close())
		require.NoError(t, st.Close())
	})
	return e, st
}

func TestRecordExtraction_ReturnsRetrievableRecord(t *testing.T) {
	e, _ := newTestEngine(t)

	id := e.RecordExtraction(context.Background(), Observation{
		URL:        "https://site.com/programs",
		Field:      "ages",
		Strategy:   "regex-a",
		Value:      "13-17",
		Confidence: 0.9,
		Context:    &model.ExtractionContext{Pattern: `\d+-\d+`, Location: "main > .ages"},
	})
	require.NotEmpty(t, id)

	rec, ok := e.Record(id)
	require.True(t, ok)
	assert.Equal(t, "site.com", rec.Domain)
	assert.Equal(t, "ages", rec.Field)
	assert.Equal(t, model.VerificationUnknown, rec.Verified)
	assert.Nil(t, rec.Feedback)
}

func TestIncrementalMean_ExactForAnySequence(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	confidences := []float64{0.9, 0.4, 0.75, 0.1, 1.0, 0.33, 0.68}
	var sum float64
	for _, c := range confidences {
		e.RecordExtraction(ctx, Observation{
			URL: "https://site.com/a", Field: "ages", Strategy: "regex-a",
			Value: "13-17", Confidence: c,
		})
		sum += c
	}

	ranked := e.StrategiesForField("ages")
	require.Len(t, ranked, 1)
	perf := ranked[0].Performance
	assert.Equal(t, len(confidences), perf.Attempts)
	assert.InDelta(t, sum/float64(len(confidences)), perf.AvgConfidence, 1e-12)
}

func TestHistoryBound_NeverExceedsLimit(t *testing.T) {
	st := store.NewMemory()
	cfg := DefaultConfig()
	cfg.HistoryLimit = 25
	e := New(context.Background(), cfg, st)
	t.Cleanup(func() { _ = e.Close() })

	ctx := context.Background()
	var ids []string
	for i := 0; i < 60; i++ {
		id := e.RecordExtraction(ctx, Observation{
			URL: "https://site.com/p", Field: "ages", Strategy: "regex-a",
			Value: fmt.Sprintf("v%d", i), Confidence: 0.5,
		})
		ids = append(ids, id)
	}

	history := e.History()
	require.Len(t, history, 25)

	// Retained records are the most recent by timestamp.
	assert.Equal(t, "v35", history[0].Value)
	assert.Equal(t, "v59", history[24].Value)

	// Evicted ids are gone, recent ids remain.
	_, ok := e.Record(ids[0])
	assert.False(t, ok)
	_, ok = e.Record(ids[59])
	assert.True(t, ok)
}

func TestProvideFeedback_UnknownIDIsSilentNoop(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	e.RecordExtraction(ctx, Observation{
		URL: "https://site.com/a", Field: "ages", Strategy: "regex-a",
		Value: "13-17", Confidence: 0.9,
	})
	before := e.Stats()

	assert.NotPanics(t, func() {
		e.ProvideFeedback(ctx, "no-such-record", false, "6-12")
	})

	after := e.Stats()
	assert.Equal(t, before.TotalRecords, after.TotalRecords)
	assert.Equal(t, before.VerifiedIncorrect, after.VerifiedIncorrect)
	assert.Empty(t, e.Corrections("ages"))
}

func TestProvideFeedback_RecordMutatedOnce(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	id := e.RecordExtraction(ctx, Observation{
		URL: "https://site.com/a", Field: "ages", Strategy: "regex-a",
		Value: "13-17", Confidence: 0.9,
	})

	e.ProvideFeedback(ctx, id, true, nil)
	e.ProvideFeedback(ctx, id, false, "6-12") // ignored

	rec, ok := e.Record(id)
	require.True(t, ok)
	assert.Equal(t, model.VerificationCorrect, rec.Verified)

	ranked := e.StrategiesForField("ages")
	require.Len(t, ranked, 1)
	assert.Equal(t, 1, ranked[0].Performance.Successes)
	assert.Equal(t, 0, ranked[0].Performance.Failures)
}

func TestFeedback_UpdatesPatternSubStats(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	id := e.RecordExtraction(ctx, Observation{
		URL: "https://site.com/a", Field: "ages", Strategy: "regex-a",
		Value: "13-17", Confidence: 0.9,
		Context: &model.ExtractionContext{Pattern: `\d+-\d+`},
	})
	e.ProvideFeedback(ctx, id, true, nil)

	ranked := e.StrategiesForField("ages")
	require.Len(t, ranked, 1)
	ps := ranked[0].Performance.Patterns[`\d+-\d+`]
	require.NotNil(t, ps)
	assert.Equal(t, 1, ps.Uses)
	assert.Equal(t, 1, ps.Successes)
	assert.InDelta(t, 0.9, ps.AvgConfidence, 1e-9)
}

func TestSnapshot_SurvivesRestart(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()

	e1 := New(ctx, DefaultConfig(), st)
	id := e1.RecordExtraction(ctx, Observation{
		URL: "https://site.com/a", Field: "ages", Strategy: "regex-a",
		Value: "13-17", Confidence: 0.9,
		Context: &model.ExtractionContext{Location: "main > .ages"},
	})
	e1.Flush(ctx)
	require.NoError(t, e1.Close())

	e2 := New(ctx, DefaultConfig(), st)
	t.Cleanup(func() { _ = e2.Close() })

	// History came back, so delayed feedback still lands.
	rec, ok := e2.Record(id)
	require.True(t, ok)
	assert.Equal(t, "ages", rec.Field)

	ranked := e2.StrategiesForField("ages")
	require.Len(t, ranked, 1)
	assert.Equal(t, 1, ranked[0].Performance.Attempts)

	prof, ok := e2.SiteProfile("site.com")
	require.True(t, ok)
	assert.Equal(t, 1, prof.Stats.Attempts)
	assert.Len(t, prof.FieldLocations["ages"], 1)
}

func TestLoad_CorruptSnapshotStartsEmpty(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, DefaultConfig().StateKey, []byte("not json")))

	e := New(ctx, DefaultConfig(), st)
	t.Cleanup(func() { _ = e.Close() })

	assert.Zero(t, e.Stats().TotalRecords)
	assert.Empty(t, e.Fields())
}

func TestMalformedContext_ToleratedAndIgnored(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	// No context at all, and a context with neither pattern nor location.
	e.RecordExtraction(ctx, Observation{
		URL: "https://site.com/a", Field: "ages", Strategy: "regex-a",
		Value: "13-17", Confidence: 0.95,
	})
	id := e.RecordExtraction(ctx, Observation{
		URL: "https://site.com/a", Field: "ages", Strategy: "regex-a",
		Value: "13-17", Confidence: 0.95,
		Context: &model.ExtractionContext{Selector: ".ages"},
	})
	e.ProvideFeedback(ctx, id, true, nil)

	ranked := e.StrategiesForField("ages")
	require.Len(t, ranked, 1)
	assert.Empty(t, ranked[0].Performance.Patterns)

	prof, ok := e.SiteProfile("site.com")
	require.True(t, ok)
	assert.Empty(t, prof.FieldLocations)
}

func TestStats_Rollup(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	good := e.RecordExtraction(ctx, Observation{
		URL: "https://a.com/x", Field: "ages", Strategy: "regex-a",
		Value: "13-17", Confidence: 0.9,
	})
	bad := e.RecordExtraction(ctx, Observation{
		URL: "https://b.com/y", Field: "insurance", Strategy: "regex-c",
		Value: "Aetna", Confidence: 0.5,
	})
	e.RecordExtraction(ctx, Observation{
		URL: "https://b.com/y", Field: "insurance", Strategy: "dom-label",
		Value: "Cigna", Confidence: 0.7,
	})
	e.ProvideFeedback(ctx, good, true, nil)
	e.ProvideFeedback(ctx, bad, false, "Aetna PPO")

	stats := e.Stats()
	assert.Equal(t, 3, stats.TotalRecords)
	assert.Equal(t, 1, stats.VerifiedCorrect)
	assert.Equal(t, 1, stats.VerifiedIncorrect)
	assert.Equal(t, 1, stats.Unverified)
	assert.Equal(t, 2, stats.Sites)

	require.Len(t, stats.Fields, 2)
	assert.Equal(t, "ages", stats.Fields[0].Field)
	assert.Equal(t, 1, stats.Fields[0].Attempts)
	assert.Equal(t, "insurance", stats.Fields[1].Field)
	assert.Equal(t, 2, stats.Fields[1].Attempts)
	assert.Equal(t, 1, stats.Fields[1].Corrections)
	assert.InDelta(t, 0.6, stats.Fields[1].AvgConfidence, 1e-9)
}
