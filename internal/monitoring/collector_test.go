package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborlight/scout-cli/internal/model"
)

type fakeSource struct {
	history []model.ExtractionRecord
	stats   model.EngineStats
}

func (f *fakeSource) History() []model.ExtractionRecord { return f.history }
func (f *fakeSource) Stats() model.EngineStats          { return f.stats }

var collectorNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func record(age time.Duration, confidence float64, verified model.Verification, corrected any) model.ExtractionRecord {
	rec := model.ExtractionRecord{
		Timestamp:  collectorNow.Add(-age),
		Confidence: confidence,
		Verified:   verified,
	}
	if verified == model.VerificationIncorrect {
		rec.Feedback = &model.Feedback{CorrectedValue: corrected}
	}
	return rec
}

func newTestCollector(src *fakeSource) *Collector {
	c := NewCollector(src)
	c.now = func() time.Time { return collectorNow }
	return c
}

func TestCollect_WindowAndCounts(t *testing.T) {
	src := &fakeSource{
		history: []model.ExtractionRecord{
			record(5*time.Minute, 0.9, model.VerificationCorrect, nil),
			record(10*time.Minute, 0.5, model.VerificationIncorrect, "fixed"),
			record(20*time.Minute, 0.7, model.VerificationUnknown, nil),
			// Outside the window.
			record(2*time.Hour, 0.1, model.VerificationIncorrect, "old"),
		},
		stats: model.EngineStats{Sites: 4},
	}

	snap, err := newTestCollector(src).Collect(context.Background(), 60)
	require.NoError(t, err)

	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, 1, snap.VerifiedCorrect)
	assert.Equal(t, 1, snap.VerifiedFailed)
	assert.Equal(t, 1, snap.Unverified)
	assert.InDelta(t, 0.7, snap.AvgConfidence, 1e-9)
	assert.InDelta(t, 0.5, snap.FailureRate, 1e-9)
	assert.InDelta(t, 1.0/3.0, snap.CorrectionShare, 1e-9)
	assert.Equal(t, 4, snap.Sites)
	assert.Equal(t, 60, snap.LookbackMins)
}

func TestCollect_EmptyHistory(t *testing.T) {
	snap, err := newTestCollector(&fakeSource{}).Collect(context.Background(), 60)
	require.NoError(t, err)

	assert.Zero(t, snap.Total)
	assert.Zero(t, snap.AvgConfidence)
	assert.Zero(t, snap.FailureRate)
	assert.Zero(t, snap.CorrectionShare)
}

func TestCollect_IncorrectWithoutCorrectionNotCounted(t *testing.T) {
	src := &fakeSource{
		history: []model.ExtractionRecord{
			record(5*time.Minute, 0.5, model.VerificationIncorrect, nil),
		},
	}

	snap, err := newTestCollector(src).Collect(context.Background(), 60)
	require.NoError(t, err)

	assert.Equal(t, 1, snap.VerifiedFailed)
	assert.Zero(t, snap.CorrectionShare)
}
