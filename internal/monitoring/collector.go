package monitoring

import (
	"context"
	"time"

	"github.com/harborlight/scout-cli/internal/model"
)

// MetricsSnapshot holds a point-in-time view of extraction health
// within the lookback window.
type MetricsSnapshot struct {
	Total           int     `json:"total"`
	VerifiedCorrect int     `json:"verified_correct"`
	VerifiedFailed  int     `json:"verified_failed"`
	Unverified      int     `json:"unverified"`
	AvgConfidence   float64 `json:"avg_confidence"`
	FailureRate     float64 `json:"failure_rate"`     // failed over finished
	CorrectionShare float64 `json:"correction_share"` // corrected over total
	Sites           int     `json:"sites"`

	// Metadata.
	LookbackMins int       `json:"lookback_mins"`
	CollectedAt  time.Time `json:"collected_at"`
}

// Source abstracts the engine methods the collector reads.
type Source interface {
	History() []model.ExtractionRecord
	Stats() model.EngineStats
}

// Collector derives health metrics from the engine's extraction history.
type Collector struct {
	source Source
	now    func() time.Time
}

// NewCollector creates a new metrics collector.
func NewCollector(source Source) *Collector {
	return &Collector{source: source, now: time.Now}
}

// Collect summarizes extraction outcomes over the lookback window.
func (c *Collector) Collect(_ context.Context, lookbackMins int) (*MetricsSnapshot, error) {
	now := c.now().UTC()
	snap := &MetricsSnapshot{
		LookbackMins: lookbackMins,
		CollectedAt:  now,
	}

	cutoff := now.Add(-time.Duration(lookbackMins) * time.Minute)

	var confidenceSum float64
	var corrected int
	for _, rec := range c.source.History() {
		if rec.Timestamp.Before(cutoff) {
			continue
		}
		snap.Total++
		confidenceSum += rec.Confidence

		switch rec.Verified {
		case model.VerificationCorrect:
			snap.VerifiedCorrect++
		case model.VerificationIncorrect:
			snap.VerifiedFailed++
			if rec.Feedback != nil && rec.Feedback.CorrectedValue != nil {
				corrected++
			}
		default:
			snap.Unverified++
		}
	}

	if snap.Total > 0 {
		snap.AvgConfidence = confidenceSum / float64(snap.Total)
		snap.CorrectionShare = float64(corrected) / float64(snap.Total)
	}
	if finished := snap.VerifiedCorrect + snap.VerifiedFailed; finished > 0 {
		snap.FailureRate = float64(snap.VerifiedFailed) / float64(finished)
	}

	snap.Sites = c.source.Stats().Sites

	return snap, nil
}
