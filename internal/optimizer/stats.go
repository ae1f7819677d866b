package optimizer

import (
	"sort"

	"github.com/harborlight/scout-cli/internal/model"
)

// Stats summarizes everything the engine has recorded: history verdict
// counts, per-field rollups across strategies, and the number of sites
// profiled.
func (e *Engine) Stats() model.EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := model.EngineStats{
		TotalRecords: len(e.history),
		Sites:        len(e.sites),
		GeneratedAt:  e.now(),
	}

	for _, rec := range e.history {
		switch rec.Verified {
		case model.VerificationCorrect:
			stats.VerifiedCorrect++
		case model.VerificationIncorrect:
			stats.VerifiedIncorrect++
		default:
			stats.Unverified++
		}
	}

	byField := make(map[string]*model.FieldStat)
	for _, p := range e.perf {
		fs, ok := byField[p.Field]
		if !ok {
			fs = &model.FieldStat{Field: p.Field}
			byField[p.Field] = fs
		}
		// Weighted merge keeps the mean exact across strategies.
		total := fs.Attempts + p.Attempts
		if total > 0 {
			fs.AvgConfidence = (fs.AvgConfidence*float64(fs.Attempts) + p.AvgConfidence*float64(p.Attempts)) / float64(total)
		}
		fs.Attempts = total
		fs.Successes += p.Successes
		fs.Failures += p.Failures
	}
	for field, ledger := range e.corrections {
		fs, ok := byField[field]
		if !ok {
			fs = &model.FieldStat{Field: field}
			byField[field] = fs
		}
		fs.Corrections = len(ledger)
	}

	stats.Fields = make([]model.FieldStat, 0, len(byField))
	for _, fs := range byField {
		stats.Fields = append(stats.Fields, *fs)
	}
	sort.Slice(stats.Fields, func(i, j int) bool {
		return stats.Fields[i].Field < stats.Fields[j].Field
	})

	return stats
}
