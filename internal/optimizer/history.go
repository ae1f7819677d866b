package optimizer

import (
	"sort"

	"github.com/harborlight/scout-cli/internal/model"
)

// pruneHistory evicts the oldest-timestamp records once the log exceeds
// its limit, keeping exactly the most recent HistoryLimit entries.
// Timestamp ties break by insertion order via the stable sort. Callers
// hold e.mu.
func (e *Engine) pruneHistory() {
	excess := len(e.history) - e.cfg.HistoryLimit
	if excess <= 0 {
		return
	}

	sort.SliceStable(e.history, func(i, j int) bool {
		return e.history[i].Timestamp.Before(e.history[j].Timestamp)
	})

	for _, rec := range e.history[:excess] {
		delete(e.byID, rec.ID)
	}
	e.history = append(e.history[:0], e.history[excess:]...)
}

// History returns a copy of the retained extraction records, oldest
// first.
func (e *Engine) History() []model.ExtractionRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.ExtractionRecord, 0, len(e.history))
	for _, rec := range e.history {
		out = append(out, *rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Record returns a copy of one record by id, if still retained.
func (e *Engine) Record(recordID string) (model.ExtractionRecord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.byID[recordID]
	if !ok {
		return model.ExtractionRecord{}, false
	}
	return *rec, true
}
