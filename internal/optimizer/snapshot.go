package optimizer

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/harborlight/scout-cli/internal/model"
	"github.com/harborlight/scout-cli/internal/resilience"
)

// snapshot is the full persisted engine state: the three learning
// stores, the bounded history log, and a save timestamp. Writes are
// idempotent full-state replacements, so retries need no sequencing.
type snapshot struct {
	SavedAt     time.Time                             `json:"saved_at"`
	Performance map[string]*model.StrategyPerformance `json:"pattern_performance"`
	Sites       map[string]*model.SiteProfile         `json:"site_profiles"`
	Corrections map[string][]model.CorrectionRecord   `json:"corrections"`
	Suggested   map[string][]model.SuggestedPattern   `json:"suggested_patterns"`
	History     []*model.ExtractionRecord             `json:"history,omitempty"`
}

// saveOnce serializes current state and writes it to the backend with
// retries. Failures are logged and dropped: persistence is best-effort
// and the engine keeps working in memory.
func (e *Engine) saveOnce(ctx context.Context) {
	e.mu.Lock()
	snap := snapshot{
		SavedAt:     e.now(),
		Performance: e.perf,
		Sites:       e.sites,
		Corrections: e.corrections,
		Suggested:   e.suggested,
		History:     e.history,
	}
	data, err := json.Marshal(snap)
	e.mu.Unlock()

	if err != nil {
		zap.L().Error("snapshot marshal failed", zap.Error(err))
		return
	}

	cfg := e.cfg.SaveRetry
	cfg.OnRetry = resilience.RetryLogger("store", "save snapshot")
	err = resilience.Do(ctx, cfg, func(ctx context.Context) error {
		return e.st.Set(ctx, e.cfg.StateKey, data)
	})
	if err != nil {
		zap.L().Warn("snapshot save failed, continuing in memory",
			zap.String("key", e.cfg.StateKey),
			zap.Error(err),
		)
		return
	}

	zap.L().Debug("snapshot saved",
		zap.String("key", e.cfg.StateKey),
		zap.Int("bytes", len(data)),
	)
}

// load restores a prior snapshot at construction. A missing key starts
// the engine empty; an unreadable snapshot is logged and discarded.
func (e *Engine) load(ctx context.Context) {
	data, err := e.st.Get(ctx, e.cfg.StateKey)
	if err != nil {
		zap.L().Warn("snapshot load failed, starting empty", zap.Error(err))
		return
	}
	if data == nil {
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		zap.L().Warn("snapshot unreadable, starting empty", zap.Error(err))
		return
	}

	if snap.Performance != nil {
		e.perf = snap.Performance
	}
	if snap.Sites != nil {
		e.sites = snap.Sites
	}
	if snap.Corrections != nil {
		e.corrections = snap.Corrections
	}
	if snap.Suggested != nil {
		e.suggested = snap.Suggested
	}
	for _, p := range e.perf {
		if p.Patterns == nil {
			p.Patterns = make(map[string]*model.PatternStats)
		}
	}
	for _, prof := range e.sites {
		if prof.Strategies == nil {
			prof.Strategies = make(map[string]*model.StrategyUse)
		}
		if prof.FieldLocations == nil {
			prof.FieldLocations = make(map[string][]model.LocationHint)
		}
	}

	e.history = snap.History
	for _, rec := range e.history {
		e.byID[rec.ID] = rec
	}
	e.pruneHistory()

	zap.L().Info("optimizer state loaded",
		zap.Time("saved_at", snap.SavedAt),
		zap.Int("records", len(e.history)),
		zap.Int("sites", len(e.sites)),
	)
}
