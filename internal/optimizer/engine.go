// Package optimizer implements the adaptive extraction optimization
// engine: it records every field-extraction attempt the scraper makes,
// learns which strategy works best per field and per source site, folds
// human corrections into its statistics, and ranks recommendations for
// the next extraction pass.
package optimizer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harborlight/scout-cli/internal/model"
	"github.com/harborlight/scout-cli/internal/resilience"
	"github.com/harborlight/scout-cli/internal/store"
)

// Config holds the engine tunables. Zero values fall back to defaults.
type Config struct {
	// HistoryLimit bounds the extraction history log. Default: 1000.
	HistoryLimit int `yaml:"history_limit" mapstructure:"history_limit"`

	// LocationConfidenceMin gates which observations contribute a
	// remembered field location. Default: 0.7.
	LocationConfidenceMin float64 `yaml:"location_confidence_min" mapstructure:"location_confidence_min"`

	// StrategyConfidenceMin gates the use-strategy recommendation.
	// Default: 0.7.
	StrategyConfidenceMin float64 `yaml:"strategy_confidence_min" mapstructure:"strategy_confidence_min"`

	// SiteSimilarityMin gates similar-site matching. Default: 0.7.
	SiteSimilarityMin float64 `yaml:"site_similarity_min" mapstructure:"site_similarity_min"`

	// FailureRateWarning is the failure rate above which a strategy is
	// flagged. Default: 0.5.
	FailureRateWarning float64 `yaml:"failure_rate_warning" mapstructure:"failure_rate_warning"`

	// CorrectionWarning is the correction count above which a field is
	// flagged. Default: 3.
	CorrectionWarning int `yaml:"correction_warning" mapstructure:"correction_warning"`

	// MaxLocations caps location hints per response. Default: 3.
	MaxLocations int `yaml:"max_locations" mapstructure:"max_locations"`

	// MaxPatterns caps pattern suggestions per response. Default: 5.
	MaxPatterns int `yaml:"max_patterns" mapstructure:"max_patterns"`

	// StateKey is the logical key the snapshot is stored under.
	// Default: "optimizer/state".
	StateKey string `yaml:"state_key" mapstructure:"state_key"`

	// SaveRetry controls retries of best-effort snapshot writes.
	SaveRetry resilience.RetryConfig `yaml:"-" mapstructure:"-"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		HistoryLimit:          1000,
		LocationConfidenceMin: 0.7,
		StrategyConfidenceMin: 0.7,
		SiteSimilarityMin:     0.7,
		FailureRateWarning:    0.5,
		CorrectionWarning:     3,
		MaxLocations:          3,
		MaxPatterns:           5,
		StateKey:              "optimizer/state",
		SaveRetry:             resilience.DefaultRetryConfig(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = d.HistoryLimit
	}
	if c.LocationConfidenceMin <= 0 {
		c.LocationConfidenceMin = d.LocationConfidenceMin
	}
	if c.StrategyConfidenceMin <= 0 {
		c.StrategyConfidenceMin = d.StrategyConfidenceMin
	}
	if c.SiteSimilarityMin <= 0 {
		c.SiteSimilarityMin = d.SiteSimilarityMin
	}
	if c.FailureRateWarning <= 0 {
		c.FailureRateWarning = d.FailureRateWarning
	}
	if c.CorrectionWarning <= 0 {
		c.CorrectionWarning = d.CorrectionWarning
	}
	if c.MaxLocations <= 0 {
		c.MaxLocations = d.MaxLocations
	}
	if c.MaxPatterns <= 0 {
		c.MaxPatterns = d.MaxPatterns
	}
	if c.StateKey == "" {
		c.StateKey = d.StateKey
	}
	return c
}

// Observation is one raw (field, value, confidence, context) result
// reported by the scraping pipeline.
type Observation struct {
	URL        string                   `json:"url"`
	Field      string                   `json:"field"`
	Strategy   string                   `json:"strategy"`
	Value      any                      `json:"value"`
	Confidence float64                  `json:"confidence"`
	Context    *model.ExtractionContext `json:"context,omitempty"`
}

// Engine is the adaptive extraction optimization engine. One instance
// per process; all state behind a single mutex because the incremental
// mean updates are read-modify-write. Mutations trigger a coalesced
// background snapshot write that the caller never waits on.
type Engine struct {
	mu  sync.Mutex
	cfg Config
	st  store.Store
	now func() time.Time

	history []*model.ExtractionRecord
	byID    map[string]*model.ExtractionRecord

	perf        map[string]*model.StrategyPerformance // keyed field + "::" + strategy
	sites       map[string]*model.SiteProfile
	corrections map[string][]model.CorrectionRecord
	suggested   map[string][]model.SuggestedPattern

	saveCh chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// New constructs an engine bound to the given backend and loads any
// prior snapshot. A missing or unreadable snapshot starts the engine
// empty; persistence problems are logged, never fatal.
func New(ctx context.Context, cfg Config, st store.Store) *Engine {
	e := &Engine{
		cfg:         cfg.withDefaults(),
		st:          st,
		now:         time.Now,
		byID:        make(map[string]*model.ExtractionRecord),
		perf:        make(map[string]*model.StrategyPerformance),
		sites:       make(map[string]*model.SiteProfile),
		corrections: make(map[string][]model.CorrectionRecord),
		suggested:   make(map[string][]model.SuggestedPattern),
		saveCh:      make(chan struct{}, 1),
	}
	e.load(ctx)

	e.wg.Add(1)
	go e.saveWorker()

	return e
}

// RecordExtraction records one observation, updates the pattern and site
// aggregates, prunes history, and schedules a snapshot write. It always
// succeeds locally and returns the new record's id.
func (e *Engine) RecordExtraction(_ context.Context, obs Observation) string {
	e.mu.Lock()

	rec := &model.ExtractionRecord{
		ID:         uuid.NewString(),
		Timestamp:  e.now(),
		URL:        obs.URL,
		Domain:     model.DomainOf(obs.URL),
		Field:      obs.Field,
		Strategy:   obs.Strategy,
		Value:      obs.Value,
		Confidence: obs.Confidence,
		Context:    obs.Context,
		Verified:   model.VerificationUnknown,
	}

	e.history = append(e.history, rec)
	e.byID[rec.ID] = rec
	e.pruneHistory()

	patternID, location := "", ""
	if obs.Context != nil {
		patternID = obs.Context.Pattern
		location = obs.Context.Location
	}
	e.recordPatternAttempt(obs.Field, obs.Strategy, obs.Confidence, patternID)
	e.recordSiteAttempt(rec.Domain, obs.Field, obs.Strategy, obs.Confidence, location)

	e.mu.Unlock()

	zap.L().Debug("extraction recorded",
		zap.String("id", rec.ID),
		zap.String("domain", rec.Domain),
		zap.String("field", obs.Field),
		zap.String("strategy", obs.Strategy),
		zap.Float64("confidence", obs.Confidence),
	)

	e.scheduleSave()
	return rec.ID
}

// ProvideFeedback attaches a human verdict to a record and folds it into
// the statistics. An unknown id is a normal race between eviction and
// delayed review, not an error: the call is a silent no-op. A record is
// only mutated once; repeat feedback is ignored.
func (e *Engine) ProvideFeedback(_ context.Context, recordID string, isCorrect bool, correctedValue any) {
	e.mu.Lock()

	rec, ok := e.byID[recordID]
	if !ok {
		e.mu.Unlock()
		zap.L().Debug("feedback for unknown record", zap.String("id", recordID))
		return
	}
	if rec.Verified != model.VerificationUnknown {
		e.mu.Unlock()
		return
	}

	rec.Feedback = &model.Feedback{
		Timestamp:      e.now(),
		IsCorrect:      isCorrect,
		CorrectedValue: correctedValue,
	}
	if isCorrect {
		rec.Verified = model.VerificationCorrect
	} else {
		rec.Verified = model.VerificationIncorrect
	}

	patternID := ""
	if rec.Context != nil {
		patternID = rec.Context.Pattern
	}
	e.recordPatternOutcome(rec.Field, rec.Strategy, isCorrect, patternID)
	e.recordSiteOutcome(rec.Domain, isCorrect, rec.Confidence)

	if !isCorrect && correctedValue != nil {
		analysis := AnalyzeCorrection(rec.Value, correctedValue)
		e.recordCorrection(rec.Field, rec.Value, correctedValue, analysis, rec.Context, rec.Domain)
	}

	e.mu.Unlock()
	e.scheduleSave()
}

// scheduleSave queues a snapshot write, coalescing with any write
// already pending.
func (e *Engine) scheduleSave() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	select {
	case e.saveCh <- struct{}{}:
	default:
	}
}

func (e *Engine) saveWorker() {
	defer e.wg.Done()
	for range e.saveCh {
		e.saveOnce(context.Background())
	}
}

// Flush writes the current snapshot synchronously. The CLI calls this
// before exiting so one-shot invocations don't lose state to the
// fire-and-forget queue.
func (e *Engine) Flush(ctx context.Context) {
	e.saveOnce(ctx)
}

// Close flushes pending state and stops the background save worker. The
// store itself stays open; its owner closes it.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.saveCh)
	e.mu.Unlock()

	e.wg.Wait()
	e.saveOnce(context.Background())
	return nil
}
