package optimizer

import (
	"sort"
	"strings"

	"github.com/harborlight/scout-cli/internal/model"
)

// Recommendation priorities, lower first.
const (
	priorityUseStrategy  = 1
	priorityLocations    = 2
	priorityPatterns     = 3
	prioritySimilarSites = 4
	priorityWarnings     = 5
)

// GetRecommendations composes the four stores into ranked, explainable
// guidance for the next extraction pass on (field, domain). Every query
// degrades to an empty slice when no data exists.
func (e *Engine) GetRecommendations(field, domain string) []model.Recommendation {
	e.mu.Lock()
	defer e.mu.Unlock()

	var recs []model.Recommendation

	opt := e.optimizedStrategyLocked(field, domain)
	if opt.Confidence > e.cfg.StrategyConfidenceMin {
		recs = append(recs, model.Recommendation{
			Type:     model.RecommendUseStrategy,
			Priority: priorityUseStrategy,
			Strategy: &opt,
		})
	}

	if locs := e.fieldLocationsLocked(field, domain); len(locs) > 0 {
		recs = append(recs, model.Recommendation{
			Type:      model.RecommendLocations,
			Priority:  priorityLocations,
			Locations: locs,
		})
	}

	if ranked := e.strategiesForFieldLocked(field); len(ranked) > 0 {
		if patterns := topPatterns(ranked[0].Performance, e.cfg.MaxPatterns); len(patterns) > 0 {
			recs = append(recs, model.Recommendation{
				Type:     model.RecommendPatterns,
				Priority: priorityPatterns,
				Patterns: patterns,
			})
		}
	}

	if similar := e.findSimilarSitesLocked(domain); len(similar) > 0 {
		recs = append(recs, model.Recommendation{
			Type:         model.RecommendSimilarSites,
			Priority:     prioritySimilarSites,
			SimilarSites: similar,
		})
	}

	if warnings := e.fieldWarningsLocked(field); len(warnings) > 0 {
		recs = append(recs, model.Recommendation{
			Type:     model.RecommendWarnings,
			Priority: priorityWarnings,
			Warnings: warnings,
		})
	}

	return recs
}

// GetOptimizedStrategy returns the composed per-(field, domain)
// guidance: the domain's ranked strategies, its remembered locations,
// and the best cross-site patterns, with an overall confidence.
func (e *Engine) GetOptimizedStrategy(field, domain string) model.OptimizedStrategy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.optimizedStrategyLocked(field, domain)
}

func (e *Engine) optimizedStrategyLocked(field, domain string) model.OptimizedStrategy {
	opt := model.OptimizedStrategy{
		Strategies: []model.StrategyAdvice{},
		Patterns:   []model.PatternAdvice{},
		Locations:  []model.LocationHint{},
	}

	if prof, ok := e.sites[domain]; ok {
		prefix := field + perfKeySep
		for key, su := range prof.Strategies {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			opt.Strategies = append(opt.Strategies, model.StrategyAdvice{
				Strategy:   strings.TrimPrefix(key, prefix),
				Confidence: su.AvgConfidence,
				Count:      su.Count,
			})
		}
		sort.Slice(opt.Strategies, func(i, j int) bool {
			if opt.Strategies[i].Confidence != opt.Strategies[j].Confidence {
				return opt.Strategies[i].Confidence > opt.Strategies[j].Confidence
			}
			return opt.Strategies[i].Strategy < opt.Strategies[j].Strategy
		})
	}

	if locs := e.fieldLocationsLocked(field, domain); locs != nil {
		opt.Locations = locs
	}

	ranked := e.strategiesForFieldLocked(field)
	if len(ranked) > 0 {
		opt.Patterns = topPatterns(ranked[0].Performance, e.cfg.MaxPatterns)
		if opt.Patterns == nil {
			opt.Patterns = []model.PatternAdvice{}
		}
	}

	switch {
	case len(opt.Strategies) > 0:
		opt.Confidence = opt.Strategies[0].Confidence
	case len(ranked) > 0:
		opt.Confidence = ranked[0].Performance.AvgConfidence
	}

	return opt
}

// fieldLocationsLocked returns the domain's remembered locations for a
// field, best-confidence first, capped at the configured limit.
func (e *Engine) fieldLocationsLocked(field, domain string) []model.LocationHint {
	prof, ok := e.sites[domain]
	if !ok {
		return nil
	}
	hints := prof.FieldLocations[field]
	if len(hints) == 0 {
		return nil
	}
	out := append([]model.LocationHint(nil), hints...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	if len(out) > e.cfg.MaxLocations {
		out = out[:e.cfg.MaxLocations]
	}
	return out
}

// GetFieldWarnings flags strategies with a high verified failure rate
// and fields drawing frequent corrections.
func (e *Engine) GetFieldWarnings(field, domain string) []model.Warning {
	e.mu.Lock()
	defer e.mu.Unlock()
	_ = domain // warnings aggregate across sites
	return e.fieldWarningsLocked(field)
}

func (e *Engine) fieldWarningsLocked(field string) []model.Warning {
	var warnings []model.Warning

	for _, ranked := range e.strategiesForFieldLocked(field) {
		rate := ranked.Performance.FailureRate()
		if rate > e.cfg.FailureRateWarning {
			warnings = append(warnings, model.Warning{
				Type:        model.WarningHighFailureRate,
				Strategy:    ranked.Strategy,
				FailureRate: rate,
			})
		}
	}

	if n := len(e.corrections[field]); n > e.cfg.CorrectionWarning {
		warnings = append(warnings, model.Warning{
			Type:         model.WarningFrequentCorrections,
			Count:        n,
			CommonIssues: e.summarizeCorrectionsLocked(field),
		})
	}

	return warnings
}
