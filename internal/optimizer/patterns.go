package optimizer

import (
	"sort"
	"strings"

	"github.com/harborlight/scout-cli/internal/model"
)

const perfKeySep = "::"

func perfKey(field, strategy string) string {
	return field + perfKeySep + strategy
}

// recordPatternAttempt folds one observation into the cross-site
// (field, strategy) statistics. Callers hold e.mu.
func (e *Engine) recordPatternAttempt(field, strategy string, confidence float64, patternID string) {
	key := perfKey(field, strategy)
	p, ok := e.perf[key]
	if !ok {
		p = &model.StrategyPerformance{
			Field:    field,
			Strategy: strategy,
			Patterns: make(map[string]*model.PatternStats),
		}
		e.perf[key] = p
	}

	p.AvgConfidence = model.RecordMean(p.AvgConfidence, p.Attempts, confidence)
	p.Attempts++

	if patternID == "" {
		return
	}
	ps, ok := p.Patterns[patternID]
	if !ok {
		ps = &model.PatternStats{}
		p.Patterns[patternID] = ps
	}
	ps.AvgConfidence = model.RecordMean(ps.AvgConfidence, ps.Uses, confidence)
	ps.Uses++
}

// recordPatternOutcome folds a verified outcome into the (field,
// strategy) statistics. Callers hold e.mu.
func (e *Engine) recordPatternOutcome(field, strategy string, isCorrect bool, patternID string) {
	p, ok := e.perf[perfKey(field, strategy)]
	if !ok {
		return
	}
	if isCorrect {
		p.Successes++
		if patternID != "" {
			if ps, ok := p.Patterns[patternID]; ok {
				ps.Successes++
			}
		}
	} else {
		p.Failures++
	}
}

// StrategiesForField returns the cross-site performance of every
// strategy tried for a field, sorted descending by average confidence.
func (e *Engine) StrategiesForField(field string) []model.StrategyRanking {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.strategiesForFieldLocked(field)
}

func (e *Engine) strategiesForFieldLocked(field string) []model.StrategyRanking {
	var out []model.StrategyRanking
	for _, p := range e.perf {
		if p.Field != field {
			continue
		}
		out = append(out, model.StrategyRanking{
			Strategy:    p.Strategy,
			Performance: copyPerformance(p),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].Performance, out[j].Performance
		if pi.AvgConfidence != pj.AvgConfidence {
			return pi.AvgConfidence > pj.AvgConfidence
		}
		return out[i].Strategy < out[j].Strategy
	})
	return out
}

// FailureRate returns failures over attempts for a (field, strategy)
// pair, zero when the pair has never been seen.
func (e *Engine) FailureRate(field, strategy string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.perf[perfKey(field, strategy)]
	if !ok {
		return 0
	}
	return p.FailureRate()
}

// Fields returns every field the engine has statistics for, sorted.
func (e *Engine) Fields() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	seen := make(map[string]struct{})
	for _, p := range e.perf {
		seen[p.Field] = struct{}{}
	}
	for field := range e.corrections {
		seen[field] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func copyPerformance(p *model.StrategyPerformance) *model.StrategyPerformance {
	cp := *p
	cp.Patterns = make(map[string]*model.PatternStats, len(p.Patterns))
	for id, ps := range p.Patterns {
		s := *ps
		cp.Patterns[id] = &s
	}
	return &cp
}

// topPatterns ranks a performance entry's concrete patterns descending
// by average confidence, capped at limit. Ties break by pattern id so
// results are deterministic.
func topPatterns(p *model.StrategyPerformance, limit int) []model.PatternAdvice {
	if p == nil || len(p.Patterns) == 0 {
		return nil
	}
	out := make([]model.PatternAdvice, 0, len(p.Patterns))
	for id, ps := range p.Patterns {
		out = append(out, model.PatternAdvice{
			Pattern:       id,
			Uses:          ps.Uses,
			Successes:     ps.Successes,
			AvgConfidence: ps.AvgConfidence,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgConfidence != out[j].AvgConfidence {
			return out[i].AvgConfidence > out[j].AvgConfidence
		}
		return strings.Compare(out[i].Pattern, out[j].Pattern) < 0
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
