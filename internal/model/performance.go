package model

// PatternStats holds sub-statistics for one concrete pattern (a specific
// matching rule instance) under a (field, strategy) pair.
type PatternStats struct {
	Uses          int     `json:"uses"`
	Successes     int     `json:"successes"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// StrategyPerformance aggregates outcomes for one (field, strategy) pair
// across all sites. AvgConfidence is the running mean of self-reported
// confidence over all attempts, verified or not.
type StrategyPerformance struct {
	Field         string                   `json:"field"`
	Strategy      string                   `json:"strategy"`
	Attempts      int                      `json:"attempts"`
	Successes     int                      `json:"successes"`
	Failures      int                      `json:"failures"`
	AvgConfidence float64                  `json:"avg_confidence"`
	Patterns      map[string]*PatternStats `json:"patterns,omitempty"`
}

// FailureRate returns failures over attempts, guarding the empty case.
func (p *StrategyPerformance) FailureRate() float64 {
	if p.Attempts == 0 {
		return 0
	}
	return float64(p.Failures) / float64(p.Attempts)
}

// SuccessRate returns verified successes over attempts.
func (p *StrategyPerformance) SuccessRate() float64 {
	if p.Attempts == 0 {
		return 0
	}
	return float64(p.Successes) / float64(p.Attempts)
}

// RecordMean folds one more confidence sample into a running mean.
// Exact for any sample count because it recomputes from the previous
// mean and count rather than a decayed estimate.
func RecordMean(prevMean float64, prevCount int, sample float64) float64 {
	return (prevMean*float64(prevCount) + sample) / float64(prevCount+1)
}
