package model

import "time"

// RecommendationType identifies the kind of guidance a recommendation
// carries. Lower priority numbers sort first.
type RecommendationType string

const (
	RecommendUseStrategy  RecommendationType = "use-strategy"
	RecommendLocations    RecommendationType = "check-locations"
	RecommendPatterns     RecommendationType = "use-patterns"
	RecommendSimilarSites RecommendationType = "similar-site-strategies"
	RecommendWarnings     RecommendationType = "warnings"
)

// StrategyRanking pairs a strategy with its cross-site performance,
// sorted descending by average confidence in query results.
type StrategyRanking struct {
	Strategy    string               `json:"strategy"`
	Performance *StrategyPerformance `json:"performance"`
}

// StrategyAdvice is a site-specific strategy suggestion.
type StrategyAdvice struct {
	Strategy   string  `json:"strategy"`
	Confidence float64 `json:"confidence"`
	Count      int     `json:"count"`
}

// PatternAdvice is a concrete pattern suggestion with its track record.
type PatternAdvice struct {
	Pattern       string  `json:"pattern"`
	Uses          int     `json:"uses"`
	Successes     int     `json:"successes"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// SimilarSite annotates a structurally similar domain with its overall
// extraction success rate.
type SimilarSite struct {
	Domain      string  `json:"domain"`
	Similarity  float64 `json:"similarity"`
	SuccessRate float64 `json:"success_rate"`
}

// WarningType identifies the kind of warning.
type WarningType string

const (
	WarningHighFailureRate     WarningType = "high-failure-rate"
	WarningFrequentCorrections WarningType = "frequent-corrections"
)

// Warning flags a strategy or field the scraper should treat with care.
type Warning struct {
	Type         WarningType  `json:"type"`
	Strategy     string       `json:"strategy,omitempty"`
	FailureRate  float64      `json:"failure_rate,omitempty"`
	Count        int          `json:"count,omitempty"`
	CommonIssues []IssueCount `json:"common_issues,omitempty"`
}

// OptimizedStrategy is the composed per-(field, domain) guidance returned
// to the scraper before an extraction pass.
type OptimizedStrategy struct {
	Strategies []StrategyAdvice `json:"strategies"`
	Patterns   []PatternAdvice  `json:"patterns"`
	Locations  []LocationHint   `json:"locations"`
	Confidence float64          `json:"confidence"`
}

// Recommendation is one ranked, explainable piece of guidance. Exactly
// one payload field is populated, matching Type. Recommendations are
// computed on demand and never persisted.
type Recommendation struct {
	Type         RecommendationType `json:"type"`
	Priority     int                `json:"priority"`
	Strategy     *OptimizedStrategy `json:"strategy,omitempty"`
	Locations    []LocationHint     `json:"locations,omitempty"`
	Patterns     []PatternAdvice    `json:"patterns,omitempty"`
	SimilarSites []SimilarSite      `json:"similar_sites,omitempty"`
	Warnings     []Warning          `json:"warnings,omitempty"`
}

// FieldStat is one row of the engine-wide statistics rollup.
type FieldStat struct {
	Field         string  `json:"field"`
	Attempts      int     `json:"attempts"`
	Successes     int     `json:"successes"`
	Failures      int     `json:"failures"`
	AvgConfidence float64 `json:"avg_confidence"`
	Corrections   int     `json:"corrections"`
}

// EngineStats is a point-in-time summary of everything the engine has
// recorded, used by the stats command, report export, and monitoring.
type EngineStats struct {
	TotalRecords      int         `json:"total_records"`
	VerifiedCorrect   int         `json:"verified_correct"`
	VerifiedIncorrect int         `json:"verified_incorrect"`
	Unverified        int         `json:"unverified"`
	Sites             int         `json:"sites"`
	Fields            []FieldStat `json:"fields"`
	GeneratedAt       time.Time   `json:"generated_at"`
}
