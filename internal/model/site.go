package model

// StrategyUse tracks how often a (field, strategy) pair has been tried on
// one domain. Despite the historical "successful strategies" name of the
// containing map, Count increments on every attempt, not only verified
// successes; downstream ranking depends on that semantics.
type StrategyUse struct {
	Count         int     `json:"count"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// LocationHint remembers where on a site's pages a field was found with
// high confidence.
type LocationHint struct {
	Location   string  `json:"location"`
	Confidence float64 `json:"confidence"`
}

// SiteStats aggregates extraction outcomes across all fields and
// strategies on one domain.
type SiteStats struct {
	Attempts      int     `json:"attempts"`
	Successes     int     `json:"successes"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// SuccessRate returns verified successes over attempts.
func (s *SiteStats) SuccessRate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Attempts)
}

// SiteProfile holds everything the engine has learned about one domain.
// FieldLocations grows without bound by design; it is a per-site cache
// of high-confidence placements, not an LRU.
type SiteProfile struct {
	Domain         string                    `json:"domain"`
	Strategies     map[string]*StrategyUse   `json:"successful_strategies"`
	FieldLocations map[string][]LocationHint `json:"field_locations"`
	Stats          SiteStats                 `json:"extraction_stats"`
}

// NewSiteProfile creates an empty profile for a domain.
func NewSiteProfile(domain string) *SiteProfile {
	return &SiteProfile{
		Domain:         domain,
		Strategies:     make(map[string]*StrategyUse),
		FieldLocations: make(map[string][]LocationHint),
	}
}
