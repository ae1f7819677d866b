package optimizer

import (
	"sort"

	"github.com/harborlight/scout-cli/internal/model"
	"github.com/harborlight/scout-cli/internal/similarity"
)

// recordSiteAttempt folds one observation into the per-domain profile.
// Every attempt counts toward the strategy-use map, not only verified
// successes; ranking depends on that. Callers hold e.mu.
func (e *Engine) recordSiteAttempt(domain, field, strategy string, confidence float64, location string) {
	if domain == "" {
		return
	}
	prof, ok := e.sites[domain]
	if !ok {
		prof = model.NewSiteProfile(domain)
		e.sites[domain] = prof
	}

	prof.Stats.Attempts++

	key := perfKey(field, strategy)
	su, ok := prof.Strategies[key]
	if !ok {
		su = &model.StrategyUse{}
		prof.Strategies[key] = su
	}
	su.AvgConfidence = model.RecordMean(su.AvgConfidence, su.Count, confidence)
	su.Count++

	if confidence > e.cfg.LocationConfidenceMin && location != "" {
		prof.FieldLocations[field] = append(prof.FieldLocations[field], model.LocationHint{
			Location:   location,
			Confidence: confidence,
		})
	}
}

// recordSiteOutcome folds a verified outcome into the domain's aggregate
// stats. The running confidence mean counts an incorrect extraction as
// zero. Callers hold e.mu.
func (e *Engine) recordSiteOutcome(domain string, isCorrect bool, confidence float64) {
	prof, ok := e.sites[domain]
	if !ok || prof.Stats.Attempts == 0 {
		return
	}
	if isCorrect {
		prof.Stats.Successes++
	}
	sample := 0.0
	if isCorrect {
		sample = confidence
	}
	n := prof.Stats.Attempts
	prof.Stats.AvgConfidence = (prof.Stats.AvgConfidence*float64(n-1) + sample) / float64(n)
}

// SiteSimilarity scores how alike two domains look to the engine: the
// mean of the Jaccard overlaps of their strategy-use key sets and their
// field-location key sets. A factor with an empty side is excluded, not
// counted as zero.
func (e *Engine) SiteSimilarity(domainA, domainB string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, okA := e.sites[domainA]
	b, okB := e.sites[domainB]
	if !okA || !okB {
		return 0
	}
	return siteSimilarity(a, b)
}

func siteSimilarity(a, b *model.SiteProfile) float64 {
	var factors []float64
	if len(a.Strategies) > 0 && len(b.Strategies) > 0 {
		factors = append(factors, similarity.Jaccard(
			similarity.KeySet(a.Strategies),
			similarity.KeySet(b.Strategies),
		))
	}
	if len(a.FieldLocations) > 0 && len(b.FieldLocations) > 0 {
		factors = append(factors, similarity.Jaccard(
			similarity.KeySet(a.FieldLocations),
			similarity.KeySet(b.FieldLocations),
		))
	}
	if len(factors) == 0 {
		return 0
	}
	sum := 0.0
	for _, f := range factors {
		sum += f
	}
	return sum / float64(len(factors))
}

// FindSimilarSites returns every other domain whose similarity to the
// given domain exceeds the configured threshold, sorted descending by
// similarity and annotated with that site's overall success rate.
func (e *Engine) FindSimilarSites(domain string) []model.SimilarSite {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findSimilarSitesLocked(domain)
}

func (e *Engine) findSimilarSitesLocked(domain string) []model.SimilarSite {
	prof, ok := e.sites[domain]
	if !ok {
		return nil
	}

	var out []model.SimilarSite
	for other, otherProf := range e.sites {
		if other == domain {
			continue
		}
		sim := siteSimilarity(prof, otherProf)
		if sim <= e.cfg.SiteSimilarityMin {
			continue
		}
		out = append(out, model.SimilarSite{
			Domain:      other,
			Similarity:  sim,
			SuccessRate: otherProf.Stats.SuccessRate(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Domain < out[j].Domain
	})
	return out
}

// SiteProfile returns a copy of one domain's profile.
func (e *Engine) SiteProfile(domain string) (model.SiteProfile, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prof, ok := e.sites[domain]
	if !ok {
		return model.SiteProfile{}, false
	}
	return copySiteProfile(prof), true
}

// SiteProfiles returns copies of every known profile, sorted by domain.
func (e *Engine) SiteProfiles() []model.SiteProfile {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.SiteProfile, 0, len(e.sites))
	for _, prof := range e.sites {
		out = append(out, copySiteProfile(prof))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out
}

func copySiteProfile(prof *model.SiteProfile) model.SiteProfile {
	cp := *prof
	cp.Strategies = make(map[string]*model.StrategyUse, len(prof.Strategies))
	for k, su := range prof.Strategies {
		s := *su
		cp.Strategies[k] = &s
	}
	cp.FieldLocations = make(map[string][]model.LocationHint, len(prof.FieldLocations))
	for k, hints := range prof.FieldLocations {
		cp.FieldLocations[k] = append([]model.LocationHint(nil), hints...)
	}
	return cp
}
