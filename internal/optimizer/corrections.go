package optimizer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/harborlight/scout-cli/internal/model"
	"github.com/harborlight/scout-cli/internal/similarity"
)

// AnalyzeCorrection classifies how an extracted value differed from its
// human correction. Classification order: missed / false-positive on
// emptiness, then string comparisons (case, containment, edit
// distance), then element-level list diffing, else unknown.
func AnalyzeCorrection(extracted, corrected any) model.CorrectionAnalysis {
	extEmpty := isEmptyValue(extracted)
	corEmpty := isEmptyValue(corrected)

	switch {
	case extEmpty && corEmpty:
		return model.CorrectionAnalysis{Type: model.CorrectionUnknown}
	case extEmpty:
		a := model.CorrectionAnalysis{Type: model.CorrectionMissed}
		if s, ok := asString(corrected); ok {
			a.SuggestedPattern = derivePattern(s)
		}
		return a
	case corEmpty:
		return model.CorrectionAnalysis{Type: model.CorrectionFalsePositive}
	}

	es, eok := asString(extracted)
	cs, cok := asString(corrected)
	if eok && cok {
		return analyzeStrings(es, cs)
	}

	el, elok := asStringList(extracted)
	cl, clok := asStringList(corrected)
	if elok && clok {
		return model.CorrectionAnalysis{
			Type:       model.CorrectionArray,
			Difference: diffLists(el, cl),
		}
	}

	return model.CorrectionAnalysis{Type: model.CorrectionUnknown}
}

func analyzeStrings(extracted, corrected string) model.CorrectionAnalysis {
	if similarity.EqualFold(extracted, corrected) {
		return model.CorrectionAnalysis{
			Type:       model.CorrectionCase,
			Similarity: similarity.Ratio(similarity.Fold(extracted), similarity.Fold(corrected)),
		}
	}
	if strings.Contains(extracted, corrected) || strings.Contains(corrected, extracted) {
		return model.CorrectionAnalysis{
			Type:             model.CorrectionPartial,
			Similarity:       similarity.Ratio(extracted, corrected),
			SuggestedPattern: derivePattern(corrected),
		}
	}
	return model.CorrectionAnalysis{
		Type:       model.CorrectionDifferent,
		Similarity: similarity.Ratio(extracted, corrected),
	}
}

// diffLists computes the element-level set difference between an
// extracted list and its correction, preserving each side's order.
func diffLists(extracted, corrected []string) *model.ArrayDiff {
	extSet := make(map[string]struct{}, len(extracted))
	for _, v := range extracted {
		extSet[v] = struct{}{}
	}
	corSet := make(map[string]struct{}, len(corrected))
	for _, v := range corrected {
		corSet[v] = struct{}{}
	}

	diff := &model.ArrayDiff{Missing: []string{}, Extra: []string{}}
	for _, v := range corrected {
		if _, ok := extSet[v]; !ok {
			diff.Missing = append(diff.Missing, v)
		}
	}
	for _, v := range extracted {
		if _, ok := corSet[v]; !ok {
			diff.Extra = append(diff.Extra, v)
		}
	}
	return diff
}

// derivePattern generalizes a corrected value into a coarse matching
// rule: digit runs become \d+, letter runs [A-Za-z]+, whitespace runs
// \s+, everything else is escaped literally.
func derivePattern(value string) string {
	if value == "" {
		return ""
	}
	var b strings.Builder
	runes := []rune(value)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsDigit(r):
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
			b.WriteString(`\d+`)
		case unicode.IsLetter(r):
			for i < len(runes) && unicode.IsLetter(runes[i]) {
				i++
			}
			b.WriteString(`[A-Za-z]+`)
		case unicode.IsSpace(r):
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			b.WriteString(`\s+`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
			i++
		}
	}
	return b.String()
}

// recordCorrection appends to the field's ledger and, when the analysis
// derived a pattern, to the field's suggested-pattern list. Callers
// hold e.mu.
func (e *Engine) recordCorrection(field string, original, corrected any, analysis model.CorrectionAnalysis, ctx *model.ExtractionContext, domain string) {
	e.corrections[field] = append(e.corrections[field], model.CorrectionRecord{
		Timestamp: e.now(),
		Original:  original,
		Corrected: corrected,
		Analysis:  analysis,
		Context:   ctx,
		Domain:    domain,
	})

	if analysis.SuggestedPattern != "" {
		example, _ := asString(corrected)
		e.suggested[field] = append(e.suggested[field], model.SuggestedPattern{
			Pattern:   analysis.SuggestedPattern,
			Example:   example,
			Source:    string(analysis.Type),
			CreatedAt: e.now(),
		})
	}
}

// SummarizeCorrections ranks the correction types recorded for a field,
// descending by count.
func (e *Engine) SummarizeCorrections(field string) []model.IssueCount {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summarizeCorrectionsLocked(field)
}

func (e *Engine) summarizeCorrectionsLocked(field string) []model.IssueCount {
	counts := make(map[model.CorrectionType]int)
	for _, c := range e.corrections[field] {
		counts[c.Analysis.Type]++
	}
	out := make([]model.IssueCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, model.IssueCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// Corrections returns a copy of the field's correction ledger.
func (e *Engine) Corrections(field string) []model.CorrectionRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.CorrectionRecord(nil), e.corrections[field]...)
}

// SuggestedPatterns returns the patterns derived from a field's
// corrections, newest last.
func (e *Engine) SuggestedPatterns(field string) []model.SuggestedPattern {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.SuggestedPattern(nil), e.suggested[field]...)
}

// isEmptyValue reports whether a value carries no extracted content:
// nil, an empty string, or an empty list.
func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

// asString accepts a scalar value as a string.
func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asStringList accepts []string directly and []any element-wise, the
// shape JSON round-trips produce. Non-string elements are rendered with
// fmt so list diffing still works on mixed payloads.
func asStringList(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, el := range t {
			if s, ok := el.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprintf("%v", el))
			}
		}
		return out, true
	default:
		return nil, false
	}
}
