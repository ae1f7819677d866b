// Package similarity provides the string- and set-similarity primitives
// used by correction analysis and cross-site matching.
package similarity

import (
	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// Fold returns s with Unicode case folding applied, for caseless
// comparison.
func Fold(s string) string {
	return foldCaser.String(s)
}

// EqualFold reports whether a and b are equal under Unicode case folding.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Levenshtein computes the classic edit distance between a and b over
// runes, with substitution, insertion, and deletion all costing 1.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Ratio returns 1 - editDistance/maxLen in [0,1]. Two empty strings are
// identical, so their ratio is 1.
func Ratio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	return 1 - float64(Levenshtein(a, b))/float64(longest)
}

// Jaccard returns |a ∩ b| / |a ∪ b| for two key sets. Defined only when
// at least one side is non-empty; callers exclude empty-side factors
// rather than treating them as zero.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// KeySet builds the key set of any string-keyed map.
func KeySet[V any](m map[string]V) map[string]struct{} {
	s := make(map[string]struct{}, len(m))
	for k := range m {
		s[k] = struct{}{}
	}
	return s
}
