package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"both empty", "", "", 0},
		{"left empty", "", "abc", 3},
		{"right empty", "abc", "", 3},
		{"identical", "13-17", "13-17", 0},
		{"single substitution", "kitten", "sitten", 1},
		{"classic kitten sitting", "kitten", "sitting", 3},
		{"insertion", "CBT", "CBTs", 1},
		{"unicode runes", "café", "cafe", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty", "", "", 1},
		{"identical", "medicaid", "medicaid", 1},
		{"disjoint", "abc", "xyz", 0},
		{"half", "ab", "ax", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestJaccard(t *testing.T) {
	set := func(keys ...string) map[string]struct{} {
		s := make(map[string]struct{})
		for _, k := range keys {
			s[k] = struct{}{}
		}
		return s
	}

	assert.Equal(t, 0.0, Jaccard(set(), set()))
	assert.Equal(t, 1.0, Jaccard(set("a", "b"), set("a", "b")))
	assert.Equal(t, 0.0, Jaccard(set("a"), set("b")))
	assert.InDelta(t, 1.0/3.0, Jaccard(set("a", "b"), set("b", "c")), 1e-9)

	// Symmetry.
	a, b := set("ages", "insurance", "phone"), set("ages", "insurance")
	assert.Equal(t, Jaccard(a, b), Jaccard(b, a))
}

func TestEqualFold(t *testing.T) {
	assert.True(t, EqualFold("Aetna", "aetna"))
	assert.True(t, EqualFold("STRASSE", "strasse"))
	assert.False(t, EqualFold("aetna", "cigna"))
}

func TestKeySet(t *testing.T) {
	m := map[string]int{"a": 1, "b": 2}
	s := KeySet(m)
	assert.Len(t, s, 2)
	_, ok := s["a"]
	assert.True(t, ok)
}
