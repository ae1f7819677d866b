package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainOf(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://www.harborlightyouth.org/programs", "www.harborlightyouth.org"},
		{"http://site.com", "site.com"},
		{"site.com/programs/ages", "site.com"},
		{"site.com", "site.com"},
		{"HTTPS://SITE.COM/Path", "site.com"},
		{"https://site.com:8443/p", "site.com"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, DomainOf(tt.raw))
		})
	}
}

func TestRecordMean(t *testing.T) {
	mean := 0.0
	samples := []float64{0.9, 0.4, 0.75, 0.1}
	var sum float64
	for i, s := range samples {
		mean = RecordMean(mean, i, s)
		sum += s
		assert.InDelta(t, sum/float64(i+1), mean, 1e-12)
	}
}

func TestStrategyPerformanceRates(t *testing.T) {
	p := &StrategyPerformance{}
	assert.Zero(t, p.FailureRate())
	assert.Zero(t, p.SuccessRate())

	p.Attempts = 4
	p.Successes = 1
	p.Failures = 3
	assert.InDelta(t, 0.75, p.FailureRate(), 1e-9)
	assert.InDelta(t, 0.25, p.SuccessRate(), 1e-9)
}

func TestSiteStatsSuccessRate(t *testing.T) {
	s := SiteStats{}
	assert.Zero(t, s.SuccessRate())

	s.Attempts = 5
	s.Successes = 2
	assert.InDelta(t, 0.4, s.SuccessRate(), 1e-9)
}
