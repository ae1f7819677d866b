package model

import (
	"net/url"
	"strings"
	"time"
)

// Verification is the tri-state review status of an extraction record.
type Verification string

const (
	VerificationUnknown   Verification = "unknown"
	VerificationCorrect   Verification = "correct"
	VerificationIncorrect Verification = "incorrect"
)

// ExtractionContext carries optional metadata reported by the scraper for
// one observation. Absent fields are the expected case, not an error.
type ExtractionContext struct {
	Pattern  string `json:"pattern,omitempty"`  // stable string form of the matching rule
	Location string `json:"location,omitempty"` // where on the page the value was found
	Selector string `json:"selector,omitempty"`
}

// Feedback is the human verdict attached to a record during review.
type Feedback struct {
	Timestamp      time.Time `json:"timestamp"`
	IsCorrect      bool      `json:"is_correct"`
	CorrectedValue any       `json:"corrected_value,omitempty"`
}

// ExtractionRecord is one field-extraction observation reported by the
// scraper. Records are owned exclusively by the engine's history log;
// the pattern and site stores hold only derived aggregates.
type ExtractionRecord struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	URL        string             `json:"url"`
	Domain     string             `json:"domain"`
	Field      string             `json:"field"`
	Strategy   string             `json:"strategy"`
	Value      any                `json:"value"`
	Confidence float64            `json:"confidence"`
	Context    *ExtractionContext `json:"context,omitempty"`
	Verified   Verification       `json:"verified"`
	Feedback   *Feedback          `json:"feedback,omitempty"`
}

// DomainOf extracts the hostname from a URL, tolerating bare hosts and
// schemeless strings. Used to scope per-site learning.
func DomainOf(raw string) string {
	if raw == "" {
		return ""
	}
	s := raw
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		// Fall back to everything before the first slash.
		host, _, _ := strings.Cut(raw, "/")
		return strings.ToLower(host)
	}
	return strings.ToLower(u.Hostname())
}
