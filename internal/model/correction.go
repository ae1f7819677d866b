package model

import "time"

// CorrectionType classifies how an extracted value differed from the
// human-supplied correction.
type CorrectionType string

const (
	CorrectionMissed        CorrectionType = "missed"         // extracted nothing, reviewer supplied a value
	CorrectionFalsePositive CorrectionType = "false-positive" // extracted a value, reviewer says none exists
	CorrectionCase          CorrectionType = "case-difference"
	CorrectionPartial       CorrectionType = "partial-match"
	CorrectionDifferent     CorrectionType = "different-value"
	CorrectionArray         CorrectionType = "array-difference"
	CorrectionUnknown       CorrectionType = "unknown"
)

// ArrayDiff holds the element-level difference between an extracted list
// and its correction.
type ArrayDiff struct {
	Missing []string `json:"missing"` // in corrected, absent from extracted
	Extra   []string `json:"extra"`   // in extracted, absent from corrected
}

// CorrectionAnalysis is the derived classification of one correction.
type CorrectionAnalysis struct {
	Type             CorrectionType `json:"type"`
	Difference       *ArrayDiff     `json:"difference,omitempty"`
	SuggestedPattern string         `json:"suggested_pattern,omitempty"`
	Similarity       float64        `json:"similarity,omitempty"`
}

// CorrectionRecord is one human correction appended to a field's ledger.
type CorrectionRecord struct {
	Timestamp time.Time          `json:"timestamp"`
	Original  any                `json:"original"`
	Corrected any                `json:"corrected"`
	Analysis  CorrectionAnalysis `json:"analysis"`
	Context   *ExtractionContext `json:"context,omitempty"`
	Domain    string             `json:"domain,omitempty"`
}

// SuggestedPattern is a pattern derived from a correction, kept per field
// so future extraction passes can try it.
type SuggestedPattern struct {
	Pattern   string    `json:"pattern"`
	Example   string    `json:"example"`
	Source    string    `json:"source"` // correction type that produced it
	CreatedAt time.Time `json:"created_at"`
}

// IssueCount is one entry of a per-field correction summary.
type IssueCount struct {
	Type  CorrectionType `json:"type"`
	Count int            `json:"count"`
}
