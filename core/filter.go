package core

import "github.com/codiehq/codesight/schema"

// ConfidenceFilter drops low-confidence predictions after inference.
// Quality and anomaly outputs carry no confidence of their own and pass
// untouched. Filtering is stateless, idempotent and monotone: re-filtering
// kept output changes nothing, and raising a threshold never brings a
// dropped prediction back.
type ConfidenceFilter struct {
	Vulnerability float64 // Minimum confidence for vulnerability predictions
	Pattern       float64 // Minimum confidence for detected patterns
}

// KeepVulnerability reports whether the prediction clears the threshold.
func (f ConfidenceFilter) KeepVulnerability(p *schema.VulnerabilityPrediction) bool {
	return p != nil && p.Confidence >= f.Vulnerability
}

// FilterPatterns keeps the patterns at or above the threshold, preserving
// their order. The result is never nil.
func (f ConfidenceFilter) FilterPatterns(patterns []schema.DetectedPattern) []schema.DetectedPattern {
	kept := make([]schema.DetectedPattern, 0, len(patterns))
	for _, p := range patterns {
		if p.Confidence >= f.Pattern {
			kept = append(kept, p)
		}
	}
	return kept
}
