package schema

// VulnerabilityPrediction is the classifier output for one sample.
type VulnerabilityPrediction struct {
	RiskScore  float64        `json:"risk_score"` // Probability of vulnerability (0-1)
	Categories []VulnCategory `json:"categories"` // Sorted ascending, no duplicates
	Confidence float64        `json:"confidence"` // Model's own estimate (0-1)
}

// QualityScore holds the five quality sub-metrics plus their blended overall.
// Every field except CyclomaticComplexity sits in the 0-100 range; complexity
// is the raw decision count plus one and is unbounded. OverallScore is the
// fixed-weight blend from GetQualityWeights, with complexity and duplication
// inverted so that higher is always better.
type QualityScore struct {
	MaintainabilityIndex float64 `json:"maintainability_index"`
	CyclomaticComplexity float64 `json:"cyclomatic_complexity"`
	DuplicationPct       float64 `json:"duplication_pct"`
	CoverageProxy        float64 `json:"coverage_proxy"`
	DocumentationScore   float64 `json:"documentation_score"`
	OverallScore         float64 `json:"overall_score"`
}

// DetectedPattern is one recurring-pattern match for a sample.
type DetectedPattern struct {
	PatternID   string      `json:"pattern_id"`
	Type        PatternType `json:"type"`
	Severity    Severity    `json:"severity"`
	Confidence  float64     `json:"confidence"`   // 0-1
	LineNumbers []int       `json:"line_numbers"` // 1-based, ascending
	Suggestions []string    `json:"suggestions"`
}

// AnomalyFlag is the outlier decision for a sample.
type AnomalyFlag struct {
	Score     float64 `json:"score"`      // Isolation score (higher = more anomalous)
	IsOutlier bool    `json:"is_outlier"` // Score above the generation's frozen threshold
}

// FileInsight merges the four model outputs for one file. Slots explains
// every nil or empty field: a prediction dropped by the confidence filter
// and a model that was never loaded are different states, and callers must
// check the slot state rather than the pointer.
type FileInsight struct {
	Path          string                   `json:"path"`
	Language      Language                 `json:"language"`
	Vulnerability *VulnerabilityPrediction `json:"vulnerability,omitempty"`
	Quality       *QualityScore            `json:"quality,omitempty"`
	Patterns      []DetectedPattern        `json:"patterns"`
	Anomaly       *AnomalyFlag             `json:"anomaly,omitempty"`
	Slots         map[ModelName]SlotState  `json:"slots"`
	Meta          FeatureMeta              `json:"meta"`
}

// SlotIs reports whether the named slot is in the given state.
func (fi *FileInsight) SlotIs(name ModelName, state SlotState) bool {
	return fi.Slots[name] == state
}
