package schema

import "time"

// RefactoringCandidate identifies the file with the highest hotspot score.
type RefactoringCandidate struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// ReportedVulnerability is one row of the project vulnerability list.
type ReportedVulnerability struct {
	Path       string         `json:"path"`
	RiskScore  float64        `json:"risk_score"`
	Categories []VulnCategory `json:"categories"`
}

// ProjectReport aggregates file insights into a project-level summary.
// CoveragePercentage is pass-through from an external provider; nil means
// the provider was absent or had no value, never zero.
type ProjectReport struct {
	Hotspots           map[string]float64      `json:"hotspots"`
	TopCandidate       *RefactoringCandidate   `json:"top_refactoring_candidate,omitempty"`
	Vulnerabilities    []ReportedVulnerability `json:"vulnerabilities"`
	CoveragePercentage *float64                `json:"coverage_percentage,omitempty"`
	GeneratedAt        time.Time               `json:"generated_at"`
}

// FileError describes a per-file analysis failure inside a batch.
type FileError struct {
	Path string    `json:"path"`
	Kind ErrorKind `json:"kind"`
	Err  string    `json:"error"`
}

// FileOutcome is one positional result of a batch analysis: either an
// insight or an error, never both.
type FileOutcome struct {
	Insight *FileInsight `json:"insight,omitempty"`
	Err     *FileError   `json:"error,omitempty"`
}

// BatchSummary rolls up a batch of outcomes.
type BatchSummary struct {
	TotalFiles    int     `json:"total_files"`
	FailedFiles   int     `json:"failed_files"`
	HighRiskFiles int     `json:"high_risk_files"` // Risk score above HighRiskThreshold
	AvgQuality    float64 `json:"avg_quality_score"`
	TotalPatterns int     `json:"total_patterns"`
	TotalOutliers int     `json:"total_outliers"`
}
