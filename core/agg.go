package core

import (
	"context"
	"sort"
	"time"

	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/schema"
)

// Hotspot blend weights. Risk dominates, inverted quality follows, pattern
// severity pressure caps out at severityCap.
const (
	hotspotRiskWeight     = 0.5
	hotspotQualityWeight  = 0.3
	hotspotSeverityWeight = 0.2
	severityCap           = 16.0
)

// AnalyzeProject runs the batch pipeline over the samples and aggregates
// the successful insights into a project report. Per-file failures reduce
// the report's inputs but never abort it.
func (s *Service) AnalyzeProject(ctx context.Context, samples []schema.CodeSample) (*schema.ProjectReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	outcomes := s.AnalyzeBatch(ctx, samples)

	insights := make([]*schema.FileInsight, 0, len(outcomes))
	for _, out := range outcomes {
		if out.Insight != nil {
			insights = append(insights, out.Insight)
		}
	}

	report := AggregateProject(insights, s.cfg.ReportRisk)
	report.CoveragePercentage = s.lookupCoverage(ctx)
	return report, nil
}

// AggregateProject merges file insights into a project report. Hotspot
// scoring treats unavailable and filtered slots as zero contribution, so a
// file with no model coverage scores 0 rather than being dropped.
func AggregateProject(insights []*schema.FileInsight, riskThreshold float64) *schema.ProjectReport {
	report := &schema.ProjectReport{
		Hotspots:        make(map[string]float64, len(insights)),
		Vulnerabilities: []schema.ReportedVulnerability{},
		GeneratedAt:     time.Now(),
	}

	// --- 1. Hotspot Scores ---
	for _, fi := range insights {
		report.Hotspots[fi.Path] = HotspotScore(fi)
	}

	// --- 2. Top Refactoring Candidate ---
	// Ties break by lexical path order so repeated runs agree.
	for _, fi := range insights {
		score := report.Hotspots[fi.Path]
		if report.TopCandidate == nil ||
			score > report.TopCandidate.Score ||
			(score == report.TopCandidate.Score && fi.Path < report.TopCandidate.Path) {
			report.TopCandidate = &schema.RefactoringCandidate{Path: fi.Path, Score: score}
		}
	}

	// --- 3. Vulnerability List ---
	for _, fi := range insights {
		if fi.Vulnerability == nil || !fi.SlotIs(schema.ModelVulnerability, schema.SlotAvailable) {
			continue
		}
		if fi.Vulnerability.RiskScore <= riskThreshold {
			continue
		}
		report.Vulnerabilities = append(report.Vulnerabilities, schema.ReportedVulnerability{
			Path:       fi.Path,
			RiskScore:  fi.Vulnerability.RiskScore,
			Categories: fi.Vulnerability.Categories,
		})
	}
	sort.Slice(report.Vulnerabilities, func(i, j int) bool {
		a, b := report.Vulnerabilities[i], report.Vulnerabilities[j]
		if a.RiskScore != b.RiskScore {
			return a.RiskScore > b.RiskScore
		}
		if ca, cb := firstCategory(a.Categories), firstCategory(b.Categories); ca != cb {
			return ca < cb
		}
		return a.Path < b.Path
	})

	return report
}

// HotspotScore blends one file's risk, inverted quality and pattern
// severity pressure into a 0-100 score. Slots without a value contribute
// zero to their term.
func HotspotScore(fi *schema.FileInsight) float64 {
	risk := 0.0
	if fi.Vulnerability != nil && fi.SlotIs(schema.ModelVulnerability, schema.SlotAvailable) {
		risk = fi.Vulnerability.RiskScore
	}

	qualityTerm := 0.0
	if fi.Quality != nil && fi.SlotIs(schema.ModelQuality, schema.SlotAvailable) {
		qualityTerm = 1 - fi.Quality.OverallScore/100
	}

	sevWeight := 0.0
	for _, p := range fi.Patterns {
		sevWeight += schema.GetSeverityWeight(p.Severity)
	}
	sevTerm := min(sevWeight/severityCap, 1)

	return 100 * (hotspotRiskWeight*risk + hotspotQualityWeight*qualityTerm + hotspotSeverityWeight*sevTerm)
}

// lookupCoverage queries the coverage provider, returning nil when no
// provider is wired, no project is configured or the value is unknown. A
// lookup failure is logged and treated as unknown.
func (s *Service) lookupCoverage(ctx context.Context) *float64 {
	if s.coverage == nil || s.cfg.ProjectID == "" {
		return nil
	}
	pct, known, err := s.coverage.ProjectCoverage(ctx, s.cfg.ProjectID)
	if err != nil {
		contract.LogWarn("Coverage lookup failed", err)
		return nil
	}
	if !known {
		return nil
	}
	return &pct
}

// firstCategory returns the leading category label, or empty for none.
func firstCategory(categories []schema.VulnCategory) schema.VulnCategory {
	if len(categories) == 0 {
		return ""
	}
	return categories[0]
}
