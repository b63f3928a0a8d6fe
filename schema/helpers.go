package schema

import "sort"

// HotspotRow is one ranked row of a hotspot listing.
type HotspotRow struct {
	Rank  int     `json:"rank"`
	Path  string  `json:"path"`
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

// GetRiskLabel returns a plain text label indicating the criticality level
// based on a 0-100 hotspot score.
func GetRiskLabel(score float64) string {
	switch {
	case score >= 80:
		return "Critical"
	case score >= 60:
		return "High"
	case score >= 40:
		return "Moderate"
	default:
		return "Low"
	}
}

// RankHotspots turns the hotspot map into ranked rows, highest score first.
// Ties are broken by lexical path order so ranking is deterministic.
func RankHotspots(hotspots map[string]float64) []HotspotRow {
	rows := make([]HotspotRow, 0, len(hotspots))
	for path, score := range hotspots {
		rows = append(rows, HotspotRow{Path: path, Score: score})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Path < rows[j].Path
	})
	for i := range rows {
		rows[i].Rank = i + 1
		rows[i].Label = GetRiskLabel(rows[i].Score)
	}
	return rows
}

// SortedCategories flattens a category set into a sorted slice.
func SortedCategories(set map[VulnCategory]struct{}) []VulnCategory {
	out := make([]VulnCategory, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Summarize rolls a slice of batch outcomes into one summary block.
// Quality averaging only counts files whose quality slot is available.
func Summarize(outcomes []FileOutcome) BatchSummary {
	s := BatchSummary{TotalFiles: len(outcomes)}
	qualityCount := 0
	for _, out := range outcomes {
		if out.Err != nil {
			s.FailedFiles++
			continue
		}
		fi := out.Insight
		if fi == nil {
			continue
		}
		if fi.SlotIs(ModelVulnerability, SlotAvailable) && fi.Vulnerability != nil && fi.Vulnerability.RiskScore > HighRiskThreshold {
			s.HighRiskFiles++
		}
		if fi.SlotIs(ModelQuality, SlotAvailable) && fi.Quality != nil {
			s.AvgQuality += fi.Quality.OverallScore
			qualityCount++
		}
		s.TotalPatterns += len(fi.Patterns)
		if fi.SlotIs(ModelAnomaly, SlotAvailable) && fi.Anomaly != nil && fi.Anomaly.IsOutlier {
			s.TotalOutliers++
		}
	}
	if qualityCount > 0 {
		s.AvgQuality /= float64(qualityCount)
	}
	return s
}
