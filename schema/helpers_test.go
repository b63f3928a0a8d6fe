package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRiskLabel(t *testing.T) {
	assert.Equal(t, "Critical", GetRiskLabel(95))
	assert.Equal(t, "Critical", GetRiskLabel(80))
	assert.Equal(t, "High", GetRiskLabel(79.9))
	assert.Equal(t, "High", GetRiskLabel(60))
	assert.Equal(t, "Moderate", GetRiskLabel(40))
	assert.Equal(t, "Low", GetRiskLabel(39.9))
	assert.Equal(t, "Low", GetRiskLabel(0))
}

func TestRankHotspots(t *testing.T) {
	hotspots := map[string]float64{
		"b.py":   50,
		"a.py":   50,
		"top.py": 91.5,
	}

	rows := RankHotspots(hotspots)

	require.Len(t, rows, 3)
	assert.Equal(t, HotspotRow{Rank: 1, Path: "top.py", Score: 91.5, Label: "Critical"}, rows[0])
	// Equal scores fall back to lexical path order.
	assert.Equal(t, HotspotRow{Rank: 2, Path: "a.py", Score: 50, Label: "Moderate"}, rows[1])
	assert.Equal(t, HotspotRow{Rank: 3, Path: "b.py", Score: 50, Label: "Moderate"}, rows[2])
}

func TestRankHotspotsEmpty(t *testing.T) {
	assert.Empty(t, RankHotspots(nil))
	assert.Empty(t, RankHotspots(map[string]float64{}))
}

func TestSortedCategories(t *testing.T) {
	set := map[VulnCategory]struct{}{
		CategoryHardcodedCredentials: {},
		CategoryCodeInjection:        {},
		CategoryDeserialization:      {},
	}

	got := SortedCategories(set)

	assert.Equal(t, []VulnCategory{
		CategoryCodeInjection,
		CategoryHardcodedCredentials,
		CategoryDeserialization,
	}, got)
}

// summaryInsight builds an insight with every slot available.
func summaryInsight(path string, risk, overall float64, patterns int) *FileInsight {
	fi := &FileInsight{
		Path:     path,
		Language: LangPython,
		Slots: map[ModelName]SlotState{
			ModelVulnerability: SlotAvailable,
			ModelQuality:       SlotAvailable,
			ModelPattern:       SlotAvailable,
			ModelAnomaly:       SlotAvailable,
		},
		Vulnerability: &VulnerabilityPrediction{RiskScore: risk, Confidence: 0.9},
		Quality:       &QualityScore{OverallScore: overall},
		Patterns:      []DetectedPattern{},
		Anomaly:       &AnomalyFlag{Score: 0.4},
	}
	for i := 0; i < patterns; i++ {
		fi.Patterns = append(fi.Patterns, DetectedPattern{
			PatternID: "security-001",
			Type:      PatternSecurity,
			Severity:  SeverityHigh,
		})
	}
	return fi
}

func TestSummarize(t *testing.T) {
	good := summaryInsight("good.py", 0.2, 60, 0)
	risky := summaryInsight("risky.py", 0.9, 80, 2)
	risky.Anomaly.IsOutlier = true

	outcomes := []FileOutcome{
		{Insight: good},
		{Insight: risky},
		{Err: &FileError{Path: "bad.py", Kind: ErrKindTimeout, Err: "too slow"}},
	}

	summary := Summarize(outcomes)

	assert.Equal(t, 3, summary.TotalFiles)
	assert.Equal(t, 1, summary.FailedFiles)
	assert.Equal(t, 1, summary.HighRiskFiles)
	assert.InDelta(t, 70.0, summary.AvgQuality, 1e-9)
	assert.Equal(t, 2, summary.TotalPatterns)
	assert.Equal(t, 1, summary.TotalOutliers)
}

// TestSummarizeSlotAware checks that filtered or unavailable slots never
// feed the counters even when stale values are attached to the insight.
func TestSummarizeSlotAware(t *testing.T) {
	filtered := summaryInsight("filtered.py", 0.95, 10, 1)
	filtered.Slots[ModelVulnerability] = SlotFiltered
	filtered.Slots[ModelQuality] = SlotUnavailable
	filtered.Slots[ModelAnomaly] = SlotUnavailable
	filtered.Anomaly.IsOutlier = true

	counted := summaryInsight("counted.py", 0.1, 42, 0)

	summary := Summarize([]FileOutcome{{Insight: filtered}, {Insight: counted}})

	assert.Equal(t, 2, summary.TotalFiles)
	assert.Equal(t, 0, summary.FailedFiles)
	assert.Equal(t, 0, summary.HighRiskFiles, "filtered vulnerability slot must not count")
	assert.InDelta(t, 42.0, summary.AvgQuality, 1e-9, "only the available quality slot feeds the average")
	assert.Equal(t, 1, summary.TotalPatterns)
	assert.Equal(t, 0, summary.TotalOutliers, "unavailable anomaly slot must not count")
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	assert.Equal(t, BatchSummary{}, summary)
}

func TestDetectLanguage(t *testing.T) {
	cases := map[string]Language{
		"app/main.py":        LangPython,
		"cmd/root.go":        LangGo,
		"web/index.js":       LangJavaScript,
		"web/App.jsx":        LangJavaScript,
		"web/worker.mjs":     LangJavaScript,
		"web/api.ts":         LangTypeScript,
		"web/View.tsx":       LangTypeScript,
		"src/Main.java":      LangJava,
		"lib/model.rb":       LangRuby,
		"README":             LangGeneric,
		"Makefile":           LangGeneric,
		"notes.txt":          LangGeneric,
		"dir.py/data":        LangGeneric, // extension must be on the file, not a parent dir
		"archive.tar.gz":     LangGeneric, // only the last extension counts
		"weird.PY":           LangGeneric, // extension matching is case sensitive
		`win\path\script.py`: LangPython,
	}
	for path, want := range cases {
		assert.Equal(t, want, DetectLanguage(path), "path %q", path)
	}
}
