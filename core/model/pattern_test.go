package model

import (
	"testing"

	"github.com/codiehq/codesight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	evalDoc = "result = eval(user_input)\nprint(result)\n"
	loopDoc = "total = 0\nfor item in range(100):\n    total += item\n"
)

// patternCorpus builds two tight groups plus one isolated sample.
func patternCorpus() []string {
	return []string{
		evalDoc, evalDoc, evalDoc,
		loopDoc, loopDoc, loopDoc,
		"zebra quagga okapi\n",
	}
}

// TestDBSCAN covers clustering and noise on synthetic unit vectors.
func TestDBSCAN(t *testing.T) {
	e1 := []float64{1, 0, 0}
	e2 := []float64{0, 1, 0}
	e3 := []float64{0, 0, 1}
	points := [][]float64{e1, e1, e1, e2, e2, e3}

	labels := dbscan(points, 0.3, 2)

	assert.Equal(t, []int{0, 0, 0, 1, 1, -1}, labels)
}

// TestFitPatternEmpty rejects an empty corpus.
func TestFitPatternEmpty(t *testing.T) {
	_, err := FitPattern(nil)
	assert.Error(t, err)
}

// TestFitPatternClusters checks that the corpus groups become labeled
// clusters and the isolated sample stays out.
func TestFitPatternClusters(t *testing.T) {
	m, err := FitPattern(patternCorpus())
	require.NoError(t, err)
	require.Len(t, m.Clusters, 2)

	sec := m.Clusters[0]
	assert.Equal(t, "security-000", sec.ID)
	assert.Equal(t, schema.PatternSecurity, sec.Type)
	assert.Equal(t, schema.SeverityCritical, sec.Severity)
	assert.Contains(t, sec.TopTerms, "eval")
	assert.InDelta(t, patternEps, sec.Radius, 1e-9) // identical members, floor at eps
	assert.NotEmpty(t, sec.Suggestions)

	perf := m.Clusters[1]
	assert.Equal(t, "performance-001", perf.ID)
	assert.Equal(t, schema.PatternPerformance, perf.Type)
	assert.Equal(t, schema.SeverityMedium, perf.Severity)
}

// TestDetectAssignsNearestCluster checks assignment, confidence and line
// attribution for a near-duplicate of a training group.
func TestDetectAssignsNearestCluster(t *testing.T) {
	m, err := FitPattern(patternCorpus())
	require.NoError(t, err)

	got := m.Detect("result = eval(user_input)\nprint(result)\nlog(result)\n")
	require.Len(t, got, 1)
	p := got[0]
	assert.Equal(t, "security-000", p.PatternID)
	assert.Equal(t, schema.PatternSecurity, p.Type)
	assert.Equal(t, schema.SeverityCritical, p.Severity)
	assert.Greater(t, p.Confidence, 0.8)
	assert.LessOrEqual(t, p.Confidence, 1.0)
	assert.Equal(t, []int{1, 2, 3}, p.LineNumbers)
	assert.NotEmpty(t, p.Suggestions)
}

// TestDetectBeyondEveryRadius reports nothing for content inside the
// vocabulary but far from every centroid.
func TestDetectBeyondEveryRadius(t *testing.T) {
	m, err := FitPattern(patternCorpus())
	require.NoError(t, err)

	assert.Nil(t, m.Detect("zebra\n"))
}

// TestDetectNoVocabularyOverlap reports nothing when the sample shares no
// tokens with the training corpus.
func TestDetectNoVocabularyOverlap(t *testing.T) {
	m, err := FitPattern(patternCorpus())
	require.NoError(t, err)

	assert.Nil(t, m.Detect("qwerty uiop\n"))
	assert.Nil(t, m.Detect(""))
}

// TestDetectExactMemberConfidence pins full confidence on an exact training
// member, which sits at distance zero from its centroid.
func TestDetectExactMemberConfidence(t *testing.T) {
	m, err := FitPattern(patternCorpus())
	require.NoError(t, err)

	got := m.Detect(evalDoc)
	require.Len(t, got, 1)
	assert.InDelta(t, 1.0, got[0].Confidence, 1e-9)
}

// TestLabelCluster covers the keyword rule table including the fallback.
func TestLabelCluster(t *testing.T) {
	tests := []struct {
		name     string
		terms    []string
		wantType schema.PatternType
		wantSev  schema.Severity
	}{
		{
			name:     "eval wins as critical security",
			terms:    []string{"result", "eval"},
			wantType: schema.PatternSecurity,
			wantSev:  schema.SeverityCritical,
		},
		{
			name:     "bigram keyword matches",
			terms:    []string{"os system", "call"},
			wantType: schema.PatternSecurity,
			wantSev:  schema.SeverityHigh,
		},
		{
			name:     "security outranks performance",
			terms:    []string{"for", "pickle"},
			wantType: schema.PatternSecurity,
			wantSev:  schema.SeverityHigh,
		},
		{
			name:     "class terms map to architecture",
			terms:    []string{"class", "widget"},
			wantType: schema.PatternArchitecture,
			wantSev:  schema.SeverityMedium,
		},
		{
			name:     "unmatched falls back to style",
			terms:    []string{"banana", "mango"},
			wantType: schema.PatternStyle,
			wantSev:  schema.SeverityLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ptype, sev := labelCluster(tt.terms)
			assert.Equal(t, tt.wantType, ptype)
			assert.Equal(t, tt.wantSev, sev)
		})
	}
}
