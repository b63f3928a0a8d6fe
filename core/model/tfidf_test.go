package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTokenizeCode covers word splitting, lowercasing and bigrams.
func TestTokenizeCode(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "empty",
			content: "",
			want:    []string{},
		},
		{
			name:    "identifiers lowercased with bigrams",
			content: "Result = eval(user_input)",
			want:    []string{"result", "eval", "user_input", "result eval", "eval user_input"},
		},
		{
			name:    "single character tokens dropped",
			content: "x = foo + y",
			want:    []string{"foo"},
		},
		{
			name:    "digits kept",
			content: "range(100)",
			want:    []string{"range", "100", "range 100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenizeCode(tt.content))
		})
	}
}

// TestFitTFIDFVocabulary checks document frequency ranking and the idf form.
func TestFitTFIDFVocabulary(t *testing.T) {
	docs := []string{
		"alpha beta",
		"alpha gamma",
		"alpha beta",
	}
	p := fitTFIDF(docs)

	// alpha df=3, beta df=2, gamma df=1, plus the bigrams.
	assert.Contains(t, p.Terms, "alpha")
	assert.Contains(t, p.Terms, "beta")
	assert.Contains(t, p.Terms, "gamma")
	require.Len(t, p.IDF, len(p.Terms))

	idx := p.lookup()
	// Smoothed idf: ln((1+n)/(1+df)) + 1.
	assert.InDelta(t, 1.0, p.IDF[idx["alpha"]], 1e-9)
	assert.Greater(t, p.IDF[idx["gamma"]], p.IDF[idx["beta"]])
}

// TestEmbedUnitNorm ensures embeddings are L2 normalized and that content
// with no vocabulary overlap embeds to nil.
func TestEmbedUnitNorm(t *testing.T) {
	p := fitTFIDF([]string{"alpha beta gamma", "alpha beta delta"})

	vec := p.embed("alpha alpha beta")
	require.NotNil(t, vec)
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-9)

	assert.Nil(t, p.embed("zebra okapi"))
	assert.Nil(t, p.embed(""))
}

// TestCosineDistance checks the unit-vector distance bounds.
func TestCosineDistance(t *testing.T) {
	a := []float64{1, 0}
	b := []float64{0, 1}
	assert.InDelta(t, 0.0, cosineDistance(a, a), 1e-9)
	assert.InDelta(t, 1.0, cosineDistance(a, b), 1e-9)
}

// TestLookupSurvivesRoundTrip ensures the term index rebuilds after the
// exported fields are copied, as happens on artifact decode.
func TestLookupSurvivesRoundTrip(t *testing.T) {
	p := fitTFIDF([]string{"alpha beta", "alpha gamma"})
	clone := &tfidfParams{Terms: p.Terms, IDF: p.IDF}

	assert.Equal(t, p.embed("alpha beta"), clone.embed("alpha beta"))
}
