package model

import (
	"fmt"

	"github.com/codiehq/codesight/core/feature"
	"github.com/codiehq/codesight/schema"
)

// Ensemble shape for the vulnerability classifier.
const (
	vulnTrees   = 100
	vulnDepth   = 8
	vulnMinLeaf = 2
)

// VulnerabilityModel is a bagged classification forest over normalized
// feature vectors. Fit time balances class weights by inverse frequency so
// the usually rare vulnerable class is not drowned out.
type VulnerabilityModel struct {
	Forest forest `json:"forest"`
}

// FitVulnerability trains the classifier on normalized vectors and binary
// labels (1 vulnerable, 0 safe). Both classes must be present in the corpus.
func FitVulnerability(xs [][]float64, ys []float64, version int) (*VulnerabilityModel, error) {
	rng := newRNG(string(schema.ModelVulnerability), version)
	f, err := fitForest(rng, xs, ys, forestParams{
		trees:    vulnTrees,
		maxDepth: vulnDepth,
		minLeaf:  vulnMinLeaf,
		classify: true,
		balance:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("fit vulnerability: %w", err)
	}
	return &VulnerabilityModel{Forest: *f}, nil
}

// Predict scores one sample. The normalized vector drives the forest, while
// the raw vector drives the category rules, since token counts lose their
// meaning after scaling. Confidence is the vote margin: a forest split down
// the middle knows nothing, a unanimous one is certain.
func (m *VulnerabilityModel) Predict(normalized, raw []float64) (*schema.VulnerabilityPrediction, error) {
	if len(normalized) != m.Forest.Dim {
		return nil, fmt.Errorf("vector has %d dims, vulnerability model expects %d", len(normalized), m.Forest.Dim)
	}
	p := clamp(m.Forest.predict(normalized), 0, 1)
	return &schema.VulnerabilityPrediction{
		RiskScore:  p,
		Categories: CategoriesFor(raw),
		Confidence: max(p, 1-p),
	}, nil
}

// CategoriesFor maps raw security token counts to vulnerability categories,
// sorted ascending. A short vector yields no categories.
func CategoriesFor(raw []float64) []schema.VulnCategory {
	if len(raw) < feature.VectorDim {
		return nil
	}
	set := make(map[schema.VulnCategory]struct{})
	if raw[feature.FeatTokEval] > 0 || raw[feature.FeatTokExec] > 0 {
		set[schema.CategoryCodeInjection] = struct{}{}
	}
	if raw[feature.FeatTokOSSystem] > 0 {
		set[schema.CategoryCommandInjection] = struct{}{}
	}
	if raw[feature.FeatTokSubprocess] > 0 {
		set[schema.CategoryProcessInjection] = struct{}{}
	}
	if raw[feature.FeatTokPickle] > 0 || raw[feature.FeatTokYAMLLoad] > 0 {
		set[schema.CategoryDeserialization] = struct{}{}
	}
	if raw[feature.FeatTokSecret] > 0 {
		set[schema.CategoryHardcodedCredentials] = struct{}{}
	}
	if len(set) == 0 {
		return nil
	}
	return schema.SortedCategories(set)
}
