package model

import (
	"fmt"

	"github.com/codiehq/codesight/schema"
)

// Ensemble shape for the per-metric quality regressors.
const (
	qualityTrees   = 50
	qualityDepth   = 8
	qualityMinLeaf = 2
)

// qualityHeads fixes the fit order of the five regression heads. Order
// matters: the heads share one seeded generator, so reordering would change
// every fitted tree.
var qualityHeads = []struct {
	key schema.QualityKey
	get func(schema.QualityScore) float64
}{
	{schema.QualityMaintainability, func(q schema.QualityScore) float64 { return q.MaintainabilityIndex }},
	{schema.QualityComplexity, func(q schema.QualityScore) float64 { return q.CyclomaticComplexity }},
	{schema.QualityDuplication, func(q schema.QualityScore) float64 { return q.DuplicationPct }},
	{schema.QualityCoverage, func(q schema.QualityScore) float64 { return q.CoverageProxy }},
	{schema.QualityDocumentation, func(q schema.QualityScore) float64 { return q.DocumentationScore }},
}

// QualityModel regresses the five quality sub-metrics from normalized
// feature vectors, one forest per metric. The overall score is never
// predicted directly: it is recomputed from the predicted heads so the
// blend always holds on every output.
type QualityModel struct {
	Heads map[schema.QualityKey]*forest `json:"heads"`
}

// FitQuality trains the five regression heads against baseline targets
// computed from the same samples the vectors came from.
func FitQuality(xs [][]float64, targets []schema.QualityScore, version int) (*QualityModel, error) {
	if len(xs) != len(targets) {
		return nil, fmt.Errorf("fit quality: %d vectors but %d targets", len(xs), len(targets))
	}
	rng := newRNG(string(schema.ModelQuality), version)
	m := &QualityModel{Heads: make(map[schema.QualityKey]*forest, len(qualityHeads))}
	ys := make([]float64, len(targets))
	for _, head := range qualityHeads {
		for i, q := range targets {
			ys[i] = head.get(q)
		}
		f, err := fitForest(rng, xs, ys, forestParams{
			trees:    qualityTrees,
			maxDepth: qualityDepth,
			minLeaf:  qualityMinLeaf,
		})
		if err != nil {
			return nil, fmt.Errorf("fit quality %s: %w", head.key, err)
		}
		m.Heads[head.key] = f
	}
	return m, nil
}

// Predict regresses the five sub-metrics for one normalized vector and
// blends them into the overall score.
func (m *QualityModel) Predict(normalized []float64) (*schema.QualityScore, error) {
	for _, head := range qualityHeads {
		if m.Heads[head.key] == nil {
			return nil, fmt.Errorf("quality model is missing the %s head", head.key)
		}
	}
	if dim := m.Heads[schema.QualityMaintainability].Dim; len(normalized) != dim {
		return nil, fmt.Errorf("vector has %d dims, quality model expects %d", len(normalized), dim)
	}
	q := &schema.QualityScore{
		MaintainabilityIndex: clamp(m.Heads[schema.QualityMaintainability].predict(normalized), 0, 100),
		CyclomaticComplexity: max(0, m.Heads[schema.QualityComplexity].predict(normalized)),
		DuplicationPct:       clamp(m.Heads[schema.QualityDuplication].predict(normalized), 0, 100),
		CoverageProxy:        clamp(m.Heads[schema.QualityCoverage].predict(normalized), 0, 100),
		DocumentationScore:   clamp(m.Heads[schema.QualityDocumentation].predict(normalized), 0, 100),
	}
	q.OverallScore = BlendOverall(*q)
	return q, nil
}
