package model

import (
	"math"

	"github.com/codiehq/codesight/core/feature"
	"github.com/codiehq/codesight/schema"
)

// ComputeBaseline derives the analytic quality metrics for one sample
// directly from its text. The quality forests train against these values
// and the validator holds their predictions to them. The raw vector must
// be full width, as produced by the extractor.
func ComputeBaseline(content string, lang schema.Language, raw []float64) schema.QualityScore {
	q := schema.QualityScore{
		MaintainabilityIndex: maintainabilityIndex(raw),
		CyclomaticComplexity: float64(1 + feature.CountDecisionPoints(content, lang)),
		DuplicationPct:       feature.DuplicateLinePct(content),
		DocumentationScore:   min(100, raw[feature.FeatCommentRatio]*200),
	}
	q.CoverageProxy = coverageProxy(q.DocumentationScore, raw[feature.FeatAvgFnLen], feature.AssertDensity(content, lang))
	q.OverallScore = BlendOverall(q)
	return q
}

// BlendOverall combines the five sub-metrics into the overall score with the
// fixed weights. Complexity and duplication are inverted first so that every
// term rewards higher values. Rounded to two decimals.
func BlendOverall(q schema.QualityScore) float64 {
	w := schema.GetQualityWeights()
	complexityScore := max(0, 100-2*q.CyclomaticComplexity)
	duplicationScore := max(0, 100-q.DuplicationPct)
	overall := q.MaintainabilityIndex*w[schema.QualityMaintainability] +
		complexityScore*w[schema.QualityComplexity] +
		duplicationScore*w[schema.QualityDuplication] +
		q.CoverageProxy*w[schema.QualityCoverage] +
		q.DocumentationScore*w[schema.QualityDocumentation]
	return math.Round(overall*100) / 100
}

// maintainabilityIndex is the classic MI formula adapted to the available
// inputs: line count, average function length and comment ratio. Empty
// content is trivially maintainable.
func maintainabilityIndex(raw []float64) float64 {
	loc := raw[feature.FeatLOC]
	if loc == 0 {
		return 100
	}
	mi := 171 - 5.2*math.Log(loc) - 0.23*raw[feature.FeatAvgFnLen] - 16.2*math.Log(raw[feature.FeatCommentRatio]+0.1)
	return clamp(mi, 0, 100)
}

// coverageProxy estimates test coverage from documentation, function length
// and assertion density. No ground truth coverage exists at analysis time,
// so the proxy rewards the habits that correlate with tested code: short
// functions, present docs and visible assertions.
func coverageProxy(docScore, avgFnLen, assertDensity float64) float64 {
	short := 1 - min(avgFnLen/80, 1)
	asserts := min(8*assertDensity, 1)
	return clamp(100*(0.3*docScore/100+0.3*short+0.4*asserts), 0, 100)
}
