// Package feature turns raw source text into fixed-order numeric vectors
// and provides the scaler that normalizes them for model input.
package feature

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/schema"
)

// SchemaVersion is the version of the feature vector layout produced by this
// package. Models and scalers are only compatible with vectors of the same
// version.
const SchemaVersion = 1

// Positions of each feature in the vector. The order is part of the feature
// schema and must never be reordered within a version.
const (
	FeatLOC = iota
	FeatChars
	FeatWords
	FeatFunctions
	FeatClasses
	FeatImports
	FeatCommentRatio
	FeatEmptyRatio
	FeatAvgFnLen
	FeatTokEval
	FeatTokExec
	FeatTokOSSystem
	FeatTokSubprocess
	FeatTokPickle
	FeatTokYAMLLoad
	FeatTokJSONLoads
	FeatTokSecret
	FeatMaxNesting
	FeatBranches
	FeatCalls

	// VectorDim is the dimensionality of the feature schema.
	VectorDim = 20
)

// Extractor computes feature vectors from code samples. Extraction is total:
// it never fails, and oversized content is truncated rather than rejected.
type Extractor struct {
	MaxContentBytes int                         // Truncation cap; 0 uses the configured default
	Structural      contract.StructuralProvider // Optional; nil leaves structural slots at zero
}

// NewExtractor returns an extractor with the given content cap and an
// optional structural provider.
func NewExtractor(maxBytes int, structural contract.StructuralProvider) *Extractor {
	return &Extractor{MaxContentBytes: maxBytes, Structural: structural}
}

// Extract computes the feature vector and metadata for one sample.
// Empty content yields a well-formed all-zero vector. Content beyond the
// byte cap is cut at a rune boundary and marked as truncated, so that
// downstream consumers can discount the result.
func (e *Extractor) Extract(ctx context.Context, sample schema.CodeSample) (schema.FeatureVector, schema.FeatureMeta) {
	meta := schema.FeatureMeta{SchemaVersion: SchemaVersion, RawBytes: len(sample.Content)}

	maxBytes := e.MaxContentBytes
	if maxBytes <= 0 {
		maxBytes = contract.DefaultMaxContentBytes
	}
	content := sample.Content
	if len(content) > maxBytes {
		content = truncateAtRune(content, maxBytes)
		meta.Truncated = true
	}

	vec := make(schema.FeatureVector, VectorDim)
	if content == "" {
		return vec, meta
	}

	toks := tokensFor(sample.Language)
	lines := SplitLines(content)

	// --- 1. Volume metrics ---
	loc := len(lines)
	vec[FeatLOC] = float64(loc)
	vec[FeatChars] = float64(utf8.RuneCountInString(content))
	vec[FeatWords] = float64(len(strings.Fields(content)))

	// --- 2. Declaration counts ---
	vec[FeatFunctions] = float64(countAny(content, toks.functions))
	vec[FeatClasses] = float64(countAny(content, toks.classes))
	vec[FeatImports] = float64(countAny(content, toks.imports))

	// --- 3. Line shape ratios ---
	commentLines, emptyLines := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			emptyLines++
			continue
		}
		for _, marker := range toks.comments {
			if strings.HasPrefix(trimmed, marker) {
				commentLines++
				break
			}
		}
	}
	vec[FeatCommentRatio] = float64(commentLines) / float64(loc)
	vec[FeatEmptyRatio] = float64(emptyLines) / float64(loc)
	vec[FeatAvgFnLen] = float64(loc) / max(vec[FeatFunctions], 1)

	// --- 4. Security token counts ---
	vec[FeatTokEval] = float64(countAny(content, toks.evalCalls))
	vec[FeatTokExec] = float64(countAny(content, toks.execCalls))
	vec[FeatTokOSSystem] = float64(countAny(content, toks.osSystemCalls))
	vec[FeatTokSubprocess] = float64(countAny(content, toks.subprocessOps))
	vec[FeatTokPickle] = float64(countAny(content, toks.pickleLoads))
	vec[FeatTokYAMLLoad] = float64(countAny(content, toks.yamlLoads))
	vec[FeatTokJSONLoads] = float64(countAny(content, toks.jsonLoads))
	vec[FeatTokSecret] = float64(len(secretPattern.FindAllStringIndex(content, -1)))

	// --- 5. Structural slots from the optional provider ---
	if e.Structural != nil {
		sm, err := e.Structural.StructuralMetrics(ctx, sample)
		if err != nil {
			// Provider failures degrade to zero slots, never fail extraction.
			contract.LogWarn("structural provider", err)
		} else {
			vec[FeatMaxNesting] = sm.MaxNesting
			vec[FeatBranches] = sm.BranchCount
			vec[FeatCalls] = sm.CallCount
		}
	}

	return vec, meta
}

// CountDecisionPoints counts cyclomatic decision markers for the language.
// The cyclomatic complexity of a sample is one plus this count.
func CountDecisionPoints(content string, lang schema.Language) int {
	return countAny(content, tokensFor(lang).decisions)
}

// AssertDensity returns test and assertion markers per non-empty line,
// clamped to [0, 1]. It feeds the coverage proxy.
func AssertDensity(content string, lang schema.Language) float64 {
	lines := SplitLines(content)
	nonEmpty := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return 0
	}
	d := float64(countAny(content, tokensFor(lang).asserts)) / float64(nonEmpty)
	return min(d, 1)
}

// DuplicateLinePct returns the percentage (0-100) of lines that are exact
// duplicates of an earlier non-empty line. Empty lines never count as
// duplicates but stay in the denominator.
func DuplicateLinePct(content string) float64 {
	lines := SplitLines(content)
	if len(lines) <= 1 {
		return 0
	}
	seen := make(map[string]struct{}, len(lines))
	dups := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			dups++
		} else {
			seen[trimmed] = struct{}{}
		}
	}
	return 100 * float64(dups) / float64(len(lines))
}

// SplitLines splits content into lines without producing a phantom empty
// line for a trailing newline.
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// countAny sums substring occurrences of every token in the list.
func countAny(content string, tokens []string) int {
	total := 0
	for _, tok := range tokens {
		total += strings.Count(content, tok)
	}
	return total
}

// truncateAtRune cuts s to at most maxBytes without splitting a rune.
func truncateAtRune(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
