package model

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/codiehq/codesight/core/feature"
	"github.com/codiehq/codesight/schema"
)

// Clustering shape for the pattern detector.
const (
	patternEps      = 0.3 // cosine distance neighborhood
	patternMinPts   = 2
	patternTopTerms = 5
	maxPatternLines = 10
)

// patternKeywordRules label a cluster from its dominant vocabulary terms.
// First rule whose keyword appears among the top terms wins, so rules are
// ordered most to least severe. No match falls back to style/low.
var patternKeywordRules = []struct {
	keywords []string
	ptype    schema.PatternType
	severity schema.Severity
}{
	{[]string{"eval", "exec"}, schema.PatternSecurity, schema.SeverityCritical},
	{[]string{"system", "popen", "subprocess", "pickle", "unpickle", "yaml"}, schema.PatternSecurity, schema.SeverityHigh},
	{[]string{"password", "passwd", "secret", "apikey", "token"}, schema.PatternSecurity, schema.SeverityHigh},
	{[]string{"for", "while", "loop", "range", "append"}, schema.PatternPerformance, schema.SeverityMedium},
	{[]string{"import", "global"}, schema.PatternPerformance, schema.SeverityLow},
	{[]string{"class", "self", "this", "interface", "extends"}, schema.PatternArchitecture, schema.SeverityMedium},
}

// patternSuggestions is the fixed remediation list per pattern type.
var patternSuggestions = map[schema.PatternType][]string{
	schema.PatternSecurity: {
		"Replace dynamic evaluation with safe parsing helpers",
		"Run external commands with an argument vector, never a shell string",
		"Deserialize untrusted input with a safe format such as JSON",
	},
	schema.PatternPerformance: {
		"Hoist invariant work out of loops",
		"Import only the names you use",
	},
	schema.PatternStyle: {
		"Break long lines into multiple lines",
		"Reduce nesting with early returns",
	},
	schema.PatternArchitecture: {
		"Split large classes into smaller, focused ones",
		"Consider whether a singleton is the best design choice",
	},
}

// patternCluster is one persisted density cluster in embedding space.
type patternCluster struct {
	ID          string             `json:"id"`
	Type        schema.PatternType `json:"type"`
	Severity    schema.Severity    `json:"severity"`
	Centroid    []float64          `json:"centroid"`
	Radius      float64            `json:"radius"`
	TopTerms    []string           `json:"top_terms"`
	Suggestions []string           `json:"suggestions"`
}

// PatternModel detects recurring code patterns by assigning samples to the
// nearest training-time density cluster. Fitting is fully deterministic, so
// unlike the forest models it draws no random stream.
type PatternModel struct {
	Vectorizer *tfidfParams     `json:"vectorizer"`
	Clusters   []patternCluster `json:"clusters"`
}

// FitPattern embeds the corpus, clusters it with DBSCAN and persists every
// cluster as a labeled centroid. A corpus too uniform or too scattered to
// form clusters yields a valid model that detects nothing.
func FitPattern(contents []string) (*PatternModel, error) {
	if len(contents) == 0 {
		return nil, fmt.Errorf("fit pattern: empty training corpus")
	}
	vec := fitTFIDF(contents)

	embeds := make([][]float64, 0, len(contents))
	for _, c := range contents {
		if e := vec.embed(c); e != nil {
			embeds = append(embeds, e)
		}
	}
	labels := dbscan(embeds, patternEps, patternMinPts)

	nClusters := 0
	for _, l := range labels {
		nClusters = max(nClusters, l+1)
	}
	m := &PatternModel{Vectorizer: vec, Clusters: make([]patternCluster, 0, nClusters)}
	for c := range nClusters {
		var members [][]float64
		for i, l := range labels {
			if l == c {
				members = append(members, embeds[i])
			}
		}
		if cl, ok := buildCluster(vec, members); ok {
			cl.ID = fmt.Sprintf("%s-%03d", cl.Type, c)
			m.Clusters = append(m.Clusters, cl)
		}
	}
	return m, nil
}

// Detect assigns content to the nearest cluster whose radius contains it.
// Beyond every radius, or with no vocabulary overlap at all, no pattern is
// reported.
func (m *PatternModel) Detect(content string) []schema.DetectedPattern {
	embed := m.Vectorizer.embed(content)
	if embed == nil || len(m.Clusters) == 0 {
		return nil
	}

	best, bestDist := -1, 0.0
	for i, c := range m.Clusters {
		d := cosineDistance(embed, c.Centroid)
		if d > c.Radius {
			continue
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return nil
	}

	c := m.Clusters[best]
	return []schema.DetectedPattern{{
		PatternID:   c.ID,
		Type:        c.Type,
		Severity:    c.Severity,
		Confidence:  clamp(1-bestDist/c.Radius, 0, 1),
		LineNumbers: termLines(content, c.TopTerms),
		Suggestions: c.Suggestions,
	}}
}

// buildCluster folds member embeddings into a labeled centroid. The radius
// covers the farthest member but never shrinks below the clustering eps, so
// points that would have joined the cluster at fit time still match it.
func buildCluster(vec *tfidfParams, members [][]float64) (patternCluster, bool) {
	if len(members) == 0 {
		return patternCluster{}, false
	}
	centroid := make([]float64, len(members[0]))
	for _, m := range members {
		for i, v := range m {
			centroid[i] += v
		}
	}
	norm := 0.0
	for _, v := range centroid {
		norm += v * v
	}
	if norm == 0 {
		return patternCluster{}, false
	}
	norm = 1 / math.Sqrt(norm)
	for i := range centroid {
		centroid[i] *= norm
	}

	radius := patternEps
	for _, m := range members {
		radius = max(radius, cosineDistance(m, centroid))
	}

	top := topTerms(vec, centroid, patternTopTerms)
	ptype, severity := labelCluster(top)
	return patternCluster{
		Type:        ptype,
		Severity:    severity,
		Centroid:    centroid,
		Radius:      radius,
		TopTerms:    top,
		Suggestions: patternSuggestions[ptype],
	}, true
}

// topTerms returns the n highest-weight vocabulary terms of a centroid.
func topTerms(vec *tfidfParams, centroid []float64, n int) []string {
	idx := make([]int, len(centroid))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		if centroid[idx[a]] != centroid[idx[b]] {
			return centroid[idx[a]] > centroid[idx[b]]
		}
		return vec.Terms[idx[a]] < vec.Terms[idx[b]]
	})
	out := make([]string, 0, n)
	for _, i := range idx {
		if len(out) == n || centroid[i] == 0 {
			break
		}
		out = append(out, vec.Terms[i])
	}
	return out
}

// labelCluster matches dominant terms against the keyword rules.
func labelCluster(top []string) (schema.PatternType, schema.Severity) {
	for _, rule := range patternKeywordRules {
		for _, kw := range rule.keywords {
			for _, term := range top {
				if term == kw || strings.Contains(term, " "+kw) || strings.HasPrefix(term, kw+" ") {
					return rule.ptype, rule.severity
				}
			}
		}
	}
	return schema.PatternStyle, schema.SeverityLow
}

// termLines lists the 1-based lines containing any of the terms, ascending,
// capped at maxPatternLines.
func termLines(content string, terms []string) []int {
	var out []int
	for i, line := range feature.SplitLines(content) {
		lower := strings.ToLower(line)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				out = append(out, i+1)
				break
			}
		}
		if len(out) == maxPatternLines {
			break
		}
	}
	return out
}

// dbscan labels points with cluster ids starting at 0, -1 for noise.
// Neighborhoods include the point itself, matching the usual minPts
// convention.
func dbscan(points [][]float64, eps float64, minPts int) []int {
	const unvisited = -2
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unvisited
	}
	cluster := 0
	for i := range points {
		if labels[i] != unvisited {
			continue
		}
		neighbors := regionQuery(points, i, eps)
		if len(neighbors) < minPts {
			labels[i] = -1
			continue
		}
		labels[i] = cluster
		queue := append([]int(nil), neighbors...)
		for qi := 0; qi < len(queue); qi++ {
			j := queue[qi]
			if labels[j] == -1 {
				labels[j] = cluster // noise on a cluster border joins it
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = cluster
			if jn := regionQuery(points, j, eps); len(jn) >= minPts {
				queue = append(queue, jn...)
			}
		}
		cluster++
	}
	return labels
}

func regionQuery(points [][]float64, i int, eps float64) []int {
	var out []int
	for j := range points {
		if cosineDistance(points[i], points[j]) <= eps {
			out = append(out, j)
		}
	}
	return out
}
