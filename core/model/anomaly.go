package model

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/codiehq/codesight/schema"
)

// Isolation forest shape.
const (
	anomalyTrees     = 128
	anomalySubsample = 256
)

// isoNode is one node of an isolation tree in flattened form. Feature -1
// marks a leaf; Size is the number of subsample points that ended there.
type isoNode struct {
	Feature int     `json:"f"`
	Split   float64 `json:"s"`
	Left    int     `json:"l"`
	Right   int     `json:"r"`
	Size    int     `json:"n"`
}

type isoTree struct {
	Nodes []isoNode `json:"nodes"`
}

// AnomalyModel scores how easily a sample separates from the training
// distribution. The outlier threshold is the (1-contamination) quantile of
// the training scores, frozen at fit time so the decision never drifts with
// later inputs.
type AnomalyModel struct {
	Dim       int       `json:"dim"`
	Subsample int       `json:"subsample"`
	Threshold float64   `json:"threshold"`
	Trees     []isoTree `json:"trees"`
}

// FitAnomaly grows the isolation forest on normalized vectors. Contamination
// is the expected outlier share and must sit in (0, 0.5).
func FitAnomaly(xs [][]float64, contamination float64, version int) (*AnomalyModel, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("fit anomaly: empty training set")
	}
	if contamination <= 0 || contamination >= 0.5 {
		return nil, fmt.Errorf("fit anomaly: contamination %.3f outside (0, 0.5)", contamination)
	}
	rng := newRNG(string(schema.ModelAnomaly), version)
	sub := min(anomalySubsample, len(xs))
	heightLimit := int(math.Ceil(math.Log2(float64(max(sub, 2)))))

	m := &AnomalyModel{Dim: len(xs[0]), Subsample: sub, Trees: make([]isoTree, 0, anomalyTrees)}
	for range anomalyTrees {
		idx := rng.Perm(len(xs))[:sub]
		var t isoTree
		t.grow(rng, xs, idx, heightLimit)
		m.Trees = append(m.Trees, t)
	}

	scores := make([]float64, len(xs))
	for i, x := range xs {
		scores[i] = m.Score(x)
	}
	sort.Float64s(scores)
	m.Threshold = quantile(scores, 1-contamination)
	return m, nil
}

// Flag scores one normalized vector against the frozen threshold.
func (m *AnomalyModel) Flag(normalized []float64) (*schema.AnomalyFlag, error) {
	if len(m.Trees) == 0 {
		return nil, fmt.Errorf("anomaly model has no trees")
	}
	if len(normalized) != m.Dim {
		return nil, fmt.Errorf("vector has %d dims, anomaly model expects %d", len(normalized), m.Dim)
	}
	s := m.Score(normalized)
	return &schema.AnomalyFlag{Score: s, IsOutlier: s > m.Threshold}, nil
}

// Score returns the isolation score in (0, 1): around 0.5 for ordinary
// points, toward 1 for points that separate quickly.
func (m *AnomalyModel) Score(x []float64) float64 {
	sum := 0.0
	for i := range m.Trees {
		sum += m.Trees[i].pathLength(x)
	}
	avg := sum / float64(len(m.Trees))
	denom := avgPathLength(m.Subsample)
	if denom == 0 {
		denom = 1
	}
	return math.Pow(2, -avg/denom)
}

// grow appends a node for idx and returns its index. Splits pick the first
// random feature with spread and a uniform threshold inside its range;
// nodes with no usable feature stay leaves.
func (t *isoTree) grow(rng *rand.Rand, xs [][]float64, idx []int, limit int) int {
	self := len(t.Nodes)
	t.Nodes = append(t.Nodes, isoNode{Feature: -1, Size: len(idx)})
	if limit <= 0 || len(idx) <= 1 {
		return self
	}

	dim := len(xs[idx[0]])
	feat := -1
	var lo, hi float64
	for _, f := range rng.Perm(dim) {
		lo, hi = xs[idx[0]][f], xs[idx[0]][f]
		for _, i := range idx[1:] {
			lo = min(lo, xs[i][f])
			hi = max(hi, xs[i][f])
		}
		if hi > lo {
			feat = f
			break
		}
	}
	if feat < 0 {
		return self
	}

	split := lo + rng.Float64()*(hi-lo)
	var left, right []int
	for _, i := range idx {
		if xs[i][feat] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return self
	}

	t.Nodes[self].Feature = feat
	t.Nodes[self].Split = split
	t.Nodes[self].Left = t.grow(rng, xs, left, limit-1)
	t.Nodes[self].Right = t.grow(rng, xs, right, limit-1)
	return self
}

// pathLength walks one vector to its leaf, extending the depth by the
// expected search cost among the points isolated there.
func (t *isoTree) pathLength(x []float64) float64 {
	depth := 0
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Feature < 0 {
			return float64(depth) + avgPathLength(n.Size)
		}
		if x[n.Feature] < n.Split {
			i = n.Left
		} else {
			i = n.Right
		}
		depth++
	}
}

// avgPathLength is the expected path length of an unsuccessful binary
// search tree lookup among n points.
func avgPathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		h := math.Log(float64(n-1)) + 0.5772156649015329
		return 2*h - 2*float64(n-1)/float64(n)
	}
}

// quantile returns the nearest-rank q quantile of ascending sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(q*float64(len(sorted)))) - 1
	return sorted[min(max(rank, 0), len(sorted)-1)]
}
