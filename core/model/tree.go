package model

import (
	"math"
	"math/rand/v2"
	"sort"
)

// treeNode is one node of a CART tree in flattened form. Feature -1 marks a
// leaf; Value holds the weighted positive share (classification) or the
// weighted target mean (regression).
type treeNode struct {
	Feature int     `json:"f"`
	Split   float64 `json:"s"`
	Left    int     `json:"l"`
	Right   int     `json:"r"`
	Value   float64 `json:"v"`
}

// decisionTree is a binary CART tree over normalized feature vectors.
type decisionTree struct {
	Nodes []treeNode `json:"nodes"`
}

// treeConfig bounds tree growth.
type treeConfig struct {
	maxDepth   int
	minLeaf    int
	featureSub int  // features considered per split; 0 means all
	classify   bool // gini impurity when true, variance otherwise
}

// predict walks the tree for one vector.
func (t *decisionTree) predict(x []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Split {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// buildTree grows one tree on the given index subset.
func buildTree(rng *rand.Rand, xs [][]float64, ys, ws []float64, idx []int, cfg treeConfig) *decisionTree {
	t := &decisionTree{}
	t.grow(rng, xs, ys, ws, idx, cfg, 0)
	return t
}

// grow appends a node for idx and returns its index. Children are grown
// depth first; node fields are written through the slice because appends
// may reallocate the backing array.
func (t *decisionTree) grow(rng *rand.Rand, xs [][]float64, ys, ws []float64, idx []int, cfg treeConfig, depth int) int {
	self := len(t.Nodes)
	t.Nodes = append(t.Nodes, treeNode{Feature: -1, Value: weightedMean(ys, ws, idx)})

	if depth >= cfg.maxDepth || len(idx) < 2*cfg.minLeaf || isPure(ys, idx) {
		return self
	}

	feat, split, ok := bestSplit(rng, xs, ys, ws, idx, cfg)
	if !ok {
		return self
	}

	var left, right []int
	for _, i := range idx {
		if xs[i][feat] <= split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < cfg.minLeaf || len(right) < cfg.minLeaf {
		return self
	}

	t.Nodes[self].Feature = feat
	t.Nodes[self].Split = split
	t.Nodes[self].Left = t.grow(rng, xs, ys, ws, left, cfg, depth+1)
	t.Nodes[self].Right = t.grow(rng, xs, ys, ws, right, cfg, depth+1)
	return self
}

// bestSplit scans a random feature subset for the split with the lowest
// weighted impurity. Split thresholds sit halfway between adjacent distinct
// values.
func bestSplit(rng *rand.Rand, xs [][]float64, ys, ws []float64, idx []int, cfg treeConfig) (int, float64, bool) {
	dim := len(xs[idx[0]])
	nFeat := cfg.featureSub
	if nFeat <= 0 || nFeat > dim {
		nFeat = dim
	}
	feats := rng.Perm(dim)[:nFeat]

	bestCost := math.Inf(1)
	bestFeat := -1
	bestThreshold := 0.0
	order := make([]int, len(idx))

	for _, f := range feats {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return xs[order[a]][f] < xs[order[b]][f] })

		var wT, sT, qT float64
		for _, i := range order {
			w := weightOf(ws, i)
			wT += w
			sT += w * ys[i]
			qT += w * ys[i] * ys[i]
		}

		var wL, sL, qL float64
		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			w := weightOf(ws, i)
			wL += w
			sL += w * ys[i]
			qL += w * ys[i] * ys[i]

			xv, xn := xs[i][f], xs[order[k+1]][f]
			if xv == xn {
				continue
			}
			if k+1 < cfg.minLeaf || len(order)-k-1 < cfg.minLeaf {
				continue
			}

			wR := wT - wL
			sR := sT - sL
			qR := qT - qL
			var cost float64
			if cfg.classify {
				pl := sL / wL
				pr := sR / wR
				cost = wL*2*pl*(1-pl) + wR*2*pr*(1-pr)
			} else {
				cost = (qL - sL*sL/wL) + (qR - sR*sR/wR)
			}
			if cost < bestCost {
				bestCost = cost
				bestFeat = f
				bestThreshold = (xv + xn) / 2
			}
		}
	}
	return bestFeat, bestThreshold, bestFeat >= 0
}

// weightedMean averages ys over idx with optional weights.
func weightedMean(ys, ws []float64, idx []int) float64 {
	var sum, wsum float64
	for _, i := range idx {
		w := weightOf(ws, i)
		sum += w * ys[i]
		wsum += w
	}
	if wsum == 0 {
		return 0
	}
	return sum / wsum
}

// isPure reports whether every target over idx is identical.
func isPure(ys []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if ys[i] != ys[idx[0]] {
			return false
		}
	}
	return true
}

// weightOf returns the example weight, defaulting to uniform.
func weightOf(ws []float64, i int) float64 {
	if ws == nil {
		return 1
	}
	return ws[i]
}
