package model

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// forestParams bounds ensemble growth.
type forestParams struct {
	trees    int
	maxDepth int
	minLeaf  int
	classify bool
	balance  bool // inverse class frequency weights, classification only
}

// forest is a bagged ensemble of CART trees sharing one feature space.
type forest struct {
	Dim   int            `json:"dim"`
	Trees []decisionTree `json:"trees"`
}

// fitForest grows a deterministic bagged ensemble: every tree sees a
// bootstrap sample and considers sqrt(dim) features per split.
func fitForest(rng *rand.Rand, xs [][]float64, ys []float64, p forestParams) (*forest, error) {
	n := len(xs)
	if n == 0 {
		return nil, fmt.Errorf("cannot fit forest on empty training set")
	}
	dim := len(xs[0])

	var ws []float64
	if p.classify && p.balance {
		var err error
		ws, err = balancedWeights(ys)
		if err != nil {
			return nil, err
		}
	}

	cfg := treeConfig{
		maxDepth:   p.maxDepth,
		minLeaf:    p.minLeaf,
		featureSub: int(math.Ceil(math.Sqrt(float64(dim)))),
		classify:   p.classify,
	}

	f := &forest{Dim: dim, Trees: make([]decisionTree, 0, p.trees)}
	for range p.trees {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.IntN(n)
		}
		f.Trees = append(f.Trees, *buildTree(rng, xs, ys, ws, idx, cfg))
	}
	return f, nil
}

// predict returns the mean leaf value across trees. For classification this
// is a soft-vote probability in [0, 1].
func (f *forest) predict(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for i := range f.Trees {
		sum += f.Trees[i].predict(x)
	}
	return sum / float64(len(f.Trees))
}

// balancedWeights assigns inverse class frequency weights so that minority
// examples count as much as majority ones. Requires both classes present.
func balancedWeights(ys []float64) ([]float64, error) {
	n := float64(len(ys))
	pos := 0.0
	for _, y := range ys {
		if y > 0.5 {
			pos++
		}
	}
	neg := n - pos
	if pos == 0 || neg == 0 {
		return nil, fmt.Errorf("training labels contain a single class")
	}
	wPos := n / (2 * pos)
	wNeg := n / (2 * neg)
	ws := make([]float64, len(ys))
	for i, y := range ys {
		if y > 0.5 {
			ws[i] = wPos
		} else {
			ws[i] = wNeg
		}
	}
	return ws, nil
}
