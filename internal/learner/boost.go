package learner

import (
	"math"
	"math/rand"
)

// Boost is a gradient-boosted tree ensemble with logistic loss. Trees are
// fit to the negative gradient (label minus current probability) and leaf
// values are Newton-adjusted before each stage is added.
type Boost struct {
	InitScore    float64
	Trees        []*Node
	LearningRate float64
}

// BoostParams configure a boosted ensemble fit.
type BoostParams struct {
	NumTrees     int
	LearningRate float64
	MaxDepth     int
}

// FitBoost trains a boosted-tree classifier on 0/1 labels.
func FitBoost(X [][]float64, y []int, p BoostParams, rng *rand.Rand) *Boost {
	n := len(X)
	target := make([]float64, n)
	var positives float64
	for i, v := range y {
		target[i] = float64(v)
		positives += float64(v)
	}

	// initial raw score = log-odds of the base rate
	prior := positives / float64(n)
	prior = math.Min(math.Max(prior, 1e-6), 1-1e-6)
	b := &Boost{
		InitScore:    math.Log(prior / (1 - prior)),
		LearningRate: p.LearningRate,
		Trees:        make([]*Node, 0, p.NumTrees),
	}

	cfg := treeConfig{maxDepth: p.MaxDepth, minSamplesSplit: 2}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	raw := make([]float64, n)
	for i := range raw {
		raw[i] = b.InitScore
	}
	residual := make([]float64, n)
	for t := 0; t < p.NumTrees; t++ {
		for i := range raw {
			residual[i] = target[i] - sigmoid(raw[i])
		}
		tree := buildTree(X, residual, idx, 0, cfg, rng, nil)
		newtonAdjust(tree, X, target, raw, idx)
		b.Trees = append(b.Trees, tree)
		for i, row := range X {
			raw[i] += p.LearningRate * tree.Predict(row)
		}
	}
	return b
}

// newtonAdjust replaces each leaf's residual mean with the one-step Newton
// value sum(y-p) / sum(p(1-p)) over the samples landing in that leaf.
func newtonAdjust(root *Node, X [][]float64, target, raw []float64, idx []int) {
	num := map[*Node]float64{}
	den := map[*Node]float64{}
	for _, i := range idx {
		leaf := root.apply(X[i])
		p := sigmoid(raw[i])
		num[leaf] += target[i] - p
		den[leaf] += p * (1 - p)
	}
	for leaf, d := range den {
		if d > 1e-12 {
			leaf.Value = num[leaf] / d
		}
	}
}

// PredictProba returns the positive-class probability per row.
func (b *Boost) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		raw := b.InitScore
		for _, tree := range b.Trees {
			raw += b.LearningRate * tree.Predict(row)
		}
		out[i] = sigmoid(raw)
	}
	return out
}
