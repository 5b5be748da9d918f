package learner

import (
	"math"
	"math/rand"
)

// Forest is a bagged ensemble of decision trees over standardized features.
// Each tree sees a bootstrap sample and a random sqrt-sized feature subset
// per split.
type Forest struct {
	Trees       []*Node
	NumFeatures int
	// Importance holds normalized impurity-decrease scores by feature
	// position.
	Importance []float64
}

// ForestParams configure a bagged ensemble fit.
type ForestParams struct {
	NumTrees int
	MaxDepth int
}

// FitForest trains a bagged-tree classifier on 0/1 labels.
func FitForest(X [][]float64, y []int, p ForestParams, rng *rand.Rand) *Forest {
	numFeatures := len(X[0])
	target := make([]float64, len(y))
	for i, v := range y {
		target[i] = float64(v)
	}

	cfg := treeConfig{
		maxDepth:        p.MaxDepth,
		minSamplesSplit: 2,
		maxFeatures:     int(math.Ceil(math.Sqrt(float64(numFeatures)))),
	}

	f := &Forest{
		Trees:       make([]*Node, 0, p.NumTrees),
		NumFeatures: numFeatures,
		Importance:  make([]float64, numFeatures),
	}
	for t := 0; t < p.NumTrees; t++ {
		idx := make([]int, len(X))
		for i := range idx {
			idx[i] = rng.Intn(len(X))
		}
		f.Trees = append(f.Trees, buildTree(X, target, idx, 0, cfg, rng, f.Importance))
	}

	var total float64
	for _, v := range f.Importance {
		total += v
	}
	if total > 0 {
		for i := range f.Importance {
			f.Importance[i] /= total
		}
	}
	return f
}

// PredictProba returns the averaged positive-class probability per row.
func (f *Forest) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	if len(f.Trees) == 0 {
		return out
	}
	for i, row := range X {
		var sum float64
		for _, tree := range f.Trees {
			sum += tree.Predict(row)
		}
		out[i] = clampProba(sum / float64(len(f.Trees)))
	}
	return out
}

func clampProba(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
