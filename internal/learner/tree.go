package learner

import (
	"math"
	"math/rand"
	"sort"
)

// Node is one decision-tree node. Leaves have nil children and carry the
// prediction value: the positive-class fraction for bagged trees, the raw
// additive step for boosted trees. Fields are exported for gob encoding.
type Node struct {
	Feature   int
	Threshold float64
	Left      *Node
	Right     *Node
	Value     float64
}

// IsLeaf reports whether the node carries a prediction.
func (n *Node) IsLeaf() bool { return n.Left == nil && n.Right == nil }

// Predict walks the tree for one feature row.
func (n *Node) Predict(row []float64) float64 {
	return n.apply(row).Value
}

func (n *Node) apply(row []float64) *Node {
	cur := n
	for !cur.IsLeaf() {
		if row[cur.Feature] <= cur.Threshold {
			cur = cur.Left
		} else {
			cur = cur.Right
		}
	}
	return cur
}

type treeConfig struct {
	maxDepth        int
	minSamplesSplit int
	// maxFeatures limits the features examined per split; 0 means all.
	maxFeatures int
}

// buildTree fits a variance-minimizing regression tree on X[idx], y[idx].
// For binary 0/1 targets variance impurity is proportional to Gini, so the
// same builder serves classification (bagged) and residual (boosted) trees.
// Split quality gains are accumulated into importance by feature.
func buildTree(X [][]float64, y []float64, idx []int, depth int, cfg treeConfig, rng *rand.Rand, importance []float64) *Node {
	mean, variance := meanVar(y, idx)
	if depth >= cfg.maxDepth || len(idx) < cfg.minSamplesSplit || variance == 0 {
		return &Node{Feature: -1, Value: mean}
	}

	numFeatures := len(X[0])
	candidates := featureCandidates(numFeatures, cfg.maxFeatures, rng)

	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	sorted := make([]int, len(idx))
	for _, f := range candidates {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool { return X[sorted[a]][f] < X[sorted[b]][f] })

		// prefix sums over the sorted order let every threshold be scored
		// in one pass
		var leftSum, leftSq float64
		totalSum, totalSq := sums(y, idx)
		n := float64(len(idx))
		for i := 0; i < len(sorted)-1; i++ {
			v := y[sorted[i]]
			leftSum += v
			leftSq += v * v
			// only split between distinct feature values
			if X[sorted[i]][f] == X[sorted[i+1]][f] {
				continue
			}
			nl := float64(i + 1)
			nr := n - nl
			varL := leftSq/nl - (leftSum/nl)*(leftSum/nl)
			varR := (totalSq-leftSq)/nr - ((totalSum-leftSum)/nr)*((totalSum-leftSum)/nr)
			gain := variance - (nl*varL+nr*varR)/n
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (X[sorted[i]][f] + X[sorted[i+1]][f]) / 2
			}
		}
	}

	if bestFeature < 0 {
		return &Node{Feature: -1, Value: mean}
	}
	if importance != nil {
		importance[bestFeature] += bestGain * float64(len(idx))
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if X[i][bestFeature] <= bestThreshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	return &Node{
		Feature:   bestFeature,
		Threshold: bestThreshold,
		Left:      buildTree(X, y, leftIdx, depth+1, cfg, rng, importance),
		Right:     buildTree(X, y, rightIdx, depth+1, cfg, rng, importance),
	}
}

func featureCandidates(numFeatures, maxFeatures int, rng *rand.Rand) []int {
	all := make([]int, numFeatures)
	for i := range all {
		all[i] = i
	}
	if maxFeatures <= 0 || maxFeatures >= numFeatures {
		return all
	}
	rng.Shuffle(numFeatures, func(a, b int) { all[a], all[b] = all[b], all[a] })
	return all[:maxFeatures]
}

func meanVar(y []float64, idx []int) (mean, variance float64) {
	if len(idx) == 0 {
		return 0, 0
	}
	sum, sq := sums(y, idx)
	n := float64(len(idx))
	mean = sum / n
	variance = sq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, variance
}

func sums(y []float64, idx []int) (sum, sq float64) {
	for _, i := range idx {
		sum += y[i]
		sq += y[i] * y[i]
	}
	return sum, sq
}

func sigmoid(v float64) float64 {
	return 1.0 / (1.0 + math.Exp(-v))
}
