package classifiers

import (
	"math/rand"
	"sort"

	"autoclass/domain/core"
)

// DecisionTree is a CART classifier splitting on gini impurity.
// MaxDepth 0 means unbounded.
type DecisionTree struct {
	MaxDepth        int
	MinSamplesSplit int

	// maxFeatures > 0 enables random feature subsampling per split; used by
	// the forest, always 0 for the standalone variant.
	maxFeatures int
	rng         *rand.Rand

	root    *treeNode
	classes []int
}

type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	counts    []float64 // class vote shares at a leaf
	leaf      bool
}

// NewDecisionTree builds the variant from its hyperparameters.
func NewDecisionTree(p Params) *DecisionTree {
	return &DecisionTree{
		MaxDepth:        p.Int("max_depth", 0),
		MinSamplesSplit: p.Int("min_samples_split", 2),
	}
}

func (m *DecisionTree) Name() string { return "Decision Tree" }

func (m *DecisionTree) Params() map[string]interface{} {
	return map[string]interface{}{"max_depth": m.MaxDepth, "min_samples_split": m.MinSamplesSplit}
}

// Fit grows the tree greedily.
func (m *DecisionTree) Fit(X [][]float64, y []int) error {
	if err := validateFit(X, y); err != nil {
		return err
	}
	m.classes = extractClasses(y)

	classIdx := make(map[int]int, len(m.classes))
	for i, c := range m.classes {
		classIdx[c] = i
	}
	labels := make([]int, len(y))
	for i, label := range y {
		labels[i] = classIdx[label]
	}

	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	m.root = m.grow(X, labels, idx, 0)
	return nil
}

func (m *DecisionTree) grow(X [][]float64, labels []int, idx []int, depth int) *treeNode {
	counts := make([]float64, len(m.classes))
	for _, i := range idx {
		counts[labels[i]]++
	}

	if len(idx) < m.MinSamplesSplit ||
		(m.MaxDepth > 0 && depth >= m.MaxDepth) ||
		isPure(counts) {
		return leafNode(counts, len(idx))
	}

	feature, threshold, ok := m.bestSplit(X, labels, idx, counts)
	if !ok {
		return leafNode(counts, len(idx))
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return leafNode(counts, len(idx))
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      m.grow(X, labels, left, depth+1),
		right:     m.grow(X, labels, right, depth+1),
	}
}

// bestSplit scans candidate features for the threshold with minimum weighted
// gini impurity. Thresholds are midpoints between consecutive distinct values.
func (m *DecisionTree) bestSplit(X [][]float64, labels []int, idx []int, parentCounts []float64) (int, float64, bool) {
	nFeatures := len(X[idx[0]])
	features := make([]int, nFeatures)
	for i := range features {
		features[i] = i
	}
	if m.maxFeatures > 0 && m.maxFeatures < nFeatures && m.rng != nil {
		m.rng.Shuffle(nFeatures, func(i, j int) { features[i], features[j] = features[j], features[i] })
		features = features[:m.maxFeatures]
		sort.Ints(features)
	}

	bestGini := gini(parentCounts, float64(len(idx)))
	bestFeature, bestThreshold := -1, 0.0
	n := float64(len(idx))

	for _, f := range features {
		ordered := append([]int(nil), idx...)
		sort.Slice(ordered, func(a, b int) bool { return X[ordered[a]][f] < X[ordered[b]][f] })

		leftCounts := make([]float64, len(m.classes))
		rightCounts := append([]float64(nil), parentCounts...)
		nLeft := 0.0

		for pos := 0; pos < len(ordered)-1; pos++ {
			i := ordered[pos]
			leftCounts[labels[i]]++
			rightCounts[labels[i]]--
			nLeft++

			v, next := X[i][f], X[ordered[pos+1]][f]
			if v == next {
				continue
			}

			nRight := n - nLeft
			weighted := (nLeft*gini(leftCounts, nLeft) + nRight*gini(rightCounts, nRight)) / n
			if weighted < bestGini-1e-12 {
				bestGini = weighted
				bestFeature = f
				bestThreshold = (v + next) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func (m *DecisionTree) Predict(X [][]float64) ([]int, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(X))
	for i, p := range proba {
		out[i] = m.classes[argmax(p)]
	}
	return out, nil
}

// PredictProba returns the leaf class distribution for each row.
func (m *DecisionTree) PredictProba(X [][]float64) ([][]float64, error) {
	if m.root == nil {
		return nil, core.ErrModelNotFitted
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		node := m.root
		for !node.leaf {
			if row[node.feature] <= node.threshold {
				node = node.left
			} else {
				node = node.right
			}
		}
		out[i] = node.counts
	}
	return out, nil
}

func (m *DecisionTree) Classes() []int { return m.classes }

func leafNode(counts []float64, n int) *treeNode {
	shares := make([]float64, len(counts))
	if n > 0 {
		for i, c := range counts {
			shares[i] = c / float64(n)
		}
	}
	return &treeNode{leaf: true, counts: shares}
}

func isPure(counts []float64) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func gini(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := c / n
		impurity -= p * p
	}
	return impurity
}
