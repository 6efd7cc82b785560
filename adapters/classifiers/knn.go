package classifiers

import (
	"math"
	"sort"

	"autoclass/domain/core"
)

// KNN is a k-nearest-neighbors classifier with euclidean distance and either
// uniform or distance-weighted voting.
type KNN struct {
	K       int
	Weights string // "uniform" or "distance"

	xTrain  [][]float64
	yTrain  []int
	classes []int
}

// NewKNN builds the variant from its hyperparameters.
func NewKNN(p Params) *KNN {
	return &KNN{
		K:       p.Int("n_neighbors", 5),
		Weights: p.String("weights", "uniform"),
	}
}

func (m *KNN) Name() string { return "K-Nearest Neighbors" }

func (m *KNN) Params() map[string]interface{} {
	return map[string]interface{}{"n_neighbors": m.K, "weights": m.Weights}
}

// Fit memorizes the training set.
func (m *KNN) Fit(X [][]float64, y []int) error {
	if err := validateFit(X, y); err != nil {
		return err
	}
	m.xTrain = X
	m.yTrain = y
	m.classes = extractClasses(y)
	return nil
}

func (m *KNN) Predict(X [][]float64) ([]int, error) {
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

// PredictProba returns neighbor vote shares per class.
func (m *KNN) PredictProba(X [][]float64) ([][]float64, error) {
	if m.xTrain == nil {
		return nil, core.ErrModelNotFitted
	}

	classIdx := make(map[int]int, len(m.classes))
	for i, c := range m.classes {
		classIdx[c] = i
	}

	out := make([][]float64, len(X))
	for i, sample := range X {
		votes := make([]float64, len(m.classes))
		total := 0.0
		for _, nb := range m.neighbors(sample) {
			w := 1.0
			if m.Weights == "distance" {
				// Exact matches dominate; everything else decays with distance.
				if nb.distance == 0 {
					w = 1e12
				} else {
					w = 1.0 / nb.distance
				}
			}
			votes[classIdx[m.yTrain[nb.index]]] += w
			total += w
		}
		if total > 0 {
			for j := range votes {
				votes[j] /= total
			}
		}
		out[i] = votes
	}
	return out, nil
}

func (m *KNN) Classes() []int { return m.classes }

type neighbor struct {
	index    int
	distance float64
}

// neighbors returns the K nearest training rows, ties broken by index so
// prediction is stable.
func (m *KNN) neighbors(sample []float64) []neighbor {
	all := make([]neighbor, len(m.xTrain))
	for i, row := range m.xTrain {
		all[i] = neighbor{index: i, distance: euclidean(sample, row)}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].distance != all[j].distance {
			return all[i].distance < all[j].distance
		}
		return all[i].index < all[j].index
	})

	k := m.K
	if k > len(all) {
		k = len(all)
	}
	return all[:k]
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
