package classifiers

import (
	"math"
	"math/rand"
	"sync"

	"autoclass/domain/core"
)

// RandomForest is a bagged ensemble of decision trees with sqrt feature
// subsampling per split. Trees are built in parallel; each tree derives its
// own seed from RandomState so the forest is reproducible regardless of
// scheduling.
type RandomForest struct {
	NEstimators int
	MaxDepth    int
	RandomState int64

	trees   []*DecisionTree
	classes []int
}

// NewRandomForest builds the variant from its hyperparameters.
func NewRandomForest(p Params) *RandomForest {
	return &RandomForest{
		NEstimators: p.Int("n_estimators", 100),
		MaxDepth:    p.Int("max_depth", 0),
		RandomState: int64(p.Int("random_state", 42)),
	}
}

func (m *RandomForest) Name() string { return "Random Forest" }

func (m *RandomForest) Params() map[string]interface{} {
	return map[string]interface{}{"n_estimators": m.NEstimators, "max_depth": m.MaxDepth}
}

// Fit builds NEstimators trees on bootstrap samples.
func (m *RandomForest) Fit(X [][]float64, y []int) error {
	if err := validateFit(X, y); err != nil {
		return err
	}
	m.classes = extractClasses(y)
	n := len(X)
	nFeatures := len(X[0])
	maxFeatures := int(math.Sqrt(float64(nFeatures)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	m.trees = make([]*DecisionTree, m.NEstimators)
	var wg sync.WaitGroup
	errs := make([]error, m.NEstimators)

	for t := 0; t < m.NEstimators; t++ {
		wg.Add(1)
		go func(t int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(m.RandomState + int64(t)))

			bootX := make([][]float64, n)
			bootY := make([]int, n)
			for i := 0; i < n; i++ {
				j := rng.Intn(n)
				bootX[i] = X[j]
				bootY[i] = y[j]
			}

			tree := &DecisionTree{
				MaxDepth:        m.MaxDepth,
				MinSamplesSplit: 2,
				maxFeatures:     maxFeatures,
				rng:             rng,
			}
			if err := tree.Fit(bootX, bootY); err != nil {
				errs[t] = err
				return
			}
			m.trees[t] = tree
		}(t)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *RandomForest) Predict(X [][]float64) ([]int, error) {
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

// PredictProba averages leaf distributions over all trees. A bootstrap
// sample can miss a rare class, so tree outputs are remapped onto the
// forest's class list.
func (m *RandomForest) PredictProba(X [][]float64) ([][]float64, error) {
	if m.trees == nil {
		return nil, core.ErrModelNotFitted
	}

	classIdx := make(map[int]int, len(m.classes))
	for i, c := range m.classes {
		classIdx[c] = i
	}

	out := make([][]float64, len(X))
	for i := range out {
		out[i] = make([]float64, len(m.classes))
	}

	for _, tree := range m.trees {
		proba, err := tree.PredictProba(X)
		if err != nil {
			return nil, err
		}
		for i, p := range proba {
			for tc, share := range p {
				out[i][classIdx[tree.classes[tc]]] += share
			}
		}
	}

	for i := range out {
		for j := range out[i] {
			out[i][j] /= float64(len(m.trees))
		}
	}
	return out, nil
}

func (m *RandomForest) Classes() []int { return m.classes }
