package classifiers

import (
	"math/rand"

	"autoclass/domain/core"
)

// Dummy is the rule-based baseline: "most_frequent" always predicts the
// majority class, "stratified" samples predictions from the training class
// distribution with a fixed seed.
type Dummy struct {
	Strategy    string
	RandomState int64

	classes  []int
	shares   []float64
	majority int
}

// NewDummy builds the baseline from its hyperparameters.
func NewDummy(p Params) *Dummy {
	return &Dummy{
		Strategy:    p.String("strategy", "most_frequent"),
		RandomState: int64(p.Int("random_state", 42)),
	}
}

func (m *Dummy) Name() string { return "Rule-Based (Baseline)" }

func (m *Dummy) Params() map[string]interface{} {
	return map[string]interface{}{"strategy": m.Strategy}
}

// Fit records the training class distribution.
func (m *Dummy) Fit(X [][]float64, y []int) error {
	if err := validateFit(X, y); err != nil {
		return err
	}
	m.classes = extractClasses(y)

	counts := make(map[int]int)
	for _, label := range y {
		counts[label]++
	}

	m.shares = make([]float64, len(m.classes))
	best := 0
	for i, class := range m.classes {
		m.shares[i] = float64(counts[class]) / float64(len(y))
		if counts[class] > counts[m.classes[best]] {
			best = i
		}
	}
	m.majority = m.classes[best]
	return nil
}

func (m *Dummy) Predict(X [][]float64) ([]int, error) {
	if m.classes == nil {
		return nil, core.ErrModelNotFitted
	}
	out := make([]int, len(X))
	if m.Strategy == "stratified" {
		rng := rand.New(rand.NewSource(m.RandomState))
		for i := range out {
			out[i] = m.sample(rng)
		}
		return out, nil
	}
	for i := range out {
		out[i] = m.majority
	}
	return out, nil
}

// PredictProba returns the training distribution for every row.
func (m *Dummy) PredictProba(X [][]float64) ([][]float64, error) {
	if m.classes == nil {
		return nil, core.ErrModelNotFitted
	}
	out := make([][]float64, len(X))
	for i := range out {
		out[i] = append([]float64(nil), m.shares...)
	}
	return out, nil
}

func (m *Dummy) Classes() []int { return m.classes }

func (m *Dummy) sample(rng *rand.Rand) int {
	r := rng.Float64()
	acc := 0.0
	for i, share := range m.shares {
		acc += share
		if r < acc {
			return m.classes[i]
		}
	}
	return m.classes[len(m.classes)-1]
}
