package classifiers

import (
	"math"
	"math/rand"

	"autoclass/domain/core"
)

// SVM is a kernelized support vector classifier trained with the Pegasos
// stochastic subgradient method, one-vs-rest for multiclass. Kernel is
// "linear" or "rbf" (gamma scaled by feature count and variance, matching
// the common "scale" behavior).
type SVM struct {
	C      float64
	Kernel string
	Epochs int

	classes []int
	xTrain  [][]float64
	alphas  [][]float64 // per class, signed multipliers per training row
	gamma   float64
}

// NewSVM builds the variant from its hyperparameters.
func NewSVM(p Params) *SVM {
	return &SVM{
		C:      p.Float("C", 1.0),
		Kernel: p.String("kernel", "rbf"),
		Epochs: p.Int("epochs", 20),
	}
}

func (m *SVM) Name() string { return "Support Vector Machine" }

func (m *SVM) Params() map[string]interface{} {
	return map[string]interface{}{"C": m.C, "kernel": m.Kernel}
}

// Fit trains one binary machine per class against the rest.
func (m *SVM) Fit(X [][]float64, y []int) error {
	if err := validateFit(X, y); err != nil {
		return err
	}
	m.classes = extractClasses(y)
	m.xTrain = X
	m.gamma = scaleGamma(X)

	lambda := 1.0 / (m.C * float64(len(X)))
	m.alphas = make([][]float64, len(m.classes))
	for ci, class := range m.classes {
		signs := make([]float64, len(y))
		for i, label := range y {
			if label == class {
				signs[i] = 1
			} else {
				signs[i] = -1
			}
		}
		m.alphas[ci] = m.trainBinary(X, signs, lambda, int64(ci))
	}
	return nil
}

// trainBinary runs kernelized Pegasos: for each visited sample, if its
// margin is violated the sample's multiplier is incremented.
func (m *SVM) trainBinary(X [][]float64, signs []float64, lambda float64, seed int64) []float64 {
	n := len(X)
	alpha := make([]float64, n)
	rng := rand.New(rand.NewSource(42 + seed))

	t := 0
	for epoch := 0; epoch < m.Epochs; epoch++ {
		order := rng.Perm(n)
		for _, i := range order {
			t++
			score := 0.0
			for j := 0; j < n; j++ {
				if alpha[j] != 0 {
					score += alpha[j] * signs[j] * m.kernel(X[j], X[i])
				}
			}
			score *= signs[i] / (lambda * float64(t))
			if score < 1 {
				alpha[i]++
			}
		}
	}

	// Fold the label sign and the 1/(lambda*T) factor into signed
	// coefficients so prediction is a plain kernel expansion.
	scale := 1.0 / (lambda * float64(t))
	for i := range alpha {
		alpha[i] *= signs[i] * scale
	}
	return alpha
}

func (m *SVM) Predict(X [][]float64) ([]int, error) {
	if m.alphas == nil {
		return nil, core.ErrModelNotFitted
	}
	out := make([]int, len(X))
	for i, row := range X {
		out[i] = m.classes[argmax(m.decision(row))]
	}
	return out, nil
}

// PredictProba squashes the decision values through a logistic link. These
// are calibrated scores, not true probabilities, but they order correctly.
func (m *SVM) PredictProba(X [][]float64) ([][]float64, error) {
	if m.alphas == nil {
		return nil, core.ErrModelNotFitted
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		scores := m.decision(row)
		proba := make([]float64, len(scores))
		sum := 0.0
		for ci, s := range scores {
			proba[ci] = sigmoid(s)
			sum += proba[ci]
		}
		if sum > 0 {
			for ci := range proba {
				proba[ci] /= sum
			}
		}
		out[i] = proba
	}
	return out, nil
}

func (m *SVM) Classes() []int { return m.classes }

func (m *SVM) decision(row []float64) []float64 {
	scores := make([]float64, len(m.classes))
	for ci := range m.classes {
		s := 0.0
		for j, coef := range m.alphas[ci] {
			if coef != 0 {
				s += coef * m.kernel(m.xTrain[j], row)
			}
		}
		scores[ci] = s
	}
	return scores
}

func (m *SVM) kernel(a, b []float64) float64 {
	switch m.Kernel {
	case "linear":
		sum := 0.0
		for i := range a {
			sum += a[i] * b[i]
		}
		return sum
	default: // rbf
		sum := 0.0
		for i := range a {
			d := a[i] - b[i]
			sum += d * d
		}
		return math.Exp(-m.gamma * sum)
	}
}

// scaleGamma mirrors gamma="scale": 1 / (nFeatures * variance of X).
func scaleGamma(X [][]float64) float64 {
	n := float64(len(X))
	if n == 0 || len(X[0]) == 0 {
		return 1
	}
	mean, count := 0.0, 0.0
	for _, row := range X {
		for _, v := range row {
			mean += v
			count++
		}
	}
	mean /= count
	variance := 0.0
	for _, row := range X {
		for _, v := range row {
			d := v - mean
			variance += d * d
		}
	}
	variance /= count
	if variance == 0 {
		variance = 1
	}
	return 1.0 / (float64(len(X[0])) * variance)
}
