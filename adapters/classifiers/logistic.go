package classifiers

import (
	"math"

	"autoclass/domain/core"
)

// LogisticRegression is a one-vs-rest logistic classifier trained by batch
// gradient descent with L2 regularization. C is the inverse regularization
// strength, as in the usual parameterization.
type LogisticRegression struct {
	C       float64
	MaxIter int

	classes []int
	weights [][]float64 // per class, nFeatures+1 with bias last
	mean    []float64
	scale   []float64
}

// NewLogisticRegression builds the variant from its hyperparameters.
func NewLogisticRegression(p Params) *LogisticRegression {
	return &LogisticRegression{
		C:       p.Float("C", 1.0),
		MaxIter: p.Int("max_iter", 1000),
	}
}

func (m *LogisticRegression) Name() string { return "Logistic Regression" }

func (m *LogisticRegression) Params() map[string]interface{} {
	return map[string]interface{}{"C": m.C, "max_iter": m.MaxIter}
}

// Fit trains one binary separator per class. Features are standardized
// internally so gradient descent is well conditioned regardless of the
// input scale; the fitted mean and scale are reapplied at predict time.
func (m *LogisticRegression) Fit(X [][]float64, y []int) error {
	if err := validateFit(X, y); err != nil {
		return err
	}
	m.classes = extractClasses(y)
	nFeatures := len(X[0])
	m.weights = make([][]float64, len(m.classes))

	m.mean, m.scale = fitStandardizer(X, nFeatures)
	scaled := standardize(X, m.mean, m.scale)

	for ci, class := range m.classes {
		target := make([]float64, len(y))
		for i, label := range y {
			if label == class {
				target[i] = 1
			}
		}
		m.weights[ci] = trainBinaryLogistic(scaled, target, nFeatures, m.C, m.MaxIter)
	}
	return nil
}

func fitStandardizer(X [][]float64, nFeatures int) (mean, scale []float64) {
	mean = make([]float64, nFeatures)
	scale = make([]float64, nFeatures)
	n := float64(len(X))
	for _, row := range X {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}
	for _, row := range X {
		for j, v := range row {
			d := v - mean[j]
			scale[j] += d * d
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / n)
		if scale[j] == 0 {
			scale[j] = 1
		}
	}
	return mean, scale
}

func standardize(X [][]float64, mean, scale []float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		s := make([]float64, len(row))
		for j, v := range row {
			s[j] = (v - mean[j]) / scale[j]
		}
		out[i] = s
	}
	return out
}

// trainBinaryLogistic runs full-batch gradient descent on the regularized
// log loss. Weights start at zero so training is deterministic.
func trainBinaryLogistic(X [][]float64, target []float64, nFeatures int, c float64, maxIter int) []float64 {
	w := make([]float64, nFeatures+1)
	n := float64(len(X))
	lr := 0.1
	lambda := 0.0
	if c > 0 {
		lambda = 1.0 / c
	}

	grad := make([]float64, nFeatures+1)
	for iter := 0; iter < maxIter; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		for i, row := range X {
			p := sigmoid(dotBias(w, row))
			diff := p - target[i]
			for j, v := range row {
				grad[j] += diff * v
			}
			grad[nFeatures] += diff
		}

		maxStep := 0.0
		for j := range w {
			g := grad[j] / n
			if j < nFeatures {
				g += lambda * w[j] / n
			}
			step := lr * g
			w[j] -= step
			if s := math.Abs(step); s > maxStep {
				maxStep = s
			}
		}
		if maxStep < 1e-6 {
			break
		}
	}
	return w
}

// Predict picks the class with the highest separator score.
func (m *LogisticRegression) Predict(X [][]float64) ([]int, error) {
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

// PredictProba returns per-class scores normalized to sum to one.
func (m *LogisticRegression) PredictProba(X [][]float64) ([][]float64, error) {
	if m.weights == nil {
		return nil, core.ErrModelNotFitted
	}
	out := make([][]float64, len(X))
	for i, raw := range X {
		row := make([]float64, len(raw))
		for j, v := range raw {
			row[j] = (v - m.mean[j]) / m.scale[j]
		}
		scores := make([]float64, len(m.classes))
		sum := 0.0
		for ci := range m.classes {
			scores[ci] = sigmoid(dotBias(m.weights[ci], row))
			sum += scores[ci]
		}
		if sum > 0 {
			for ci := range scores {
				scores[ci] /= sum
			}
		}
		out[i] = scores
	}
	return out, nil
}

func (m *LogisticRegression) Classes() []int { return m.classes }

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func dotBias(w, row []float64) float64 {
	sum := w[len(w)-1]
	for j, v := range row {
		sum += w[j] * v
	}
	return sum
}
