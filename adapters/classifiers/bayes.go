package classifiers

import (
	"math"

	"autoclass/domain/core"
)

// NaiveBayes is a gaussian naive bayes classifier. Likelihoods are computed
// in log space; VarSmoothing is added to every feature variance.
type NaiveBayes struct {
	VarSmoothing float64

	classes   []int
	logPriors []float64
	means     [][]float64
	variances [][]float64
}

// NewNaiveBayes builds the variant from its hyperparameters.
func NewNaiveBayes(p Params) *NaiveBayes {
	return &NaiveBayes{VarSmoothing: p.Float("var_smoothing", 1e-9)}
}

func (m *NaiveBayes) Name() string { return "Naive Bayes" }

func (m *NaiveBayes) Params() map[string]interface{} {
	return map[string]interface{}{"var_smoothing": m.VarSmoothing}
}

// Fit estimates per-class feature means and variances.
func (m *NaiveBayes) Fit(X [][]float64, y []int) error {
	if err := validateFit(X, y); err != nil {
		return err
	}
	m.classes = extractClasses(y)
	nFeatures := len(X[0])

	m.logPriors = make([]float64, len(m.classes))
	m.means = make([][]float64, len(m.classes))
	m.variances = make([][]float64, len(m.classes))

	for ci, class := range m.classes {
		var rows [][]float64
		for i, label := range y {
			if label == class {
				rows = append(rows, X[i])
			}
		}
		m.logPriors[ci] = math.Log(float64(len(rows)) / float64(len(y)))

		mean := make([]float64, nFeatures)
		variance := make([]float64, nFeatures)
		for _, row := range rows {
			for j, v := range row {
				mean[j] += v
			}
		}
		for j := range mean {
			mean[j] /= float64(len(rows))
		}
		for _, row := range rows {
			for j, v := range row {
				d := v - mean[j]
				variance[j] += d * d
			}
		}
		for j := range variance {
			variance[j] = variance[j]/float64(len(rows)) + m.VarSmoothing
		}
		m.means[ci] = mean
		m.variances[ci] = variance
	}
	return nil
}

func (m *NaiveBayes) Predict(X [][]float64) ([]int, error) {
	if m.means == nil {
		return nil, core.ErrModelNotFitted
	}
	out := make([]int, len(X))
	for i, row := range X {
		out[i] = m.classes[argmax(m.jointLogLikelihood(row))]
	}
	return out, nil
}

// PredictProba exponentiates and normalizes the joint log likelihoods.
func (m *NaiveBayes) PredictProba(X [][]float64) ([][]float64, error) {
	if m.means == nil {
		return nil, core.ErrModelNotFitted
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		joint := m.jointLogLikelihood(row)
		maxLog := joint[argmax(joint)]
		sum := 0.0
		proba := make([]float64, len(joint))
		for ci, ll := range joint {
			proba[ci] = math.Exp(ll - maxLog)
			sum += proba[ci]
		}
		for ci := range proba {
			proba[ci] /= sum
		}
		out[i] = proba
	}
	return out, nil
}

func (m *NaiveBayes) Classes() []int { return m.classes }

func (m *NaiveBayes) jointLogLikelihood(row []float64) []float64 {
	joint := make([]float64, len(m.classes))
	for ci := range m.classes {
		ll := m.logPriors[ci]
		for j, v := range row {
			variance := m.variances[ci][j]
			d := v - m.means[ci][j]
			ll += -0.5*math.Log(2*math.Pi*variance) - d*d/(2*variance)
		}
		joint[ci] = ll
	}
	return joint
}
