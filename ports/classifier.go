package ports

// Classifier is the capability interface every variant implements.
// Fit must be called before Predict; implementations return an error from
// Predict-time misuse rather than panicking.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) ([]int, error)
	Name() string
	Params() map[string]interface{}
}

// ProbabilityClassifier is implemented by variants that can emit class
// probabilities, ordered by the classifier's class list.
type ProbabilityClassifier interface {
	Classifier
	PredictProba(X [][]float64) ([][]float64, error)
	Classes() []int
}
