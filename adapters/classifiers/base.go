package classifiers

import (
	"sort"

	"autoclass/domain/core"
)

// Params is a loose bag of hyperparameters, as stored in the registry grids.
type Params map[string]interface{}

// Clone shallow-copies the bag.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Int reads an integer hyperparameter with a default.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Float reads a float hyperparameter with a default.
func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// String reads a string hyperparameter with a default.
func (p Params) String(key, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// extractClasses returns the distinct labels in ascending order.
func extractClasses(y []int) []int {
	seen := make(map[int]bool)
	var classes []int
	for _, label := range y {
		if !seen[label] {
			seen[label] = true
			classes = append(classes, label)
		}
	}
	sort.Ints(classes)
	return classes
}

// validateFit rejects inputs no classifier can fit.
func validateFit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return core.ErrEmptyDataset
	}
	if len(X) != len(y) {
		return core.ErrLengthMismatch
	}
	return nil
}

// argmax returns the index of the largest value, first wins ties.
func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
