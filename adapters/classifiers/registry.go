package classifiers

import (
	"autoclass/domain/core"
	"autoclass/ports"
)

// Variant describes one classifier in the registry: its defaults and grid
// are data, not behavior, and can be extended without touching the
// orchestrator.
type Variant struct {
	Name     string
	Defaults Params
	Grid     map[string][]interface{}
	New      func(Params) ports.Classifier
}

// Registry holds the supported classifier variants in a fixed order.
type Registry struct {
	variants []Variant
	byName   map[string]*Variant
}

// NewRegistry creates the registry with the seven supported variants.
func NewRegistry() *Registry {
	variants := []Variant{
		{
			Name:     "Logistic Regression",
			Defaults: Params{"max_iter": 1000, "random_state": 42},
			Grid: map[string][]interface{}{
				"C":        {0.1, 1.0, 10.0},
				"max_iter": {1000},
			},
			New: func(p Params) ports.Classifier { return NewLogisticRegression(p) },
		},
		{
			Name:     "K-Nearest Neighbors",
			Defaults: Params{},
			Grid: map[string][]interface{}{
				"n_neighbors": {3, 5, 7},
				"weights":     {"uniform", "distance"},
			},
			New: func(p Params) ports.Classifier { return NewKNN(p) },
		},
		{
			Name:     "Decision Tree",
			Defaults: Params{"random_state": 42},
			Grid: map[string][]interface{}{
				"max_depth":         {3, 5, 10, 0},
				"min_samples_split": {2, 5},
			},
			New: func(p Params) ports.Classifier { return NewDecisionTree(p) },
		},
		{
			Name:     "Naive Bayes",
			Defaults: Params{},
			Grid: map[string][]interface{}{
				"var_smoothing": {1e-9, 1e-8, 1e-7},
			},
			New: func(p Params) ports.Classifier { return NewNaiveBayes(p) },
		},
		{
			Name:     "Random Forest",
			Defaults: Params{"random_state": 42},
			Grid: map[string][]interface{}{
				"n_estimators": {50, 100},
				"max_depth":    {5, 10, 0},
			},
			New: func(p Params) ports.Classifier { return NewRandomForest(p) },
		},
		{
			Name:     "Support Vector Machine",
			Defaults: Params{"probability": true, "random_state": 42},
			Grid: map[string][]interface{}{
				"C":      {0.1, 1.0},
				"kernel": {"rbf", "linear"},
			},
			New: func(p Params) ports.Classifier { return NewSVM(p) },
		},
		{
			Name:     "Rule-Based (Baseline)",
			Defaults: Params{"random_state": 42},
			Grid: map[string][]interface{}{
				"strategy": {"most_frequent", "stratified"},
			},
			New: func(p Params) ports.Classifier { return NewDummy(p) },
		},
	}

	byName := make(map[string]*Variant, len(variants))
	r := &Registry{variants: variants, byName: byName}
	for i := range r.variants {
		byName[r.variants[i].Name] = &r.variants[i]
	}
	return r
}

// Names returns the variant names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.variants))
	for i, v := range r.variants {
		names[i] = v.Name
	}
	return names
}

// Get looks up a variant by name.
func (r *Registry) Get(name string) (*Variant, error) {
	v, ok := r.byName[name]
	if !ok {
		return nil, core.NewVariantNotFoundError(name, r.Names())
	}
	return v, nil
}

// Has reports whether a variant exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}
