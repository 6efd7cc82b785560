// Package testkit generates synthetic datasets for tests. All generators
// take a seed so fixtures are reproducible.
package testkit

import (
	"fmt"
	"math/rand"

	"autoclass/domain/dataset"
)

// Blobs generates n points per class as Gaussian clusters around distinct
// centers, returned as feature matrix and labels. Classes are well separated
// so any sane classifier should score highly.
func Blobs(classes, perClass int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	var X [][]float64
	var y []int
	for c := 0; c < classes; c++ {
		cx, cy := float64(c*10), float64(c*10)
		for i := 0; i < perClass; i++ {
			X = append(X, []float64{cx + rng.NormFloat64(), cy + rng.NormFloat64()})
			y = append(y, c)
		}
	}
	return X, y
}

// BlobDataset wraps Blobs into a typed dataset with a categorical target.
func BlobDataset(classes, perClass int, seed int64) *dataset.Dataset {
	X, y := Blobs(classes, perClass, seed)
	n := len(X)
	f1 := make([]float64, n)
	f2 := make([]float64, n)
	target := make([]string, n)
	for i := range X {
		f1[i] = X[i][0]
		f2[i] = X[i][1]
		target[i] = fmt.Sprintf("class_%d", y[i])
	}
	ds, err := dataset.New("blobs", []dataset.Column{
		{Name: "f1", Kind: dataset.Numeric, Float: f1, Missing: make([]bool, n)},
		{Name: "f2", Kind: dataset.Numeric, Float: f2, Missing: make([]bool, n)},
		{Name: "label", Kind: dataset.Categorical, Str: target, Missing: make([]bool, n)},
	})
	if err != nil {
		panic(err)
	}
	return ds
}

// MessyDataset builds a small mixed-type dataset with missing values, one
// extreme outlier and an imbalanced binary target, exercising every detector.
func MessyDataset() *dataset.Dataset {
	age := []float64{25, 30, 0, 45, 50, 28, 33, 41, 39, 52}
	ageMissing := []bool{false, false, true, false, false, false, false, false, false, false}

	income := []float64{40, 42, 41, 43, 40, 500, 44, 41, 42, 43}

	city := []string{"york", "leeds", "york", "", "york", "leeds", "york", "york", "leeds", "york"}
	cityMissing := []bool{false, false, false, true, false, false, false, false, false, false}

	churn := []string{"no", "no", "no", "no", "no", "no", "no", "no", "no", "yes"}

	n := len(age)
	ds, err := dataset.New("messy", []dataset.Column{
		{Name: "age", Kind: dataset.Numeric, Float: age, Missing: ageMissing},
		{Name: "income", Kind: dataset.Numeric, Float: income, Missing: make([]bool, n)},
		{Name: "city", Kind: dataset.Categorical, Str: city, Missing: cityMissing},
		{Name: "churn", Kind: dataset.Categorical, Str: churn, Missing: make([]bool, n)},
	})
	if err != nil {
		panic(err)
	}
	return ds
}

// NumericDataset builds an all-numeric dataset with an integer-coded target,
// ready for Matrix extraction without preprocessing.
func NumericDataset(classes, perClass int, seed int64) *dataset.Dataset {
	X, y := Blobs(classes, perClass, seed)
	n := len(X)
	f1 := make([]float64, n)
	f2 := make([]float64, n)
	target := make([]float64, n)
	for i := range X {
		f1[i] = X[i][0]
		f2[i] = X[i][1]
		target[i] = float64(y[i])
	}
	ds, err := dataset.New("numeric", []dataset.Column{
		{Name: "f1", Kind: dataset.Numeric, Float: f1, Missing: make([]bool, n)},
		{Name: "f2", Kind: dataset.Numeric, Float: f2, Missing: make([]bool, n)},
		{Name: "label", Kind: dataset.Numeric, Float: target, Missing: make([]bool, n)},
	})
	if err != nil {
		panic(err)
	}
	return ds
}

// CSV renders a dataset as CSV text, for reader round-trip tests.
func CSV(ds *dataset.Dataset) string {
	out := ""
	for i, c := range ds.Columns {
		if i > 0 {
			out += ","
		}
		out += c.Name
	}
	out += "\n"
	for r := 0; r < ds.Rows(); r++ {
		for i := range ds.Columns {
			if i > 0 {
				out += ","
			}
			c := &ds.Columns[i]
			if !c.Missing[r] {
				out += c.ValueString(r)
			}
		}
		out += "\n"
	}
	return out
}
