package split

import (
	"testing"

	"autoclass/domain/core"
)

func blob(perClass int, classes int) ([][]float64, []int) {
	var X [][]float64
	var y []int
	for c := 0; c < classes; c++ {
		for i := 0; i < perClass; i++ {
			X = append(X, []float64{float64(c), float64(i)})
			y = append(y, c)
		}
	}
	return X, y
}

func TestStratified_PreservesClassProportions(t *testing.T) {
	X, y := blob(50, 2)

	s, err := Stratified(X, y, 0.2, DefaultSeed)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.XTrain)+len(s.XTest) != 100 {
		t.Fatalf("rows lost: %d train + %d test", len(s.XTrain), len(s.XTest))
	}
	if len(s.XTest) != 20 {
		t.Errorf("expected 20 test rows, got %d", len(s.XTest))
	}

	testCounts := map[int]int{}
	for _, label := range s.YTest {
		testCounts[label]++
	}
	if testCounts[0] != 10 || testCounts[1] != 10 {
		t.Errorf("expected 10 test rows per class, got %v", testCounts)
	}
}

func TestStratified_EveryClassInTestSet(t *testing.T) {
	// Tiny minority class still lands at least one row in the test split.
	X, y := blob(40, 1)
	for i := 0; i < 3; i++ {
		X = append(X, []float64{9, float64(i)})
		y = append(y, 1)
	}

	s, err := Stratified(X, y, 0.1, DefaultSeed)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[int]bool{}
	for _, label := range s.YTest {
		seen[label] = true
	}
	if !seen[1] {
		t.Error("minority class missing from test split")
	}
}

func TestStratified_SingletonClassFails(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}, {5}}
	y := []int{0, 0, 0, 0, 1}

	_, err := Stratified(X, y, 0.2, DefaultSeed)
	if err == nil {
		t.Fatal("expected degenerate split error for singleton class")
	}
	if !core.IsDegenerateSplitError(err) {
		t.Errorf("expected degenerate split error, got %v", err)
	}
}

func TestStratified_Deterministic(t *testing.T) {
	X, y := blob(30, 3)

	a, err := Stratified(X, y, 0.25, DefaultSeed)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Stratified(X, y, 0.25, DefaultSeed)
	if err != nil {
		t.Fatal(err)
	}

	for i := range a.YTest {
		if a.YTest[i] != b.YTest[i] {
			t.Fatal("same seed must produce the same split")
		}
	}

	c, err := Stratified(X, y, 0.25, 7)
	if err != nil {
		t.Fatal(err)
	}
	same := len(c.YTest) == len(a.YTest)
	if same {
		diff := false
		for i := range a.YTest {
			if a.XTest[i][1] != c.XTest[i][1] {
				diff = true
				break
			}
		}
		if !diff {
			t.Error("different seeds should shuffle differently")
		}
	}
}

func TestStratified_InvalidInputs(t *testing.T) {
	X, y := blob(10, 2)
	if _, err := Stratified(X, y[:5], 0.2, DefaultSeed); err != core.ErrLengthMismatch {
		t.Errorf("expected length mismatch, got %v", err)
	}
	if _, err := Stratified(nil, nil, 0.2, DefaultSeed); err != core.ErrEmptyDataset {
		t.Errorf("expected empty dataset, got %v", err)
	}
	if _, err := Stratified(X, y, 1.5, DefaultSeed); err != core.ErrInvalidTestSize {
		t.Errorf("expected invalid test size, got %v", err)
	}
}

func TestKFold_PartitionsAllRows(t *testing.T) {
	X, y := blob(10, 2)

	folds, err := KFold(X, y, 4, DefaultSeed)
	if err != nil {
		t.Fatal(err)
	}
	if len(folds) != 4 {
		t.Fatalf("expected 4 folds, got %d", len(folds))
	}

	total := 0
	for _, f := range folds {
		total += len(f.XVal)
		if len(f.XTrain)+len(f.XVal) != 20 {
			t.Errorf("fold partition incomplete: %d + %d", len(f.XTrain), len(f.XVal))
		}
	}
	if total != 20 {
		t.Errorf("validation sets should cover all rows once, got %d", total)
	}
}

func TestKFold_TooManyFolds(t *testing.T) {
	X, y := blob(2, 1)
	if _, err := KFold(X, y, 5, DefaultSeed); err == nil {
		t.Error("expected error when k exceeds the row count")
	}
}
