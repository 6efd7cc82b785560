package metrics

import (
	"math"
	"testing"
)

func TestEvaluate_PerfectPredictions(t *testing.T) {
	yTrue := []int{0, 1, 2, 0, 1, 2}
	ev := Evaluate("m", yTrue, yTrue)

	if ev.Accuracy != 1 || ev.Precision != 1 || ev.Recall != 1 || ev.F1Score != 1 {
		t.Errorf("perfect predictions should score 1 everywhere, got %+v", ev)
	}
	for class, report := range ev.PerClass {
		if report.F1Score != 1 {
			t.Errorf("class %d F1 should be 1, got %v", class, report.F1Score)
		}
		if report.Support != 2 {
			t.Errorf("class %d support should be 2, got %d", class, report.Support)
		}
	}
}

func TestEvaluate_ZeroDivisionIsZero(t *testing.T) {
	// Class 1 is never predicted: its precision denominator is zero and
	// must contribute 0, not NaN.
	yTrue := []int{0, 1, 1}
	yPred := []int{0, 0, 0}
	ev := Evaluate("m", yTrue, yPred)

	if math.IsNaN(ev.Precision) || math.IsNaN(ev.F1Score) {
		t.Fatal("metrics must never be NaN")
	}
	if ev.PerClass[1].Precision != 0 || ev.PerClass[1].F1Score != 0 {
		t.Errorf("unpredicted class should score 0, got %+v", ev.PerClass[1])
	}
}

func TestEvaluate_WeightedAveraging(t *testing.T) {
	// Class 0: 3 instances all correct. Class 1: 1 instance wrong.
	yTrue := []int{0, 0, 0, 1}
	yPred := []int{0, 0, 0, 0}
	ev := Evaluate("m", yTrue, yPred)

	// recall: class0 = 1 (weight 3), class1 = 0 (weight 1) -> 0.75
	if math.Abs(ev.Recall-0.75) > 1e-9 {
		t.Errorf("expected weighted recall 0.75, got %v", ev.Recall)
	}
	if ev.Accuracy != 0.75 {
		t.Errorf("expected accuracy 0.75, got %v", ev.Accuracy)
	}
}

func TestEvaluate_ConfusionMatrixIncludesPredictedOnlyClasses(t *testing.T) {
	// A class present only in predictions still gets a matrix slot.
	yTrue := []int{0, 0}
	yPred := []int{0, 2}
	ev := Evaluate("m", yTrue, yPred)

	if len(ev.ConfusionMatrix) != 2 {
		t.Fatalf("expected 2x2 matrix over classes {0,2}, got %dx", len(ev.ConfusionMatrix))
	}
	if ev.ConfusionMatrix[0][1] != 1 {
		t.Errorf("expected one misclassification into class 2, got %v", ev.ConfusionMatrix)
	}
}

func TestWeightedF1AndAccuracy(t *testing.T) {
	yTrue := []int{0, 1, 0, 1}
	yPred := []int{0, 1, 1, 1}

	if got := Accuracy(yTrue, yPred); got != 0.75 {
		t.Errorf("expected accuracy 0.75, got %v", got)
	}
	f1 := WeightedF1(yTrue, yPred)
	if f1 <= 0 || f1 >= 1 {
		t.Errorf("expected F1 strictly between 0 and 1, got %v", f1)
	}
	if Accuracy(nil, nil) != 0 {
		t.Error("empty input should score 0")
	}
}
