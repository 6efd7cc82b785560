package metrics

import (
	"math"
	"sort"

	"autoclass/domain/training"
)

// Evaluate computes the classification metrics for one prediction run.
// Precision, recall and F1 are weighted averages over classes; a zero
// denominator contributes 0 rather than NaN.
func Evaluate(modelName string, yTrue, yPred []int) training.Evaluation {
	classes := distinctClasses(yTrue, yPred)
	matrix := confusionMatrix(yTrue, yPred, classes)

	support := make(map[int]int)
	for _, class := range yTrue {
		support[class]++
	}

	perClass := make(map[int]training.ClassReport, len(classes))
	var weightedPrec, weightedRec, weightedF1 float64
	totalSupport := 0

	for i, class := range classes {
		tp := matrix[i][i]
		fp, fn := 0, 0
		for j := range classes {
			if j != i {
				fp += matrix[j][i]
				fn += matrix[i][j]
			}
		}

		precision := safeDivide(float64(tp), float64(tp+fp))
		recall := safeDivide(float64(tp), float64(tp+fn))
		f1 := safeDivide(2*precision*recall, precision+recall)

		perClass[class] = training.ClassReport{
			Precision: precision,
			Recall:    recall,
			F1Score:   f1,
			Support:   support[class],
		}

		weightedPrec += precision * float64(support[class])
		weightedRec += recall * float64(support[class])
		weightedF1 += f1 * float64(support[class])
		totalSupport += support[class]
	}

	if totalSupport > 0 {
		weightedPrec /= float64(totalSupport)
		weightedRec /= float64(totalSupport)
		weightedF1 /= float64(totalSupport)
	}

	correct := 0
	for i := range yPred {
		if yPred[i] == yTrue[i] {
			correct++
		}
	}
	accuracy := safeDivide(float64(correct), float64(len(yTrue)))

	return training.Evaluation{
		ModelName:       modelName,
		Accuracy:        accuracy,
		Precision:       weightedPrec,
		Recall:          weightedRec,
		F1Score:         weightedF1,
		Predictions:     yPred,
		Truth:           yTrue,
		PerClass:        perClass,
		ConfusionMatrix: matrix,
	}
}

// WeightedF1 is the cross-validation scoring metric.
func WeightedF1(yTrue, yPred []int) float64 {
	return Evaluate("", yTrue, yPred).F1Score
}

// Accuracy is the fraction of exact matches.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

func distinctClasses(yTrue, yPred []int) []int {
	seen := make(map[int]bool)
	var classes []int
	for _, y := range yTrue {
		if !seen[y] {
			seen[y] = true
			classes = append(classes, y)
		}
	}
	for _, y := range yPred {
		if !seen[y] {
			seen[y] = true
			classes = append(classes, y)
		}
	}
	sort.Ints(classes)
	return classes
}

func confusionMatrix(yTrue, yPred []int, classes []int) [][]int {
	idx := make(map[int]int, len(classes))
	for i, class := range classes {
		idx[class] = i
	}
	matrix := make([][]int, len(classes))
	for i := range matrix {
		matrix[i] = make([]int, len(classes))
	}
	for i := range yTrue {
		matrix[idx[yTrue[i]]][idx[yPred[i]]]++
	}
	return matrix
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0
	}
	return result
}
