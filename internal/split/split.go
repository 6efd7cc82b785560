package split

import (
	"fmt"
	"math/rand"

	"autoclass/domain/core"
)

// DefaultSeed keeps every split reproducible across runs.
const DefaultSeed = 42

// Split holds the four partitions of a train/test split.
type Split struct {
	XTrain [][]float64
	XTest  [][]float64
	YTrain []int
	YTest  []int
}

// Stratified splits features and labels preserving each class's proportion
// in both partitions. Every class must have at least 2 members; a degenerate
// class aborts the split before any training can start.
func Stratified(X [][]float64, y []int, testSize float64, seed int64) (*Split, error) {
	if len(X) != len(y) {
		return nil, core.ErrLengthMismatch
	}
	if len(X) == 0 {
		return nil, core.ErrEmptyDataset
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, core.ErrInvalidTestSize
	}

	classIndices := make(map[int][]int)
	var classOrder []int
	for i, label := range y {
		if _, seen := classIndices[label]; !seen {
			classOrder = append(classOrder, label)
		}
		classIndices[label] = append(classIndices[label], i)
	}
	for _, class := range classOrder {
		if len(classIndices[class]) < 2 {
			return nil, core.NewDegenerateSplitError(fmt.Sprint(class), len(classIndices[class]))
		}
	}

	rng := rand.New(rand.NewSource(seed))
	var trainIdx, testIdx []int
	for _, class := range classOrder {
		indices := classIndices[class]
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		testCount := int(float64(len(indices)) * testSize)
		if testCount == 0 {
			testCount = 1
		}
		trainCount := len(indices) - testCount
		trainIdx = append(trainIdx, indices[:trainCount]...)
		testIdx = append(testIdx, indices[trainCount:]...)
	}

	rng.Shuffle(len(trainIdx), func(i, j int) { trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i] })
	rng.Shuffle(len(testIdx), func(i, j int) { testIdx[i], testIdx[j] = testIdx[j], testIdx[i] })

	return &Split{
		XTrain: gather(X, trainIdx),
		XTest:  gather(X, testIdx),
		YTrain: gatherLabels(y, trainIdx),
		YTest:  gatherLabels(y, testIdx),
	}, nil
}

// Fold is one train/validation rotation of a k-fold partition.
type Fold struct {
	XTrain [][]float64
	XVal   [][]float64
	YTrain []int
	YVal   []int
}

// KFold partitions the data into k shuffled folds for cross-validation.
func KFold(X [][]float64, y []int, k int, seed int64) ([]Fold, error) {
	if len(X) != len(y) {
		return nil, core.ErrLengthMismatch
	}
	if k < 2 || k > len(X) {
		return nil, fmt.Errorf("number of folds must be between 2 and %d", len(X))
	}

	n := len(X)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })

	folds := make([]Fold, 0, k)
	foldSize := n / k
	for f := 0; f < k; f++ {
		start := f * foldSize
		end := start + foldSize
		if f == k-1 {
			end = n
		}

		valIdx := indices[start:end]
		trainIdx := make([]int, 0, n-len(valIdx))
		trainIdx = append(trainIdx, indices[:start]...)
		trainIdx = append(trainIdx, indices[end:]...)

		folds = append(folds, Fold{
			XTrain: gather(X, trainIdx),
			XVal:   gather(X, valIdx),
			YTrain: gatherLabels(y, trainIdx),
			YVal:   gatherLabels(y, valIdx),
		})
	}
	return folds, nil
}

func gather(X [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		row := make([]float64, len(X[j]))
		copy(row, X[j])
		out[i] = row
	}
	return out
}

func gatherLabels(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
