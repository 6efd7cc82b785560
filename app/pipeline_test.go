package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoclass/domain/core"
	"autoclass/domain/prep"
	"autoclass/internal/testkit"
)

func TestPipelineRun_EndToEnd(t *testing.T) {
	ds := testkit.BlobDataset(2, 30, 7)
	p := NewPipeline()

	var seen []string
	outcome, err := p.Run(context.Background(), RunRequest{
		Dataset: ds,
		Target:  "label",
		Models:  []string{"Logistic Regression", "Decision Tree"},
		CVFolds: 3,
		Progress: func(name string, index, total int) {
			seen = append(seen, name)
			assert.Equal(t, 2, total)
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, outcome.RunID)
	require.NotNil(t, outcome.Issues)
	assert.NotEmpty(t, outcome.Plan.Models.Models)
	require.Len(t, outcome.Results, 2)
	assert.Equal(t, []string{"Logistic Regression", "Decision Tree"}, seen)

	require.NotNil(t, outcome.Best, "well-separated clusters must train successfully")
	assert.Greater(t, outcome.Best.F1Score, 0.9)

	// Table is ranked by F1 descending.
	require.Len(t, outcome.Table, 2)
	assert.GreaterOrEqual(t, outcome.Table[0].F1Score, outcome.Table[1].F1Score)

	assert.Contains(t, outcome.Report, "# Classification Run Report")
	assert.Contains(t, outcome.Report, outcome.Best.ModelName)
}

func TestPipelineRun_AdvisorShortlistByDefault(t *testing.T) {
	ds := testkit.BlobDataset(2, 30, 3)
	p := NewPipeline()

	outcome, err := p.Run(context.Background(), RunRequest{Dataset: ds, Target: "label"})
	require.NoError(t, err)
	assert.Len(t, outcome.Results, len(outcome.Plan.Models.Models),
		"with no explicit model list the advisor shortlist is trained")
}

func TestPipelineRun_TargetMissing(t *testing.T) {
	ds := testkit.BlobDataset(2, 10, 1)
	p := NewPipeline()

	_, err := p.Run(context.Background(), RunRequest{Dataset: ds, Target: "nope"})
	assert.ErrorIs(t, err, core.ErrTargetNotFound)
}

func TestPipelineRun_NilDataset(t *testing.T) {
	_, err := NewPipeline().Run(context.Background(), RunRequest{Target: "label"})
	assert.ErrorIs(t, err, core.ErrEmptyDataset)
}

func TestPipelineRun_CancelledContext(t *testing.T) {
	ds := testkit.BlobDataset(2, 30, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline().Run(ctx, RunRequest{Dataset: ds, Target: "label"})
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestPipelineRun_TestSizeOverride(t *testing.T) {
	ds := testkit.BlobDataset(2, 50, 5)
	p := NewPipeline()

	outcome, err := p.Run(context.Background(), RunRequest{
		Dataset:  ds,
		Target:   "label",
		Models:   []string{"Decision Tree"},
		TestSize: 0.4,
	})
	require.NoError(t, err)

	// 100 rows at 40% held out leaves 60 for training; the preprocessing plan
	// otherwise stays the advisor's.
	require.NotNil(t, outcome.Best)
	assert.Len(t, outcome.Best.Truth, 40)
}

func TestPipelineRun_SingletonClassFailsSplit(t *testing.T) {
	// The messy fixture's target has a single "yes" row; a stratified split
	// cannot place it on both sides, so the run surfaces the split error
	// instead of training on a test set missing a class.
	ds := testkit.MessyDataset()
	p := NewPipeline()

	_, err := p.Run(context.Background(), RunRequest{Dataset: ds, Target: "churn"})
	require.Error(t, err)
	assert.True(t, core.IsDegenerateSplitError(err), "got %v", err)
}

func TestPipelineDetect_Memoized(t *testing.T) {
	ds := testkit.MessyDataset()
	p := NewPipeline()

	first, err := p.Detect(ds, "churn")
	require.NoError(t, err)
	second, err := p.Detect(ds, "churn")
	require.NoError(t, err)
	assert.Same(t, first, second, "repeat detection should hit the cache")

	p.Invalidate(ds)
	third, err := p.Detect(ds, "churn")
	require.NoError(t, err)
	assert.NotSame(t, first, third, "invalidation should force a fresh scan")
}

func TestPipelineDetect_KeyedByTarget(t *testing.T) {
	ds := testkit.MessyDataset()
	p := NewPipeline()

	byChurn, err := p.Detect(ds, "churn")
	require.NoError(t, err)
	byCity, err := p.Detect(ds, "city")
	require.NoError(t, err)
	assert.NotSame(t, byChurn, byCity)
}

func TestPipelinePreprocess_ComposesOutlierAndTransformLogs(t *testing.T) {
	ds := testkit.MessyDataset()
	p := NewPipeline()

	cfg := prep.Config{
		TargetCol: "churn",
		MissingValueStrategies: map[string]prep.MissingStrategy{
			"age":  prep.MissingMedian,
			"city": prep.MissingMode,
		},
		OutlierColumns:  []string{"income"},
		OutlierStrategy: prep.OutlierClip,
		EncodingStrategies: map[string]prep.EncodingStrategy{
			"city": prep.EncodeOneHot,
		},
		ScalingStrategy: prep.ScaleStandard,
	}

	clean, steps, err := p.Preprocess(ds, cfg)
	require.NoError(t, err)
	assert.Equal(t, ds.Rows(), clean.Rows(), "clipping keeps every row")

	joined := strings.Join(steps, "\n")
	assert.Contains(t, joined, "Clipped outliers in 'income'")
	assert.Contains(t, joined, "Filled missing values in 'age' with median")
	assert.Less(t, strings.Index(joined, "Clipped outliers"), strings.Index(joined, "Filled missing values"),
		"outlier handling runs before imputation")
}
