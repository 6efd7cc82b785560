package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qualityadapter "autoclass/adapters/quality"
	advisordomain "autoclass/domain/advisor"
	"autoclass/domain/dataset"
	"autoclass/domain/prep"
	"autoclass/internal/testkit"
)

func TestMissingValueAdvice(t *testing.T) {
	e := NewEngine()

	rec := e.MissingValueAdvice("x", dataset.Numeric, 62.0, 0.3)
	assert.Equal(t, string(prep.MissingDrop), rec.SuggestedMethod, "over half missing should suggest dropping")

	rec = e.MissingValueAdvice("x", dataset.Numeric, 10.0, 0.9)
	assert.Equal(t, string(prep.MissingMedian), rec.SuggestedMethod, "continuous numeric should get median")

	rec = e.MissingValueAdvice("x", dataset.Numeric, 10.0, 0.2)
	assert.Equal(t, string(prep.MissingMean), rec.SuggestedMethod, "discrete numeric should get mean")

	rec = e.MissingValueAdvice("c", dataset.Categorical, 10.0, 0.2)
	assert.Equal(t, string(prep.MissingMode), rec.SuggestedMethod)
}

func TestOutlierAdvice(t *testing.T) {
	e := NewEngine()

	assert.Equal(t, string(prep.OutlierClip), e.OutlierAdvice("x", 50, 25.0).SuggestedMethod,
		"heavy outlier share likely reflects real variation, keep the rows")
	assert.Equal(t, string(prep.OutlierClip), e.OutlierAdvice("x", 20, 10.0).SuggestedMethod)
	assert.Equal(t, string(prep.OutlierRemove), e.OutlierAdvice("x", 3, 2.0).SuggestedMethod)
}

func TestEncodingAdvice(t *testing.T) {
	e := NewEngine()

	assert.Equal(t, string(prep.EncodeOrdinal), e.EncodingAdvice("id", 80, 100).SuggestedMethod,
		"very high cardinality should avoid one-hot explosion")
	assert.Equal(t, string(prep.EncodeOrdinal), e.EncodingAdvice("c", 30, 1000).SuggestedMethod)
	assert.Equal(t, string(prep.EncodeOneHot), e.EncodingAdvice("c", 4, 1000).SuggestedMethod)
	assert.Equal(t, string(prep.EncodeOneHot), e.EncodingAdvice("c", 15, 1000).SuggestedMethod,
		"moderate cardinality defaults to one-hot")
}

func TestScalingAdvice(t *testing.T) {
	e := NewEngine()

	rec := e.ScalingAdvice([]string{"Decision Tree", "Random Forest"}, true)
	assert.Equal(t, string(prep.ScaleNone), rec.SuggestedMethod, "tree-only model sets skip scaling")

	rec = e.ScalingAdvice([]string{"Logistic Regression"}, true)
	assert.Equal(t, string(prep.ScaleStandard), rec.SuggestedMethod)

	rec = e.ScalingAdvice([]string{"Logistic Regression"}, false)
	assert.Equal(t, string(prep.ScaleNone), rec.SuggestedMethod, "similar ranges need no scaling")
}

func TestRecommendModels_ShortlistBounds(t *testing.T) {
	e := NewEngine()

	cases := []advisordomain.Characteristics{
		{NumSamples: 100, TargetClasses: 2, IsBinary: true},
		{NumSamples: 1500, TargetClasses: 3},
		{NumSamples: 5000, TargetClasses: 2, IsBinary: true, ImbalanceRatio: 8},
		{NumSamples: 50000, TargetClasses: 12},
	}
	for _, chars := range cases {
		advice := e.RecommendModels(chars)
		assert.GreaterOrEqual(t, len(advice.Models), 2, "shortlist never drops below 2: %+v", chars)
		assert.LessOrEqual(t, len(advice.Models), 3, "shortlist never exceeds 3: %+v", chars)
		assert.NotEmpty(t, advice.Reasoning)
	}
}

func TestRecommendModels_ImbalancePromotesForest(t *testing.T) {
	e := NewEngine()
	advice := e.RecommendModels(advisordomain.Characteristics{
		NumSamples: 1000, TargetClasses: 2, IsBinary: true, ImbalanceRatio: 8,
	})
	assert.Equal(t, "Random Forest", advice.Models[0])
}

func TestRecommendModels_ManyClassesDropSVM(t *testing.T) {
	e := NewEngine()
	advice := e.RecommendModels(advisordomain.Characteristics{
		NumSamples: 5000, TargetClasses: 8,
	})
	assert.NotContains(t, advice.Models, "Support Vector Machine")
}

func TestBuildPlan_EndToEnd(t *testing.T) {
	ds := testkit.MessyDataset()
	e := NewEngine()
	detector := qualityadapter.NewDetector()

	report, err := detector.DetectIssues(ds, "churn")
	require.NoError(t, err)

	plan := e.BuildPlan(ds, "churn", report)

	assert.Equal(t, "churn", plan.Config.TargetCol)
	assert.Equal(t, prep.DefaultTestSize, plan.Config.TestSize)

	// age and city have missing values and must show up with strategies.
	assert.Contains(t, plan.Config.MissingValueStrategies, "age")
	assert.Contains(t, plan.Config.MissingValueStrategies, "city")
	assert.Equal(t, prep.MissingMode, plan.Config.MissingValueStrategies["city"])

	// income carries the extreme outlier.
	assert.Contains(t, plan.Config.OutlierColumns, "income")

	// city needs encoding; the target does not appear here.
	assert.Contains(t, plan.Config.EncodingStrategies, "city")
	assert.NotContains(t, plan.Config.EncodingStrategies, "churn")

	// 9:1 target distribution is flagged.
	require.NotNil(t, plan.ImbalanceAdvice)

	assert.NotEmpty(t, plan.Models.Models)
}

func TestBuildPlan_Deterministic(t *testing.T) {
	ds := testkit.MessyDataset()
	e := NewEngine()
	detector := qualityadapter.NewDetector()
	report, err := detector.DetectIssues(ds, "churn")
	require.NoError(t, err)

	a := e.BuildPlan(ds, "churn", report)
	b := e.BuildPlan(ds, "churn", report)
	assert.Equal(t, a.Config, b.Config)
	assert.Equal(t, a.Models, b.Models)
}
