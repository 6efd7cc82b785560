package quality

import (
	"math"
	"testing"

	"autoclass/domain/dataset"
)

func makeDataset(t *testing.T, cols []dataset.Column) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("test", cols)
	if err != nil {
		t.Fatalf("failed to build dataset: %v", err)
	}
	return ds
}

func TestDetectOutliers_SingleExtremeValue(t *testing.T) {
	// Four identical values and one extreme one: IQR collapses to zero,
	// so the bounds pin at the repeated value and only 100 falls outside.
	ds := makeDataset(t, []dataset.Column{
		{Name: "x", Kind: dataset.Numeric, Float: []float64{1, 1, 1, 1, 100}, Missing: make([]bool, 5)},
	})

	out := NewDetector().DetectOutliers(ds)
	info, ok := out["x"]
	if !ok {
		t.Fatal("expected an outlier entry for column x")
	}
	if info.Count != 1 {
		t.Errorf("expected 1 outlier, got %d", info.Count)
	}
	if info.Percentage != 20.0 {
		t.Errorf("expected 20.00%%, got %v", info.Percentage)
	}
	if info.LowerBound != 1 || info.UpperBound != 1 {
		t.Errorf("expected bounds [1, 1], got [%v, %v]", info.LowerBound, info.UpperBound)
	}
}

func TestDetectOutliers_CleanColumnOmitted(t *testing.T) {
	ds := makeDataset(t, []dataset.Column{
		{Name: "x", Kind: dataset.Numeric, Float: []float64{1, 2, 3, 4, 5}, Missing: make([]bool, 5)},
	})

	out := NewDetector().DetectOutliers(ds)
	if _, ok := out["x"]; ok {
		t.Error("clean column should be omitted from the outlier map")
	}
}

func TestDetectOutliers_TinyColumnSkipped(t *testing.T) {
	// Too few values for a percentile; column is skipped, not an error.
	ds := makeDataset(t, []dataset.Column{
		{Name: "x", Kind: dataset.Numeric, Float: []float64{1, 100}, Missing: make([]bool, 2)},
	})

	out := NewDetector().DetectOutliers(ds)
	if len(out) != 0 {
		t.Errorf("expected no entries for a 2-row column, got %v", out)
	}
}

func TestDetectOutliers_ColumnCapRespected(t *testing.T) {
	var cols []dataset.Column
	for i := 0; i < 25; i++ {
		cols = append(cols, dataset.Column{
			Name:    string(rune('a' + i)),
			Kind:    dataset.Numeric,
			Float:   []float64{1, 1, 1, 1, 100},
			Missing: make([]bool, 5),
		})
	}
	ds := makeDataset(t, cols)

	out := NewDetector().DetectOutliers(ds)
	if len(out) > DefaultMaxColumns {
		t.Errorf("expected at most %d scanned columns, got %d", DefaultMaxColumns, len(out))
	}
	// First 20 in dataset order are the ones scanned.
	if _, ok := out["a"]; !ok {
		t.Error("first column should have been scanned")
	}
	if _, ok := out["y"]; ok {
		t.Error("column beyond the cap should not have been scanned")
	}
}

func TestDetectOutliers_SamplingIsDeterministic(t *testing.T) {
	n := 200
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i % 10)
	}
	values[17] = 1e6
	ds := makeDataset(t, []dataset.Column{
		{Name: "x", Kind: dataset.Numeric, Float: values, Missing: make([]bool, n)},
	})

	d := NewDetector()
	d.SampleCap = 50
	first := d.DetectOutliers(ds)
	second := d.DetectOutliers(ds)
	if len(first) != len(second) {
		t.Fatalf("repeated scans disagree: %v vs %v", first, second)
	}
	for name, info := range first {
		if second[name] != info {
			t.Errorf("repeated scans disagree for %s: %+v vs %+v", name, info, second[name])
		}
	}
}

func TestDetectMissingValues(t *testing.T) {
	ds := makeDataset(t, []dataset.Column{
		{Name: "a", Kind: dataset.Numeric, Float: []float64{1, 0, 3}, Missing: []bool{false, true, false}},
		{Name: "b", Kind: dataset.Categorical, Str: []string{"x", "y", "z"}, Missing: make([]bool, 3)},
	})

	missing := NewDetector().DetectMissingValues(ds)
	if len(missing) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(missing))
	}
	info := missing["a"]
	if info.Count != 1 {
		t.Errorf("expected count 1, got %d", info.Count)
	}
	if info.Percentage != 33.33 {
		t.Errorf("expected 33.33, got %v", info.Percentage)
	}
}

func TestDetectClassImbalance_ThresholdIsStrict(t *testing.T) {
	// Majority share exactly 0.8 is not imbalanced; the check is strictly
	// greater.
	labels := []string{"a", "a", "a", "a", "b"}
	ds := makeDataset(t, []dataset.Column{
		{Name: "y", Kind: dataset.Categorical, Str: labels, Missing: make([]bool, 5)},
	})

	info, err := NewDetector().DetectClassImbalance(ds, "y")
	if err != nil {
		t.Fatal(err)
	}
	if info.IsImbalanced {
		t.Error("majority share of exactly 0.8 should not be flagged")
	}
	if info.MajorityClass != "a" || info.MinorityClass != "b" {
		t.Errorf("unexpected classes: majority %q minority %q", info.MajorityClass, info.MinorityClass)
	}
	if math.Abs(info.Distribution["a"]-0.8) > 1e-9 {
		t.Errorf("expected distribution 0.8 for a, got %v", info.Distribution["a"])
	}
}

func TestDetectClassImbalance_FlagsAboveThreshold(t *testing.T) {
	labels := []string{"a", "a", "a", "a", "a", "a", "a", "a", "a", "b"}
	ds := makeDataset(t, []dataset.Column{
		{Name: "y", Kind: dataset.Categorical, Str: labels, Missing: make([]bool, 10)},
	})

	info, err := NewDetector().DetectClassImbalance(ds, "y")
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsImbalanced {
		t.Error("majority share of 0.9 should be flagged")
	}
	if info.MajorityRatio != 90.0 {
		t.Errorf("expected 90.00, got %v", info.MajorityRatio)
	}
}

func TestDetectClassImbalance_MissingTarget(t *testing.T) {
	ds := makeDataset(t, []dataset.Column{
		{Name: "x", Kind: dataset.Numeric, Float: []float64{1}, Missing: make([]bool, 1)},
	})
	if _, err := NewDetector().DetectClassImbalance(ds, "nope"); err == nil {
		t.Error("expected error for unknown target column")
	}
}

func TestDetectIssues_HasIssuesAggregation(t *testing.T) {
	clean := makeDataset(t, []dataset.Column{
		{Name: "x", Kind: dataset.Numeric, Float: []float64{1, 2, 3, 4, 5}, Missing: make([]bool, 5)},
		{Name: "y", Kind: dataset.Categorical, Str: []string{"a", "b", "a", "b", "a"}, Missing: make([]bool, 5)},
	})

	report, err := NewDetector().DetectIssues(clean, "y")
	if err != nil {
		t.Fatal(err)
	}
	if report.HasIssues {
		t.Error("clean balanced dataset should have no issues")
	}

	dirty := makeDataset(t, []dataset.Column{
		{Name: "x", Kind: dataset.Numeric, Float: []float64{1, 0, 3, 4, 5}, Missing: []bool{false, true, false, false, false}},
		{Name: "y", Kind: dataset.Categorical, Str: []string{"a", "b", "a", "b", "a"}, Missing: make([]bool, 5)},
	})
	report, err = NewDetector().DetectIssues(dirty, "y")
	if err != nil {
		t.Fatal(err)
	}
	if !report.HasIssues {
		t.Error("missing values should set HasIssues")
	}
}

func TestSummarize(t *testing.T) {
	ds := makeDataset(t, []dataset.Column{
		{Name: "x", Kind: dataset.Numeric, Float: []float64{10, 20, 30}, Missing: make([]bool, 3)},
		{Name: "y", Kind: dataset.Categorical, Str: []string{"a", "b", "a"}, Missing: make([]bool, 3)},
	})

	s := NewDetector().Summarize(ds)
	if s.Rows != 3 || s.Columns != 2 {
		t.Errorf("unexpected shape: %d rows, %d columns", s.Rows, s.Columns)
	}
	st := s.Stats["x"]
	if st.Mean != 20 || st.Median != 20 || st.Min != 10 || st.Max != 30 {
		t.Errorf("unexpected stats: %+v", st)
	}
}
