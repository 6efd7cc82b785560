package prep

import (
	"reflect"
	"testing"

	"autoclass/domain/dataset"
	"autoclass/domain/prep"
)

func makeDataset(t *testing.T, cols []dataset.Column) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("test", cols)
	if err != nil {
		t.Fatalf("failed to build dataset: %v", err)
	}
	return ds
}

func TestApply_MedianImputation(t *testing.T) {
	ds := makeDataset(t, []dataset.Column{
		{Name: "x", Kind: dataset.Numeric, Float: []float64{10, 0, 20, 30}, Missing: []bool{false, true, false, false}},
	})

	out, log, err := Apply(ds, prep.Config{
		MissingValueStrategies: map[string]prep.MissingStrategy{"x": prep.MissingMedian},
	})
	if err != nil {
		t.Fatal(err)
	}

	col := out.Column("x")
	if col.Float[1] != 20 {
		t.Errorf("expected median fill 20, got %v", col.Float[1])
	}
	if col.Missing[1] {
		t.Error("filled cell should not be marked missing")
	}
	want := "Filled missing values in 'x' with median (20.0000)"
	if len(log) != 1 || log[0] != want {
		t.Errorf("expected log [%q], got %v", want, log)
	}
	// Input untouched.
	if !ds.Column("x").Missing[1] {
		t.Error("input dataset must not be mutated")
	}
}

func TestApply_MeanImputation(t *testing.T) {
	ds := makeDataset(t, []dataset.Column{
		{Name: "x", Kind: dataset.Numeric, Float: []float64{1, 0, 3}, Missing: []bool{false, true, false}},
	})

	out, log, err := Apply(ds, prep.Config{
		MissingValueStrategies: map[string]prep.MissingStrategy{"x": prep.MissingMean},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Column("x").Float[1] != 2 {
		t.Errorf("expected mean fill 2, got %v", out.Column("x").Float[1])
	}
	if log[0] != "Filled missing values in 'x' with mean (2.0000)" {
		t.Errorf("unexpected log: %v", log)
	}
}

func TestApply_ModeImputation_FirstEncounteredTie(t *testing.T) {
	ds := makeDataset(t, []dataset.Column{
		{Name: "c", Kind: dataset.Categorical,
			Str:     []string{"b", "a", "b", "a", ""},
			Missing: []bool{false, false, false, false, true}},
	})

	out, _, err := Apply(ds, prep.Config{
		MissingValueStrategies: map[string]prep.MissingStrategy{"c": prep.MissingMode},
	})
	if err != nil {
		t.Fatal(err)
	}
	// b and a tie at 2; b came first.
	if out.Column("c").Str[4] != "b" {
		t.Errorf("tie should resolve to first-encountered value, got %q", out.Column("c").Str[4])
	}
}

func TestApply_DropStrategy(t *testing.T) {
	ds := makeDataset(t, []dataset.Column{
		{Name: "x", Kind: dataset.Numeric, Float: []float64{1, 0, 3}, Missing: []bool{false, true, false}},
		{Name: "y", Kind: dataset.Categorical, Str: []string{"a", "b", "c"}, Missing: make([]bool, 3)},
	})

	out, log, err := Apply(ds, prep.Config{
		MissingValueStrategies: map[string]prep.MissingStrategy{"x": prep.MissingDrop},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows() != 2 {
		t.Errorf("expected 2 rows after drop, got %d", out.Rows())
	}
	if out.Column("y").Str[1] != "c" {
		t.Error("other columns must stay row-aligned after drop")
	}
	if log[0] != "Dropped 1 rows with missing values in 'x'" {
		t.Errorf("unexpected log: %v", log)
	}
}

func TestApply_OneHotDropsFirstLexicalCategory(t *testing.T) {
	ds := makeDataset(t, []dataset.Column{
		{Name: "city", Kind: dataset.Categorical,
			Str: []string{"york", "leeds", "bath", "york"}, Missing: make([]bool, 4)},
	})

	out, _, err := Apply(ds, prep.Config{
		EncodingStrategies: map[string]prep.EncodingStrategy{"city": prep.EncodeOneHot},
	})
	if err != nil {
		t.Fatal(err)
	}

	// bath is first lexically and becomes the dropped reference category.
	if out.HasColumn("city") {
		t.Error("original column should be removed")
	}
	if out.HasColumn("city_bath") {
		t.Error("reference category should not get an indicator")
	}
	leeds := out.Column("city_leeds")
	york := out.Column("city_york")
	if leeds == nil || york == nil {
		t.Fatalf("expected indicator columns, got %v", out.ColumnNames())
	}
	if !reflect.DeepEqual(leeds.Float, []float64{0, 1, 0, 0}) {
		t.Errorf("unexpected leeds indicator: %v", leeds.Float)
	}
	if !reflect.DeepEqual(york.Float, []float64{1, 0, 0, 1}) {
		t.Errorf("unexpected york indicator: %v", york.Float)
	}
}

func TestApply_OrdinalEncodesLexically(t *testing.T) {
	ds := makeDataset(t, []dataset.Column{
		{Name: "size", Kind: dataset.Categorical,
			Str: []string{"small", "large", "medium"}, Missing: make([]bool, 3)},
	})

	out, _, err := Apply(ds, prep.Config{
		EncodingStrategies: map[string]prep.EncodingStrategy{"size": prep.EncodeOrdinal},
	})
	if err != nil {
		t.Fatal(err)
	}
	col := out.Column("size")
	if col.Kind != dataset.Numeric {
		t.Fatal("ordinal encoding should convert the column to numeric")
	}
	// lexical order: large=0, medium=1, small=2
	if !reflect.DeepEqual(col.Float, []float64{2, 0, 1}) {
		t.Errorf("unexpected codes: %v", col.Float)
	}
}

func TestApply_TargetNeverFeatureEncoded(t *testing.T) {
	ds := makeDataset(t, []dataset.Column{
		{Name: "y", Kind: dataset.Categorical, Str: []string{"no", "yes", "no"}, Missing: make([]bool, 3)},
	})

	out, log, err := Apply(ds, prep.Config{
		TargetCol:          "y",
		EncodingStrategies: map[string]prep.EncodingStrategy{"y": prep.EncodeOneHot},
	})
	if err != nil {
		t.Fatal(err)
	}
	// Target gets label encoding, not one-hot: still a single column.
	col := out.Column("y")
	if col == nil || col.Kind != dataset.Numeric {
		t.Fatal("target should be label encoded in place")
	}
	if !reflect.DeepEqual(col.Float, []float64{0, 1, 0}) {
		t.Errorf("unexpected label codes: %v", col.Float)
	}
	if log[len(log)-1] != "Encoded target column 'y' (classes: [no yes])" {
		t.Errorf("unexpected log entry: %v", log)
	}
}

func TestApply_StandardScaling(t *testing.T) {
	ds := makeDataset(t, []dataset.Column{
		{Name: "x", Kind: dataset.Numeric, Float: []float64{2, 4, 6}, Missing: make([]bool, 3)},
		{Name: "y", Kind: dataset.Numeric, Float: []float64{0, 1, 0}, Missing: make([]bool, 3)},
	})

	out, log, err := Apply(ds, prep.Config{
		TargetCol:       "y",
		ScalingStrategy: prep.ScaleStandard,
	})
	if err != nil {
		t.Fatal(err)
	}
	col := out.Column("x")
	mean := (col.Float[0] + col.Float[1] + col.Float[2]) / 3
	if mean > 1e-9 || mean < -1e-9 {
		t.Errorf("scaled column should have zero mean, got %v", mean)
	}
	// Target is excluded from scaling.
	if !reflect.DeepEqual(out.Column("y").Float, []float64{0, 1, 0}) {
		t.Error("target column must not be scaled")
	}
	if log[len(log)-1] != "Applied StandardScaler to 1 numeric features" {
		t.Errorf("unexpected log: %v", log)
	}
}

func TestApply_ConstantColumnScalesToZero(t *testing.T) {
	ds := makeDataset(t, []dataset.Column{
		{Name: "x", Kind: dataset.Numeric, Float: []float64{5, 5, 5}, Missing: make([]bool, 3)},
	})

	out, _, err := Apply(ds, prep.Config{ScalingStrategy: prep.ScaleStandard})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out.Column("x").Float, []float64{0, 0, 0}) {
		t.Errorf("constant column should collapse to zeros, got %v", out.Column("x").Float)
	}
}

func TestApply_Deterministic(t *testing.T) {
	ds := makeDataset(t, []dataset.Column{
		{Name: "a", Kind: dataset.Numeric, Float: []float64{1, 0, 3, 4}, Missing: []bool{false, true, false, false}},
		{Name: "b", Kind: dataset.Categorical, Str: []string{"x", "y", "x", "z"}, Missing: make([]bool, 4)},
		{Name: "y", Kind: dataset.Categorical, Str: []string{"p", "q", "p", "q"}, Missing: make([]bool, 4)},
	})
	cfg := prep.Config{
		TargetCol:              "y",
		MissingValueStrategies: map[string]prep.MissingStrategy{"a": prep.MissingMean},
		EncodingStrategies:     map[string]prep.EncodingStrategy{"b": prep.EncodeOneHot},
		ScalingStrategy:        prep.ScaleMinMax,
	}

	out1, log1, err := Apply(ds, cfg)
	if err != nil {
		t.Fatal(err)
	}
	out2, log2, err := Apply(ds, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(log1, log2) {
		t.Errorf("logs differ between runs: %v vs %v", log1, log2)
	}
	if !reflect.DeepEqual(out1.ColumnNames(), out2.ColumnNames()) {
		t.Errorf("column order differs between runs: %v vs %v", out1.ColumnNames(), out2.ColumnNames())
	}
}
