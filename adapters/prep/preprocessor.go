package prep

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	qualityadapter "autoclass/adapters/quality"
	"autoclass/domain/dataset"
	"autoclass/domain/prep"
)

// Apply runs the fixed transformation chain on a copy of the dataset:
// missing-value imputation, categorical encoding, target encoding, feature
// scaling. Outlier handling is a separate stage (HandleOutliers) that runs
// ahead of it. Deterministic: identical (dataset, config) pairs always yield
// the identical (cleaned dataset, log).
func Apply(ds *dataset.Dataset, cfg prep.Config) (*dataset.Dataset, prep.Log, error) {
	work := ds.Clone()
	var log prep.Log

	if err := imputeMissing(work, cfg, &log); err != nil {
		return nil, nil, err
	}
	work = encodeFeatures(work, cfg, &log)
	encodeTarget(work, cfg.TargetCol, &log)
	if err := scaleFeatures(work, cfg, &log); err != nil {
		return nil, nil, err
	}

	return work, log, nil
}

// imputeMissing handles nulls per configured column. Configured columns
// absent from the dataset are silently skipped. Config map iteration is in
// sorted key order so the log and any row drops are reproducible.
func imputeMissing(work *dataset.Dataset, cfg prep.Config, log *prep.Log) error {
	for _, name := range sortedKeys(cfg.MissingValueStrategies) {
		col := work.Column(name)
		if col == nil {
			continue
		}

		switch cfg.MissingValueStrategies[name] {
		case prep.MissingMean:
			values := col.Values()
			if col.Kind != dataset.Numeric || len(values) == 0 {
				continue
			}
			fill, _ := stats.Mean(values)
			fillNumeric(col, fill)
			log.Append(fmt.Sprintf("Filled missing values in '%s' with mean (%.4f)", name, fill))

		case prep.MissingMedian:
			values := col.Values()
			if col.Kind != dataset.Numeric || len(values) == 0 {
				continue
			}
			fill, _ := stats.Median(values)
			fillNumeric(col, fill)
			log.Append(fmt.Sprintf("Filled missing values in '%s' with median (%.4f)", name, fill))

		case prep.MissingMode:
			if col.Kind == dataset.Numeric {
				fill, ok := numericMode(col)
				if !ok {
					continue
				}
				fillNumeric(col, fill)
				log.Append(fmt.Sprintf("Filled missing values in '%s' with mode (%g)", name, fill))
			} else {
				fill, ok := categoricalMode(col)
				if !ok {
					continue
				}
				for i := range col.Str {
					if col.Missing[i] {
						col.Str[i] = fill
						col.Missing[i] = false
					}
				}
				log.Append(fmt.Sprintf("Filled missing values in '%s' with mode (%s)", name, fill))
			}

		case prep.MissingDrop:
			initial := work.Rows()
			keep := make([]bool, initial)
			for i := 0; i < initial; i++ {
				keep[i] = !col.Missing[i]
			}
			*work = *work.Filter(keep)
			log.Append(fmt.Sprintf("Dropped %d rows with missing values in '%s'", initial-work.Rows(), name))

		default:
			return fmt.Errorf("unknown missing-value strategy %q for column %q", cfg.MissingValueStrategies[name], name)
		}
	}
	return nil
}

// encodeFeatures applies one-hot or ordinal encoding to configured columns.
// The target column is never encoded here.
func encodeFeatures(work *dataset.Dataset, cfg prep.Config, log *prep.Log) *dataset.Dataset {
	for _, name := range sortedKeys(cfg.EncodingStrategies) {
		if name == cfg.TargetCol {
			continue
		}
		col := work.Column(name)
		if col == nil {
			continue
		}

		switch cfg.EncodingStrategies[name] {
		case prep.EncodeOneHot:
			work = oneHotEncode(work, col)
			log.Append(fmt.Sprintf("Applied one-hot encoding to '%s'", name))
		case prep.EncodeOrdinal:
			ordinalEncode(col)
			log.Append(fmt.Sprintf("Applied ordinal encoding to '%s'", name))
		}
	}
	return work
}

// oneHotEncode expands a column into indicator columns for every category
// except the first (lexical order), dropping the reference category to avoid
// redundancy. The original column is removed and the indicators appended.
func oneHotEncode(work *dataset.Dataset, col *dataset.Column) *dataset.Dataset {
	cats := col.Categories()
	sort.Strings(cats)

	rows := col.Len()
	name := col.Name
	values := make([]string, rows)
	missing := make([]bool, rows)
	for i := 0; i < rows; i++ {
		missing[i] = col.Missing[i]
		if !missing[i] {
			values[i] = col.ValueString(i)
		}
	}

	work.DropColumn(name)
	for _, cat := range cats[min(1, len(cats)):] {
		ind := dataset.Column{
			Name:    name + "_" + cat,
			Kind:    dataset.Numeric,
			Float:   make([]float64, rows),
			Missing: make([]bool, rows),
		}
		for i := 0; i < rows; i++ {
			if !missing[i] && values[i] == cat {
				ind.Float[i] = 1
			}
		}
		work.Columns = append(work.Columns, ind)
	}
	return work
}

// ordinalEncode maps categories to integer codes in lexical order, in place.
func ordinalEncode(col *dataset.Column) {
	cats := col.Categories()
	sort.Strings(cats)
	codes := make(map[string]float64, len(cats))
	for i, c := range cats {
		codes[c] = float64(i)
	}

	out := make([]float64, col.Len())
	for i := 0; i < col.Len(); i++ {
		if !col.Missing[i] {
			out[i] = codes[col.ValueString(i)]
		}
	}
	col.Kind = dataset.Numeric
	col.Float = out
	col.Str = nil
}

// encodeTarget label-encodes a categorical target with codes assigned in
// lexical class order; the class list is captured in the log.
func encodeTarget(work *dataset.Dataset, target string, log *prep.Log) {
	if target == "" {
		return
	}
	col := work.Column(target)
	if col == nil || col.Kind != dataset.Categorical {
		return
	}

	classes := col.Categories()
	sort.Strings(classes)
	codes := make(map[string]float64, len(classes))
	for i, c := range classes {
		codes[c] = float64(i)
	}

	out := make([]float64, col.Len())
	for i := 0; i < col.Len(); i++ {
		if !col.Missing[i] {
			out[i] = codes[col.Str[i]]
		}
	}
	col.Kind = dataset.Numeric
	col.Float = out
	col.Str = nil
	log.Append(fmt.Sprintf("Encoded target column '%s' (classes: %v)", target, classes))
}

// scaleFeatures applies the single configured scaler to every numeric
// feature column, excluding the target.
func scaleFeatures(work *dataset.Dataset, cfg prep.Config, log *prep.Log) error {
	strategy := cfg.ScalingStrategy
	if strategy == "" || strategy == prep.ScaleNone {
		return nil
	}

	var features []*dataset.Column
	for _, c := range work.NumericColumns() {
		if c.Name != cfg.TargetCol {
			features = append(features, c)
		}
	}
	if len(features) == 0 {
		return nil
	}

	var scalerName string
	switch strategy {
	case prep.ScaleStandard:
		scalerName = "StandardScaler"
		for _, c := range features {
			standardScale(c)
		}
	case prep.ScaleMinMax:
		scalerName = "MinMaxScaler"
		for _, c := range features {
			minMaxScale(c)
		}
	case prep.ScaleRobust:
		scalerName = "RobustScaler"
		for _, c := range features {
			robustScale(c)
		}
	default:
		return fmt.Errorf("unknown scaling strategy %q", strategy)
	}

	log.Append(fmt.Sprintf("Applied %s to %d numeric features", scalerName, len(features)))
	return nil
}

// standardScale centers to zero mean and unit variance (population std).
// Constant columns keep scale 1 so values collapse to zero, not NaN.
func standardScale(c *dataset.Column) {
	values := c.Values()
	if len(values) == 0 {
		return
	}
	mean, _ := stats.Mean(values)
	sd, _ := stats.StandardDeviation(values)
	if sd == 0 {
		sd = 1
	}
	for i := range c.Float {
		if !c.Missing[i] {
			c.Float[i] = (c.Float[i] - mean) / sd
		}
	}
}

// minMaxScale rescales to [0,1]; constant columns collapse to zero.
func minMaxScale(c *dataset.Column) {
	values := c.Values()
	if len(values) == 0 {
		return
	}
	lo, _ := stats.Min(values)
	hi, _ := stats.Max(values)
	span := hi - lo
	if span == 0 {
		span = 1
	}
	for i := range c.Float {
		if !c.Missing[i] {
			c.Float[i] = (c.Float[i] - lo) / span
		}
	}
}

// robustScale centers on the median and divides by the IQR.
func robustScale(c *dataset.Column) {
	values := c.Values()
	if len(values) == 0 {
		return
	}
	median, _ := stats.Median(values)
	lower, upper, ok := qualityadapter.IQRBounds(values)
	iqr := 0.0
	if ok {
		// IQRBounds returns Q1-1.5*IQR and Q3+1.5*IQR; recover the IQR.
		iqr = (upper - lower) / 4
	}
	if iqr == 0 {
		iqr = 1
	}
	for i := range c.Float {
		if !c.Missing[i] {
			c.Float[i] = (c.Float[i] - median) / iqr
		}
	}
}

// numericMode returns the most frequent non-missing value of a numeric
// column, ties broken by first-encountered order.
func numericMode(col *dataset.Column) (float64, bool) {
	counts := make(map[float64]int)
	var best float64
	bestCount := 0
	for i := range col.Float {
		if col.Missing[i] {
			continue
		}
		v := col.Float[i]
		counts[v]++
		if counts[v] > bestCount {
			bestCount = counts[v]
			best = v
		}
	}
	return best, bestCount > 0
}

// categoricalMode is numericMode for string columns.
func categoricalMode(col *dataset.Column) (string, bool) {
	counts := make(map[string]int)
	var best string
	bestCount := 0
	for i := range col.Str {
		if col.Missing[i] {
			continue
		}
		v := col.Str[i]
		counts[v]++
		if counts[v] > bestCount {
			bestCount = counts[v]
			best = v
		}
	}
	return best, bestCount > 0
}

func fillNumeric(col *dataset.Column, fill float64) {
	for i := range col.Float {
		if col.Missing[i] {
			col.Float[i] = fill
			col.Missing[i] = false
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
