package quality

import (
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"

	"autoclass/domain/core"
	"autoclass/domain/dataset"
	"autoclass/domain/quality"
)

const (
	// DefaultSampleCap bounds the rows scanned for outliers; larger datasets
	// are sampled with a fixed seed so repeated scans agree.
	DefaultSampleCap = 50000
	// DefaultMaxColumns bounds the numeric columns scanned for outliers.
	DefaultMaxColumns = 20
	// DefaultImbalanceThreshold flags a target whose majority class exceeds
	// this share of rows.
	DefaultImbalanceThreshold = 0.8

	sampleSeed = 42
)

// Detector runs the statistical data-quality scan.
type Detector struct {
	SampleCap          int
	MaxColumns         int
	ImbalanceThreshold float64
}

// NewDetector creates a detector with default bounds.
func NewDetector() *Detector {
	return &Detector{
		SampleCap:          DefaultSampleCap,
		MaxColumns:         DefaultMaxColumns,
		ImbalanceThreshold: DefaultImbalanceThreshold,
	}
}

// DetectIssues aggregates the individual scans into one report. Pass an
// empty target to skip the imbalance check. HasIssues is true iff the
// missing map is non-empty, the outlier map is non-empty, or the target is
// imbalanced.
func (d *Detector) DetectIssues(ds *dataset.Dataset, target string) (*quality.Report, error) {
	report := &quality.Report{
		MissingValues: d.DetectMissingValues(ds),
		Outliers:      d.DetectOutliers(ds),
	}

	if target != "" {
		imb, err := d.DetectClassImbalance(ds, target)
		if err != nil {
			return nil, err
		}
		report.ClassImbalance = imb
		if imb.IsImbalanced {
			report.HasIssues = true
		}
	}

	if len(report.MissingValues) > 0 {
		report.HasIssues = true
	}
	if len(report.Outliers) > 0 {
		report.HasIssues = true
	}
	return report, nil
}

// DetectMissingValues counts nulls per column. Columns without nulls are
// omitted from the result.
func (d *Detector) DetectMissingValues(ds *dataset.Dataset) map[string]quality.MissingInfo {
	missing := make(map[string]quality.MissingInfo)
	rows := ds.Rows()
	if rows == 0 {
		return missing
	}
	for i := range ds.Columns {
		c := &ds.Columns[i]
		count := c.MissingCount()
		if count == 0 {
			continue
		}
		missing[c.Name] = quality.MissingInfo{
			Count:      count,
			Percentage: round2(float64(count) / float64(rows) * 100),
		}
	}
	return missing
}

// DetectOutliers scans numeric columns with the IQR rule. Row selection is
// sampled (fixed seed) above SampleCap and counts are scaled back to the
// full dataset; at most MaxColumns numeric columns are scanned, in dataset
// order. Columns without outliers are omitted.
func (d *Detector) DetectOutliers(ds *dataset.Dataset) map[string]quality.OutlierInfo {
	outliers := make(map[string]quality.OutlierInfo)
	rows := ds.Rows()
	if rows == 0 {
		return outliers
	}

	sampled := sampleRows(rows, d.SampleCap)
	sampleN := len(sampled)

	numeric := ds.NumericColumns()
	if len(numeric) > d.MaxColumns {
		numeric = numeric[:d.MaxColumns]
	}

	for _, c := range numeric {
		values := make([]float64, 0, sampleN)
		for _, r := range sampled {
			if !c.Missing[r] {
				values = append(values, c.Float[r])
			}
		}
		if len(values) == 0 {
			continue
		}

		lower, upper, ok := iqrBounds(values)
		if !ok {
			continue
		}

		count := 0
		for _, v := range values {
			if v < lower || v > upper {
				count++
			}
		}
		if count == 0 {
			continue
		}

		estimated := int(float64(count) * (float64(rows) / float64(sampleN)))
		outliers[c.Name] = quality.OutlierInfo{
			Count:      estimated,
			Percentage: round2(float64(count) / float64(sampleN) * 100),
			LowerBound: round4(lower),
			UpperBound: round4(upper),
		}
	}
	return outliers
}

// DetectClassImbalance computes the normalized class distribution of the
// target and flags it when the majority share exceeds the threshold.
func (d *Detector) DetectClassImbalance(ds *dataset.Dataset, target string) (*quality.ImbalanceInfo, error) {
	col := ds.Column(target)
	if col == nil {
		return nil, core.NewTargetNotFoundError(target)
	}

	counts := make(map[string]int)
	order := col.Categories()
	total := 0
	for i := 0; i < col.Len(); i++ {
		if col.Missing[i] {
			continue
		}
		counts[col.ValueString(i)]++
		total++
	}
	if total == 0 {
		return nil, core.ErrEmptyDataset
	}

	info := &quality.ImbalanceInfo{Distribution: make(map[string]float64, len(counts))}
	maxShare, minShare := -1.0, 2.0
	for _, class := range order {
		share := float64(counts[class]) / float64(total)
		info.Distribution[class] = share
		if share > maxShare {
			maxShare = share
			info.MajorityClass = class
		}
		if share < minShare {
			minShare = share
			info.MinorityClass = class
		}
	}
	info.MajorityRatio = round2(maxShare * 100)
	info.MinorityRatio = round2(minShare * 100)
	info.IsImbalanced = maxShare > d.ImbalanceThreshold
	return info, nil
}

// Summarize produces dataset-level metadata for overview reporting.
func (d *Detector) Summarize(ds *dataset.Dataset) *quality.Summary {
	s := &quality.Summary{
		Rows:          ds.Rows(),
		Columns:       len(ds.Columns),
		ColumnNames:   ds.ColumnNames(),
		DuplicateRows: ds.DuplicateRows(),
		Stats:         make(map[string]quality.ColumnStats),
	}
	for _, c := range ds.NumericColumns() {
		s.NumericColumns = append(s.NumericColumns, c.Name)
		values := c.Values()
		if len(values) == 0 {
			continue
		}
		mean, _ := stats.Mean(values)
		sd, _ := stats.StandardDeviation(values)
		min, _ := stats.Min(values)
		max, _ := stats.Max(values)
		median, _ := stats.Median(values)
		s.Stats[c.Name] = quality.ColumnStats{Mean: mean, StdDev: sd, Min: min, Max: max, Median: median}
	}
	for _, c := range ds.CategoricalColumns() {
		s.CategoricalColumns = append(s.CategoricalColumns, c.Name)
	}
	return s
}

// IQRBounds exposes the outlier bound computation used by both the detector
// and the preprocessing stage: lower = Q1 - 1.5*IQR, upper = Q3 + 1.5*IQR.
func IQRBounds(values []float64) (lower, upper float64, ok bool) {
	return iqrBounds(values)
}

func iqrBounds(values []float64) (float64, float64, bool) {
	q1, err := stats.Percentile(values, 25)
	if err != nil {
		return 0, 0, false
	}
	q3, err := stats.Percentile(values, 75)
	if err != nil {
		return 0, 0, false
	}
	iqr := q3 - q1
	return q1 - 1.5*iqr, q3 + 1.5*iqr, true
}

// sampleRows returns row indices to scan: all rows when under the cap,
// otherwise a fixed-seed uniform sample without replacement.
func sampleRows(rows, limit int) []int {
	if limit <= 0 || rows <= limit {
		idx := make([]int, rows)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	rng := rand.New(rand.NewSource(sampleSeed))
	return rng.Perm(rows)[:limit]
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
