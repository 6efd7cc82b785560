package advisor

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"autoclass/domain/advisor"
	"autoclass/domain/dataset"
	"autoclass/domain/prep"
	"autoclass/domain/quality"
)

// Engine maps dataset characteristics and the issue report to suggested
// preprocessing choices and a classifier shortlist. It holds no state:
// identical inputs always yield identical recommendations.
type Engine struct{}

// NewEngine creates the recommendation engine.
func NewEngine() *Engine {
	return &Engine{}
}

// scale-sensitive variants that benefit from standardized features
var scaleSensitive = map[string]bool{
	"Logistic Regression":    true,
	"Support Vector Machine": true,
	"K-Nearest Neighbors":    true,
}

var treeBased = map[string]bool{
	"Decision Tree": true,
	"Random Forest": true,
}

// AnalyzeCharacteristics summarizes the dataset facts the heuristics key off.
func (e *Engine) AnalyzeCharacteristics(ds *dataset.Dataset, target string) advisor.Characteristics {
	chars := advisor.Characteristics{
		NumSamples:  ds.Rows(),
		NumFeatures: len(ds.Columns),
	}

	var numericFeatures []*dataset.Column
	for i := range ds.Columns {
		c := &ds.Columns[i]
		if c.Name == target {
			continue
		}
		if c.Kind == dataset.Numeric {
			chars.NumNumeric++
			numericFeatures = append(numericFeatures, c)
		} else {
			chars.NumCategorical++
			if len(c.Categories()) > 10 {
				chars.HighCardinalityCats++
			}
		}
	}

	if tc := ds.Column(target); tc != nil {
		chars.NumFeatures--
		cats := tc.Categories()
		chars.TargetClasses = len(cats)
		chars.IsBinary = len(cats) == 2

		counts := make(map[string]int)
		for i := 0; i < tc.Len(); i++ {
			if !tc.Missing[i] {
				counts[tc.ValueString(i)]++
			}
		}
		maxCount, minCount := 0, -1
		for _, n := range counts {
			if n > maxCount {
				maxCount = n
			}
			if minCount < 0 || n < minCount {
				minCount = n
			}
		}
		if minCount > 0 {
			chars.ImbalanceRatio = float64(maxCount) / float64(minCount)
		}
	}

	totalCells := chars.NumSamples * (chars.NumFeatures + 1)
	if totalCells > 0 {
		missing := 0
		for i := range ds.Columns {
			missing += ds.Columns[i].MissingCount()
		}
		chars.MissingRatio = float64(missing) / float64(totalCells)
	}
	if chars.NumSamples > 0 {
		chars.FeatureRatio = float64(chars.NumFeatures) / float64(chars.NumSamples)
	}

	chars.FeatureVariance = meanVariance(numericFeatures)
	chars.FeatureCorrelation = meanAbsCorrelation(numericFeatures)
	return chars
}

// MissingValueAdvice picks the imputation strategy for one column from its
// dtype, cardinality and missing fraction.
func (e *Engine) MissingValueAdvice(col string, kind dataset.Kind, missingPct, uniqueRatio float64) advisor.Recommendation {
	if missingPct > 50 {
		return advisor.Recommendation{
			Headline:        fmt.Sprintf("Critical: %.1f%% missing values detected", missingPct),
			Reasoning:       "More than 50% of data is missing. Imputation may introduce significant bias. Consider dropping this column unless it's critical for your analysis.",
			SuggestedMethod: string(prep.MissingDrop),
		}
	}
	if kind == dataset.Numeric {
		if uniqueRatio > 0.8 {
			return advisor.Recommendation{
				Headline:        fmt.Sprintf("Recommended: use median imputation for %s", col),
				Reasoning:       "This appears to be a continuous numeric variable. Median is robust to outliers and preserves the central tendency better than mean for skewed distributions.",
				SuggestedMethod: string(prep.MissingMedian),
			}
		}
		return advisor.Recommendation{
			Headline:        fmt.Sprintf("Recommended: use mean imputation for %s", col),
			Reasoning:       "This appears to be a discrete numeric variable with repeated values. Mean imputation preserves the overall distribution while being computationally efficient.",
			SuggestedMethod: string(prep.MissingMean),
		}
	}
	return advisor.Recommendation{
		Headline:        fmt.Sprintf("Recommended: use mode (most frequent) imputation for %s", col),
		Reasoning:       "For categorical data, the most frequent value maintains the distribution and won't introduce new categories.",
		SuggestedMethod: string(prep.MissingMode),
	}
}

// OutlierAdvice picks the outlier strategy for one column from its outlier
// fraction.
func (e *Engine) OutlierAdvice(col string, count int, pct float64) advisor.Recommendation {
	switch {
	case pct > 20:
		return advisor.Recommendation{
			Headline:        fmt.Sprintf("Warning: %.1f%% outliers - may be legitimate data variation", pct),
			Reasoning:       fmt.Sprintf("With %d outliers (%.1f%% of data), this might represent natural variation rather than errors. Clipping caps values at reasonable bounds instead of removing data.", count, pct),
			SuggestedMethod: string(prep.OutlierClip),
		}
	case pct > 5:
		return advisor.Recommendation{
			Headline:        fmt.Sprintf("Recommended: clip outliers to bounds for %s", col),
			Reasoning:       fmt.Sprintf("%d outliers detected. Clipping preserves data size while reducing extreme value impact on models.", count),
			SuggestedMethod: string(prep.OutlierClip),
		}
	default:
		return advisor.Recommendation{
			Headline:        fmt.Sprintf("Recommended: remove outliers for %s", col),
			Reasoning:       fmt.Sprintf("Only %d outliers (%.1f%%) detected. Safe to remove these extreme values with minimal data loss.", count, pct),
			SuggestedMethod: string(prep.OutlierRemove),
		}
	}
}

// EncodingAdvice picks the encoding strategy for one categorical column from
// its cardinality.
func (e *Engine) EncodingAdvice(col string, uniqueCount, totalRows int) advisor.Recommendation {
	ratio := 0.0
	if totalRows > 0 {
		ratio = float64(uniqueCount) / float64(totalRows)
	}
	switch {
	case uniqueCount > 20 && ratio > 0.5:
		return advisor.Recommendation{
			Headline:        fmt.Sprintf("High cardinality: %d unique values - consider feature engineering", uniqueCount),
			Reasoning:       fmt.Sprintf("Very high cardinality (%d categories). Ordinal encoding avoids creating %d new columns.", uniqueCount, uniqueCount),
			SuggestedMethod: string(prep.EncodeOrdinal),
		}
	case uniqueCount > 20:
		return advisor.Recommendation{
			Headline:        fmt.Sprintf("Recommended: use ordinal encoding for %s", col),
			Reasoning:       fmt.Sprintf("With %d categories, one-hot encoding would create too many columns. Ordinal encoding is more compact and works well with tree-based models.", uniqueCount),
			SuggestedMethod: string(prep.EncodeOrdinal),
		}
	case uniqueCount <= 10:
		return advisor.Recommendation{
			Headline:        fmt.Sprintf("Recommended: use one-hot encoding for %s", col),
			Reasoning:       fmt.Sprintf("With only %d categories, one-hot encoding creates interpretable features without dimensional explosion.", uniqueCount),
			SuggestedMethod: string(prep.EncodeOneHot),
		}
	default:
		return advisor.Recommendation{
			Headline:        fmt.Sprintf("Choice needed: %d categories detected", uniqueCount),
			Reasoning:       fmt.Sprintf("Moderate cardinality: one-hot is interpretable but adds %d columns, ordinal is compact but assumes order. One-hot is the safe default.", uniqueCount),
			SuggestedMethod: string(prep.EncodeOneHot),
		}
	}
}

// ImbalanceAdvice describes how to handle the observed class imbalance.
func (e *Engine) ImbalanceAdvice(ratio float64, minorityClass string, minorityCount, majorityCount int) advisor.Recommendation {
	switch {
	case ratio > 10:
		return advisor.Recommendation{
			Headline:  fmt.Sprintf("Severe imbalance: %.1f:1 ratio detected", ratio),
			Reasoning: fmt.Sprintf("Class %q has only %d samples vs %d in the majority class. Consider oversampling, class weights, or collecting more minority data.", minorityClass, minorityCount, majorityCount),
		}
	case ratio > 3:
		return advisor.Recommendation{
			Headline:  fmt.Sprintf("Moderate imbalance: %.1f:1 ratio", ratio),
			Reasoning: "Imbalance detected but not severe. Class weights in the models will handle this.",
		}
	default:
		return advisor.Recommendation{
			Headline:  fmt.Sprintf("Balanced: classes are reasonably balanced (%.1f:1)", ratio),
			Reasoning: "Classes are well balanced. No special handling needed.",
		}
	}
}

// ScalingAdvice picks the global scaling strategy from the feature ranges
// and the candidate model set.
func (e *Engine) ScalingAdvice(models []string, rangesVary bool) advisor.Recommendation {
	hasTree, hasSensitive := false, false
	for _, m := range models {
		if treeBased[m] {
			hasTree = true
		}
		if scaleSensitive[m] {
			hasSensitive = true
		}
	}

	if !rangesVary {
		return advisor.Recommendation{
			Headline:        "No scaling needed: features already on similar scales",
			Reasoning:       "Feature ranges are similar. Scaling is optional and won't significantly impact performance.",
			SuggestedMethod: string(prep.ScaleNone),
		}
	}
	if hasTree && !hasSensitive {
		return advisor.Recommendation{
			Headline:        "Optional: tree models don't require scaling",
			Reasoning:       "Decision trees and random forests are scale-invariant, so scaling is unnecessary for this model set.",
			SuggestedMethod: string(prep.ScaleNone),
		}
	}
	return advisor.Recommendation{
		Headline:        "Recommended: standard scaling (z-score normalization)",
		Reasoning:       "Linear models, SVM and KNN are sensitive to feature scales. Standardizing to zero mean and unit variance is the usual choice.",
		SuggestedMethod: string(prep.ScaleStandard),
	}
}

// RecommendModels builds the classifier shortlist (at most 3, at least 2)
// from sample-size tier, imbalance ratio, feature/sample ratio and the
// categorical/numeric split, with a joined reasoning text.
func (e *Engine) RecommendModels(chars advisor.Characteristics) advisor.ModelAdvice {
	var models []string
	var reasons []string

	switch {
	case chars.NumSamples < 500:
		reasons = append(reasons, fmt.Sprintf("Very small dataset (%d samples): prefer simpler models to avoid overfitting.", chars.NumSamples))
		models = append(models, "Logistic Regression", "Decision Tree")
	case chars.NumSamples < 2000:
		reasons = append(reasons, fmt.Sprintf("Small-medium dataset (%d samples): ensemble methods should work well, with regularization for linear models.", chars.NumSamples))
		models = append(models, "Random Forest", "Logistic Regression")
	case chars.NumSamples < 10000:
		reasons = append(reasons, fmt.Sprintf("Medium dataset (%d samples): a good size for most algorithms, ensembles should perform well.", chars.NumSamples))
		models = append(models, "Random Forest", "Support Vector Machine")
	default:
		reasons = append(reasons, fmt.Sprintf("Large dataset (%d samples): complex models can be utilized; weigh training time against accuracy.", chars.NumSamples))
		models = append(models, "Random Forest", "K-Nearest Neighbors")
	}

	if chars.ImbalanceRatio > 5 {
		reasons = append(reasons, fmt.Sprintf("Significant class imbalance (%.1f:1): tree-based ensembles handle imbalance better.", chars.ImbalanceRatio))
		models = prepend(models, "Random Forest")
	} else if chars.ImbalanceRatio > 2 {
		reasons = append(reasons, fmt.Sprintf("Moderate class imbalance (%.1f:1): most algorithms will handle this.", chars.ImbalanceRatio))
	}

	if chars.FeatureRatio > 0.3 {
		reasons = append(reasons, fmt.Sprintf("High feature-to-sample ratio (%d/%d): regularized models strongly recommended.", chars.NumFeatures, chars.NumSamples))
		models = prepend(models, "Logistic Regression")
	}
	if chars.NumCategorical > chars.NumNumeric {
		reasons = append(reasons, fmt.Sprintf("Mostly categorical features (%d categorical vs %d numeric): tree-based models excel here.", chars.NumCategorical, chars.NumNumeric))
		if !contains(models[:min(2, len(models))], "Random Forest") {
			models = prepend(models, "Random Forest")
		}
	}
	if chars.FeatureCorrelation > 0.5 && chars.NumNumeric > 3 {
		reasons = append(reasons, fmt.Sprintf("Highly correlated features (avg correlation %.2f): tree models handle multicollinearity well.", chars.FeatureCorrelation))
	}
	if chars.IsBinary {
		reasons = append(reasons, "Binary classification: logistic regression for interpretability, ensembles for accuracy.")
	} else {
		reasons = append(reasons, fmt.Sprintf("Multi-class classification (%d classes): tree-based models handle multi-class natively.", chars.TargetClasses))
		if chars.TargetClasses > 5 {
			models = remove(models, "Support Vector Machine")
		}
	}

	models = dedupe(models)
	for _, fallback := range []string{"Random Forest", "Logistic Regression", "Decision Tree"} {
		if len(models) >= 2 {
			break
		}
		if !contains(models, fallback) {
			models = append(models, fallback)
		}
	}
	if len(models) > 3 {
		models = models[:3]
	}

	return advisor.ModelAdvice{Models: models, Reasoning: strings.Join(reasons, "\n")}
}

// BuildPlan assembles the default preprocessing config and advice for a
// dataset, merging per-column heuristics over the issue report.
func (e *Engine) BuildPlan(ds *dataset.Dataset, target string, report *quality.Report) advisor.Plan {
	chars := e.AnalyzeCharacteristics(ds, target)
	modelAdvice := e.RecommendModels(chars)

	plan := advisor.Plan{
		Config: prep.Config{
			TargetCol: target,
			TestSize:  prep.DefaultTestSize,
		},
		MissingAdvice:  make(map[string]advisor.Recommendation),
		OutlierAdvice:  make(map[string]advisor.Recommendation),
		EncodingAdvice: make(map[string]advisor.Recommendation),
		Models:         modelAdvice,
	}

	rows := ds.Rows()
	if report != nil && len(report.MissingValues) > 0 {
		plan.Config.MissingValueStrategies = make(map[string]prep.MissingStrategy)
		for _, name := range sortedKeys(report.MissingValues) {
			col := ds.Column(name)
			if col == nil {
				continue
			}
			uniqueRatio := 0.0
			if rows > 0 {
				uniqueRatio = float64(len(col.Categories())) / float64(rows)
			}
			rec := e.MissingValueAdvice(name, col.Kind, report.MissingValues[name].Percentage, uniqueRatio)
			plan.MissingAdvice[name] = rec
			plan.Config.MissingValueStrategies[name] = prep.MissingStrategy(rec.SuggestedMethod)
		}
	}

	if report != nil && len(report.Outliers) > 0 {
		worstPct := 0.0
		for _, name := range sortedKeys(report.Outliers) {
			info := report.Outliers[name]
			plan.OutlierAdvice[name] = e.OutlierAdvice(name, info.Count, info.Percentage)
			plan.Config.OutlierColumns = append(plan.Config.OutlierColumns, name)
			if info.Percentage > worstPct {
				worstPct = info.Percentage
			}
		}
		// One global strategy applies; clip as soon as any column's outlier
		// share is too large to discard safely.
		if worstPct > 5 {
			plan.Config.OutlierStrategy = prep.OutlierClip
		} else {
			plan.Config.OutlierStrategy = prep.OutlierRemove
		}
	}

	var categorical []string
	for _, c := range ds.CategoricalColumns() {
		if c.Name != target {
			categorical = append(categorical, c.Name)
		}
	}
	if len(categorical) > 0 {
		plan.Config.EncodingStrategies = make(map[string]prep.EncodingStrategy)
		for _, name := range categorical {
			col := ds.Column(name)
			rec := e.EncodingAdvice(name, len(col.Categories()), rows)
			plan.EncodingAdvice[name] = rec
			plan.Config.EncodingStrategies[name] = prep.EncodingStrategy(rec.SuggestedMethod)
		}
	}

	scalingRec := e.ScalingAdvice(modelAdvice.Models, rangesVary(ds, target))
	plan.ScalingAdvice = &scalingRec
	plan.Config.ScalingStrategy = prep.ScalingStrategy(scalingRec.SuggestedMethod)

	if report != nil && report.ClassImbalance != nil && chars.ImbalanceRatio > 0 {
		tc := ds.Column(target)
		minCount, majCount := 0, 0
		if tc != nil {
			counts := make(map[string]int)
			for i := 0; i < tc.Len(); i++ {
				if !tc.Missing[i] {
					counts[tc.ValueString(i)]++
				}
			}
			minCount = counts[report.ClassImbalance.MinorityClass]
			majCount = counts[report.ClassImbalance.MajorityClass]
		}
		rec := e.ImbalanceAdvice(chars.ImbalanceRatio, report.ClassImbalance.MinorityClass, minCount, majCount)
		plan.ImbalanceAdvice = &rec
	}

	return plan
}

// rangesVary reports whether numeric feature spans differ by more than an
// order of magnitude.
func rangesVary(ds *dataset.Dataset, target string) bool {
	minSpan, maxSpan := -1.0, 0.0
	for _, c := range ds.NumericColumns() {
		if c.Name == target {
			continue
		}
		values := c.Values()
		if len(values) == 0 {
			continue
		}
		lo, hi := values[0], values[0]
		for _, v := range values {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		span := hi - lo
		if span == 0 {
			continue
		}
		if minSpan < 0 || span < minSpan {
			minSpan = span
		}
		if span > maxSpan {
			maxSpan = span
		}
	}
	return minSpan > 0 && maxSpan/minSpan > 10
}

func meanVariance(cols []*dataset.Column) float64 {
	if len(cols) == 0 {
		return 0
	}
	total, n := 0.0, 0
	for _, c := range cols {
		values := c.Values()
		if len(values) < 2 {
			continue
		}
		total += stat.Variance(values, nil)
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// meanAbsCorrelation averages |pearson r| over all numeric feature pairs,
// using rows complete in both columns.
func meanAbsCorrelation(cols []*dataset.Column) float64 {
	if len(cols) < 2 {
		return 0
	}
	total, pairs := 0.0, 0
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			var x, y []float64
			for r := 0; r < cols[i].Len(); r++ {
				if !cols[i].Missing[r] && !cols[j].Missing[r] {
					x = append(x, cols[i].Float[r])
					y = append(y, cols[j].Float[r])
				}
			}
			if len(x) < 2 {
				continue
			}
			r := stat.Correlation(x, y, nil)
			if r < 0 {
				r = -r
			}
			total += r
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func prepend(models []string, name string) []string {
	if contains(models, name) {
		return models
	}
	return append([]string{name}, models...)
}

func contains(models []string, name string) bool {
	for _, m := range models {
		if m == name {
			return true
		}
	}
	return false
}

func remove(models []string, name string) []string {
	out := models[:0]
	for _, m := range models {
		if m != name {
			out = append(out, m)
		}
	}
	return out
}

func dedupe(models []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range models {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
