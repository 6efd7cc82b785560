package quality

// MissingInfo describes null entries found in one column.
type MissingInfo struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// OutlierInfo describes IQR outliers found in one numeric column. When the
// scan ran on a sample, Count is the estimate scaled to the full dataset.
type OutlierInfo struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// ImbalanceInfo describes the class balance of the target column.
// Ratios are percentages of total rows.
type ImbalanceInfo struct {
	IsImbalanced  bool               `json:"is_imbalanced"`
	Distribution  map[string]float64 `json:"class_distribution"`
	MajorityClass string             `json:"majority_class"`
	MajorityRatio float64            `json:"majority_ratio"`
	MinorityClass string             `json:"minority_class"`
	MinorityRatio float64            `json:"minority_ratio"`
}

// Report aggregates every detected data-quality issue. ClassImbalance is nil
// when no target column was supplied to the scan.
type Report struct {
	MissingValues  map[string]MissingInfo `json:"missing_values"`
	Outliers       map[string]OutlierInfo `json:"outliers"`
	ClassImbalance *ImbalanceInfo         `json:"class_imbalance,omitempty"`
	HasIssues      bool                   `json:"has_issues"`
}

// ColumnStats holds descriptive statistics for one numeric column.
type ColumnStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// Summary is dataset-level metadata for overview reporting.
type Summary struct {
	Rows               int                    `json:"rows"`
	Columns            int                    `json:"columns"`
	ColumnNames        []string               `json:"column_names"`
	NumericColumns     []string               `json:"numeric_columns"`
	CategoricalColumns []string               `json:"categorical_columns"`
	DuplicateRows      int                    `json:"duplicates"`
	Stats              map[string]ColumnStats `json:"stats"`
}
