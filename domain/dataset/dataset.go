package dataset

import (
	"fmt"
	"math"
	"strings"

	"autoclass/domain/core"
)

// Kind classifies a column as numeric or categorical. Type assignment happens
// at the ingest boundary; the pipeline never re-sniffs values.
type Kind string

const (
	Numeric     Kind = "numeric"
	Categorical Kind = "categorical"
)

// Column is a single named, typed column. Numeric columns carry Float,
// categorical columns carry Str; Missing marks null entries in either.
type Column struct {
	Name    string
	Kind    Kind
	Float   []float64
	Str     []string
	Missing []bool
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Float)
	}
	return len(c.Str)
}

// MissingCount returns the number of null entries.
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

// Values returns the non-missing numeric values of a numeric column.
func (c *Column) Values() []float64 {
	out := make([]float64, 0, len(c.Float))
	for i, v := range c.Float {
		if !c.Missing[i] {
			out = append(out, v)
		}
	}
	return out
}

// Categories returns the distinct non-missing values of a column, in
// first-encountered order. Numeric values are formatted with %g.
func (c *Column) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for i := 0; i < c.Len(); i++ {
		if c.Missing[i] {
			continue
		}
		v := c.ValueString(i)
		if !seen[v] {
			seen[v] = true
			cats = append(cats, v)
		}
	}
	return cats
}

// ValueString renders the value at row i as a string.
func (c *Column) ValueString(i int) string {
	if c.Kind == Numeric {
		return fmt.Sprintf("%g", c.Float[i])
	}
	return c.Str[i]
}

// clone deep-copies the column.
func (c *Column) clone() Column {
	out := Column{Name: c.Name, Kind: c.Kind}
	if c.Float != nil {
		out.Float = append([]float64(nil), c.Float...)
	}
	if c.Str != nil {
		out.Str = append([]string(nil), c.Str...)
	}
	if c.Missing != nil {
		out.Missing = append([]bool(nil), c.Missing...)
	}
	return out
}

// Dataset is an ordered sequence of named, typed columns with positionally
// aligned rows. The caller owns the instance; pipeline stages always work
// on a Clone.
type Dataset struct {
	Name    string
	Columns []Column
}

// New creates a dataset from columns, validating row alignment.
func New(name string, columns []Column) (*Dataset, error) {
	if len(columns) > 0 {
		rows := columns[0].Len()
		for _, c := range columns[1:] {
			if c.Len() != rows {
				return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), rows)
			}
		}
	}
	return &Dataset{Name: name, Columns: columns}, nil
}

// Rows returns the row count.
func (d *Dataset) Rows() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return d.Columns[0].Len()
}

// ColumnNames returns column names in dataset order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns a pointer to the named column, or nil.
func (d *Dataset) Column(name string) *Column {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i]
		}
	}
	return nil
}

// HasColumn reports whether the named column exists.
func (d *Dataset) HasColumn(name string) bool {
	return d.Column(name) != nil
}

// NumericColumns returns numeric columns in dataset order.
func (d *Dataset) NumericColumns() []*Column {
	var out []*Column
	for i := range d.Columns {
		if d.Columns[i].Kind == Numeric {
			out = append(out, &d.Columns[i])
		}
	}
	return out
}

// CategoricalColumns returns categorical columns in dataset order.
func (d *Dataset) CategoricalColumns() []*Column {
	var out []*Column
	for i := range d.Columns {
		if d.Columns[i].Kind == Categorical {
			out = append(out, &d.Columns[i])
		}
	}
	return out
}

// Clone deep-copies the dataset.
func (d *Dataset) Clone() *Dataset {
	cols := make([]Column, len(d.Columns))
	for i := range d.Columns {
		cols[i] = d.Columns[i].clone()
	}
	return &Dataset{Name: d.Name, Columns: cols}
}

// Filter returns a new dataset containing only rows where keep[i] is true.
func (d *Dataset) Filter(keep []bool) *Dataset {
	cols := make([]Column, len(d.Columns))
	for i := range d.Columns {
		src := &d.Columns[i]
		dst := Column{Name: src.Name, Kind: src.Kind}
		for r := 0; r < src.Len(); r++ {
			if !keep[r] {
				continue
			}
			if src.Kind == Numeric {
				dst.Float = append(dst.Float, src.Float[r])
			} else {
				dst.Str = append(dst.Str, src.Str[r])
			}
			dst.Missing = append(dst.Missing, src.Missing[r])
		}
		cols[i] = dst
	}
	return &Dataset{Name: d.Name, Columns: cols}
}

// DropColumn removes the named column in place.
func (d *Dataset) DropColumn(name string) {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			d.Columns = append(d.Columns[:i], d.Columns[i+1:]...)
			return
		}
	}
}

// HasMissing reports whether any column still contains nulls.
func (d *Dataset) HasMissing() bool {
	for i := range d.Columns {
		if d.Columns[i].MissingCount() > 0 {
			return true
		}
	}
	return false
}

// DuplicateRows counts rows that are exact duplicates of an earlier row.
func (d *Dataset) DuplicateRows() int {
	seen := make(map[string]bool)
	dupes := 0
	for r := 0; r < d.Rows(); r++ {
		var sb strings.Builder
		for i := range d.Columns {
			c := &d.Columns[i]
			if c.Missing[r] {
				sb.WriteString("\x00")
			} else {
				sb.WriteString(c.ValueString(r))
			}
			sb.WriteString("\x1f")
		}
		key := sb.String()
		if seen[key] {
			dupes++
		}
		seen[key] = true
	}
	return dupes
}

// Fingerprint derives the memoization key for this dataset.
func (d *Dataset) Fingerprint() core.Fingerprint {
	return core.NewFingerprint(d.Rows(), d.ColumnNames())
}

// Matrix extracts the feature matrix and integer labels for training.
// All feature columns must be numeric and complete; the target column must
// hold integer-coded labels (run preprocessing first).
func (d *Dataset) Matrix(target string) ([][]float64, []int, error) {
	tc := d.Column(target)
	if tc == nil {
		return nil, nil, core.NewTargetNotFoundError(target)
	}
	if tc.Kind != Numeric {
		return nil, nil, fmt.Errorf("target column %q is not numeric; encode it first", target)
	}

	var features []*Column
	for i := range d.Columns {
		c := &d.Columns[i]
		if c.Name == target {
			continue
		}
		if c.Kind != Numeric {
			return nil, nil, fmt.Errorf("feature column %q is not numeric; encode it first", c.Name)
		}
		features = append(features, c)
	}

	rows := d.Rows()
	X := make([][]float64, rows)
	y := make([]int, rows)
	for r := 0; r < rows; r++ {
		row := make([]float64, len(features))
		for j, c := range features {
			if c.Missing[r] {
				return nil, nil, fmt.Errorf("feature column %q has a missing value at row %d", c.Name, r)
			}
			row[j] = c.Float[r]
		}
		if tc.Missing[r] {
			return nil, nil, fmt.Errorf("target column %q has a missing value at row %d", target, r)
		}
		X[r] = row
		y[r] = int(math.Round(tc.Float[r]))
	}
	return X, y, nil
}
