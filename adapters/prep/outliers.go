package prep

import (
	"fmt"

	qualityadapter "autoclass/adapters/quality"
	"autoclass/domain/dataset"
	"autoclass/domain/prep"
)

// HandleOutliers caps or removes IQR outliers in the selected columns. It is
// usable standalone, ahead of Apply. Bounds are recomputed per column on the
// working (never sampled) dataset, so a removal in one column shifts the
// bounds seen by the next. Clip never changes the row count; remove never
// changes the column count. The input dataset is not mutated.
func HandleOutliers(ds *dataset.Dataset, columns []string, strategy prep.OutlierStrategy) (*dataset.Dataset, prep.Log, error) {
	work := ds.Clone()
	var log prep.Log

	for _, name := range columns {
		col := work.Column(name)
		if col == nil || col.Kind != dataset.Numeric {
			continue
		}

		lower, upper, ok := qualityadapter.IQRBounds(col.Values())
		if !ok {
			continue
		}

		switch strategy {
		case prep.OutlierClip:
			for i := range col.Float {
				if col.Missing[i] {
					continue
				}
				if col.Float[i] < lower {
					col.Float[i] = lower
				} else if col.Float[i] > upper {
					col.Float[i] = upper
				}
			}
			log.Append(fmt.Sprintf("Clipped outliers in '%s' to [%.2f, %.2f]", name, lower, upper))

		case prep.OutlierRemove:
			initial := work.Rows()
			keep := make([]bool, initial)
			for i := 0; i < initial; i++ {
				keep[i] = !col.Missing[i] && col.Float[i] >= lower && col.Float[i] <= upper
			}
			work = work.Filter(keep)
			log.Append(fmt.Sprintf("Removed %d outlier rows from '%s'", initial-work.Rows(), name))

		default:
			return nil, nil, fmt.Errorf("unknown outlier strategy %q", strategy)
		}
	}
	return work, log, nil
}
