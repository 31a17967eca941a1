package transform

import "tabetl/internal/dataset"

// NullMarker replaces missing values before one-hot categories are taken.
const NullMarker = "NULL"

// OneHotPrefix is prepended to each category to name its indicator column.
const OneHotPrefix = "is_"

// OneHot replaces each field with one int 0/1 indicator column per distinct
// normalized value, appended in first-observed order. Existing columns with
// an indicator's name are overwritten.
func OneHot(ds *dataset.Dataset, specs []OneHotEncoding) (*dataset.Dataset, error) {
	out := ds.Clone()
	for _, s := range specs {
		col, err := column(out, KindOneHot, s.Field)
		if err != nil {
			return nil, err
		}
		keys := normalizeCategories(col.Values)
		for _, code := range dataset.Distinct(keys) {
			ind := make([]any, len(keys))
			for i, k := range keys {
				if k == code {
					ind[i] = int64(1)
				} else {
					ind[i] = int64(0)
				}
			}
			if err := out.Set(OneHotPrefix+code, ind); err != nil {
				return nil, err
			}
		}
		out.Drop(s.Field)
	}
	return out, nil
}

func normalizeCategories(values []any) []string {
	keys := make([]string, len(values))
	for i, v := range values {
		if dataset.IsNull(v) {
			keys[i] = NullMarker
			continue
		}
		keys[i] = dataset.Format(v)
	}
	return keys
}
