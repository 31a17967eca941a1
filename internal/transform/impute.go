package transform

import (
	"fmt"

	"tabetl/internal/dataset"
)

// Impute replaces nulls in each field with a value derived from the
// field's current contents (mean, median, mode) or with the configured
// literal. Mean and median fills turn the column into floats.
func Impute(ds *dataset.Dataset, specs []Imputation) (*dataset.Dataset, error) {
	out := ds.Clone()
	for _, s := range specs {
		col, err := column(out, KindImpute, s.Field)
		if err != nil {
			return nil, err
		}
		fill, asFloat, err := fillValue(col, s)
		if err != nil {
			return nil, &ValidationError{Kind: KindImpute, Field: s.Field, Err: err}
		}
		filled := make([]any, len(col.Values))
		for i, v := range col.Values {
			switch {
			case dataset.IsNull(v):
				filled[i] = fill
			case asFloat:
				f, _ := dataset.ToFloat(v)
				filled[i] = f
			default:
				filled[i] = v
			}
		}
		if err := out.Set(s.Field, filled); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func fillValue(col *dataset.Column, s Imputation) (fill any, asFloat bool, err error) {
	switch s.Strategy {
	case StrategyMean:
		f, err := col.Mean()
		return f, true, aggregateErr(err)
	case StrategyMedian:
		f, err := col.Median()
		return f, true, aggregateErr(err)
	case StrategyMode:
		m, err := col.Mode()
		return m, false, aggregateErr(err)
	case StrategyConstant:
		return s.Fill, false, nil
	}
	return nil, false, fmt.Errorf("%w: strategy %q", ErrInvalidDirective, s.Strategy)
}

func aggregateErr(err error) error {
	switch err {
	case nil:
		return nil
	case dataset.ErrNotNumeric:
		return ErrNotNumeric
	case dataset.ErrNoValues:
		return ErrAllValuesEmpty
	}
	return err
}
