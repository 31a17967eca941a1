package transform

import (
	"errors"
	"fmt"
	"strconv"

	"tabetl/internal/dataset"
)

// Validate checks every spec in the catalog against ds and returns the
// first violation as a *ValidationError. It never modifies ds. Kinds are
// checked in execution order, specs within a kind in catalog order.
func Validate(ds *dataset.Dataset, c Catalog) error {
	for _, s := range c.Specs() {
		var err error
		switch s := s.(type) {
		case AgeDerivation:
			err = validateAge(ds, s)
		case OneHotEncoding:
			if !ds.Has(s.Field) {
				err = &ValidationError{Kind: KindOneHot, Field: s.Field, Err: ErrFieldMissing}
			}
		case Imputation:
			err = validateImpute(ds, s)
		default:
			err = fmt.Errorf("%w: unhandled transform %s", ErrInvalidDirective, s.Kind())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func validateAge(ds *dataset.Dataset, s AgeDerivation) error {
	col, ok := ds.Column(s.SourceField)
	if !ok {
		return &ValidationError{Kind: KindAge, Field: s.SourceField, Err: ErrFieldMissingOrNotDate}
	}
	for i, v := range col.Values {
		if dataset.IsNull(v) {
			continue
		}
		if _, err := dataset.ParseTime(v); err != nil {
			return &ValidationError{
				Kind:   KindAge,
				Field:  s.SourceField,
				Err:    ErrFieldMissingOrNotDate,
				Detail: "row " + strconv.Itoa(i) + ": " + err.Error(),
			}
		}
	}
	if s.NewField == "" {
		return &ValidationError{Kind: KindAge, Field: s.SourceField, Err: ErrInvalidDirective, Detail: "new_field is empty"}
	}
	return nil
}

func validateImpute(ds *dataset.Dataset, s Imputation) error {
	col, ok := ds.Column(s.Field)
	if !ok {
		return &ValidationError{Kind: KindImpute, Field: s.Field, Err: ErrFieldMissing}
	}
	if s.Strategy.Aggregate() && col.Nulls() == len(col.Values) {
		return &ValidationError{Kind: KindImpute, Field: s.Field, Err: ErrAllValuesEmpty}
	}
	switch s.Strategy {
	case StrategyMean, StrategyMedian:
		if _, err := col.Median(); err != nil {
			if errors.Is(err, dataset.ErrNotNumeric) {
				return &ValidationError{Kind: KindImpute, Field: s.Field, Err: ErrNotNumeric, Detail: "kind " + col.Kind().String()}
			}
			return &ValidationError{Kind: KindImpute, Field: s.Field, Err: ErrAllValuesEmpty}
		}
	case StrategyConstant:
		if !s.HasFill {
			return &ValidationError{Kind: KindImpute, Field: s.Field, Err: ErrInvalidDirective, Detail: "value is missing"}
		}
	}
	return nil
}
