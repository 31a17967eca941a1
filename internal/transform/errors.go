package transform

import (
	"errors"
	"fmt"
)

var (
	ErrFieldMissing          = errors.New("field does not exist in dataset")
	ErrFieldMissingOrNotDate = errors.New("field does not exist or is not a date")
	ErrAllValuesEmpty        = errors.New("field only has empty values")
	ErrNotNumeric            = errors.New("field is not numeric")
	ErrInvalidDirective      = errors.New("invalid transform directive")
)

// ValidationError ties a sentinel error to the directive that failed.
type ValidationError struct {
	Kind   Kind
	Field  string
	Err    error
	Detail string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: field %q: %v", e.Kind, e.Field, e.Err)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Hint returns a remediation message for a validation failure, or "" for
// errors outside the taxonomy.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrFieldMissingOrNotDate):
		return "check the field name and that every value is a date"
	case errors.Is(err, ErrFieldMissing):
		return "add the field to the dataset or correct the config file"
	case errors.Is(err, ErrAllValuesEmpty):
		return "consider filling with a constant"
	case errors.Is(err, ErrNotNumeric):
		return "check that the data is numeric or consider filling with a constant"
	case errors.Is(err, ErrInvalidDirective):
		return "check the transform parameters in the config file"
	}
	return ""
}

// Reason is a short label for err, suitable for metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrFieldMissingOrNotDate):
		return "field_missing_or_not_date"
	case errors.Is(err, ErrFieldMissing):
		return "field_missing"
	case errors.Is(err, ErrAllValuesEmpty):
		return "all_values_empty"
	case errors.Is(err, ErrNotNumeric):
		return "not_numeric"
	case errors.Is(err, ErrInvalidDirective):
		return "invalid_directive"
	}
	return "other"
}
