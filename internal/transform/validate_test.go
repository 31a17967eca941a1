package transform

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabetl/internal/dataset"
)

func people() *dataset.Dataset {
	return dataset.MustFromColumns(
		&dataset.Column{Name: "name", Values: []any{"ann", "bob", "cy"}},
		&dataset.Column{Name: "birthdate", Values: []any{"2000-01-01", nil, "1990-06-15"}},
		&dataset.Column{Name: "color", Values: []any{"red", "blue", nil}},
		&dataset.Column{Name: "score", Values: []any{int64(10), nil, int64(20)}},
		&dataset.Column{Name: "empty", Values: []any{nil, nil, nil}},
	)
}

func TestValidate_OK(t *testing.T) {
	c := Catalog{
		Age:    []AgeDerivation{{SourceField: "birthdate", NewField: "age"}},
		OneHot: []OneHotEncoding{{Field: "color"}},
		Impute: []Imputation{
			{Field: "score", Strategy: StrategyMedian},
			{Field: "name", Strategy: StrategyMode},
			{Field: "empty", Strategy: StrategyConstant, Fill: "x", HasFill: true},
		},
	}
	require.NoError(t, Validate(people(), c))
	require.NoError(t, Validate(people(), Catalog{}))
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		catalog Catalog
		want    error
		field   string
	}{
		{
			name:    "age missing field",
			catalog: Catalog{Age: []AgeDerivation{{SourceField: "dob", NewField: "age"}}},
			want:    ErrFieldMissingOrNotDate,
			field:   "dob",
		},
		{
			name:    "age not a date",
			catalog: Catalog{Age: []AgeDerivation{{SourceField: "name", NewField: "age"}}},
			want:    ErrFieldMissingOrNotDate,
			field:   "name",
		},
		{
			name:    "age numeric column",
			catalog: Catalog{Age: []AgeDerivation{{SourceField: "score", NewField: "age"}}},
			want:    ErrFieldMissingOrNotDate,
			field:   "score",
		},
		{
			name:    "age without new field",
			catalog: Catalog{Age: []AgeDerivation{{SourceField: "birthdate"}}},
			want:    ErrInvalidDirective,
			field:   "birthdate",
		},
		{
			name:    "one-hot missing field",
			catalog: Catalog{OneHot: []OneHotEncoding{{Field: "shape"}}},
			want:    ErrFieldMissing,
			field:   "shape",
		},
		{
			name:    "impute missing field",
			catalog: Catalog{Impute: []Imputation{{Field: "shape", Strategy: StrategyConstant, Fill: "x", HasFill: true}}},
			want:    ErrFieldMissing,
			field:   "shape",
		},
		{
			name:    "mean on all null",
			catalog: Catalog{Impute: []Imputation{{Field: "empty", Strategy: StrategyMean}}},
			want:    ErrAllValuesEmpty,
			field:   "empty",
		},
		{
			name:    "mode on all null",
			catalog: Catalog{Impute: []Imputation{{Field: "empty", Strategy: StrategyMode}}},
			want:    ErrAllValuesEmpty,
			field:   "empty",
		},
		{
			name:    "median on strings",
			catalog: Catalog{Impute: []Imputation{{Field: "name", Strategy: StrategyMedian}}},
			want:    ErrNotNumeric,
			field:   "name",
		},
		{
			name:    "mean on strings",
			catalog: Catalog{Impute: []Imputation{{Field: "color", Strategy: StrategyMean}}},
			want:    ErrNotNumeric,
			field:   "color",
		},
		{
			name:    "constant without value",
			catalog: Catalog{Impute: []Imputation{{Field: "color", Strategy: StrategyConstant}}},
			want:    ErrInvalidDirective,
			field:   "color",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(people(), tt.catalog)
			require.ErrorIs(t, err, tt.want)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			assert.NotEmpty(t, Hint(err))
		})
	}
}

func TestValidate_FirstViolationInKindOrder(t *testing.T) {
	c := Catalog{
		Impute: []Imputation{{Field: "nope", Strategy: StrategyMean}},
		OneHot: []OneHotEncoding{{Field: "also_nope"}},
		Age:    []AgeDerivation{{SourceField: "name", NewField: "age"}},
	}
	var ve *ValidationError
	require.True(t, errors.As(Validate(people(), c), &ve))
	assert.Equal(t, KindAge, ve.Kind)
}

func TestValidate_DoesNotModifyDataset(t *testing.T) {
	ds := people()
	before := ds.Names()
	err := Validate(ds, Catalog{Age: []AgeDerivation{{SourceField: "name", NewField: "age"}}})
	require.ErrorIs(t, err, ErrFieldMissingOrNotDate)
	assert.Equal(t, before, ds.Names())
	col, _ := ds.Column("name")
	assert.Equal(t, []any{"ann", "bob", "cy"}, col.Values)
}

// Validation runs against the input dataset, so a field produced by an
// earlier kind is not visible to later kinds.
func TestValidate_AgainstOriginalColumns(t *testing.T) {
	c := Catalog{
		Age:    []AgeDerivation{{SourceField: "birthdate", NewField: "age"}},
		Impute: []Imputation{{Field: "age", Strategy: StrategyMean}},
	}
	require.ErrorIs(t, Validate(people(), c), ErrFieldMissing)
}

func TestValidate_InfiniteValuesAreNumeric(t *testing.T) {
	ds := dataset.MustFromColumns(
		&dataset.Column{Name: "score", Values: []any{1.0, math.Inf(1), nil}},
	)
	for _, st := range []Strategy{StrategyMean, StrategyMedian} {
		t.Run(string(st), func(t *testing.T) {
			c := Catalog{Impute: []Imputation{{Field: "score", Strategy: st}}}
			require.NotPanics(t, func() {
				require.NoError(t, Validate(ds, c))
			})
		})
	}
}

func TestValidate_ChecksEverySpecKind(t *testing.T) {
	ds := people()
	for _, c := range []Catalog{
		{Age: []AgeDerivation{{SourceField: "birthdate", NewField: "age"}, {SourceField: "color", NewField: "x"}}},
		{OneHot: []OneHotEncoding{{Field: "color"}, {Field: "gone"}}},
		{Impute: []Imputation{{Field: "score", Strategy: StrategyMean}, {Field: "empty", Strategy: StrategyMode}}},
	} {
		var ve *ValidationError
		require.True(t, errors.As(Validate(ds, c), &ve))
		assert.Equal(t, c.Specs()[1].Kind(), ve.Kind)
		assert.Equal(t, c.Specs()[1].Target(), ve.Field)
	}
}
