package transform

import (
	"fmt"
	"time"

	"tabetl/internal/dataset"
)

// Stage applies every spec of one kind. Apply takes ownership of its input
// and returns the next dataset; the input is left untouched on error.
type Stage struct {
	Kind  Kind
	Specs int
	Apply func(*dataset.Dataset) (*dataset.Dataset, error)
}

// Stages returns the executor steps in their fixed order: age derivation,
// one-hot encoding, imputation. now is the single reference instant for
// every age computed in the run. Kinds with no specs are omitted.
func Stages(c Catalog, now time.Time) []Stage {
	var out []Stage
	if len(c.Age) > 0 {
		out = append(out, Stage{Kind: KindAge, Specs: len(c.Age), Apply: func(ds *dataset.Dataset) (*dataset.Dataset, error) {
			return DeriveAge(ds, c.Age, now)
		}})
	}
	if len(c.OneHot) > 0 {
		out = append(out, Stage{Kind: KindOneHot, Specs: len(c.OneHot), Apply: func(ds *dataset.Dataset) (*dataset.Dataset, error) {
			return OneHot(ds, c.OneHot)
		}})
	}
	if len(c.Impute) > 0 {
		out = append(out, Stage{Kind: KindImpute, Specs: len(c.Impute), Apply: func(ds *dataset.Dataset) (*dataset.Dataset, error) {
			return Impute(ds, c.Impute)
		}})
	}
	return out
}

// Apply runs all stages in order. Callers are expected to Validate first.
func Apply(ds *dataset.Dataset, c Catalog, now time.Time) (*dataset.Dataset, error) {
	for _, st := range Stages(c, now) {
		next, err := st.Apply(ds)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", st.Kind, err)
		}
		ds = next
	}
	return ds, nil
}

// column fetches a column that validation should have guaranteed.
func column(ds *dataset.Dataset, k Kind, name string) (*dataset.Column, error) {
	col, ok := ds.Column(name)
	if !ok {
		return nil, &ValidationError{Kind: k, Field: name, Err: ErrFieldMissing, Detail: "dropped by an earlier transform"}
	}
	return col, nil
}
