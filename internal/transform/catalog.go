package transform

import (
	"fmt"

	"tabetl/internal/dataset"
	"tabetl/internal/spec"
)

// Kind names a transform as it appears in configuration.
type Kind string

const (
	KindAge    Kind = "birthdate_to_age"
	KindOneHot Kind = "hot_encoding"
	KindImpute Kind = "fill_empty_values"
)

// Spec is implemented only by AgeDerivation, OneHotEncoding and Imputation.
type Spec interface {
	Kind() Kind
	Target() string
	sealed()
}

type AgeDerivation struct {
	SourceField string
	NewField    string
}

type OneHotEncoding struct {
	Field string
}

type Strategy string

const (
	StrategyMean     Strategy = "mean"
	StrategyMedian   Strategy = "median"
	StrategyMode     Strategy = "mode"
	StrategyConstant Strategy = "constant"
)

// Aggregate reports whether the fill value is computed from the column.
func (s Strategy) Aggregate() bool {
	return s == StrategyMean || s == StrategyMedian || s == StrategyMode
}

type Imputation struct {
	Field    string
	Strategy Strategy
	Fill     any // literal for StrategyConstant
	HasFill  bool
}

func (AgeDerivation) Kind() Kind  { return KindAge }
func (OneHotEncoding) Kind() Kind { return KindOneHot }
func (Imputation) Kind() Kind     { return KindImpute }

func (s AgeDerivation) Target() string  { return s.SourceField }
func (s OneHotEncoding) Target() string { return s.Field }
func (s Imputation) Target() string     { return s.Field }

func (AgeDerivation) sealed()  {}
func (OneHotEncoding) sealed() {}
func (Imputation) sealed()     {}

// Catalog groups specs by kind. It is built once by Parse and not modified.
type Catalog struct {
	Age    []AgeDerivation
	OneHot []OneHotEncoding
	Impute []Imputation

	// Skipped lists directive kinds Parse did not recognise.
	Skipped []string
}

func (c Catalog) Len() int { return len(c.Age) + len(c.OneHot) + len(c.Impute) }

// Specs returns every spec in execution order.
func (c Catalog) Specs() []Spec {
	out := make([]Spec, 0, c.Len())
	for _, s := range c.Age {
		out = append(out, s)
	}
	for _, s := range c.OneHot {
		out = append(out, s)
	}
	for _, s := range c.Impute {
		out = append(out, s)
	}
	return out
}

// Parse buckets directives by kind. Directives of the same kind are
// concatenated in configuration order; unknown kinds are skipped. Entry
// shapes are not checked here: a malformed entry yields a spec with empty
// names, which Validate rejects.
func Parse(directives []spec.Directive) Catalog {
	var c Catalog
	for _, d := range directives {
		switch Kind(d.Transform) {
		case KindAge:
			for _, f := range d.Fields {
				m := asMap(f)
				c.Age = append(c.Age, AgeDerivation{
					SourceField: asString(m["field"]),
					NewField:    asString(m["new_field"]),
				})
			}
		case KindOneHot:
			for _, f := range d.Fields {
				c.OneHot = append(c.OneHot, OneHotEncoding{Field: asString(f)})
			}
		case KindImpute:
			for _, f := range d.Fields {
				c.Impute = append(c.Impute, parseImputation(asMap(f)))
			}
		default:
			c.Skipped = append(c.Skipped, d.Transform)
		}
	}
	return c
}

func parseImputation(m map[string]any) Imputation {
	imp := Imputation{Field: asString(m["field"])}
	raw, ok := m["value"]
	if s, isStr := raw.(string); isStr {
		switch st := Strategy(s); st {
		case StrategyMean, StrategyMedian, StrategyMode:
			imp.Strategy = st
			return imp
		}
	}
	imp.Strategy = StrategyConstant
	imp.Fill = dataset.Normalize(raw)
	imp.HasFill = ok && raw != nil
	return imp
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out
	}
	return nil
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
