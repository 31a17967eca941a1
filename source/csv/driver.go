// Package csv reads comma-separated files with a header row. Column types
// are detected from the data (int, float, bool, otherwise string); dates
// stay strings until a transform coerces them.
package csv

import (
	"context"
	"fmt"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"tabetl/internal/dataset"
	"tabetl/source"
)

// NAValues are read as missing.
var NAValues = []string{"", "NA", "N/A", "n/a", "NaN", "nan", "NULL", "null", "None", "#N/A"}

type driver struct {
	cfg source.Config
}

func (d *driver) Configure(c source.Config) error {
	if c.Path == "" {
		return fmt.Errorf("csv-source: empty path")
	}
	d.cfg = c
	return nil
}

func (d *driver) Read(ctx context.Context) (*dataset.Dataset, error) {
	f, err := os.Open(d.cfg.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(NAValues),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("csv-source: %s: %w", d.cfg.Path, df.Err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fromDataFrame(df)
}

func fromDataFrame(df dataframe.DataFrame) (*dataset.Dataset, error) {
	names := df.Names()
	cols := make([]*dataset.Column, 0, len(names))
	for _, name := range names {
		s := df.Col(name)
		vals := make([]any, s.Len())
		for i := range vals {
			vals[i] = elemValue(s.Type(), s.Elem(i))
		}
		cols = append(cols, &dataset.Column{Name: name, Values: vals})
	}
	return dataset.FromColumns(cols...)
}

func elemValue(t series.Type, e series.Element) any {
	if e.IsNA() {
		return nil
	}
	switch t {
	case series.Int:
		if v, err := e.Int(); err == nil {
			return int64(v)
		}
		return nil
	case series.Float:
		return e.Float()
	case series.Bool:
		if v, err := e.Bool(); err == nil {
			return v
		}
		return nil
	default:
		return e.String()
	}
}

func init() {
	source.Register("csv", func() source.Adapter { return &driver{} })
}
