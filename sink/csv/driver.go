// Package csv writes a dataset as a header row plus one record per row.
// Nulls are empty cells.
package csv

import (
	"context"
	stdcsv "encoding/csv"
	"fmt"

	"tabetl/internal/dataset"
	"tabetl/sink"
)

type driver struct {
	cfg sink.FileConfig
}

func (d *driver) Configure(raw any) error {
	c, err := sink.FileConfigOf("csv", raw)
	if err != nil {
		return err
	}
	d.cfg = c
	return nil
}

func (d *driver) Write(ctx context.Context, ds *dataset.Dataset) error {
	f, err := sink.CreateFile(d.cfg.Path)
	if err != nil {
		return fmt.Errorf("csv-sink: %w", err)
	}
	defer f.Close()

	w := stdcsv.NewWriter(f)
	if err := w.Write(ds.Names()); err != nil {
		return fmt.Errorf("csv-sink: %w", err)
	}
	cols := ds.Columns()
	rec := make([]string, len(cols))
	for i := 0; i < ds.Len(); i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for j, c := range cols {
			rec[j] = dataset.Format(c.Values[i])
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("csv-sink: row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv-sink: %w", err)
	}
	return f.Close()
}

func (d *driver) Close() error { return nil }

func init() {
	sink.Register("csv", func() sink.Adapter { return &driver{} })
}
