// Package jsonl writes one JSON object per row, keys in column order.
package jsonl

import (
	"bufio"
	"context"
	"fmt"

	"tabetl/internal/dataset"
	"tabetl/sink"
)

type driver struct {
	cfg sink.FileConfig
}

func (d *driver) Configure(raw any) error {
	c, err := sink.FileConfigOf("jsonl", raw)
	if err != nil {
		return err
	}
	d.cfg = c
	return nil
}

func (d *driver) Write(ctx context.Context, ds *dataset.Dataset) error {
	f, err := sink.CreateFile(d.cfg.Path)
	if err != nil {
		return fmt.Errorf("jsonl-sink: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var line []byte
	for i := 0; i < ds.Len(); i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		line, err = ds.AppendRowJSON(line[:0], i)
		if err != nil {
			return fmt.Errorf("jsonl-sink: row %d: %w", i, err)
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return fmt.Errorf("jsonl-sink: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("jsonl-sink: %w", err)
	}
	return f.Close()
}

func (d *driver) Close() error { return nil }

func init() {
	sink.Register("jsonl", func() sink.Adapter { return &driver{} })
}
