// Package jsonl reads newline-delimited JSON objects. Keys become columns
// in order of first appearance; rows missing a key read as null, and blank
// strings read as null.
package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"tabetl/internal/dataset"
	"tabetl/source"
)

const maxLine = 16 << 20

type driver struct {
	cfg source.Config
}

func (d *driver) Configure(c source.Config) error {
	if c.Path == "" {
		return fmt.Errorf("jsonl-source: empty path")
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
	return Decode(ctx, f)
}

// Decode reads JSON lines from r into a dataset.
func Decode(ctx context.Context, r io.Reader) (*dataset.Dataset, error) {
	var (
		order []string
		cols  = map[string][]any{}
		rows  int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		keys, vals, err := decodeObject(raw)
		if err != nil {
			return nil, fmt.Errorf("jsonl-source: line %d: %w", line, err)
		}
		for i, k := range keys {
			col, seen := cols[k]
			if !seen {
				order = append(order, k)
				col = make([]any, rows)
			}
			// a repeated key within one line keeps the last value
			if len(col) == rows+1 {
				col[rows] = vals[i]
			} else {
				col = append(col, vals[i])
			}
			cols[k] = col
		}
		rows++
		for _, k := range order {
			if len(cols[k]) < rows {
				cols[k] = append(cols[k], nil)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("jsonl-source: %w", err)
	}

	out := make([]*dataset.Column, 0, len(order))
	for _, k := range order {
		out = append(out, &dataset.Column{Name: k, Values: cols[k]})
	}
	if len(out) == 0 {
		return dataset.New(rows), nil
	}
	return dataset.FromColumns(out...)
}

// decodeObject decodes one JSON object keeping key order.
func decodeObject(raw []byte) ([]string, []any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}
	var (
		keys []string
		vals []any
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		vals = append(vals, cellValue(v))
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, vals, nil
}

func cellValue(v any) any {
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	return dataset.Normalize(v)
}

func init() {
	source.Register("jsonl", func() source.Adapter { return &driver{} })
}
