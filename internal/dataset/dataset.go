// Package dataset is the in-memory table the transformation engine works on.
//
// A Dataset is an ordered list of named columns of equal length. Values are
// plain Go values (int64, float64, string, bool, time.Time); nil marks a
// missing value. Sources build datasets, transform stages consume and return
// them, sinks write them out.
package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrLengthMismatch = errors.New("dataset: column length mismatch")
	ErrDuplicateName  = errors.New("dataset: duplicate column name")
)

// Column is a named sequence of values. Callers must treat Values as
// read-only once the column belongs to a Dataset; replace the column instead.
type Column struct {
	Name   string
	Values []any
}

// Kind reports the column's value kind derived from its non-null values.
func (c *Column) Kind() Kind { return KindOf(c.Values) }

// Nulls counts missing values.
func (c *Column) Nulls() int {
	n := 0
	for _, v := range c.Values {
		if IsNull(v) {
			n++
		}
	}
	return n
}

type Dataset struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New returns an empty dataset with a fixed row count.
func New(rows int) *Dataset {
	return &Dataset{index: map[string]int{}, rows: rows}
}

// FromColumns builds a dataset, enforcing equal lengths and unique names.
func FromColumns(cols ...*Column) (*Dataset, error) {
	rows := 0
	if len(cols) > 0 {
		rows = len(cols[0].Values)
	}
	d := New(rows)
	for _, c := range cols {
		if _, dup := d.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, c.Name)
		}
		if err := d.Set(c.Name, c.Values); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// MustFromColumns is FromColumns for fixtures; it panics on error.
func MustFromColumns(cols ...*Column) *Dataset {
	d, err := FromColumns(cols...)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Dataset) Len() int   { return d.rows }
func (d *Dataset) Width() int { return len(d.cols) }

// Names returns column names in order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Name
	}
	return out
}

func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cols[i], true
}

// Columns returns the column list in order. The slice is a copy; the
// columns are shared.
func (d *Dataset) Columns() []*Column {
	return append([]*Column(nil), d.cols...)
}

// Set replaces the named column in place or appends it when new.
func (d *Dataset) Set(name string, values []any) error {
	if len(values) != d.rows {
		return fmt.Errorf("%w: %q has %d values, want %d", ErrLengthMismatch, name, len(values), d.rows)
	}
	col := &Column{Name: name, Values: values}
	if i, ok := d.index[name]; ok {
		d.cols[i] = col
		return nil
	}
	d.index[name] = len(d.cols)
	d.cols = append(d.cols, col)
	return nil
}

// Drop removes the named column and reports whether it existed.
func (d *Dataset) Drop(name string) bool {
	i, ok := d.index[name]
	if !ok {
		return false
	}
	d.cols = append(d.cols[:i:i], d.cols[i+1:]...)
	delete(d.index, name)
	for j := i; j < len(d.cols); j++ {
		d.index[d.cols[j].Name] = j
	}
	return true
}

// Row returns the values of row i in column order.
func (d *Dataset) Row(i int) []any {
	out := make([]any, len(d.cols))
	for j, c := range d.cols {
		out[j] = c.Values[i]
	}
	return out
}

// Clone copies the column list but shares value slices. Stages mutate the
// clone's column list and install fresh value slices, so the original
// dataset is never observed half-transformed.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		cols:  make([]*Column, len(d.cols)),
		index: make(map[string]int, len(d.index)),
		rows:  d.rows,
	}
	copy(out.cols, d.cols)
	for k, v := range d.index {
		out.index[k] = v
	}
	return out
}
