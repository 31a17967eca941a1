// Package parquet reads a Parquet file through Arrow. Integer columns come
// back as int64, floating columns as float64, timestamps and dates as
// time.Time in UTC; other types fall back to their string form.
package parquet

import (
	"context"
	"fmt"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	pq "github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"

	"tabetl/internal/dataset"
	"tabetl/source"
)

type driver struct {
	cfg source.Config
	mem memory.Allocator
}

func (d *driver) Configure(c source.Config) error {
	if c.Path == "" {
		return fmt.Errorf("parquet-source: empty path")
	}
	d.cfg = c
	if d.mem == nil {
		d.mem = memory.DefaultAllocator
	}
	return nil
}

func (d *driver) Read(ctx context.Context) (*dataset.Dataset, error) {
	f, err := os.Open(d.cfg.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tbl, err := pqarrow.ReadTable(ctx, f, pq.NewReaderProperties(d.mem), pqarrow.ArrowReadProperties{}, d.mem)
	if err != nil {
		return nil, fmt.Errorf("parquet-source: %s: %w", d.cfg.Path, err)
	}
	defer tbl.Release()
	return FromTable(tbl)
}

// FromTable copies an Arrow table into a dataset.
func FromTable(tbl arrow.Table) (*dataset.Dataset, error) {
	rows := int(tbl.NumRows())
	schema := tbl.Schema()
	cols := make([]*dataset.Column, 0, tbl.NumCols())
	for i := 0; i < int(tbl.NumCols()); i++ {
		vals := make([]any, 0, rows)
		for _, chunk := range tbl.Column(i).Data().Chunks() {
			for j := 0; j < chunk.Len(); j++ {
				vals = append(vals, cell(chunk, j))
			}
		}
		cols = append(cols, &dataset.Column{Name: schema.Field(i).Name, Values: vals})
	}
	if len(cols) == 0 {
		return dataset.New(rows), nil
	}
	return dataset.FromColumns(cols...)
}

func cell(arr arrow.Array, i int) any {
	if arr.IsNull(i) {
		return nil
	}
	switch a := arr.(type) {
	case *array.Int8:
		return int64(a.Value(i))
	case *array.Int16:
		return int64(a.Value(i))
	case *array.Int32:
		return int64(a.Value(i))
	case *array.Int64:
		return a.Value(i)
	case *array.Uint8:
		return int64(a.Value(i))
	case *array.Uint16:
		return int64(a.Value(i))
	case *array.Uint32:
		return int64(a.Value(i))
	case *array.Uint64:
		return int64(a.Value(i))
	case *array.Float32:
		return float64(a.Value(i))
	case *array.Float64:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC()
	case *array.Date32:
		return a.Value(i).ToTime().UTC()
	case *array.Date64:
		return a.Value(i).ToTime().UTC()
	default:
		return arr.ValueStr(i)
	}
}

func init() {
	source.Register("parquet", func() source.Adapter { return &driver{} })
}
