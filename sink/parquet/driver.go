// Package parquet writes a dataset as a single-row-group Parquet file via
// Arrow. Column types follow the column kind; mixed and all-null columns
// are written as strings.
package parquet

import (
	"context"
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	pq "github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"

	"tabetl/internal/dataset"
	"tabetl/sink"
)

const chunkSize = 64 * 1024

type driver struct {
	cfg sink.FileConfig
	mem memory.Allocator
}

func (d *driver) Configure(raw any) error {
	c, err := sink.FileConfigOf("parquet", raw)
	if err != nil {
		return err
	}
	d.cfg = c
	if d.mem == nil {
		d.mem = memory.DefaultAllocator
	}
	return nil
}

func (d *driver) Write(ctx context.Context, ds *dataset.Dataset) error {
	tbl, err := ToTable(d.mem, ds)
	if err != nil {
		return fmt.Errorf("parquet-sink: %w", err)
	}
	defer tbl.Release()
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := sink.CreateFile(d.cfg.Path)
	if err != nil {
		return fmt.Errorf("parquet-sink: %w", err)
	}
	// the parquet writer closes f
	defer f.Close()

	if err := pqarrow.WriteTable(tbl, f, chunkSize, pq.NewWriterProperties(), pqarrow.DefaultWriterProps()); err != nil {
		return fmt.Errorf("parquet-sink: %s: %w", d.cfg.Path, err)
	}
	return nil
}

func (d *driver) Close() error { return nil }

// ToTable builds an Arrow table from ds. The caller releases it.
func ToTable(mem memory.Allocator, ds *dataset.Dataset) (arrow.Table, error) {
	cols := ds.Columns()
	fields := make([]arrow.Field, len(cols))
	for j, c := range cols {
		fields[j] = arrow.Field{Name: c.Name, Type: arrowType(c.Kind()), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	for j, c := range cols {
		if err := appendColumn(b.Field(j), c); err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
	}
	rec := b.NewRecord()
	defer rec.Release()
	return array.NewTableFromRecords(schema, []arrow.Record{rec}), nil
}

func arrowType(k dataset.Kind) arrow.DataType {
	switch k {
	case dataset.KindInt:
		return arrow.PrimitiveTypes.Int64
	case dataset.KindFloat:
		return arrow.PrimitiveTypes.Float64
	case dataset.KindBool:
		return arrow.FixedWidthTypes.Boolean
	case dataset.KindTime:
		return arrow.FixedWidthTypes.Timestamp_us
	default:
		return arrow.BinaryTypes.String
	}
}

func appendColumn(fb array.Builder, c *dataset.Column) error {
	for _, v := range c.Values {
		if dataset.IsNull(v) {
			fb.AppendNull()
			continue
		}
		switch b := fb.(type) {
		case *array.Int64Builder:
			b.Append(v.(int64))
		case *array.Float64Builder:
			f, _ := dataset.ToFloat(v)
			b.Append(f)
		case *array.BooleanBuilder:
			b.Append(v.(bool))
		case *array.TimestampBuilder:
			t, err := dataset.ParseTime(v)
			if err != nil {
				return err
			}
			b.Append(arrow.Timestamp(t.UnixMicro()))
		case *array.StringBuilder:
			b.Append(dataset.Format(v))
		default:
			return fmt.Errorf("unsupported builder %T", fb)
		}
	}
	return nil
}

func init() {
	sink.Register("parquet", func() sink.Adapter { return &driver{} })
}
