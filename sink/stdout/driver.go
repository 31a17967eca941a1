// tabetl/sink/stdout/driver.go
package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"tabetl/internal/dataset"
	"tabetl/sink"
)

/* ────────── public config ────────── */
type Config struct {
	MaxRows      int  `yaml:"max_rows"`      // 0 = every row
	PrintCounter bool `yaml:"print_counter"` // prepend seq#

	Out io.Writer `yaml:"-"` // defaults to os.Stdout
}

/* ────────── driver ────────── */
type driver struct {
	cfg Config
	mu  sync.Mutex // serialises writes to cfg.Out
}

var seq uint64

/* ────────── sink.Adapter ────────── */
func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("stdout-sink: negative max_rows %d", c.MaxRows)
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	d.cfg = c
	return nil
}

func (d *driver) Write(ctx context.Context, ds *dataset.Dataset) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := ds.Len()
	if d.cfg.MaxRows > 0 && n > d.cfg.MaxRows {
		n = d.cfg.MaxRows
	}
	var line []byte
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		line = line[:0]
		if d.cfg.PrintCounter {
			line = fmt.Appendf(line, "[sink %06d] ", atomic.AddUint64(&seq, 1))
		}
		var err error
		line, err = ds.AppendRowJSON(line, i)
		if err != nil {
			return fmt.Errorf("stdout-sink: row %d: %w", i, err)
		}
		line = append(line, '\n')
		if _, err := d.cfg.Out.Write(line); err != nil {
			return fmt.Errorf("stdout-sink: %w", err)
		}
	}
	if rest := ds.Len() - n; rest > 0 {
		if _, err := fmt.Fprintf(d.cfg.Out, "... %d more rows\n", rest); err != nil {
			return fmt.Errorf("stdout-sink: %w", err)
		}
	}
	return nil
}

func (d *driver) Close() error { return nil }

/* ────────── auto-register ────────── */
func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
