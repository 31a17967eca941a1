package source

import (
	"context"
	"fmt"

	"tabetl/internal/dataset"
)

// Config locates the input dataset.
type Config struct {
	Path string
}

// Adapter reads a whole dataset into memory.
type Adapter interface {
	Configure(Config) error
	Read(context.Context) (*dataset.Dataset, error)
}

/*──────── registry ───────*/

// Factory builds an Adapter (csv, jsonl, parquet, …).
type Factory func() Adapter

var registry = map[string]Factory{}

// Register is called from each driver's init().
func Register(format string, f Factory) {
	registry[format] = f
}

// NewAdapter returns a driver by format name.
func NewAdapter(format string) (Adapter, error) {
	if f, ok := registry[format]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("source: unsupported format %q", format)
}
