package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"tabetl/internal/dataset"
)

// FileConfig is what the csv, jsonl and parquet drivers take.
type FileConfig struct {
	Path string
}

// Adapter is the common behaviour every sink exposes.
type Adapter interface {
	Configure(any) error                            // driver-specific config ⇒ struct
	Write(context.Context, *dataset.Dataset) error // consume the whole result
	Close() error                                  // idempotent
}

// CreateFile opens path for writing, creating its directory first.
func CreateFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return os.Create(path)
}

// FileConfigOf is the shared Configure body of the file drivers.
func FileConfigOf(name string, raw any) (FileConfig, error) {
	c, ok := raw.(FileConfig)
	if !ok {
		return FileConfig{}, fmt.Errorf("%s-sink: expected FileConfig, got %T", name, raw)
	}
	if c.Path == "" {
		return FileConfig{}, fmt.Errorf("%s-sink: empty path", name)
	}
	return c, nil
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q", name)
}
