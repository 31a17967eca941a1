package parquet

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabetl/internal/dataset"
	"tabetl/sink"
	"tabetl/source"
	_ "tabetl/source/parquet"
)

func TestWrite_RoundTripsThroughSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "output.parquet")
	ts := time.Date(1999, 12, 31, 23, 0, 0, 0, time.UTC)
	ds := dataset.MustFromColumns(
		&dataset.Column{Name: "age", Values: []any{int64(24), nil}},
		&dataset.Column{Name: "score", Values: []any{int64(10), 20.5}},
		&dataset.Column{Name: "ok", Values: []any{true, false}},
		&dataset.Column{Name: "at", Values: []any{ts, nil}},
		&dataset.Column{Name: "mixed", Values: []any{"x", int64(3)}},
		&dataset.Column{Name: "empty", Values: []any{nil, nil}},
	)

	a, err := sink.NewAdapter("parquet")
	require.NoError(t, err)
	require.NoError(t, a.Configure(sink.FileConfig{Path: path}))
	require.NoError(t, a.Write(context.Background(), ds))
	require.NoError(t, a.Close())

	src, err := source.NewAdapter("parquet")
	require.NoError(t, err)
	require.NoError(t, src.Configure(source.Config{Path: path}))
	back, err := src.Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ds.Names(), back.Names())
	assert.Equal(t, []any{int64(24), 10.0, true, ts, "x", nil}, back.Row(0))
	assert.Equal(t, []any{nil, 20.5, false, nil, "3", nil}, back.Row(1))
}
