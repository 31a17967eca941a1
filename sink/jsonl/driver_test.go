package jsonl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabetl/internal/dataset"
	"tabetl/sink"
)

func TestWrite_OrderedObjects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "output.jsonl")
	ds := dataset.MustFromColumns(
		&dataset.Column{Name: "name", Values: []any{"ann", nil}},
		&dataset.Column{Name: "is_red", Values: []any{int64(1), int64(0)}},
	)

	a, err := sink.NewAdapter("jsonl")
	require.NoError(t, err)
	require.NoError(t, a.Configure(sink.FileConfig{Path: path}))
	require.NoError(t, a.Write(context.Background(), ds))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"name\":\"ann\",\"is_red\":1}\n{\"name\":null,\"is_red\":0}\n", string(got))
}

func TestWrite_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := &driver{}
	require.NoError(t, d.Configure(sink.FileConfig{Path: filepath.Join(t.TempDir(), "o.jsonl")}))
	ds := dataset.MustFromColumns(&dataset.Column{Name: "a", Values: []any{int64(1)}})
	require.ErrorIs(t, d.Write(ctx, ds), context.Canceled)
}
