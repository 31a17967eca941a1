package csv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabetl/internal/dataset"
	"tabetl/source"
)

func read(t *testing.T, body string) *dataset.Dataset {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	a, err := source.NewAdapter("csv")
	require.NoError(t, err)
	require.NoError(t, a.Configure(source.Config{Path: path}))
	ds, err := a.Read(context.Background())
	require.NoError(t, err)
	return ds
}

func TestRead_DetectsTypesAndNulls(t *testing.T) {
	ds := read(t, "id,score,name,active,birthdate\n"+
		"1,10.5,ann,true,2000-01-01\n"+
		"2,,NA,false,\n"+
		"3,20,cy,true,1990-06-15\n")

	assert.Equal(t, []string{"id", "score", "name", "active", "birthdate"}, ds.Names())
	assert.Equal(t, 3, ds.Len())

	id, _ := ds.Column("id")
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, id.Values)

	score, _ := ds.Column("score")
	assert.Equal(t, []any{10.5, nil, 20.0}, score.Values)

	name, _ := ds.Column("name")
	assert.Equal(t, []any{"ann", nil, "cy"}, name.Values)

	active, _ := ds.Column("active")
	assert.Equal(t, dataset.KindBool, active.Kind())

	bd, _ := ds.Column("birthdate")
	assert.Equal(t, []any{"2000-01-01", nil, "1990-06-15"}, bd.Values)
}

func TestRead_MissingFile(t *testing.T) {
	a := &driver{}
	require.NoError(t, a.Configure(source.Config{Path: filepath.Join(t.TempDir(), "nope.csv")}))
	_, err := a.Read(context.Background())
	require.Error(t, err)
	require.Error(t, a.Configure(source.Config{}))
}
