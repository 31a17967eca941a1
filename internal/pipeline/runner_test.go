package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"tabetl/internal/dataset"
	"tabetl/internal/spec"
	"tabetl/internal/telemetry"
	"tabetl/internal/transform"
	"tabetl/source"
)

type fakeSource struct {
	ds  *dataset.Dataset
	err error
}

func (f *fakeSource) Configure(source.Config) error { return nil }
func (f *fakeSource) Read(context.Context) (*dataset.Dataset, error) {
	return f.ds, f.err
}

type captureSink struct {
	got    []*dataset.Dataset
	closed int
}

func (c *captureSink) Configure(any) error { return nil }
func (c *captureSink) Write(_ context.Context, ds *dataset.Dataset) error {
	c.got = append(c.got, ds)
	return nil
}
func (c *captureSink) Close() error { c.closed++; return nil }

func people() *dataset.Dataset {
	return dataset.MustFromColumns(
		&dataset.Column{Name: "birthdate", Values: []any{"2000-01-01", "1990-06-15"}},
		&dataset.Column{Name: "color", Values: []any{"red", nil}},
		&dataset.Column{Name: "score", Values: []any{int64(10), nil}},
	)
}

func catalog() transform.Catalog {
	return transform.Parse([]spec.Directive{
		{Transform: "fill_empty_values", Fields: []any{map[string]any{"field": "score", "value": "mean"}}},
		{Transform: "hot_encoding", Fields: []any{"color"}},
		{Transform: "birthdate_to_age", Fields: []any{map[string]any{"field": "birthdate", "new_field": "age"}}},
	})
}

func newTestRunner(src source.Adapter, out *captureSink) (*Runner, *tracetest.SpanRecorder, *telemetry.Metrics) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	m := telemetry.NewMetrics(prometheus.NewRegistry())

	r := NewRunner()
	r.SetSource(src)
	r.AddSink("capture", out)
	r.SetTracer(tp.Tracer("test"))
	r.SetMetrics(m)
	r.SetClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) })
	return r, sr, m
}

func TestRunner_RunsStagesInFixedOrder(t *testing.T) {
	out := &captureSink{}
	in := people()
	r, sr, m := newTestRunner(&fakeSource{ds: in}, out)
	r.SetCatalog(catalog())

	rep, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, 2, rep.RowsIn)
	assert.Equal(t, 2, rep.RowsOut)
	assert.Equal(t, []transform.Kind{transform.KindAge, transform.KindOneHot, transform.KindImpute}, rep.Stages)
	assert.Equal(t, []string{"score", "age", "is_red", "is_NULL"}, rep.Columns)

	require.Len(t, out.got, 1)
	score, _ := out.got[0].Column("score")
	assert.Equal(t, []any{10.0, 10.0}, score.Values)
	age, _ := out.got[0].Column("age")
	assert.Equal(t, []any{int64(24), int64(33)}, age.Values)

	// source dataset untouched
	assert.Equal(t, []string{"birthdate", "color", "score"}, in.Names())

	var names []string
	for _, s := range sr.Ended() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{
		"pipeline.read", "pipeline.validate",
		"pipeline.birthdate_to_age", "pipeline.hot_encoding", "pipeline.fill_empty_values",
		"pipeline.write", "pipeline.run",
	}, names)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsRead))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsWritten.WithLabelValues("capture")))
}

func TestRunner_ValidationFailureWritesNothing(t *testing.T) {
	out := &captureSink{}
	r, _, m := newTestRunner(&fakeSource{ds: people()}, out)
	r.SetCatalog(transform.Parse([]spec.Directive{
		{Transform: "hot_encoding", Fields: []any{"missing"}},
	}))

	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, transform.ErrFieldMissing)
	assert.Empty(t, out.got)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("field_missing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("failed")))
}

func TestRunner_ReadError(t *testing.T) {
	boom := errors.New("boom")
	out := &captureSink{}
	r, sr, _ := newTestRunner(&fakeSource{err: boom}, out)

	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Empty(t, out.got)

	spans := sr.Ended()
	require.NotEmpty(t, spans)
	assert.Equal(t, "pipeline.run", spans[len(spans)-1].Name())
	assert.Equal(t, "Error", spans[len(spans)-1].Status().Code.String())
}

func TestRunner_NoSource(t *testing.T) {
	_, err := NewRunner().Run(context.Background())
	require.Error(t, err)
}

func TestRunner_EmptyCatalogPassesThrough(t *testing.T) {
	out := &captureSink{}
	in := people()
	r, _, _ := newTestRunner(&fakeSource{ds: in}, out)

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rep.Stages)
	require.Len(t, out.got, 1)
	assert.Same(t, in, out.got[0])

	require.NoError(t, r.Close())
	assert.Equal(t, 1, out.closed)
}

func TestCompile_EndToEndCSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "input.csv"),
		[]byte("birthdate,color,score\n2000-01-01,red,10\n1990-06-15,,\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{
  "source": {"path": "data", "dataset": "input", "format": "csv"},
  "sink": {"path": "out", "dataset": "output", "format": "csv"},
  "transforms": [
    {"transform": "birthdate_to_age", "fields": [{"field": "birthdate", "new_field": "age"}]},
    {"transform": "hot_encoding", "fields": ["color"]},
    {"transform": "fill_empty_values", "fields": [{"field": "score", "value": "mean"}]},
    {"transform": "rename_columns", "fields": []}
  ]
}`), 0o644))

	r, err := Compile(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, []string{"rename_columns"}, r.Catalog().Skipped)
	r.SetClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) })

	_, err = r.Run(context.Background())
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dir, "out", "output.csv"))
	require.NoError(t, err)
	assert.Equal(t, "score,age,is_red,is_NULL\n10,24,1,0\n10,33,0,1\n", string(got))
}

func TestCompile_Errors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "input.csv"), []byte("a\n1\n"), 0o644))
	base := spec.File{
		Source: spec.Dataset{Path: dir, Dataset: "input", Format: "csv"},
		Sink:   spec.Dataset{Path: dir, Dataset: "output", Format: "jsonl"},
	}

	_, err := Build(base)
	require.NoError(t, err)

	bad := base
	bad.Sinks = []string{"carrier-pigeon"}
	_, err = Build(bad)
	require.Error(t, err)

	missing := base
	missing.Source.Dataset = "nope"
	_, err = Build(missing)
	require.Error(t, err)
}
