package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tabetl/internal/dataset"
	"tabetl/internal/logging"
	"tabetl/internal/spec"
	"tabetl/internal/telemetry"
	"tabetl/internal/transform"
	"tabetl/sink"
	"tabetl/source"
)

const tracerName = "tabetl/pipeline"

// Report summarises one run.
type Report struct {
	RunID    string
	RowsIn   int
	RowsOut  int
	Columns  []string
	Stages   []transform.Kind
	Duration time.Duration
}

type namedSink struct {
	name string
	sink.Adapter
}

// Runner executes one pipeline: read, validate, transform, write.
type Runner struct {
	spec    spec.File
	source  source.Adapter
	sinks   []namedSink
	catalog transform.Catalog

	tracer  trace.Tracer
	metrics *telemetry.Metrics
	now     func() time.Time
}

func NewRunner() *Runner {
	return &Runner{
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
}

func (r *Runner) SetSource(s source.Adapter)          { r.source = s }
func (r *Runner) AddSink(name string, s sink.Adapter) { r.sinks = append(r.sinks, namedSink{name, s}) }
func (r *Runner) SetCatalog(c transform.Catalog)      { r.catalog = c }
func (r *Runner) SetMetrics(m *telemetry.Metrics)     { r.metrics = m }
func (r *Runner) SetTracer(t trace.Tracer)            { r.tracer = t }
func (r *Runner) SetClock(now func() time.Time)       { r.now = now }
func (r *Runner) Spec() spec.File                     { return r.spec }
func (r *Runner) Catalog() transform.Catalog          { return r.catalog }

// Close releases every sink; the first error wins.
func (r *Runner) Close() error {
	var first error
	for _, s := range r.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = fmt.Errorf("close sink %s: %w", s.name, err)
		}
	}
	return first
}

// Run executes the pipeline once. Validation happens before any transform,
// so a failing directive leaves every sink untouched.
func (r *Runner) Run(ctx context.Context) (rep Report, err error) {
	if r.source == nil {
		return rep, errors.New("runner: no source configured")
	}
	begin := time.Now()
	rep.RunID = uuid.NewString()
	log := logging.With("run_id", rep.RunID)

	ctx, span := r.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("run_id", rep.RunID),
		attribute.Int("transforms", r.catalog.Len()),
	))
	defer func() {
		rep.Duration = time.Since(begin)
		status := "ok"
		if err != nil {
			status = "failed"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if r.metrics != nil {
			r.metrics.Runs.WithLabelValues(status).Inc()
		}
	}()

	var ds *dataset.Dataset
	err = r.step(ctx, "read", func(ctx context.Context) error {
		var rerr error
		ds, rerr = r.source.Read(ctx)
		return rerr
	})
	if err != nil {
		log.Error("read failed", "err", err)
		return rep, fmt.Errorf("read: %w", err)
	}
	rep.RowsIn = ds.Len()
	if r.metrics != nil {
		r.metrics.RowsRead.Add(float64(ds.Len()))
	}
	log.Info("dataset read", "rows", ds.Len(), "columns", ds.Width())

	err = r.step(ctx, "validate", func(context.Context) error {
		return transform.Validate(ds, r.catalog)
	})
	if err != nil {
		if r.metrics != nil {
			r.metrics.ValidationFailures.WithLabelValues(transform.Reason(err)).Inc()
		}
		log.Error("validation failed", "err", err, "hint", transform.Hint(err))
		return rep, err
	}

	now := r.now()
	for _, st := range transform.Stages(r.catalog, now) {
		err = r.step(ctx, string(st.Kind), func(context.Context) error {
			next, aerr := st.Apply(ds)
			if aerr != nil {
				return aerr
			}
			ds = next
			return nil
		})
		if err != nil {
			log.Error("transform failed", "transform", st.Kind, "err", err)
			return rep, fmt.Errorf("%s: %w", st.Kind, err)
		}
		rep.Stages = append(rep.Stages, st.Kind)
		log.Info("transform completed", "transform", st.Kind, "specs", st.Specs)
	}

	for _, s := range r.sinks {
		err = r.step(ctx, "write", func(ctx context.Context) error {
			trace.SpanFromContext(ctx).SetAttributes(attribute.String("sink", s.name))
			return s.Write(ctx, ds)
		})
		if err != nil {
			log.Error("write failed", "sink", s.name, "err", err)
			return rep, fmt.Errorf("write %s: %w", s.name, err)
		}
		if r.metrics != nil {
			r.metrics.RowsWritten.WithLabelValues(s.name).Add(float64(ds.Len()))
		}
	}

	rep.RowsOut = ds.Len()
	rep.Columns = ds.Names()
	log.Info("pipeline completed", "rows", rep.RowsOut, "columns", len(rep.Columns), "elapsed", time.Since(begin))
	return rep, nil
}

func (r *Runner) step(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := r.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	begin := time.Now()
	err := fn(ctx)
	if r.metrics != nil {
		r.metrics.StageDuration.WithLabelValues(name).Observe(time.Since(begin).Seconds())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
