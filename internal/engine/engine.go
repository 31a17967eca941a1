package engine

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"tabetl/internal/config"
	"tabetl/internal/logging"
	"tabetl/internal/pipeline"
	"tabetl/internal/spec"
	"tabetl/internal/telemetry"
	"tabetl/internal/transport"
)

const shutdownTimeout = 5 * time.Second

type Engine struct {
	cfg  Config
	spec spec.File

	transport  *transport.Server
	metricsSrv *http.Server
	tracer     *telemetry.Tracer
	metrics    *telemetry.Metrics

	mu   sync.Mutex // one run at a time
	last pipeline.Report
}

// Run executes the pipeline once. In watch mode it keeps serving and
// reruns on every change to the pipeline file until ctx is done; a failed
// run only flips health to NOT_SERVING.
func (e *Engine) Run(ctx context.Context) error {
	defer e.shutdown()

	if e.transport != nil {
		go func() {
			if err := e.transport.Serve(); err != nil {
				logging.L().Error("health server stopped", "err", err)
			}
		}()
	}

	if !e.cfg.Watch {
		return e.runSpec(ctx, e.spec)
	}

	// watch before the first run so no edit is missed
	w, err := config.NewWatcher(e.cfg.PipelinePath,
		func(f spec.File) { _ = e.runSpec(ctx, f) },
		func(error) { e.setServing(false) },
	)
	if err != nil {
		return err
	}
	_ = e.runSpec(ctx, e.spec)
	logging.L().Info("watching pipeline file", "path", e.cfg.PipelinePath)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// HealthAddr is the bound health server address, or "" when disabled.
func (e *Engine) HealthAddr() string {
	if e.transport == nil {
		return ""
	}
	return e.transport.Addr()
}

// LastReport returns the report of the most recent successful run.
func (e *Engine) LastReport() pipeline.Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

func (e *Engine) runSpec(ctx context.Context, f spec.File) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := pipeline.Build(f)
	if err != nil {
		logging.L().Error("pipeline build failed", "err", err)
		e.setServing(false)
		return err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil {
			logging.L().Warn("sink close failed", "err", cerr)
		}
	}()
	r.SetMetrics(e.metrics)
	r.SetTracer(e.tracer.Trace())

	rep, err := r.Run(ctx)
	e.setServing(err == nil)
	if err != nil {
		return err
	}
	e.last = rep
	return nil
}

func (e *Engine) setServing(ok bool) {
	if e.transport != nil {
		e.transport.SetServing(ok)
	}
}

func (e *Engine) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if e.transport != nil {
		e.transport.Stop()
	}
	if e.metricsSrv != nil {
		_ = e.metricsSrv.Shutdown(ctx)
	}
	if err := e.tracer.Shutdown(ctx); err != nil {
		logging.L().Warn("tracer shutdown failed", "err", err)
	}
}
