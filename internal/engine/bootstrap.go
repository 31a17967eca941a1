package engine

import (
	"context"
	"fmt"

	"tabetl/internal/config"
	"tabetl/internal/logging"
	"tabetl/internal/telemetry"
	"tabetl/internal/transport"
)

// Config is what the command line hands the engine.
type Config struct {
	PipelinePath string
	GRPCAddr     string // "" disables the health server
	MetricsAddr  string // "" disables /metrics
	Watch        bool   // rerun on pipeline file changes until ctx ends
}

func Bootstrap(ctx context.Context, cfg Config) (*Engine, error) {
	// 1. pipeline file
	spec, err := config.LoadPipelineSpec(cfg.PipelinePath)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	// 2. tracing
	tracer, err := telemetry.NewTracer(ctx, telemetry.TracerConfig{
		ServiceName:  spec.Telemetry.ServiceName,
		OTLPEndpoint: spec.Telemetry.OTLPEndpoint,
		SamplingRate: spec.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	e := &Engine{
		cfg:     cfg,
		spec:    spec,
		tracer:  tracer,
		metrics: telemetry.InitMetrics(nil),
	}

	// 3. transport server
	if cfg.GRPCAddr != "" {
		e.transport, err = transport.StartServer(cfg.GRPCAddr)
		if err != nil {
			_ = tracer.Shutdown(ctx)
			return nil, fmt.Errorf("transport: %w", err)
		}
		logging.L().Info("health server listening", "addr", e.transport.Addr())
	}

	// 4. metrics
	if cfg.MetricsAddr != "" {
		e.metricsSrv = telemetry.Expose(cfg.MetricsAddr, nil)
		logging.L().Info("metrics listening", "addr", cfg.MetricsAddr)
	}
	return e, nil
}
