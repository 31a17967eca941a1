package pipeline

import (
	"fmt"

	"tabetl/internal/config"
	"tabetl/internal/logging"
	"tabetl/internal/spec"
	"tabetl/internal/transform"
	"tabetl/sink"
	"tabetl/sink/stdout"
	"tabetl/source"

	// drivers register themselves
	_ "tabetl/sink/csv"
	_ "tabetl/sink/jsonl"
	_ "tabetl/sink/kafka"
	_ "tabetl/sink/parquet"
	_ "tabetl/source/csv"
	_ "tabetl/source/jsonl"
	_ "tabetl/source/parquet"
)

// Compile loads the pipeline file at path and builds a Runner for it.
func Compile(path string) (*Runner, error) {
	cfg, err := config.LoadPipelineSpec(path)
	if err != nil {
		return nil, err
	}
	return Build(cfg)
}

// Build wires adapters and the transform catalog for an already loaded
// pipeline file.
func Build(cfg spec.File) (*Runner, error) {
	if err := config.ValidateIO(cfg); err != nil {
		return nil, err
	}
	r := NewRunner()
	r.spec = cfg

	src, err := source.NewAdapter(config.FormatOf(cfg.Source))
	if err != nil {
		return nil, err
	}
	if err := src.Configure(source.Config{Path: config.DatasetPath(cfg.Source)}); err != nil {
		return nil, err
	}
	r.SetSource(src)

	out := config.FormatOf(cfg.Sink)
	primary, err := sink.NewAdapter(out)
	if err != nil {
		return nil, err
	}
	if err := primary.Configure(sink.FileConfig{Path: config.DatasetPath(cfg.Sink)}); err != nil {
		return nil, err
	}
	r.AddSink(out, primary)

	for _, name := range cfg.Sinks {
		sDrv, err := sink.NewAdapter(name)
		if err != nil {
			r.Close()
			return nil, err
		}

		switch name {
		case "stdout":
			err = sDrv.Configure(stdout.Config{
				MaxRows:      cfg.SinkConfigs.Stdout.MaxRows,
				PrintCounter: cfg.SinkConfigs.Stdout.PrintCounter,
			})
		case "kafka":
			kc, lerr := config.LoadKafkaConfig(cfg.SinkConfigs.Kafka)
			if lerr != nil {
				err = lerr
				break
			}
			err = sDrv.Configure(kc)
		default:
			err = fmt.Errorf("no config block for sink %q", name)
		}
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("sink %s: %w", name, err)
		}
		r.AddSink(name, sDrv)
	}

	catalog := transform.Parse(cfg.Transforms)
	for _, k := range catalog.Skipped {
		logging.L().Debug("unknown transform skipped", "transform", k)
	}
	for _, s := range catalog.Specs() {
		logging.L().Debug("transform planned", "transform", s.Kind(), "field", s.Target())
	}
	r.SetCatalog(catalog)
	return r, nil
}
