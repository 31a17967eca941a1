package spec

// Dataset locates a dataset file as <path>/<dataset>.<format>.
type Dataset struct {
	Path    string `yaml:"path"`
	Dataset string `yaml:"dataset"`
	Format  string `yaml:"format"` // csv | jsonl | parquet
}

type sinkConfigs struct {
	Stdout StdoutSink `yaml:"stdout"`
	Kafka  string     `yaml:"kafka"` // path to the kafka sink config file
}

type StdoutSink struct {
	MaxRows      int  `yaml:"max_rows"`
	PrintCounter bool `yaml:"print_counter"`
}

type telemetrySection struct {
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// Directive is one entry of the transforms list. Fields stays loosely typed
// because its shape depends on Transform.
type Directive struct {
	Transform string `yaml:"transform"`
	Fields    []any  `yaml:"fields"`
}

type File struct {
	SchemaVersion string `yaml:"schema_version"`

	Source Dataset `yaml:"source"`
	Sink   Dataset `yaml:"sink"`

	// Extra sinks fed the same output as Sink, by registered name.
	Sinks       []string    `yaml:"sinks"`
	SinkConfigs sinkConfigs `yaml:"sink_configs"`

	Telemetry telemetrySection `yaml:"telemetry"`

	Transforms []Directive `yaml:"transforms"`
}
