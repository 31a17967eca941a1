package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"tabetl/internal/spec"
)

const SupportedSchema = "v1"

// EnvPrefix selects environment overrides, e.g. TABETL__SINK__FORMAT=csv.
const EnvPrefix = "TABETL__"

var (
	ErrSchemaVersion     = errors.New("schema_version not supported")
	ErrUnsupportedFormat = errors.New("dataset format unsupported (has to be csv, jsonl or parquet)")
	ErrInputNotFound     = errors.New("input dataset does not exist or path is incorrect")
)

// Formats lists the file formats sources and sinks understand.
var Formats = []string{"csv", "jsonl", "parquet"}

// LoadPipelineSpec parses a pipeline file (YAML, or JSON which the YAML
// parser accepts), applies TABETL__ environment overrides, validates
// schema_version and resolves relative paths against the file's directory.
func LoadPipelineSpec(path string) (spec.File, error) {
	var cfg spec.File
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return cfg, fmt.Errorf("load %s: %w", path, err)
	}
	err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return cfg, err
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}
	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = SupportedSchema
	}
	if cfg.SchemaVersion != SupportedSchema {
		return cfg, fmt.Errorf("%w: pipeline schema_version %q (want %q)", ErrSchemaVersion, cfg.SchemaVersion, SupportedSchema)
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return cfg, err
	}
	cfg.Source.Path = resolve(base, cfg.Source.Path)
	cfg.Sink.Path = resolve(base, cfg.Sink.Path)
	if cfg.SinkConfigs.Kafka != "" {
		cfg.SinkConfigs.Kafka = resolve(base, cfg.SinkConfigs.Kafka)
	}
	return cfg, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// DatasetPath is <path>/<dataset>.<format>.
func DatasetPath(d spec.Dataset) string {
	return filepath.Join(d.Path, d.Dataset+"."+d.Format)
}

// FormatOf returns the normalized format name.
func FormatOf(d spec.Dataset) string { return strings.ToLower(strings.TrimSpace(d.Format)) }

func supported(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// ValidateIO checks that the input exists and both formats are supported.
func ValidateIO(cfg spec.File) error {
	in := DatasetPath(cfg.Source)
	if _, err := os.Stat(in); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, in)
		}
		return err
	}
	if f := FormatOf(cfg.Source); !supported(f) {
		return fmt.Errorf("input: %w: %q", ErrUnsupportedFormat, cfg.Source.Format)
	}
	if f := FormatOf(cfg.Sink); !supported(f) {
		return fmt.Errorf("output: %w: %q", ErrUnsupportedFormat, cfg.Sink.Format)
	}
	return nil
}

// Dump writes the effective configuration as YAML.
func Dump(w io.Writer, cfg spec.File) error {
	enc := yamlv3.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
