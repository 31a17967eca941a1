package kafka

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Encoding string

const (
	EncodingJSON     Encoding = "json"     // one JSON object per message
	EncodingProtobuf Encoding = "protobuf" // google.protobuf.Struct
)

const EnvPrefix = "TABETL_KAFKA__"

type Config struct {
	Brokers      []string `koanf:"brokers"`
	Topic        string   `koanf:"topic"`
	Version      string   `koanf:"version"`
	RequiredAcks int16    `koanf:"required_acks"` // 0,1,-1
	Encoding     Encoding `koanf:"encoding"`      // json|protobuf
	KeyField     string   `koanf:"key_field"`     // column used as message key
	BatchSize    int      `koanf:"batch_size"`
	TLSEn        bool     `koanf:"tls_enabled"`
	SASLUser     string   `koanf:"sasl_user"`
	SASLPass     string   `koanf:"sasl_pass"`
}

// ---------------------------------------------------------------------------
// Loader
// ---------------------------------------------------------------------------

// LoadConfig merges YAML (if present) with env-vars
// (prefix `TABETL_KAFKA__`, delimiter `__`).
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	sv := k.String("schema_version")
	if sv != "" && sv != "v1" {
		return Config{}, fmt.Errorf("kafka schema_version %q not supported (want v1)", sv)
	}

	_ = k.Load(env.Provider(EnvPrefix, "__", func(key string) string {
		return strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	}), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, cfg.validate()
}

func applyDefaults(c *Config) {
	if c.Encoding == "" {
		c.Encoding = EncodingJSON
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 500
	}
}

func (c Config) validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("kafka-sink: no brokers")
	}
	if c.Topic == "" {
		return errors.New("kafka-sink: empty topic")
	}
	if c.Encoding != EncodingJSON && c.Encoding != EncodingProtobuf {
		return fmt.Errorf("kafka-sink: unknown encoding %q", c.Encoding)
	}
	return nil
}
