package config

import (
	kcfg "tabetl/sink/kafka"
)

// LoadKafkaConfig delegates to the Kafka sink loader while centralizing
// loader entrypoints under internal/config.
func LoadKafkaConfig(path string) (kcfg.Config, error) {
	return kcfg.LoadConfig(path)
}
