package config

import (
	"fmt"

	"unifold/internal/spec"
	"unifold/source/kafka"
)

// DefaultSourceDriver is used when a kafka source names no driver.
const DefaultSourceDriver = "sarama"

// Source is the resolved source block of a preset.
type Source struct {
	Kind   string
	Driver string
	Kafka  kafka.Config
}

// Enabled reports whether the preset reads from a source at all.
func (s Source) Enabled() bool { return s.Kind != "" }

// LoadSource resolves the preset's source block against its driver config at
// confPath (as returned by LoadPresetSpec). A preset without a source kind
// yields a zero Source.
func LoadSource(cfg spec.File, confPath string) (Source, error) {
	switch cfg.Source.Kind {
	case "":
		return Source{}, nil
	case "kafka":
	default:
		return Source{}, fmt.Errorf("unsupported source %q", cfg.Source.Kind)
	}

	src := Source{Kind: cfg.Source.Kind, Driver: cfg.Source.Driver}
	if src.Driver == "" {
		src.Driver = DefaultSourceDriver
	}
	kc, err := kafka.LoadConfig(confPath)
	if err != nil {
		return Source{}, fmt.Errorf("source %s/%s: %w", src.Kind, src.Driver, err)
	}
	src.Kafka = kc
	return src, nil
}
