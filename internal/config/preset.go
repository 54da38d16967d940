package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"unifold/internal/spec"
)

const SupportedSchema = "v1"

// LoadPresetSpec parses a preset YAML, validates schema_version, and
// returns the parsed spec and an absolute path to the source config (if set).
func LoadPresetSpec(path string) (spec.File, string, error) {
	var cfg spec.File
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, "", err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, "", err
	}
	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = SupportedSchema
	}
	if cfg.SchemaVersion != SupportedSchema {
		return cfg, "", fmt.Errorf("preset schema_version %q not supported (want %q)", cfg.SchemaVersion, SupportedSchema)
	}
	for i, p := range cfg.Plugins {
		if p.Name == "" {
			return cfg, "", fmt.Errorf("preset plugin #%d has no name", i)
		}
	}
	confPath := cfg.Source.Config
	if confPath != "" && !filepath.IsAbs(confPath) {
		confPath = filepath.Join(filepath.Dir(path), confPath)
	}
	return cfg, confPath, nil
}
