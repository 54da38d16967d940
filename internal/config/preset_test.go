package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unifold/internal/spec"
	"unifold/source/kafka"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadPresetSpec_ResolvesRelativeSourceConfigAndSchema(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "preset.yml", `schema_version: v1
plugins:
  - name: text
  - name: marker
    enabled: false
    options: { text: "!" }
settings:
  marker: { text: "?" }
source:
  kind: kafka
  driver: sarama
  config: kafka_source.yml
sinks: [stdout]
`)
	writeFile(t, dir, "kafka_source.yml", "schema_version: v1\n")

	cfg, abs, err := LoadPresetSpec(path)
	require.NoError(t, err)
	assert.Equal(t, SupportedSchema, cfg.SchemaVersion)
	require.Len(t, cfg.Plugins, 2)
	require.NotNil(t, cfg.Plugins[1].Enabled)
	assert.False(t, *cfg.Plugins[1].Enabled)
	assert.Equal(t, "!", cfg.Plugins[1].Options["text"])
	assert.True(t, filepath.IsAbs(abs), "want absolute kafka config path, got %q", abs)
}

func TestLoadPresetSpec_InvalidSchema(t *testing.T) {
	path := writeFile(t, t.TempDir(), "preset.yml", `schema_version: v999
plugins: []
`)
	_, _, err := LoadPresetSpec(path)
	assert.Error(t, err)
}

func TestLoadPresetSpec_UnnamedPlugin(t *testing.T) {
	path := writeFile(t, t.TempDir(), "preset.yml", `plugins:
  - options: { a: 1 }
`)
	_, _, err := LoadPresetSpec(path)
	assert.ErrorContains(t, err, "no name")
}

func TestLoadSettings_EnvOverlay(t *testing.T) {
	path := writeFile(t, t.TempDir(), "preset.yml", `settings:
  marker:
    text: "?"
  mode: strict
`)
	t.Setenv("UNIFOLD_SETTINGS__MARKER__TEXT", "!!")

	got, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "strict", got["mode"])
	assert.Equal(t, map[string]any{"text": "!!"}, got["marker"])
}

func TestLoadSettings_MissingFile(t *testing.T) {
	got, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadSource_DefaultsDriverAndReadsConfig(t *testing.T) {
	dir := t.TempDir()
	conf := writeFile(t, dir, "kafka_source.yml", `schema_version: v1
brokers: [b1:9092]
topics: [docs]
group_id: unifold
commit_mode: e2e
`)
	var cfg spec.File
	cfg.Source.Kind = "kafka"

	src, err := LoadSource(cfg, conf)
	require.NoError(t, err)
	assert.True(t, src.Enabled())
	assert.Equal(t, DefaultSourceDriver, src.Driver)
	assert.Equal(t, []string{"docs"}, src.Kafka.Topics)
	assert.Equal(t, kafka.CommitE2E, src.Kafka.CommitMode)
}

func TestLoadSource_NoneAndUnsupported(t *testing.T) {
	src, err := LoadSource(spec.File{}, "")
	require.NoError(t, err)
	assert.False(t, src.Enabled())

	var cfg spec.File
	cfg.Source.Kind = "file"
	_, err = LoadSource(cfg, "")
	assert.ErrorContains(t, err, `unsupported source "file"`)

	cfg.Source.Kind = "kafka"
	cfg.Source.Driver = "sarama"
	bad := writeFile(t, t.TempDir(), "kafka.yml", "start_from: middle\n")
	_, err = LoadSource(cfg, bad)
	assert.ErrorContains(t, err, "source kafka/sarama")
}
