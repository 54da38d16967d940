// Package spec holds the preset file schema.
package spec

type debugSection struct {
	PrintCounter   bool `yaml:"print_counter"`
	PrintValue     bool `yaml:"print_value"`
	ValueMaxBytes  int  `yaml:"value_max_bytes"`
	PerFileDelayMS int  `yaml:"per_file_delay_ms"`
	AckBatchSize   int  `yaml:"ack_batch_size"`
	AckFlushMS     int  `yaml:"ack_flush_ms"`
	FailFast       bool `yaml:"fail_fast"` // stop the stream on the first failed document
}

// PluginSpec names a registered plugin and its options.
type PluginSpec struct {
	Name    string         `yaml:"name"`
	Enabled *bool          `yaml:"enabled"` // nil means enabled
	Options map[string]any `yaml:"options"`
}

type File struct {
	SchemaVersion string `yaml:"schema_version"`

	// Ordered plugins; the processor freezes them in this order.
	Plugins []PluginSpec `yaml:"plugins"`

	// Shared settings, overlaid by UNIFOLD_SETTINGS__* env vars.
	Settings map[string]any `yaml:"settings"`

	Source struct {
		Kind   string `yaml:"kind"`
		Driver string `yaml:"driver"`
		Config string `yaml:"config"`
	} `yaml:"source"`

	Sinks       []string     `yaml:"sinks"`
	SinkConfigs SinkConfigs  `yaml:"sink_configs"`
	Debug       debugSection `yaml:"debug"`
}

type SinkConfigs struct {
	Kafka KafkaSink `yaml:"kafka"`
}

type KafkaSink struct {
	Brokers      []string `yaml:"brokers"`
	Topic        string   `yaml:"topic"`
	RequiredAcks int16    `yaml:"required_acks"` // 0,1,-1
}
