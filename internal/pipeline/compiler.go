package pipeline

import (
	"fmt"

	"unifold/internal/config"
	"unifold/internal/plugins"
	"unifold/internal/processor"
	"unifold/internal/spec"
	"unifold/sink"
	sinkkafka "unifold/sink/kafka"
	"unifold/sink/stdout"
	"unifold/source/kafka"

	// registers the "remote" plugin
	_ "unifold/internal/transform"
)

// Compile builds a runner from a preset file: the processor from its plugins
// and settings, the source and the sinks.
func Compile(path string) (*Runner, error) {
	cfg, confPath, err := config.LoadPresetSpec(path)
	if err != nil {
		return nil, err
	}
	p, err := NewProcessor(path, cfg)
	if err != nil {
		return nil, err
	}
	r := NewRunner(p)
	r.SetFailFast(cfg.Debug.FailFast)
	if err := configureSource(r, cfg, confPath); err != nil {
		return nil, err
	}
	if err := configureSinks(r, cfg); err != nil {
		return nil, err
	}
	return r, nil
}

// NewProcessor builds and freezes the processor a preset file describes.
func NewProcessor(path string, cfg spec.File) (*processor.Processor, error) {
	settings, err := config.LoadSettings(path)
	if err != nil {
		return nil, err
	}
	preset, err := plugins.BuildPreset(cfg.Plugins, settings)
	if err != nil {
		return nil, err
	}
	p := processor.New()
	if err := p.Use(preset); err != nil {
		return nil, err
	}
	if err := p.Freeze(); err != nil {
		return nil, err
	}
	return p, nil
}

func configureSource(r *Runner, cfg spec.File, confPath string) error {
	sc, err := config.LoadSource(cfg, confPath)
	if err != nil || !sc.Enabled() {
		return err
	}
	src, err := kafka.NewAdapter(sc.Driver)
	if err != nil {
		return err
	}
	if err := src.Configure(sc.Kafka); err != nil {
		return err
	}
	r.SetSource(src)
	if aw, ok := src.(kafka.AckAware); ok {
		r.SubscribeAck(aw.OnAck)
	}
	return nil
}

func configureSinks(r *Runner, cfg spec.File) error {
	for _, name := range cfg.Sinks {
		drv, err := sink.NewAdapter(name)
		if err != nil {
			return err
		}
		switch name {
		case "stdout":
			err = drv.Configure(stdout.Config{
				DelayMS:       cfg.Debug.PerFileDelayMS,
				PrintCounter:  cfg.Debug.PrintCounter,
				PrintValue:    cfg.Debug.PrintValue,
				ValueMaxBytes: cfg.Debug.ValueMaxBytes,
				BatchSize:     cfg.Debug.AckBatchSize,
				FlushMS:       cfg.Debug.AckFlushMS,
			})
		case "kafka":
			k := cfg.SinkConfigs.Kafka
			err = drv.Configure(sinkkafka.Config{Brokers: k.Brokers, Topic: k.Topic, Acks: k.RequiredAcks})
		default:
			err = fmt.Errorf("no config block for sink %q", name)
		}
		if err != nil {
			return fmt.Errorf("sink %s: %w", name, err)
		}
		r.AddSink(drv)
	}
	return nil
}
