package engine

import (
	"context"
	"fmt"

	"unifold/internal/logging"
	"unifold/internal/pipeline"
	"unifold/internal/processor"
	"unifold/internal/telemetry"
	"unifold/internal/transport"
)

func Bootstrap(ctx context.Context, cfg Config) (*Engine, error) {
	// 1. pipeline runner and the processor it owns
	var (
		runner *pipeline.Runner
		proc   = processor.New()
		err    error
	)
	if cfg.PresetYml != "" {
		runner, err = pipeline.Compile(cfg.PresetYml)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		proc = runner.Processor()
	}

	// 2. transport server exposing the processor's run phase
	svc, err := transport.NewProcessorService(proc)
	if err != nil {
		return nil, fmt.Errorf("processor: %w", err)
	}
	srv, err := transport.StartServer(cfg.GRPCPort, svc)
	if err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}

	if runner != nil {
		if err := runner.Start(ctx); err != nil {
			srv.Stop()
			return nil, err
		}
	}

	// 3. metrics
	telemetry.Expose(cfg.MetricsPort)

	logging.L().Info("engine ready",
		"grpc", srv.Addr().String(),
		"metrics_port", cfg.MetricsPort,
		"plugins", len(proc.Plugins()))
	return &Engine{transport: srv, runner: runner}, nil
}
