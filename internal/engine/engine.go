// Package engine assembles the long-running process: the transformer gRPC
// server, the preset pipeline and the metrics endpoint.
package engine

import (
	"context"
	"errors"
	"net"

	"google.golang.org/grpc"

	"unifold/internal/logging"
	"unifold/internal/pipeline"
	"unifold/internal/transform"
	"unifold/internal/transport"
)

type Config struct {
	GRPCPort    int    // 0 picks a free port
	MetricsPort int    // <= 0 disables /metrics
	PresetYml   string // optional; without it the server runs an empty processor
}

type Engine struct {
	transport *transport.Server
	runner    *pipeline.Runner
}

// Port is the port the gRPC server listens on.
func (e *Engine) Port() int {
	if a, ok := e.transport.Addr().(*net.TCPAddr); ok {
		return a.Port
	}
	return 0
}

// Run serves until ctx is done, then stops the server, the pipeline and any
// remote transformer connections.
func (e *Engine) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		e.transport.Stop()
		if e.runner != nil {
			if err := e.runner.Close(); err != nil {
				logging.L().Warn("pipeline close", "err", err)
			}
		}
		_ = transform.CloseAll()
	}()

	if err := e.transport.Serve(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
