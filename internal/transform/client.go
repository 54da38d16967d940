package transform

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	"unifold/internal/node"
	"unifold/internal/processor"
	"unifold/internal/transport"
	"unifold/internal/vfile"
)

// Client runs a tree remotely. The returned file carries what the remote
// side changed; callers merge it into their own.
type Client interface {
	Health(ctx context.Context) error
	Transform(ctx context.Context, tree node.Node, file *vfile.File) (node.Node, *vfile.File, error)
	Close() error
}

// GRPCClient talks to a transport.Server.
type GRPCClient struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
}

func NewGRPCClient(target string, opts ...grpc.DialOption) (*GRPCClient, error) {
	conn, err := transport.Dial(target, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{
		conn:   conn,
		health: healthpb.NewHealthClient(conn),
	}, nil
}

func (c *GRPCClient) Health(ctx context.Context) error {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: transport.ServiceName})
	if err != nil {
		return err
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("transformer %s is %s", c.conn.Target(), resp.GetStatus())
	}
	return nil
}

func (c *GRPCClient) Transform(ctx context.Context, tree node.Node, file *vfile.File) (node.Node, *vfile.File, error) {
	req, err := transport.Encode(tree, file)
	if err != nil {
		return nil, nil, err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, transport.TransformMethod, req, resp); err != nil {
		return nil, nil, err
	}
	env, err := transport.Decode(resp)
	if err != nil {
		return nil, nil, err
	}
	return env.Tree, env.File, nil
}

func (c *GRPCClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// InProcessClient runs trees through a processor in this process.
type InProcessClient struct {
	p *processor.Processor
}

func NewInProcessClient(p *processor.Processor) *InProcessClient { return &InProcessClient{p: p} }

func (c *InProcessClient) Health(context.Context) error {
	return c.p.Freeze()
}

func (c *InProcessClient) Transform(ctx context.Context, tree node.Node, file *vfile.File) (node.Node, *vfile.File, error) {
	out, err := c.p.Run(ctx, tree, file)
	if err != nil {
		return nil, nil, err
	}
	return out, file, nil
}

func (c *InProcessClient) Close() error { return nil }
