package transport

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"unifold/internal/logging"
	"unifold/internal/processor"
)

const (
	ServiceName     = "unifold.v1.Transformer"
	TransformMethod = "/" + ServiceName + "/Transform"
)

// TransformerServer is implemented by anything that can run a tree.
type TransformerServer interface {
	Transform(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TransformerServer)(nil),
	Methods: []grpc.MethodDesc{{
		MethodName: "Transform",
		Handler:    transformHandler,
	}},
	Streams:  []grpc.StreamDesc{},
	Metadata: "unifold/v1/transformer.proto",
}

func transformHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TransformerServer).Transform(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TransformMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TransformerServer).Transform(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterTransformerServer attaches impl to s under ServiceName.
func RegisterTransformerServer(s grpc.ServiceRegistrar, impl TransformerServer) {
	s.RegisterService(&serviceDesc, impl)
}

// ProcessorService exposes the run phase of a processor.
type ProcessorService struct {
	p *processor.Processor
}

// NewProcessorService freezes p so that concurrent requests only ever see a
// frozen processor.
func NewProcessorService(p *processor.Processor) (*ProcessorService, error) {
	if err := p.Freeze(); err != nil {
		return nil, err
	}
	return &ProcessorService{p: p}, nil
}

func (s *ProcessorService) Transform(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	env, err := Decode(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	tree, err := s.p.Run(ctx, env.Tree, env.File)
	if err != nil {
		if ctx.Err() != nil {
			return nil, status.FromContextError(ctx.Err()).Err()
		}
		logging.L().Debug("remote run failed", "path", env.File.Path, "err", err)
		return nil, status.Error(codes.Aborted, err.Error())
	}
	out, err := Encode(tree, env.File)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

type Server struct {
	grpc   *grpc.Server
	lis    net.Listener
	health *health.Server
}

// StartServer listens on port (0 picks a free one) and registers svc plus the
// standard health service. Call Serve to start accepting.
func StartServer(port int, svc TransformerServer, opts ...grpc.ServerOption) (*Server, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, err
	}
	return NewServer(lis, svc, opts...), nil
}

func NewServer(lis net.Listener, svc TransformerServer, opts ...grpc.ServerOption) *Server {
	s := &Server{
		grpc:   grpc.NewServer(opts...),
		lis:    lis,
		health: health.NewServer(),
	}
	RegisterTransformerServer(s.grpc, svc)
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

func (s *Server) Addr() net.Addr { return s.lis.Addr() }

func (s *Server) Serve() error {
	return s.grpc.Serve(s.lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
