// Package grpc implements the gRPC transport for jarvis.
//
// The service is described by hand instead of generated stubs: messages are
// the same JSON payloads the REST API uses, carried with the "json" content
// subtype. The standard gRPC health service is registered alongside.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/nadzzz/jarvis/internal/message"
	"github.com/nadzzz/jarvis/internal/transport"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "jarvis.v1.Commands"

// DispatchReply is the result of the Dispatch method.
type DispatchReply struct {
	Response     *message.CommandResponse     `json:"response"`
	Confirmation *message.ConfirmationRequest `json:"confirmation,omitempty"`
}

// StatusRequest is the (empty) argument of the Status method.
type StatusRequest struct{}

// StatusReply carries the host snapshot.
type StatusReply struct {
	Status message.SystemStatusSnapshot `json:"status"`
}

// CommandsServer is the server API for the jarvis.v1.Commands service.
type CommandsServer interface {
	Dispatch(ctx context.Context, req *message.CommandRequest) (*DispatchReply, error)
	Confirm(ctx context.Context, req *message.ConfirmRequest) (*message.ConfirmResult, error)
	Status(ctx context.Context, req *StatusRequest) (*StatusReply, error)
}

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port   int
	server *grpc.Server
	health *health.Server
}

// New creates a gRPC transport serving svc on port.
func New(port int, svc transport.Service) *Transport {
	t := &Transport{
		port:   port,
		server: grpc.NewServer(grpc.ChainUnaryInterceptor(unaryLogging)),
		health: health.NewServer(),
	}
	Register(t.server, &commandsServer{svc: svc})
	healthpb.RegisterHealthServer(t.server, t.health)
	t.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return t
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen serves on the configured port until the context is cancelled.
func (t *Transport) Listen(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return t.Serve(ctx, lis)
}

// Serve runs the server on lis until the context is cancelled.
func (t *Transport) Serve(ctx context.Context, lis net.Listener) error {
	slog.Info("grpc transport listening", "addr", lis.Addr().String())

	go func() {
		<-ctx.Done()
		slog.Info("grpc transport shutting down")
		t.health.Shutdown()
		t.server.GracefulStop()
	}()

	return t.server.Serve(lis)
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	t.health.Shutdown()
	t.server.GracefulStop()
	return nil
}

// commandsServer adapts the pipeline to CommandsServer.
type commandsServer struct {
	svc transport.Service
}

func (s *commandsServer) Dispatch(ctx context.Context, req *message.CommandRequest) (*DispatchReply, error) {
	reply := s.svc.Handle(ctx, transport.Request("grpc", *req))
	return &DispatchReply{Response: reply.Response, Confirmation: reply.Confirmation}, nil
}

func (s *commandsServer) Confirm(ctx context.Context, req *message.ConfirmRequest) (*message.ConfirmResult, error) {
	if req.ConfirmationID == "" {
		return nil, status.Error(codes.InvalidArgument, "confirmation_id is required")
	}
	res, err := s.svc.Confirm(ctx, req.ConfirmationID, req.Approved)
	switch {
	case transport.IsGone(err):
		return nil, status.Error(codes.NotFound, err.Error())
	case err != nil:
		return nil, status.Error(codes.Internal, err.Error())
	}
	return res, nil
}

func (s *commandsServer) Status(ctx context.Context, _ *StatusRequest) (*StatusReply, error) {
	snap, err := s.svc.Status(ctx)
	if err != nil {
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	return &StatusReply{Status: snap}, nil
}

// unaryLogging logs method, duration and status code for each call.
func unaryLogging(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	st, _ := status.FromError(err)

	attrs := []any{"method", info.FullMethod, "duration", time.Since(start), "code", st.Code().String()}
	if err != nil {
		slog.Warn("grpc request failed", append(attrs, "error", err)...)
	} else {
		slog.Debug("grpc request completed", attrs...)
	}
	return resp, err
}
