package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/common"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
	"github.com/andrescamacho/grpc-mediator-go/internal/infrastructure/config"
	"github.com/andrescamacho/grpc-mediator-go/pkg/proto/greeter"
)

// RequestIDHeader is the metadata key carrying the caller's request id
const RequestIDHeader = "x-request-id"

// Server hosts the Greeter service on top of the mediator
type Server struct {
	cfg        config.ServerConfig
	logger     *slog.Logger
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
}

// NewServer creates a server listening on the configured unix socket, or on
// the TCP address when no socket path is set
func NewServer(m mediator.Mediator, cfg config.ServerConfig, logger *slog.Logger) (*Server, error) {
	listener, err := listen(cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithListener(m, cfg, logger, listener), nil
}

// NewServerWithListener creates a server on an existing listener
func NewServerWithListener(m mediator.Mediator, cfg config.ServerConfig, logger *slog.Logger, listener net.Listener) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		listener: listener,
		health:   health.NewServer(),
	}

	s.grpcServer = grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			s.recoveryInterceptor,
			s.contextInterceptor,
			s.timeoutInterceptor,
			s.loggingInterceptor,
		),
	)

	greeter.RegisterGreeterServer(s.grpcServer, NewGreeterAdapter(m))
	healthpb.RegisterHealthServer(s.grpcServer, s.health)

	if cfg.HealthCheck {
		s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		s.health.SetServingStatus(greeter.Greeter_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	}

	return s
}

func listen(cfg config.ServerConfig) (net.Listener, error) {
	if cfg.SocketPath == "" {
		listener, err := net.Listen("tcp", cfg.Address)
		if err != nil {
			return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Address, err)
		}
		return listener, nil
	}

	// Remove existing socket file if present
	if err := os.RemoveAll(cfg.SocketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", cfg.SocketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket listener: %w", err)
	}

	// Set socket permissions (owner only)
	if err := os.Chmod(cfg.SocketPath, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	return listener, nil
}

// Addr returns the listener address
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Start serves requests until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("gRPC server listening", "address", s.listener.Addr().String())

	errChan := make(chan error, 1)
	go func() {
		if err := s.grpcServer.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		s.logger.Info("initiating graceful shutdown of gRPC server")
		s.shutdown()
		return nil
	}
}

func (s *Server) shutdown() {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	select {
	case <-stopped:
	case <-time.After(timeout):
		s.logger.Warn("graceful shutdown timed out, forcing stop", "timeout", timeout)
		s.grpcServer.Stop()
	}

	if s.cfg.SocketPath != "" {
		os.Remove(s.cfg.SocketPath)
	}
}

// recoveryInterceptor keeps a panic outside the mediator from taking the daemon down
func (s *Server) recoveryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "recovered panic in rpc",
				"method", info.FullMethod,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			resp = nil
			err = status.Errorf(codes.Internal, "panic while handling %s", info.FullMethod)
		}
	}()

	return handler(ctx, req)
}

// contextInterceptor puts the caller's request id and a scoped logger into the context
func (s *Server) contextInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(RequestIDHeader); len(ids) > 0 && ids[0] != "" {
			ctx = common.WithRequestID(ctx, ids[0])
		}
	}
	ctx = common.WithLogger(ctx, s.logger.With("method", info.FullMethod))
	return handler(ctx, req)
}

func (s *Server) timeoutInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if s.cfg.RequestTimeout <= 0 {
		return handler(ctx, req)
	}
	if _, ok := ctx.Deadline(); ok {
		return handler(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()
	return handler(ctx, req)
}

func (s *Server) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	attrs := []any{
		"method", info.FullMethod,
		"code", code.String(),
		"duration", time.Since(start),
	}
	if err != nil {
		s.logger.WarnContext(ctx, "rpc failed", append(attrs, "error", err)...)
	} else {
		s.logger.DebugContext(ctx, "rpc handled", attrs...)
	}

	return resp, err
}
