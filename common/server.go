package common

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// RegisterFunc registers gRPC services on a server.
type RegisterFunc func(*grpc.Server)

// ServerConfig configures a gRPC server.
type ServerConfig struct {
	Name         string
	Port         string
	Interceptors []grpc.UnaryServerInterceptor
}

// RunServer starts a gRPC server with health checks.
//
// Blocks until the server exits or ctx is cancelled, in which case the
// server is stopped gracefully.
func RunServer(ctx context.Context, logger *zap.Logger, cfg ServerConfig, register RegisterFunc) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.Port, err)
	}
	return Serve(ctx, logger, lis, cfg, register)
}

// Serve runs the server on an existing listener.
func Serve(ctx context.Context, logger *zap.Logger, lis net.Listener, cfg ServerConfig, register RegisterFunc) error {
	s := NewServer(cfg, register)

	go func() {
		<-ctx.Done()
		logger.Info("stopping server", zap.String("name", cfg.Name))
		s.GracefulStop()
	}()

	logger.Info("server started",
		zap.String("name", cfg.Name),
		zap.String("addr", lis.Addr().String()),
	)

	if err := s.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// NewServer builds a gRPC server with the health service marked SERVING.
func NewServer(cfg ServerConfig, register RegisterFunc) *grpc.Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(cfg.Interceptors...))
	register(s)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	return s
}
