// Package grpc runs the gRPC side of the service. It exposes the standard
// grpc.health.v1.Health service, reporting SERVING only while the readiness
// check (a database ping) succeeds.
//
//	srv := grpc.New(func(context.Context) error { return database.Ping(db) })
//	go srv.Probe(ctx, 10*time.Second)
//	err := srv.Serve(ctx, config.GRPCPort())
package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/shashiranjanraj/marketplace/pkg/logger"
	"github.com/shashiranjanraj/marketplace/pkg/metrics"
)

// Check reports whether the service can take traffic.
type Check func(ctx context.Context) error

// Server wraps a grpc.Server with a health service driven by a Check.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	check  Check
}

func recoveryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("grpc: panic recovered",
				"method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

func observeInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	metrics.GRPCHandled.WithLabelValues(info.FullMethod, code.String()).Inc()
	metrics.GRPCDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
	logger.WithCtx(ctx).Debug("grpc: request",
		"method", info.FullMethod, "code", code.String(), "duration_ms", time.Since(start).Milliseconds())
	return resp, err
}

// New builds the server. The health status starts NOT_SERVING until the
// first successful check.
func New(check Check) *Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recoveryInterceptor, observeInterceptor),
		grpc.MaxRecvMsgSize(4<<20),
		grpc.MaxSendMsgSize(4<<20),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	grpc_health_v1.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return &Server{srv: srv, health: hs, check: check}
}

// Refresh runs the check once and publishes the result.
func (s *Server) Refresh(ctx context.Context) {
	st := grpc_health_v1.HealthCheckResponse_SERVING
	if s.check != nil {
		if err := s.check(ctx); err != nil {
			logger.WithCtx(ctx).Warn("grpc: readiness check failed", "error", err)
			st = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", st)
}

// Probe refreshes the health status every interval until ctx ends.
func (s *Server) Probe(ctx context.Context, interval time.Duration) {
	s.Refresh(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Refresh(ctx)
		}
	}
}

// ServeListener serves on lis until ctx is cancelled, then drains
// in-flight RPCs.
func (s *Server) ServeListener(ctx context.Context, lis net.Listener) error {
	errc := make(chan error, 1)
	go func() { errc <- s.srv.Serve(lis) }()

	select {
	case err := <-errc:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("gRPC server shutting down")
		s.health.Shutdown()
		s.srv.GracefulStop()
		return nil
	}
}

// Serve listens on port and calls ServeListener.
func (s *Server) Serve(ctx context.Context, port string) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("grpc: listen on :%s: %w", port, err)
	}
	logger.Info("gRPC server starting", "addr", lis.Addr().String())
	return s.ServeListener(ctx, lis)
}
