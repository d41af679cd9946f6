package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

const (
	healthServiceName = "deadstock-service"
	meterName         = "github.com/bibbank/bib/services/deadstock-service/internal/presentation/grpc"
)

// Server wraps a gRPC server with the dead-stock handler registered.
type Server struct {
	gs     *grpc.Server
	health *health.Server
	logger *slog.Logger
}

// NewServer creates and configures the gRPC server. The health service
// reports NOT_SERVING until SetReady is called.
func NewServer(handler DeadStockServiceServer, logger *slog.Logger) *Server {
	gs := grpc.NewServer(grpc.UnaryInterceptor(telemetryInterceptor(logger)))

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus(healthServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	// Only enable reflection when GRPC_REFLECTION=true.
	if os.Getenv("GRPC_REFLECTION") == "true" {
		reflection.Register(gs)
	}

	RegisterDeadStockServiceServer(gs, handler)

	return &Server{
		gs:     gs,
		health: healthSrv,
		logger: logger,
	}
}

// SetReady flips the health status once a model is being served.
func (s *Server) SetReady(ready bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(healthServiceName, st)
}

// Serve starts the gRPC server on the specified address.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.ServeListener(lis)
}

// ServeListener serves on an existing listener.
func (s *Server) ServeListener(lis net.Listener) error {
	s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.gs.Serve(lis)
}

// GracefulStop stops the server gracefully.
func (s *Server) GracefulStop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.gs.GracefulStop()
}

// telemetryInterceptor logs each call and records it on the global
// OpenTelemetry meter.
func telemetryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	meter := otel.Meter(meterName)
	requests, err := meter.Int64Counter("deadstock_rpc_requests",
		metric.WithDescription("gRPC requests by method and status code"))
	if err != nil {
		logger.Warn("failed to create rpc request counter", "error", err)
	}
	latency, err := meter.Float64Histogram("deadstock_rpc_duration_seconds",
		metric.WithDescription("gRPC request latency"), metric.WithUnit("s"))
	if err != nil {
		logger.Warn("failed to create rpc latency histogram", "error", err)
	}

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(start)

		attrs := metric.WithAttributes(
			attribute.String("method", info.FullMethod),
			attribute.String("code", status.Code(err).String()),
		)
		if requests != nil {
			requests.Add(ctx, 1, attrs)
		}
		if latency != nil {
			latency.Record(ctx, elapsed.Seconds(), attrs)
		}

		logger.DebugContext(ctx, "grpc request",
			"method", info.FullMethod,
			"duration", elapsed,
			"error", err,
		)
		return resp, err
	}
}
