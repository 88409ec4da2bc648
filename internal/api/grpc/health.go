package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"rentaltoll-backend/internal/api/grpc/interceptor"
	"rentaltoll-backend/internal/logger"
	"rentaltoll-backend/internal/security"
)

// ServiceName is the health key reported for the reconciliation API.
const ServiceName = "rentaltoll.v1.Reconciliation"

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer exposes grpc.health.v1 backed by store readiness, plus
// server reflection.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	store  Pinger
}

// NewHealthServer builds the server. With a token manager, every method
// except the health checks requires an operator token.
func NewHealthServer(store Pinger, tm security.TokenManager) *HealthServer {
	unary := []grpc.UnaryServerInterceptor{interceptor.LoggingUnary()}
	var stream []grpc.StreamServerInterceptor
	if tm != nil {
		auth := interceptor.NewAuthInterceptor(tm,
			healthpb.Health_Check_FullMethodName,
			healthpb.Health_Watch_FullMethodName,
		)
		unary = append(unary, auth.Unary())
		stream = append(stream, auth.Stream())
	}

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(stream...),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthServer{server: s, health: hs, store: store}
}

// Check pings the store and publishes the result.
func (s *HealthServer) Check(ctx context.Context) error {
	st := healthpb.HealthCheckResponse_SERVING
	err := s.store.Ping(ctx)
	if err != nil {
		st = healthpb.HealthCheckResponse_NOT_SERVING
		logger.Warn("Store ping failed", "error", err)
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
	return err
}

// Watch re-checks the store every interval until ctx is done.
func (s *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, interval)
			_ = s.Check(pingCtx)
			cancel()
		}
	}
}

func (s *HealthServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

// Shutdown reports NOT_SERVING and drains in-flight calls.
func (s *HealthServer) Shutdown() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
