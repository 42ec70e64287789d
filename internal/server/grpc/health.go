// Package grpcserver runs the gRPC listener that exposes grpc.health.v1 probes.
package grpcserver

import (
	"context"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is reported alongside the overall ("") status.
const ServiceName = "foodgram.API"

// Health serves health checks for orchestrators.
type Health struct {
	srv *grpc.Server
	hs  *health.Server
	log *zap.Logger
}

// NewHealth builds the server in SERVING state. reflect enables server reflection.
func NewHealth(log *zap.Logger, reflect bool) *Health {
	if log == nil {
		log = zap.NewNop()
	}
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoverUnary(log),
			LoggingUnary(log),
		),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	if reflect {
		reflection.Register(s)
	}
	h := &Health{srv: s, hs: hs, log: log}
	h.set(healthpb.HealthCheckResponse_SERVING)
	return h
}

// Serve blocks accepting connections on lis.
func (h *Health) Serve(lis net.Listener) error {
	h.log.Info("grpc health listening", zap.String("addr", lis.Addr().String()))
	return h.srv.Serve(lis)
}

// Drain reports NOT_SERVING so probes fail while the HTTP server finishes in-flight requests.
func (h *Health) Drain() {
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
}

// Stop drains and stops the server, forcing it closed when ctx ends first.
func (h *Health) Stop(ctx context.Context) {
	h.hs.Shutdown()
	done := make(chan struct{})
	go func() {
		h.srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		h.srv.Stop()
	}
}

func (h *Health) set(st healthpb.HealthCheckResponse_ServingStatus) {
	h.hs.SetServingStatus("", st)
	h.hs.SetServingStatus(ServiceName, st)
}
