package server

import (
	"errors"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// RegisterHealth registers a grpc.health.v1 server on srv reporting SERVING
// for the whole server ("") and for every name in services.
//
// Precondition: srv must be non-nil and not yet serving.
func RegisterHealth(srv *grpc.Server, services ...string) *health.Server {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	for _, name := range services {
		hs.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
	healthpb.RegisterHealthServer(srv, hs)
	return hs
}

// NewGRPCService serves srv on lis. Stop flips hs to NOT_SERVING, when hs is
// non-nil, and then drains open calls; Start reports a clean stop as nil.
//
// Precondition: srv and lis must be non-nil.
func NewGRPCService(srv *grpc.Server, lis net.Listener, hs *health.Server) *FuncService {
	return &FuncService{
		StartFn: func() error {
			if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		},
		StopFn: func() {
			if hs != nil {
				hs.Shutdown()
			}
			srv.GracefulStop()
		},
	}
}
