// Package grpc exposes the standard gRPC health service.
package grpc

import (
	"errors"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/ekisa-team/vocalis/internal/backend"
	"github.com/ekisa-team/vocalis/internal/model"
)

// ServicePrefix prefixes the per-backend health service names.
const ServicePrefix = "vocalis."

// ServiceName returns the health service name of a backend.
func ServiceName(id backend.Identifier) string {
	return ServicePrefix + string(id)
}

// Server serves grpc.health.v1.Health and reflection.
type Server struct {
	srv    *grpc.Server
	health *health.Server
}

// NewServer creates a server reporting every backend as serving.
func NewServer(opts ...grpc.ServerOption) *Server {
	srv := grpc.NewServer(opts...)
	hs := health.NewServer()

	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	for _, id := range backend.Identifiers() {
		hs.SetServingStatus(ServiceName(id), healthpb.HealthCheckResponse_SERVING)
	}

	return &Server{srv: srv, health: hs}
}

// ObserveModel updates backend health from registry transitions. It is meant
// to be passed to model.WithStatusHook.
func (s *Server) ObserveModel(id backend.Identifier, status model.Status, err error) {
	switch status {
	case model.StatusFailed:
		s.health.SetServingStatus(ServiceName(id), healthpb.HealthCheckResponse_NOT_SERVING)
	case model.StatusLoaded:
		s.health.SetServingStatus(ServiceName(id), healthpb.HealthCheckResponse_SERVING)
	}
}

// Drain marks every service NOT_SERVING. Later updates are ignored.
func (s *Server) Drain() {
	s.health.Shutdown()
}

// Serve accepts connections on l.
func (s *Server) Serve(l net.Listener) error {
	slog.Info("gRPC server listening", "addr", l.Addr().String())
	if err := s.srv.Serve(l); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// ListenAndServe listens on port.
func (s *Server) ListenAndServe(port int) error {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen on :%d: %w", port, err)
	}
	return s.Serve(l)
}

// Stop closes all connections immediately.
func (s *Server) Stop() {
	s.srv.Stop()
}

// GracefulStop waits for pending RPCs to finish.
func (s *Server) GracefulStop() {
	s.srv.GracefulStop()
}
