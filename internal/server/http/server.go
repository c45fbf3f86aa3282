// Package http exposes the speech service over HTTP.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/ekisa-team/vocalis/internal/service"
)

// Version is reported by the health and root endpoints.
const Version = "1.0.0"

// Config configures the HTTP server.
type Config struct {
	Port        int
	CORSOrigins []string
}

// Server is the HTTP front end.
type Server struct {
	api     huma.API
	handler http.Handler
	srv     *http.Server
}

// NewServer registers every route and assembles the middleware chain.
func NewServer(cfg Config, tts *service.TTS, gate Gate) (*Server, error) {
	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("Vocalis TTS", Version))

	NewHealthHandler(api)
	NewTTSHandler(api, tts)
	NewVoicesHandler(api, tts)

	var handler http.Handler = exactRoot(mux, mux)
	handler, err := compress(handler)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip handler: %w", err)
	}
	handler = requestLogger(handler)
	handler = corsMiddleware(cfg.CORSOrigins, handler)
	handler = drainGate(gate, handler)

	return &Server{
		api:     api,
		handler: handler,
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// API returns the underlying huma API.
func (s *Server) API() huma.API {
	return s.api
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve accepts connections on l until Shutdown or Close.
func (s *Server) Serve(l net.Listener) error {
	slog.Info("HTTP server listening", "addr", l.Addr().String())
	if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on the configured port.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(l)
}

// Shutdown stops accepting connections and waits for active ones until ctx
// is done, then closes whatever remains.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return s.srv.Close()
	}
	return err
}
