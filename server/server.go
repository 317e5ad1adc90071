// Package server exposes the control-plane HTTP API: snapshot ingest,
// history and velocity queries, policy distribution, and the agent
// registry.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Server wraps the control-plane HTTP server.
type Server struct {
	server *http.Server
}

// New creates a server listening on addr with the standard timeouts.
func New(addr string, h *Handlers) *Server {
	server := &http.Server{
		Addr:         addr,
		Handler:      NewRouter(h),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return &Server{server: server}
}

// Start serves requests until the listener closes.
func (s *Server) Start() error {
	slog.Info("Starting control server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	slog.Info("Stopping control server")
	return s.server.Shutdown(ctx)
}
