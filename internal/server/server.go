// Package server exposes the artifact store and per-session selections over HTTP.
//
// Routes:
//
//	GET    /healthz
//	GET    /api/pages
//	GET    /api/overview
//	GET    /api/platforms/{platform}/summary
//	GET    /api/pages/{page}/selection
//	PUT    /api/pages/{page}/selection/{dimension}
//	DELETE /api/pages/{page}/selection/{dimension}
//	GET    /api/pages/{page}/options/{dimension}
//	GET    /api/pages/{page}/record
//	GET    /api/pages/{page}/artifacts/{kind}
//	GET    /api/events   (only when change events are enabled)
//
// Every request carries a session cookie; selections are stored per session and page.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dyluth/commviz/internal/session"
	"github.com/dyluth/commviz/internal/watch"
	"github.com/dyluth/commviz/pkg/artifact"
	"go.uber.org/zap"
)

// ShutdownTimeout bounds how long Serve waits for in-flight requests after its context ends.
const ShutdownTimeout = 5 * time.Second

// Options configures the HTTP listener.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Events enables GET /api/events. Feed it with Publish.
	Events bool
}

// Server serves the JSON API. Create it with New.
type Server struct {
	store    *artifact.Store
	sessions session.Store
	logger   *zap.Logger
	opts     Options
	hub      *hub
	handler  http.Handler
}

// New builds a server over store and sessions.
func New(store *artifact.Store, sessions session.Store, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		store:    store,
		sessions: sessions,
		logger:   logger.Named("server"),
		opts:     opts,
	}
	if opts.Events {
		s.hub = newHub()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/pages", s.handlePages)
	mux.HandleFunc("GET /api/overview", s.handleOverview)
	mux.HandleFunc("GET /api/platforms/{platform}/summary", s.handleSummary)
	mux.HandleFunc("GET /api/pages/{page}/selection", s.handleGetSelection)
	mux.HandleFunc("PUT /api/pages/{page}/selection/{dimension}", s.handleSetSelection)
	mux.HandleFunc("DELETE /api/pages/{page}/selection/{dimension}", s.handleClearSelection)
	mux.HandleFunc("GET /api/pages/{page}/options/{dimension}", s.handleOptions)
	mux.HandleFunc("GET /api/pages/{page}/record", s.handleRecord)
	mux.HandleFunc("GET /api/pages/{page}/artifacts/{kind}", s.handleArtifact)
	mux.HandleFunc("GET /api/events", s.handleEvents)

	s.handler = s.recoverer(s.requestLogger(s.withSession(mux)))
	return s
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Publish fans a store change out to every /api/events subscriber.
// It never blocks; slow subscribers miss events.
func (s *Server) Publish(ev watch.Event) {
	if s.hub == nil {
		return
	}
	s.hub.broadcast(ev)
}

// Run listens on opts.Addr and serves until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx ends, then shuts down gracefully.
// Returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		ErrorLog:     zap.NewStdLog(s.logger),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	if s.hub != nil {
		s.hub.close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	<-errCh
	return nil
}
