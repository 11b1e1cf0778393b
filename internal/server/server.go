// Package server serves single-badge previews over HTTP.
//
// Every request builds a fresh renderer from the registry, so property
// overrides in one request never leak into another. Decoded images and
// parsed fonts are shared through the pipeline runner.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/osumercury/badgemaker/pkg/pipeline"
	"github.com/osumercury/badgemaker/pkg/render"
)

// Defaults for Server options.
const (
	DefaultAddr        = "127.0.0.1:8080"
	DefaultMaxBodySize = 1 << 20
	shutdownTimeout    = 5 * time.Second
)

// Option configures a Server.
type Option func(*Server)

// WithAssetDir allows badges to name background images relative to dir.
// Without it, requests that name a background are rejected.
func WithAssetDir(dir string) Option {
	return func(s *Server) { s.assetDir = dir }
}

// WithMaxBodySize limits request bodies.
func WithMaxBodySize(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// Server is the preview server.
type Server struct {
	registry *render.Registry
	runner   *pipeline.Runner
	logger   *log.Logger
	assetDir string
	maxBody  int64
	router   chi.Router
}

// New creates a server rendering with reg and sharing runner's caches.
func New(reg *render.Registry, runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		registry: reg,
		runner:   runner,
		logger:   runner.Logger,
		maxBody:  DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/renderers", s.handleRenderers)
	r.Post("/render/{name}", s.handleRender)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down preview server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}
