// Package api exposes the gateway's HTTP surface: the render endpoint,
// the artifact retrieval route, template catalog management, and the
// operational endpoints (health, metrics, render history).
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/rendergate/internal/catalog"
	"git.home.luguber.info/inful/rendergate/internal/history"
	"git.home.luguber.info/inful/rendergate/internal/metrics"
	"git.home.luguber.info/inful/rendergate/internal/render"
	"git.home.luguber.info/inful/rendergate/internal/storage"
)

// HistoryReader serves the /renders inspection endpoint.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Record, error)
}

// Options wires the server's collaborators. Store and History are
// optional; nil disables the corresponding routes' functionality.
type Options struct {
	Addr     string
	Username string
	Password string

	Pipeline *render.Pipeline
	Store    *storage.FSStore
	Catalog  *catalog.Catalog
	History  HistoryReader

	// SpoolDir receives temporary multipart uploads.
	SpoolDir string

	// MetricsRegistry, when set, exposes Prometheus metrics on /metrics.
	MetricsRegistry *prom.Registry
}

// Server is the gateway HTTP server.
type Server struct {
	opts   Options
	router *chi.Mux
	server *http.Server
}

// NewServer creates the server and mounts all routes.
func NewServer(opts Options) *Server {
	s := &Server{
		opts:   opts,
		router: chi.NewRouter(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:        opts.Addr,
		Handler:     s.router,
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	return s
}

// setupRoutes configures middleware and all routes. Every route except
// the operational endpoints requires the boundary credential.
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	if s.opts.MetricsRegistry != nil {
		s.router.Method(http.MethodGet, "/metrics", metrics.HTTPHandler(s.opts.MetricsRegistry))
	}

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.BasicAuth("rendergate", map[string]string{
			s.opts.Username: s.opts.Password,
		}))

		r.Get("/", s.handleLanding)
		r.Get("/files/{hash}", s.handleFileRetrieval)

		r.Post("/template", s.handleTemplateAdd)
		r.Delete("/template/{fileId}", s.handleTemplateRemove)
		r.Get("/template", s.handleTemplateList)

		r.Post("/render", s.handleRender)
		r.Get("/renders", s.handleRenderHistory)
	})
}

// Handler returns the mounted router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
