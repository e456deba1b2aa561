// Package server exposes the dashboard snapshot, health and metrics over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bingotables/bulkmsg/internal/config"
	"github.com/bingotables/bulkmsg/internal/metrics"
	"github.com/bingotables/bulkmsg/internal/monitor"
)

// Server is the local status server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	config     *config.ServerConfig
	poller     *monitor.Poller
	gate       *monitor.Gate
	metrics    *metrics.Metrics
	version    string
	logger     *slog.Logger
	startTime  time.Time
}

// New creates a status server. m may be nil, in which case /metrics is not served.
func New(cfg *config.ServerConfig, poller *monitor.Poller, gate *monitor.Gate, m *metrics.Metrics, version string, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		poller:    poller,
		gate:      gate,
		metrics:   m,
		version:   version,
		logger:    logger.With("component", "server"),
		startTime: time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)
	if s.metrics != nil {
		s.router.Use(metrics.HTTPMiddleware)
	}

	s.router.Get("/health", s.handleHealth)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	s.router.Route("/api/v1/dashboard", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/", s.handleDashboard)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/pause", s.handlePause)
		r.Post("/resume", s.handleResume)
	})
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting status server", "addr", s.config.ListenAddr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down status server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
