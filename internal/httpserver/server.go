// internal/httpserver/server.go
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/skyroute/internal/config"
	"github.com/MrSnakeDoc/skyroute/internal/httpserver/deps"
	"github.com/MrSnakeDoc/skyroute/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/skyroute/internal/httpserver/mw"
	"github.com/MrSnakeDoc/skyroute/internal/httpserver/routes"
	"github.com/MrSnakeDoc/skyroute/internal/logger"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http    *http.Server
	logger  logger.Logger
	started time.Time
}

// NewHandler builds the router: admin routes under /_skyroute, every other
// request goes through the edge.
func NewHandler(loggerClient logger.Logger, d deps.Deps) http.Handler {
	r := chi.NewRouter()

	// --- Global middlewares (safe defaults)
	r.Use(middleware.RequestID) // X-Request-ID on each request
	r.Use(middleware.Recoverer) // never crash the process on panic
	r.Use(mw.Log(loggerClient)) // structured access logs

	r.Route(routes.AdminPrefix, func(admin chi.Router) {
		admin.Use(middleware.Timeout(10 * time.Second))
		routes.RegisterAll(admin, d)
	})

	// AWS traffic: any method, any path. Proxied calls can be long-lived,
	// so there is no per-request timeout here.
	edge := handlers.Edge(d)
	r.Handle("/", edge)
	r.Handle("/*", edge)

	return r
}

// New builds the HTTP server (router, middlewares, route registration).
func New(cfg *config.Config, loggerClient logger.Logger, d deps.Deps) *Server {
	s := &http.Server{
		Addr:              cfg.ListenPort,
		Handler:           NewHandler(loggerClient, d),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{
		http:    s,
		logger:  loggerClient,
		started: d.StartTime,
	}
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.logger.Infof("HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	// http.ErrServerClosed is expected on graceful shutdown.
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}
