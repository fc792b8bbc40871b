// Package server exposes the validation engine and run store over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ledgerline/soi-cli/internal/config"
	"github.com/ledgerline/soi-cli/internal/monitoring"
	"github.com/ledgerline/soi-cli/internal/store"
	"github.com/ledgerline/soi-cli/internal/validate"
)

// Server is the HTTP API for synchronous validation and run lookups.
type Server struct {
	router    chi.Router
	engine    validate.Engine
	store     store.Store
	collector *monitoring.Collector
	cfg       config.ServerConfig
	log       *zap.Logger
}

// New creates and configures the HTTP server. The store may be nil, in
// which case validation works but runs are not persisted and the run
// endpoints report 503.
func New(engine validate.Engine, st store.Store, cfg config.ServerConfig) *Server {
	s := &Server{
		engine: engine,
		store:  st,
		cfg:    cfg,
		log:    zap.L().With(zap.String("component", "server")),
	}
	if st != nil {
		s.collector = monitoring.NewCollector(st)
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if s.cfg.RateLimit > 0 {
		r.Use(newIPRateLimiter(s.cfg.RateLimit, s.cfg.RateBurst, s.log).handler)
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}", s.handleGetRun)
	})

	s.router = r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.Int("port", s.cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return eris.Wrap(err, "server: shutdown")
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server: listen")
		}
		return nil
	}
}
