// Package server exposes the analyzer over a small JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"scoreahack/pkg/config"
	"scoreahack/pkg/logger"
	"scoreahack/pkg/models"
)

// shutdownTimeout bounds graceful shutdown after the context is cancelled
const shutdownTimeout = 10 * time.Second

// Analyzer runs the originality pipeline
type Analyzer interface {
	Analyze(ctx context.Context, id string) (*models.Analysis, error)
	AnalyzeURL(ctx context.Context, rawURL string) (*models.Analysis, error)
	AnalyzeText(ctx context.Context, idea string) (*models.Analysis, error)
}

// ProjectSource serves the raw fetch and search endpoints
type ProjectSource interface {
	FetchProject(ctx context.Context, id string) (*models.Project, error)
	Search(ctx context.Context, query string) []models.SearchCandidate
}

// Server is the HTTP front end
type Server struct {
	cfg      config.ServerConfig
	analyzer Analyzer
	source   ProjectSource
	logger   logger.Logger
	router   *chi.Mux
}

// New creates a server and registers its routes
func New(cfg config.ServerConfig, analyzer Analyzer, source ProjectSource, log logger.Logger) *Server {
	if log == nil {
		log = logger.GetLogger()
	}
	s := &Server{
		cfg:      cfg,
		analyzer: analyzer,
		source:   source,
		logger:   log.WithField("component", "server"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	s.RegisterHTTP(r)
	s.router = r
	return s
}

// RegisterHTTP mounts the API on r
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/projects/{id}", s.handleProject)
		r.Get("/search", s.handleSearch)
	})
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoWithFields("Server started", map[string]interface{}{"addr": s.cfg.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Stopping server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	s.logger.Info("Server stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log := s.logger.WithField("request_id", middleware.GetReqID(r.Context()))
		logger.LogRequest(log, r.Method, r.URL.RequestURI(), status, time.Since(start))
	})
}
