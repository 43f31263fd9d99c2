// Package server serves the dashboard page, its charts and a small JSON API
// over the state computed at startup.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/David-Botos/gss-dashboard/pkg/config"
	"github.com/David-Botos/gss-dashboard/pkg/pipeline"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
	cleaningSamples   = 20
)

// Server handles dashboard requests. All state is read-only.
type Server struct {
	state  *pipeline.State
	cfg    *config.Config
	logger *zap.Logger
	page   *template.Template
	intro  template.HTML
}

// NewServer creates a server over a completed startup state
func NewServer(state *pipeline.State, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if state == nil || state.Table == nil || state.Report == nil {
		return nil, errors.New("server requires a completed startup state")
	}

	intro, err := renderMarkdown(introMarkdown)
	if err != nil {
		return nil, fmt.Errorf("failed to render intro: %w", err)
	}

	page, err := template.New("page").Funcs(pageFuncs).Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	return &Server{
		state:  state,
		cfg:    cfg,
		logger: logger.Named("server"),
		page:   page,
		intro:  intro,
	}, nil
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)

	r.Route("/charts", func(r chi.Router) {
		r.Get("/explore.svg", s.handleExploreChart)
		r.Get("/{name}.svg", s.handleChart)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/report", s.handleReport)
		r.Get("/explore", s.handleExplore)
		r.Get("/cleaning", s.handleCleaning)
	})

	if s.cfg.Debug {
		r.Mount("/debug", middleware.Profiler())
	}
	return r
}

// Serve listens on the configured address until ctx is cancelled, then
// shuts down gracefully
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("Dashboard listening",
		zap.String("addr", ln.Addr().String()),
		zap.Bool("debug", s.cfg.Debug),
		zap.String("load_id", s.state.Report.LoadID))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("Graceful shutdown failed, closing connections", zap.Error(err))
		if err := srv.Close(); err != nil {
			s.logger.Error("Failed to close server", zap.Error(err))
		}
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
