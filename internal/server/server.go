// Package server exposes engine operations over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"milelog/internal/config"
	"milelog/internal/engine"
	"milelog/internal/logging"
	"milelog/internal/metrics"
)

// Server serves the JSON API and Prometheus metrics.
type Server struct {
	bind   string
	engine *engine.Engine
	logger *slog.Logger
	now    func() time.Time

	listener net.Listener
	server   *http.Server
}

// New builds a server bound to cfg.API.Bind.
func New(cfg *config.Config, eng *engine.Engine, logger *slog.Logger) *Server {
	s := &Server{
		bind:   strings.TrimSpace(cfg.API.Bind),
		engine: eng,
		logger: logging.NewComponentLogger(logger, "api-server"),
		now:    time.Now,
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.instrument)

	r.Handle("/metrics", metrics.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/records", s.handleListRecords)
		r.Post("/records", s.handleAppendRecord)
		r.Get("/trend", s.handleTrend)
		r.Get("/extrapolate", s.handleExtrapolate)
		r.Get("/predict", s.handlePredict)
		r.Post("/rebuild", s.handleRebuild)
		r.Get("/fleet", s.handleFleet)
	})
	return r
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}
