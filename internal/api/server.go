// Package api exposes the harvester's operational HTTP surface: health and
// Prometheus metrics.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/opencourts/casesearch/internal/metrics"
)

// Server serves /healthz and /metrics while a run is active.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// New builds a Server listening on the given port.
func New(port int, logger *zap.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		s.logger.Info("Metrics server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
