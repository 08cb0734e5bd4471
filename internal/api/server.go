// Package api provides the monu backend HTTP API.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"monu/config"
	"monu/internal/logging"
	"monu/internal/metrics"
	"monu/internal/port"
	"monu/internal/server"
	"monu/internal/usecase"
)

// Server serves grammar checks and highlights over HTTP and websocket.
type Server struct {
	checker *usecase.CheckUseCase
	history port.CorrectionHistory
	cfg     config.ServerConfig
	started time.Time
}

func NewServer(checker *usecase.CheckUseCase, cfg config.ServerConfig) *Server {
	return &Server{
		checker: checker,
		cfg:     cfg,
		started: time.Now(),
	}
}

// WithHistory exposes stored corrections on /history and their count on
// /health. A nil history leaves both off.
func (s *Server) WithHistory(h port.CorrectionHistory) *Server {
	s.history = h
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.route(mux, http.MethodPost, "/check-grammar", s.handleCheck)
	s.route(mux, http.MethodPost, "/highlight", s.handleHighlight)
	s.route(mux, http.MethodGet, "/health", s.handleHealth)
	if s.history != nil {
		s.route(mux, http.MethodGet, "/history", s.handleHistory)
		s.route(mux, http.MethodDelete, "/history", s.handleClearHistory)
	}
	if s.cfg.EnableMetric {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	if s.cfg.EnableWS {
		s.route(mux, http.MethodGet, "/ws", s.handleWebSocket)
	}

	var handler http.Handler = mux
	handler = server.RecoveryMiddleware(handler)
	handler = logging.CombinedMiddleware(handler)
	return handler
}

// ListenAndServe blocks until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	return server.Run(ctx, "backend", s.cfg.Addr, s.Handler())
}

func (s *Server) route(mux *http.ServeMux, method, path string, h http.HandlerFunc) {
	mux.Handle(method+" "+path, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := logging.NewResponseWriter(w)
		h(rw, r)
		metrics.HTTPRequests.WithLabelValues(path, strconv.Itoa(rw.StatusCode)).Inc()
	}))
}
