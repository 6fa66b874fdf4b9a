// Package api serves the village over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/midolearning/village/internal/catalog"
	"github.com/midolearning/village/internal/metrics"
	"github.com/midolearning/village/internal/progression"
	"github.com/midolearning/village/internal/village"
)

const maxBodyBytes = 64 << 10

// Server is the village HTTP API server.
type Server struct {
	svc     *village.Service
	catalog *catalog.Catalog
	logger  *slog.Logger
	metrics *metrics.Metrics // nil when /metrics is disabled
}

// NewServer creates a new API server. A nil logger discards request logs.
func NewServer(svc *village.Service, cat *catalog.Catalog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{svc: svc, catalog: cat, logger: logger}
}

// EnableMetrics mounts the /metrics Prometheus endpoint for m.
func (s *Server) EnableMetrics(m *metrics.Metrics) { s.metrics = m }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/skills", s.handleListSkills)
		r.Get("/levels/{exp}", s.handleLevel)

		r.Post("/characters", s.handleCreateCharacter)
		r.Route("/characters/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetCharacter)
			r.Post("/sessions", s.handleCompleteSession)
			r.Get("/sessions", s.handleListSessions)
			r.Get("/rewards", s.handleListRewards)
			r.Post("/redeem", s.handleRedeem)
		})
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	return r
}

// requestLogger logs one line per request through slog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// writeJSON writes a JSON response. The status is already sent when encoding
// fails, so the failure is only logged.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "status", status, "err", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, kind, msg string) {
	s.writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    kind,
		},
	})
}

// writeServiceError maps domain errors onto HTTP status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *progression.ValidationError
	switch {
	case errors.As(err, &verr) && !progression.IsConfiguration(err):
		s.writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{
				"message": err.Error(),
				"type":    "validation",
				"field":   verr.Field,
			},
		})
	case progression.IsConfiguration(err):
		s.writeError(w, http.StatusUnprocessableEntity, "configuration", err.Error())
	case errors.Is(err, village.ErrCharacterNotFound):
		s.writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, village.ErrDuplicateSession):
		s.writeError(w, http.StatusConflict, "duplicate_session", err.Error())
	case errors.Is(err, village.ErrStageLocked):
		s.writeError(w, http.StatusForbidden, "stage_locked", err.Error())
	case errors.Is(err, village.ErrInsufficientBalance):
		s.writeError(w, http.StatusConflict, "insufficient_balance", err.Error())
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		s.writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
