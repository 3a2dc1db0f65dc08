package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/quake-dashboard-service/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker = sharedobs.ReadinessChecker

// Snapshotter computes a fresh dashboard snapshot per call.
type Snapshotter interface {
	Snapshot(ctx context.Context) domain.Snapshot
}

// Server exposes the dashboard API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type statsResponse struct {
	GeneratedAt time.Time             `json:"generated_at"`
	Stats       domain.AggregateStats `json:"stats"`
	Panel       domain.StatsView      `json:"panel"`
}

type markersResponse struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	Markers     []domain.MarkerDescriptor `json:"markers"`
	View        domain.View               `json:"view"`
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /api/v1 dashboard routes. Every API request runs a fresh fetch.
func NewServer(addr string, snapshots Snapshotter, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      withCORS(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/dashboard", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, snapshots.Snapshot(r.Context()))
	})
	mux.HandleFunc("GET /api/v1/stats", func(w http.ResponseWriter, r *http.Request) {
		snap := snapshots.Snapshot(r.Context())
		s.writeJSON(w, statsResponse{GeneratedAt: snap.GeneratedAt, Stats: snap.Stats, Panel: snap.Panel})
	})
	mux.HandleFunc("GET /api/v1/markers", func(w http.ResponseWriter, r *http.Request) {
		snap := snapshots.Snapshot(r.Context())
		s.writeJSON(w, markersResponse{GeneratedAt: snap.GeneratedAt, Markers: snap.Markers, View: snap.View})
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// withCORS lets a separately hosted map frontend read the API.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v before committing a 200; encode failures answer 500.
func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response failed", "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to encode response"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(append(data, '\n')) //nolint:errcheck // best-effort response
}
