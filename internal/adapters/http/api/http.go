// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/crease/internal/adapters/mq/queue"
	"github.com/okian/crease/internal/domain/ranking"
	"github.com/okian/crease/internal/telemetry"
)

// Dependencies bundles what the handlers need from the engine. An
// interface keeps the handler layer loosely coupled to the service.
type Dependencies interface {
	// Ingest queues a telemetry update. Returns false on backpressure.
	Ingest(ctx context.Context, u queue.Update) bool

	// Read operations over contest standings.
	Leaderboard(ctx context.Context, contestID string, limit, offset int) ([]ranking.Entry, int, error)
	UserRank(ctx context.Context, contestID, userID string) (ranking.Entry, error)

	// Stats exposes operational counters.
	Stats(ctx context.Context) map[string]any
}

// Server wires HTTP routes for the engine API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	telemetryHandler   *TelemetryHandler
	leaderboardHandler *LeaderboardHandler
}

// NewServer creates an API server with all handlers. It fails only when
// the telemetry schema does not compile.
func NewServer(deps Dependencies, maxLeaderboardLimit int) (*Server, error) {
	validator, err := telemetry.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("building telemetry validator: %w", err)
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		telemetryHandler:   NewTelemetryHandler(deps, validator),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
	}, nil
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/telemetry", MetricsMiddleware(s.telemetryHandler.HandlePostTelemetry, "telemetry"))
	mux.HandleFunc("/contests/", MetricsMiddleware(s.leaderboardHandler.HandleContestReads, "contests"))
}

// leaderboardResponse is the paginated read shape.
type leaderboardResponse struct {
	Entries []ranking.Entry `json:"entries"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
	Total   int             `json:"total"`
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
