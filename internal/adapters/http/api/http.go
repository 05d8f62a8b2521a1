// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/adapters/repository"
	service "github.com/tillhouse/conference-meet-scorer-sub003/internal/app"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/ranking"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// PutSnapshot stores a meet snapshot. Duplicate submission ids are
	// acknowledged without effect.
	PutSnapshot(ctx context.Context, submissionID string, snap model.Snapshot) (types.PutResult, error)

	// Read operations expose computed results.
	Standings(ctx context.Context, meetID string, mode model.ViewMode) (ranking.Result, error)
	EventResults(ctx context.Context, meetID, eventID string, mode model.ViewMode) (ranking.EventResult, error)
	Availability(ctx context.Context, meetID string) (types.Availability, error)

	ListMeets(ctx context.Context) ([]repository.Summary, error)
	DeleteMeet(ctx context.Context, meetID string) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	meetsHandler  *MeetsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		meetsHandler:  NewMeetsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /meets", MetricsMiddleware(s.meetsHandler.HandleList, "meets"))
	mux.HandleFunc("PUT /meets/{meetID}", MetricsMiddleware(s.meetsHandler.HandlePut, "meet_put"))
	mux.HandleFunc("DELETE /meets/{meetID}", MetricsMiddleware(s.meetsHandler.HandleDelete, "meet_delete"))
	mux.HandleFunc("GET /meets/{meetID}/standings", MetricsMiddleware(s.meetsHandler.HandleStandings, "standings"))
	mux.HandleFunc("GET /meets/{meetID}/events/{eventID}", MetricsMiddleware(s.meetsHandler.HandleEvent, "event_results"))
	mux.HandleFunc("GET /meets/{meetID}/availability", MetricsMiddleware(s.meetsHandler.HandleAvailability, "availability"))
}

// putRequest is the body of PUT /meets/{meetID}.
type putRequest struct {
	SubmissionID string          `json:"submission_id"`
	Snapshot     *model.Snapshot `json:"snapshot"`
}

func (p putRequest) validate(meetID string) error {
	switch {
	case p.Snapshot == nil:
		return errors.New("missing snapshot")
	case strings.TrimSpace(meetID) == "":
		return errors.New("missing meet id")
	case p.Snapshot.Meet.ID != "" && p.Snapshot.Meet.ID != meetID:
		return ErrMeetID
	}
	return nil
}

type ackResponse struct {
	Status string `json:"status"`
	types.PutResult
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

// writeServiceError maps service and engine errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrEventNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrInvalidSnapshot), errors.Is(err, model.ErrUnknownViewMode):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, model.ErrMalformedConfiguration):
		writeError(w, http.StatusUnprocessableEntity, "malformed_configuration", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
