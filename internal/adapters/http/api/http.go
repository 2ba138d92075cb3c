// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okhan/motoval/internal/adapters/repository"
	"github.com/okhan/motoval/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SeenAndRecord atomically checks and records a report ID.
	SeenAndRecord(ctx context.Context, id string) bool
	// Unrecord rolls back a seen mark after a failed enqueue.
	Unrecord(ctx context.Context, id string)

	// Submit pushes a submission for async scoring. Returns false on
	// backpressure.
	Submit(ctx context.Context, sub model.Submission) bool

	// Preview scores and values a submission synchronously without
	// persisting anything.
	Preview(ctx context.Context, sub model.Submission) (model.InspectionRecord, error)

	// Read operations over persisted inspections.
	Inspection(ctx context.Context, reportID string) (model.InspectionRecord, error)
	Recent(ctx context.Context, limit int) ([]model.InspectionRecord, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	inspectionsHandler *InspectionsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxListLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		inspectionsHandler: NewInspectionsHandler(deps, maxListLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/inspections/preview", MetricsMiddleware(s.inspectionsHandler.HandlePreview, "inspections_preview"))
	mux.HandleFunc("/inspections/", MetricsMiddleware(s.inspectionsHandler.HandleGetInspection, "inspection"))
	mux.HandleFunc("/inspections", MetricsMiddleware(s.inspectionsHandler.HandleInspections, "inspections"))
}

type ackResponse struct {
	Status    string `json:"status"`
	ReportID  string `json:"report_id"`
	Duplicate bool   `json:"duplicate"`
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

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, repository.ErrNotFound) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
