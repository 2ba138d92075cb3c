// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// ServiceStats is the point-in-time pipeline snapshot served by GET /stats.
// QueueLength and InspectionsStored are populated only while the service is
// started; a stopped service reports the configured capacities alone.
type ServiceStats struct {
	Started           bool `json:"started"`
	WorkerCount       int  `json:"worker_count"`
	QueueCapacity     int  `json:"queue_capacity"`
	DedupeCapacity    int  `json:"dedupe_capacity"`
	QueueLength       int  `json:"queue_length"`
	InspectionsStored int  `json:"inspections_stored"`
}

// StatsProvider supplies the pipeline snapshot behind the stats endpoint.
type StatsProvider interface {
	GetStats() ServiceStats
}

// StatsHandler serves the pipeline snapshot.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a stats handler over the given provider.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.provider.GetStats())
}
