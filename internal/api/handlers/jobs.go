package handlers

import (
	"net/http"

	"github.com/nachov/ipcmeli/internal/scheduler"
)

// StatsProvider exposes scheduler job statistics.
type StatsProvider interface {
	Stats() map[string]scheduler.JobStats
}

// JobsHandler serves scheduler state.
type JobsHandler struct {
	stats StatsProvider
}

// NewJobsHandler creates the handler. A nil provider yields an empty
// job list, which lets the API run without an embedded scheduler.
func NewJobsHandler(stats StatsProvider) *JobsHandler {
	return &JobsHandler{stats: stats}
}

// GetJobs returns per-job run statistics.
// GET /api/jobs
func (h *JobsHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		respondJSON(w, http.StatusOK, map[string]scheduler.JobStats{})
		return
	}
	respondJSON(w, http.StatusOK, h.stats.Stats())
}
