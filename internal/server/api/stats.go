package api

import (
	"net/http"

	"github.com/ayusman/battrack/internal/store"
)

// StatsHandler reports aggregate figures across all stored sessions.
type StatsHandler struct {
	store *store.Store
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(s *store.Store) *StatsHandler {
	return &StatsHandler{store: s}
}

type statsResponse struct {
	Sessions   int            `json:"sessions"`
	Categories map[string]int `json:"categories"`
}

// ServeHTTP handles GET /api/stats.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	counts, err := h.store.Impacts().CountByCategory()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count impacts")
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Sessions:   len(sessions),
		Categories: counts,
	})
}
