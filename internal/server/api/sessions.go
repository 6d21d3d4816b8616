package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ayusman/battrack/internal/store"
)

// SessionHandler handles HTTP requests for stored analysis sessions.
type SessionHandler struct {
	store     *store.Store
	outputDir string
}

// NewSessionHandler creates a new SessionHandler. Deleting a session also
// removes its processed video from outputDir when set.
func NewSessionHandler(s *store.Store, outputDir string) *SessionHandler {
	return &SessionHandler{store: s, outputDir: outputDir}
}

// ServeHTTP routes requests to the appropriate method.
// Expected paths: /api/sessions, /api/sessions/{id},
// /api/sessions/{id}/impacts and /api/sessions/{id}/frames.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := parts[0]

	if len(parts) == 2 {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		switch parts[1] {
		case "impacts":
			h.impacts(w, r, id)
		case "frames":
			h.frames(w, r, id)
		default:
			writeError(w, http.StatusNotFound, "Not found")
		}
		return
	}
	if len(parts) > 2 {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Response types

type impactResponse struct {
	Frame     int     `json:"frame"`
	SpeedKMPH float64 `json:"speed_kmh"`
	Category  string  `json:"category"`
	Location  [2]int  `json:"location"`
}

type sessionResponse struct {
	ID                string           `json:"id"`
	InputName         string           `json:"input_name"`
	OutputName        string           `json:"output_name"`
	ProcessedVideoURL string           `json:"processed_video_url,omitempty"`
	FPS               float64          `json:"fps"`
	PixelsPerMeter    float64          `json:"pixels_per_meter"`
	Calibrated        bool             `json:"calibrated"`
	TotalFrames       int              `json:"total_frames"`
	TotalShots        int              `json:"total_shots"`
	AverageSpeedKMPH  *float64         `json:"average_speed_kmh,omitempty"`
	MaxSpeedKMPH      *float64         `json:"max_speed_kmh,omitempty"`
	PowerHitCategory  string           `json:"power_hit_category,omitempty"`
	CreatedAt         string           `json:"created_at"`
	Impacts           []impactResponse `json:"impacts,omitempty"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type listImpactsResponse struct {
	Impacts []impactResponse `json:"impacts"`
}

type frameResponse struct {
	Frame        int      `json:"frame"`
	BatSpeedKMPH float64  `json:"bat_speed_kmh"`
	MinDistance  *float64 `json:"min_distance,omitempty"`
}

type listFramesResponse struct {
	Frames []frameResponse `json:"frames"`
}

func toImpactResponses(impacts []store.Impact) []impactResponse {
	out := make([]impactResponse, 0, len(impacts))
	for _, im := range impacts {
		out = append(out, impactResponse{
			Frame:     im.Frame,
			SpeedKMPH: im.SpeedKMPH,
			Category:  im.Category,
			Location:  [2]int{im.X, im.Y},
		})
	}
	return out
}

// toResponse converts a store.Session to a sessionResponse.
func toResponse(r *http.Request, s *store.Session) sessionResponse {
	resp := sessionResponse{
		ID:               s.ID,
		InputName:        s.InputName,
		OutputName:       s.OutputName,
		FPS:              s.FPS,
		PixelsPerMeter:   s.PixelsPerMeter,
		Calibrated:       s.Calibrated,
		TotalFrames:      s.TotalFrames,
		TotalShots:       s.TotalShots,
		AverageSpeedKMPH: s.AverageSpeedKMPH,
		MaxSpeedKMPH:     s.MaxSpeedKMPH,
		PowerHitCategory: s.PowerHitCategory,
		CreatedAt:        s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if s.OutputName != "" {
		resp.ProcessedVideoURL = videoURL(r, s.OutputName)
	}
	if len(s.Impacts) > 0 {
		resp.Impacts = toImpactResponses(s.Impacts)
	}
	return resp
}

// list handles GET /api/sessions and returns all sessions.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, toResponse(r, s))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/sessions/{id} and returns a session with its impacts.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	session, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(r, session))
}

// delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	session, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	if err := h.store.Sessions().Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	if h.outputDir != "" && session.OutputName != "" {
		os.Remove(filepath.Join(h.outputDir, filepath.Base(session.OutputName)))
	}

	w.WriteHeader(http.StatusNoContent)
}

// impacts handles GET /api/sessions/{id}/impacts.
func (h *SessionHandler) impacts(w http.ResponseWriter, r *http.Request, id string) {
	if !h.exists(w, id) {
		return
	}

	impacts, err := h.store.Impacts().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list impacts")
		return
	}

	writeJSON(w, http.StatusOK, listImpactsResponse{Impacts: toImpactResponses(impacts)})
}

// frames handles GET /api/sessions/{id}/frames.
func (h *SessionHandler) frames(w http.ResponseWriter, r *http.Request, id string) {
	if !h.exists(w, id) {
		return
	}

	samples, err := h.store.Frames().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list frames")
		return
	}

	response := listFramesResponse{Frames: make([]frameResponse, 0, len(samples))}
	for _, fs := range samples {
		response.Frames = append(response.Frames, frameResponse{
			Frame:        fs.Frame,
			BatSpeedKMPH: fs.BatSpeedKMPH,
			MinDistance:  fs.MinDistance,
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// exists writes a 404 and returns false when the session is unknown.
func (h *SessionHandler) exists(w http.ResponseWriter, id string) bool {
	if _, err := h.store.Sessions().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return false
	}
	return true
}
