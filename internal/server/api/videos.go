package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// VideosPrefix is the route prefix for processed video downloads.
const VideosPrefix = "/api/videos/"

// VideoHandler serves processed videos as attachments.
type VideoHandler struct {
	dir string
}

// NewVideoHandler creates a new VideoHandler serving files from dir.
func NewVideoHandler(dir string) *VideoHandler {
	return &VideoHandler{dir: dir}
}

// ServeHTTP handles GET /api/videos/{name}.
func (h *VideoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, VideosPrefix)
	if name == "" || name != SecureFilename(name) {
		writeError(w, http.StatusNotFound, "Video not found")
		return
	}

	path := filepath.Join(h.dir, name)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "Video not found")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, path)
}
