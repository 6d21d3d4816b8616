package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/battrack/internal/capture"
)

// StreamPrefix is the route prefix for MJPEG playback of processed videos.
const StreamPrefix = "/api/stream/"

// StreamHandler plays a processed video back as MJPEG at its native frame rate.
type StreamHandler struct {
	dir  string
	open func(path string) capture.Source
}

// NewStreamHandler creates a new StreamHandler serving videos from dir.
func NewStreamHandler(dir string) *StreamHandler {
	return &StreamHandler{dir: dir, open: capture.NewVideoFile}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, StreamPrefix)
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}
	path := filepath.Join(h.dir, name)
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}

	src := h.open(path)
	if err := src.Open(); err != nil {
		http.Error(w, "Failed to open video", http.StatusInternalServerError)
		return
	}
	defer src.Close()

	interval := time.Second / 30
	if fps := src.FPS(); fps > 0 {
		interval = time.Duration(float64(time.Second) / fps)
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		frame, err := src.ReadFrame()
		if err != nil {
			if !errors.Is(err, capture.ErrEndOfStream) {
				http.Error(w, "Failed to read video", http.StatusInternalServerError)
			}
			return
		}

		// Encode as JPEG
		buf, err := gocv.IMEncode(".jpg", *frame)
		frame.Close()
		if err != nil {
			continue
		}

		// Write MJPEG frame
		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
		w.Write(buf.GetBytes())
		fmt.Fprintf(w, "\r\n")
		buf.Close()

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
