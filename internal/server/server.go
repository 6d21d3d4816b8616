// Package server provides the HTTP server for battrack.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/battrack/internal/server/api"
	"github.com/ayusman/battrack/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	// Analyzer enables POST /api/analyze when set.
	Analyzer  api.Analyzer
	UploadDir string
	OutputDir string
	Logger    zerolog.Logger
}

// Server represents the HTTP server for the battrack application.
type Server struct {
	config   Config
	mux      *http.ServeMux
	progress *ProgressHub
	start    time.Time
	log      zerolog.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	log := config.Logger.With().Str("component", "server").Logger()
	s := &Server{
		config:   config,
		mux:      http.NewServeMux(),
		progress: NewProgressHub(log),
		start:    time.Now(),
		log:      log,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/api/progress", s.progress)

	if s.config.Analyzer != nil {
		s.mux.Handle("/api/analyze", api.NewAnalyzeHandler(api.AnalyzeConfig{
			Analyzer:  s.config.Analyzer,
			UploadDir: s.config.UploadDir,
			OutputDir: s.config.OutputDir,
			Progress:  s.progress.Publish,
			Logger:    s.log,
		}))
	}

	if s.config.OutputDir != "" {
		s.mux.Handle(api.VideosPrefix, api.NewVideoHandler(s.config.OutputDir))
		s.mux.Handle(StreamPrefix, NewStreamHandler(s.config.OutputDir))
	}

	// Register session API handlers if Store is configured
	if s.config.Store != nil {
		sessions := api.NewSessionHandler(s.config.Store, s.config.OutputDir)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
		s.mux.Handle("/api/stats", api.NewStatsHandler(s.config.Store))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// Progress returns the WebSocket progress hub.
func (s *Server) Progress() *ProgressHub {
	return s.progress
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status":   "ok",
		"uptime":   time.Since(s.start).String(),
		"analyzer": s.config.Analyzer != nil,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("listening")
	return srv.ListenAndServe()
}
