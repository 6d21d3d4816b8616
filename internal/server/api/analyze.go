package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/battrack/internal/analysis"
	"github.com/ayusman/battrack/internal/app"
)

// maxUploadMemory is the part of a multipart upload kept in memory; the
// rest spills to temporary files.
const maxUploadMemory = 32 << 20

// AllowedExtensions are the accepted upload video types.
var AllowedExtensions = map[string]bool{
	"mp4": true,
	"avi": true,
	"mov": true,
	"mkv": true,
}

// Analyzer runs one analysis session.
type Analyzer interface {
	Analyze(ctx context.Context, input, output string, progress app.ProgressFunc) (*app.Report, error)
}

// AnalyzeConfig holds the dependencies of AnalyzeHandler.
type AnalyzeConfig struct {
	Analyzer  Analyzer
	UploadDir string
	OutputDir string
	// Progress receives per-frame updates of the running analysis.
	Progress app.ProgressFunc
	Logger   zerolog.Logger
	// Now defaults to time.Now; it names uploaded and processed files.
	Now func() time.Time
}

// AnalyzeHandler accepts a video upload, analyzes it and returns the summary
// with a link to the annotated video.
type AnalyzeHandler struct {
	config AnalyzeConfig
	log    zerolog.Logger
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(config AnalyzeConfig) *AnalyzeHandler {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &AnalyzeHandler{
		config: config,
		log:    config.Logger.With().Str("handler", "analyze").Logger(),
	}
}

type analyzeResponse struct {
	Message           string           `json:"message"`
	ProcessedVideoURL string           `json:"processed_video_url"`
	SessionID         string           `json:"session_id"`
	AnalysisData      analysis.Summary `json:"analysis_data"`
}

// ServeHTTP handles POST /api/analyze.
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "No video file provided")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No video file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No selected file")
		return
	}

	if !allowedFile(header.Filename) {
		writeError(w, http.StatusBadRequest, "Unsupported file type")
		return
	}
	name := uploadName(header.Filename)

	timestamp := h.config.Now().Format("20060102150405")
	inputName := fmt.Sprintf("%s_%s", timestamp, name)
	outputName := fmt.Sprintf("%s_processed_%s", timestamp, name)
	inputPath := filepath.Join(h.config.UploadDir, inputName)
	outputPath := filepath.Join(h.config.OutputDir, outputName)

	if err := saveUpload(file, inputPath); err != nil {
		h.log.Error().Err(err).Str("file", inputName).Msg("failed to save upload")
		writeError(w, http.StatusInternalServerError, "Failed to save upload")
		return
	}
	if err := os.MkdirAll(h.config.OutputDir, 0755); err != nil {
		h.log.Error().Err(err).Msg("failed to create output directory")
		writeError(w, http.StatusInternalServerError, "Failed to prepare output")
		return
	}

	report, err := h.config.Analyzer.Analyze(r.Context(), inputPath, outputPath, h.config.Progress)
	if err != nil {
		h.log.Error().Err(err).Str("file", inputName).Msg("error during video processing")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Processing failed: %v", err))
		return
	}

	if _, err := os.Stat(outputPath); err != nil {
		writeError(w, http.StatusInternalServerError, "Analysis ran, but the output file was not created.")
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Message:           "Analysis complete",
		ProcessedVideoURL: videoURL(r, outputName),
		SessionID:         report.SessionID,
		AnalysisData:      report.Summary,
	})
}

func saveUpload(src io.Reader, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	dst, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func allowedFile(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	return AllowedExtensions[strings.ToLower(name[i+1:])]
}

// uploadName sanitizes an accepted upload name. The extension is kept even
// when nothing of the stem survives sanitizing.
func uploadName(raw string) string {
	i := strings.LastIndex(raw, ".")
	ext := raw[i+1:]
	stem := SecureFilename(raw[:i])
	if stem == "" {
		stem = "video"
	}
	return stem + "." + ext
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SecureFilename reduces an uploaded file name to a safe base name made of
// ASCII letters, digits, '_', '.' and '-'.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}
