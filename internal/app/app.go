// Package app drives one analysis session: it owns the frame loop, runs the
// per-frame detectors, feeds the analysis engine, writes the annotated video
// and persists the result.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ayusman/battrack/internal/analysis"
	"github.com/ayusman/battrack/internal/capture"
	"github.com/ayusman/battrack/internal/detector"
	"github.com/ayusman/battrack/internal/store"
)

// ErrOpenInput is returned when the input video cannot be opened.
var ErrOpenInput = errors.New("could not open input video")

// ErrNoDetector is returned when a required detector is missing.
var ErrNoDetector = errors.New("detector not configured")

// Detectors is the set of models used by a session.
type Detectors struct {
	Bat   detector.BoxDetector
	Ball  detector.BoxDetector
	Stump detector.BoxDetector
	Pose  detector.PoseDetector
}

// Validate checks that every detector is set.
func (d Detectors) Validate() error {
	switch {
	case d.Bat == nil:
		return fmt.Errorf("%w: bat", ErrNoDetector)
	case d.Ball == nil:
		return fmt.Errorf("%w: ball", ErrNoDetector)
	case d.Stump == nil:
		return fmt.Errorf("%w: stump", ErrNoDetector)
	case d.Pose == nil:
		return fmt.Errorf("%w: pose", ErrNoDetector)
	}
	return nil
}

// Close releases all detectors and returns the first error.
func (d Detectors) Close() error {
	var first error
	for _, c := range []interface{ Close() error }{d.Bat, d.Ball, d.Stump, d.Pose} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewYOLODetectors starts one YOLO detector per configured model.
func NewYOLODetectors(bat, ball, stump, pose detector.Config) (Detectors, error) {
	var d Detectors

	batDet, err := detector.NewYOLODetector(bat)
	if err != nil {
		return Detectors{}, fmt.Errorf("bat detector: %w", err)
	}
	d.Bat = batDet

	ballDet, err := detector.NewYOLODetector(ball)
	if err != nil {
		d.Close()
		return Detectors{}, fmt.Errorf("ball detector: %w", err)
	}
	d.Ball = ballDet

	stumpDet, err := detector.NewYOLODetector(stump)
	if err != nil {
		d.Close()
		return Detectors{}, fmt.Errorf("stump detector: %w", err)
	}
	d.Stump = stumpDet

	poseDet, err := detector.NewYOLODetector(pose)
	if err != nil {
		d.Close()
		return Detectors{}, fmt.Errorf("pose detector: %w", err)
	}
	d.Pose = poseDet

	return d, nil
}

// SourceFunc opens a frame source for an input path.
type SourceFunc func(path string) capture.Source

// SinkFunc creates an annotated video sink with the input's frame rate and size.
type SinkFunc func(path string, fps float64, width, height int) (capture.Sink, error)

// Config holds configuration options for the Analyzer.
type Config struct {
	Detectors Detectors
	Analysis  analysis.Config
	// Store persists finished sessions when set.
	Store  *store.Store
	Logger zerolog.Logger

	// OpenSource and OpenSink default to video files via GoCV.
	OpenSource SourceFunc
	OpenSink   SinkFunc
}

// FrameUpdate is reported after every processed frame.
type FrameUpdate struct {
	Frame               int                   `json:"frame"`
	SpeedKMPH           float64               `json:"speed_kmh"`
	LastImpactSpeedKMPH float64               `json:"last_impact_speed_kmh"`
	Shots               int                   `json:"shots"`
	Impact              *analysis.ImpactEvent `json:"impact"`
}

// ProgressFunc receives per-frame updates. It runs on the frame loop.
type ProgressFunc func(FrameUpdate)

// Report is the outcome of one Analyze call.
type Report struct {
	SessionID      string           `json:"session_id"`
	Output         string           `json:"output"`
	FPS            float64          `json:"fps"`
	PixelsPerMeter float64          `json:"pixels_per_meter"`
	Calibrated     bool             `json:"calibrated"`
	Summary        analysis.Summary `json:"summary"`
}

// Analyzer runs analysis sessions. Sessions are independent, but one
// Analyzer shares its detectors, so Analyze calls are serialized.
type Analyzer struct {
	config Config
	log    zerolog.Logger
	sem    chan struct{}
}

// New creates a new Analyzer with the given configuration.
func New(config Config) *Analyzer {
	if config.OpenSource == nil {
		config.OpenSource = capture.NewVideoFile
	}
	if config.OpenSink == nil {
		config.OpenSink = func(path string, fps float64, width, height int) (capture.Sink, error) {
			return capture.NewVideoWriter(path, fps, width, height)
		}
	}
	if config.Analysis.HistorySize == 0 {
		logger := config.Analysis.Logger
		config.Analysis = analysis.DefaultConfig()
		config.Analysis.Logger = logger
	}

	return &Analyzer{
		config: config,
		log:    config.Logger.With().Str("component", "analyzer").Logger(),
		sem:    make(chan struct{}, 1),
	}
}

// Close releases the detectors.
func (a *Analyzer) Close() error {
	return a.config.Detectors.Close()
}

// Analyze processes the video at input, writes the annotated video to
// output and returns the session report. progress may be nil.
func (a *Analyzer) Analyze(ctx context.Context, input, output string, progress ProgressFunc) (*Report, error) {
	if err := a.config.Detectors.Validate(); err != nil {
		return nil, err
	}

	select {
	case a.sem <- struct{}{}:
		defer func() { <-a.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	src := a.config.OpenSource(input)
	if err := src.Open(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenInput, input, err)
	}
	defer src.Close()

	fps := src.FPS()
	width, height := src.Size()

	sink, err := a.config.OpenSink(output, fps, width, height)
	if err != nil {
		return nil, fmt.Errorf("create output video: %w", err)
	}
	defer sink.Close()

	a.log.Info().
		Str("input", input).
		Float64("fps", fps).
		Int("width", width).
		Int("height", height).
		Msg("analysis started")

	cal, err := analysis.Calibrate(src, a.config.Detectors.Stump, a.config.Analysis)
	if err != nil {
		return nil, fmt.Errorf("calibrate: %w", err)
	}

	engine := analysis.NewEngine(a.config.Analysis, cal, fps)
	frames, err := a.runPipeline(ctx, src, sink, engine, progress)
	if err != nil {
		return nil, err
	}

	if err := sink.Close(); err != nil {
		return nil, fmt.Errorf("finalize output video: %w", err)
	}

	report := &Report{
		SessionID:      uuid.NewString(),
		Output:         output,
		FPS:            fps,
		PixelsPerMeter: cal.PixelsPerMeter,
		Calibrated:     cal.Found,
		Summary:        engine.Summary(),
	}

	if a.config.Store != nil {
		if err := a.persist(report, input, frames); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}

	a.log.Info().
		Str("session", report.SessionID).
		Int("frames", report.Summary.TotalFrames).
		Int("shots", report.Summary.TotalShots).
		Msg("analysis finished")

	return report, nil
}
