package analysis

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ayusman/battrack/internal/detector"
)

// FrameSource is the part of a video source calibration needs.
type FrameSource interface {
	ReadFrame() (*gocv.Mat, error)
	Rewind() error
}

// Calibration is the pixels-per-meter scale for one session.
type Calibration struct {
	PixelsPerMeter float64
	// Found is false when the default scale was substituted.
	Found bool
	// Frame is the zero-based frame the reference was found on, -1 if not found.
	Frame int
	// ReferenceHeightPx is the accepted reference detection height.
	ReferenceHeightPx float64
	// FramesSearched is the number of frames read during the search.
	FramesSearched int
}

// DefaultCalibration returns the fallback scale.
func DefaultCalibration(cfg Config) Calibration {
	return Calibration{
		PixelsPerMeter: cfg.DefaultPixelsPerMeter,
		Frame:          -1,
	}
}

// Calibrate searches the first cfg.CalibrationFrames frames for the reference
// object and derives the pixels-per-meter scale from the first detection
// taller than cfg.MinReferenceHeightPx. The source is rewound to frame 0
// before returning, whether or not a reference was found.
//
// A read failure ends the search early. Detector errors are returned.
func Calibrate(src FrameSource, ref detector.BoxDetector, cfg Config) (Calibration, error) {
	log := cfg.Logger
	searched := 0

	for i := 0; i < cfg.CalibrationFrames; i++ {
		frame, err := src.ReadFrame()
		if err != nil {
			break
		}
		searched++

		detections, err := ref.Detect(frame)
		frame.Close()
		if err != nil {
			return Calibration{}, fmt.Errorf("reference detection on frame %d: %w", i, err)
		}

		best, ok := detector.Best(detections)
		if !ok {
			continue
		}

		height := best.Box.Height()
		if height <= cfg.MinReferenceHeightPx {
			continue
		}

		cal := Calibration{
			PixelsPerMeter:    height / cfg.ReferenceHeightMeters,
			Found:             true,
			Frame:             i,
			ReferenceHeightPx: height,
			FramesSearched:    searched,
		}
		if err := src.Rewind(); err != nil {
			return Calibration{}, fmt.Errorf("rewind after calibration: %w", err)
		}

		log.Info().
			Int("frame", i).
			Float64("pixels_per_meter", cal.PixelsPerMeter).
			Msg("scale established")
		return cal, nil
	}

	if err := src.Rewind(); err != nil {
		return Calibration{}, fmt.Errorf("rewind after calibration: %w", err)
	}

	cal := DefaultCalibration(cfg)
	cal.FramesSearched = searched
	log.Warn().
		Int("frames_searched", searched).
		Float64("pixels_per_meter", cal.PixelsPerMeter).
		Msg("reference object not found, using default scale")
	return cal, nil
}

// ErrNoScale is returned by Validate for an unusable calibration.
var ErrNoScale = errors.New("calibration scale is not positive")

// Validate checks that the calibration can be used for unit conversion.
func (c Calibration) Validate() error {
	if c.PixelsPerMeter <= 0 {
		return ErrNoScale
	}
	return nil
}
