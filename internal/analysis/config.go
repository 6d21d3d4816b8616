// Package analysis turns per-frame bat, ball and pose detections into a
// calibrated swing speed and a debounced stream of bat-ball impact events.
package analysis

import "github.com/rs/zerolog"

// Defaults for one analysis session.
const (
	DefaultHistorySize           = 10
	DefaultCooldownFrames        = 15
	DefaultMinSpeedKMPH          = 15.0
	DefaultMaxSpeedKMPH          = 250.0
	DefaultImpactDistanceMeters  = 0.5
	DefaultWristConfidence       = 0.5
	DefaultCalibrationFrames     = 150
	DefaultMinReferenceHeightPx  = 20.0
	DefaultReferenceHeightMeters = 0.711 // cricket stumps
	DefaultPixelsPerMeter        = 100.0
)

// Config holds the tunables of the analysis core.
type Config struct {
	// HistorySize is the capacity of each trajectory history.
	HistorySize int

	// CooldownFrames is the minimum frame gap between two impacts.
	CooldownFrames int

	// MinSpeedKMPH and MaxSpeedKMPH bound a plausible impact speed (exclusive).
	MinSpeedKMPH float64
	MaxSpeedKMPH float64

	// ImpactDistanceMeters is the bat-ball proximity threshold in meters.
	ImpactDistanceMeters float64

	// WristConfidence is the keypoint confidence a wrist must exceed.
	WristConfidence float64

	// CalibrationFrames caps the reference-object search.
	CalibrationFrames int

	// MinReferenceHeightPx rejects reference detections at or below this height.
	MinReferenceHeightPx float64

	// ReferenceHeightMeters is the physical height of the reference object.
	ReferenceHeightMeters float64

	// DefaultPixelsPerMeter is used when calibration finds no reference.
	DefaultPixelsPerMeter float64

	Logger zerolog.Logger
}

// DefaultConfig returns a Config with the standard session values.
func DefaultConfig() Config {
	return Config{
		HistorySize:           DefaultHistorySize,
		CooldownFrames:        DefaultCooldownFrames,
		MinSpeedKMPH:          DefaultMinSpeedKMPH,
		MaxSpeedKMPH:          DefaultMaxSpeedKMPH,
		ImpactDistanceMeters:  DefaultImpactDistanceMeters,
		WristConfidence:       DefaultWristConfidence,
		CalibrationFrames:     DefaultCalibrationFrames,
		MinReferenceHeightPx:  DefaultMinReferenceHeightPx,
		ReferenceHeightMeters: DefaultReferenceHeightMeters,
		DefaultPixelsPerMeter: DefaultPixelsPerMeter,
		Logger:                zerolog.Nop(),
	}
}
