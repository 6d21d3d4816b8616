package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary is the end-of-session report.
type Summary struct {
	TotalFrames      int           `json:"total_frames"`
	TotalShots       int           `json:"total_shots"`
	Impacts          []ImpactEvent `json:"impacts"`
	AverageSpeedKMPH *float64      `json:"average_speed_kmh,omitempty"`
	MaxSpeedKMPH     *float64      `json:"max_speed_kmh,omitempty"`
	PowerHitCategory string        `json:"power_hit_category,omitempty"`
}

// Summarize reduces a session to its Summary. Speed fields are only set
// when at least one shot was recorded.
func Summarize(s Session) Summary {
	summary := Summary{
		TotalFrames: s.FrameCount,
		TotalShots:  s.ImpactCount,
		Impacts:     make([]ImpactEvent, len(s.Impacts)),
	}
	copy(summary.Impacts, s.Impacts)

	if s.ImpactCount == 0 || len(s.Impacts) == 0 {
		return summary
	}

	speeds := make([]float64, len(s.Impacts))
	for i, ev := range s.Impacts {
		speeds[i] = ev.SpeedKMPH
	}

	avg := roundTo(stat.Mean(speeds, nil), 2)
	peak := roundTo(floats.Max(speeds), 2)

	summary.AverageSpeedKMPH = &avg
	summary.MaxSpeedKMPH = &peak
	summary.PowerHitCategory = Category(peak)

	return summary
}
