package analysis

import "github.com/ayusman/battrack/internal/units"

// PeakSpeed returns the highest km/h speed over consecutive sample pairs of
// the history. It returns 0 for fewer than two samples, an unset scale
// (pixelsPerMeter <= 0) or a non-positive frame rate.
func PeakSpeed(h *History, fps, pixelsPerMeter float64) float64 {
	if h == nil || h.Len() < 2 || pixelsPerMeter <= 0 || fps <= 0 {
		return 0
	}

	peak := 0.0
	for i := 0; i+1 < len(h.samples); i++ {
		a, b := h.samples[i], h.samples[i+1]

		elapsed := float64(b.Frame-a.Frame) / fps
		if elapsed <= 0 {
			continue
		}

		pixelSpeed := a.Position.DistanceTo(b.Position) / elapsed
		if kmh := units.PixelSpeedToKMPH(pixelSpeed, pixelsPerMeter); kmh > peak {
			peak = kmh
		}
	}

	return peak
}
