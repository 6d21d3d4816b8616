// Package units provides speed unit constants and conversions.
package units

// Unit constants
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
)

// Conversion factors from meters per second.
const (
	mpsToKMPH = 3.6
	mpsToMPH  = 2.2369362920544
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MPS, MPH, KMPH}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ConvertSpeed converts a speed from meters per second to the target units.
// Unknown units leave the value in m/s.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedMPS * mpsToMPH
	case KMPH:
		return speedMPS * mpsToKMPH
	default:
		return speedMPS
	}
}

// PixelSpeedToKMPH converts a pixel-space speed (px/s) to km/h using a
// pixels-per-meter scale. A non-positive scale yields 0.
func PixelSpeedToKMPH(pixelsPerSecond, pixelsPerMeter float64) float64 {
	if pixelsPerMeter <= 0 {
		return 0
	}
	return ConvertSpeed(pixelsPerSecond/pixelsPerMeter, KMPH)
}
