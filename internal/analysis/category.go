package analysis

// Power categories, strongest first.
const (
	CategoryBrutalPower    = "Brutal Power"
	CategoryExcellent      = "Excellent"
	CategoryWellTimedPower = "Well-Timed Power"
	CategoryTimingShot     = "Timing Shot"
	CategoryNone           = "N/A"
)

// Category thresholds in km/h. All but the timing floor are exclusive.
const (
	brutalPowerKMPH    = 150.0
	excellentKMPH      = 120.0
	wellTimedPowerKMPH = 80.0
	timingShotKMPH     = DefaultMinSpeedKMPH
)

// Category classifies a swing speed in km/h.
func Category(speedKMPH float64) string {
	switch {
	case speedKMPH > brutalPowerKMPH:
		return CategoryBrutalPower
	case speedKMPH > excellentKMPH:
		return CategoryExcellent
	case speedKMPH > wellTimedPowerKMPH:
		return CategoryWellTimedPower
	case speedKMPH >= timingShotKMPH:
		return CategoryTimingShot
	default:
		return CategoryNone
	}
}
