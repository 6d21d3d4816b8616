package analysis

import (
	"image"
	"math"
)

// ImpactEvent is one confirmed bat-ball contact.
type ImpactEvent struct {
	Frame     int     `json:"frame"`
	SpeedKMPH float64 `json:"speed_kmh"`
	Category  string  `json:"category"`
	Location  [2]int  `json:"location"` // bat center x, y
}

// impactCheck is the outcome of evaluating one frame for an impact.
type impactCheck struct {
	event       *ImpactEvent
	minDistance float64
	measured    bool
}

// nearestPair returns the minimum bat-ball distance and the bat center that
// achieved it. The first minimum found wins.
func nearestPair(bats, balls []image.Point) (float64, image.Point) {
	minDist := math.Inf(1)
	var loc image.Point

	for _, bat := range bats {
		bp := Point{X: float64(bat.X), Y: float64(bat.Y)}
		for _, ball := range balls {
			d := bp.DistanceTo(Point{X: float64(ball.X), Y: float64(ball.Y)})
			if d < minDist {
				minDist = d
				loc = bat
			}
		}
	}

	return minDist, loc
}

// ImpactDistanceThreshold returns the bat-ball proximity threshold in pixels.
func (e *Engine) ImpactDistanceThreshold() float64 {
	return e.cfg.ImpactDistanceMeters * e.pixelsPerMeter
}

// swingSpeed prefers wrist speed and falls back to bat speed.
func (e *Engine) swingSpeed() float64 {
	return math.Max(
		math.Max(
			PeakSpeed(e.leftWrist, e.fps, e.pixelsPerMeter),
			PeakSpeed(e.rightWrist, e.fps, e.pixelsPerMeter),
		),
		PeakSpeed(e.bat, e.fps, e.pixelsPerMeter),
	)
}

// checkImpact runs the cooldown, proximity and plausibility checks for the
// current frame and records a confirmed impact on the session.
func (e *Engine) checkImpact(frame int, bats, balls []image.Point) impactCheck {
	s := e.session

	if frame-s.LastImpactFrame < e.cfg.CooldownFrames {
		return impactCheck{}
	}
	if len(bats) == 0 || len(balls) == 0 {
		return impactCheck{}
	}

	minDist, loc := nearestPair(bats, balls)
	check := impactCheck{minDistance: minDist, measured: true}

	if minDist >= e.ImpactDistanceThreshold() {
		return check
	}

	speed := e.swingSpeed()
	if speed <= e.cfg.MinSpeedKMPH || speed >= e.cfg.MaxSpeedKMPH {
		e.log.Debug().
			Int("frame", frame).
			Float64("speed_kmh", speed).
			Msg("rejected implausible impact speed")
		return check
	}

	event := ImpactEvent{
		Frame:     frame,
		SpeedKMPH: roundTo(speed, 2),
		Category:  Category(speed),
		Location:  [2]int{loc.X, loc.Y},
	}

	s.LastImpactSpeed = speed
	s.LastImpactFrame = frame
	s.ImpactCount++
	s.Impacts = append(s.Impacts, event)

	e.bat.Clear()
	e.leftWrist.Clear()
	e.rightWrist.Clear()

	e.log.Info().
		Int("frame", frame).
		Float64("speed_kmh", event.SpeedKMPH).
		Str("category", event.Category).
		Msg("impact")

	check.event = &event
	return check
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
