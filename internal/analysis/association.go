package analysis

import (
	"math"

	"github.com/ayusman/battrack/internal/detector"
)

// candidateWrist returns the wrist used to measure a person's distance to the
// bat: the left wrist if confident enough, else the right wrist.
func candidateWrist(p detector.Person, minConf float64) (Point, bool) {
	if lw := p.LeftWrist(); lw.Confidence > minConf {
		return Point{X: lw.X, Y: lw.Y}, true
	}
	if rw := p.RightWrist(); rw.Confidence > minConf {
		return Point{X: rw.X, Y: rw.Y}, true
	}
	return Point{}, false
}

// SelectBatsman returns the index of the person whose candidate wrist is
// closest to the bat center. People without a confident wrist are skipped.
// The first person wins on ties.
func SelectBatsman(bat Point, people []detector.Person, minConf float64) (int, bool) {
	best := -1
	bestDist := math.Inf(1)

	for i, p := range people {
		wrist, ok := candidateWrist(p, minConf)
		if !ok {
			continue
		}
		if d := wrist.DistanceTo(bat); d < bestDist {
			bestDist = d
			best = i
		}
	}

	return best, best >= 0
}

// confidentWrists returns the person's left and right wrists, each gated
// independently on confidence.
func confidentWrists(p detector.Person, minConf float64) (left, right *Point) {
	if lw := p.LeftWrist(); lw.Confidence > minConf {
		left = &Point{X: lw.X, Y: lw.Y}
	}
	if rw := p.RightWrist(); rw.Confidence > minConf {
		right = &Point{X: rw.X, Y: rw.Y}
	}
	return left, right
}
