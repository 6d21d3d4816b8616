// Package render draws detections and the scoreboard overlay onto frames.
package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/battrack/internal/analysis"
	"github.com/ayusman/battrack/internal/detector"
)

// Overlay constants.
const (
	// ImpactDisplayFrames is how long the impact flag stays lit.
	ImpactDisplayFrames = 30
	// PowerHitKMPH is the impact speed above which "POWER HIT!" is shown.
	PowerHitKMPH = 100.0
	// ImpactRadius is the radius of the circle drawn at an impact.
	ImpactRadius = 40
	// BannerHeight is the height of the darkened scoreboard band.
	BannerHeight = 70
)

var (
	colorBat        = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	colorBall       = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	colorLeftWrist  = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	colorRightWrist = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	colorImpact     = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	colorRed        = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	colorGreen      = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	colorWhite      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorCyan       = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	colorAmber      = color.RGBA{R: 255, G: 205, B: 50, A: 255}
	colorMagenta    = color.RGBA{R: 255, G: 0, B: 255, A: 255}
)

// State is what the scoreboard shows for one frame.
type State struct {
	Frame           int
	Calibrated      bool
	LiveSpeedKMPH   float64
	LastImpactFrame int
	LastImpactKMPH  float64
	Shots           int
	MinDistance     float64
	HasDistance     bool
}

// ImpactActive reports whether the impact flag is lit on this frame.
func (s State) ImpactActive() bool {
	return s.Shots > 0 && s.Frame-s.LastImpactFrame < ImpactDisplayFrames
}

// Label is one line of scoreboard text.
type Label struct {
	Text  string
	At    image.Point
	Color color.RGBA
}

// Scoreboard lays out the scoreboard text for s.
func Scoreboard(s State) []Label {
	scale, scaleColor := "NOT SET", colorRed
	if s.Calibrated {
		scale, scaleColor = "SET", colorGreen
	}

	impact, impactColor := "---", colorWhite
	active := s.ImpactActive()
	if active {
		impact, impactColor = "IMPACT!", colorRed
	}

	labels := []Label{
		{Text: "Scale: " + scale, At: image.Pt(20, 25), Color: scaleColor},
		{Text: "Impact: " + impact, At: image.Pt(220, 25), Color: impactColor},
		{Text: fmt.Sprintf("Speed: %.1f km/h", s.LiveSpeedKMPH), At: image.Pt(420, 25), Color: colorCyan},
		{Text: fmt.Sprintf("Impact Speed: %.1f km/h", s.LastImpactKMPH), At: image.Pt(20, 55), Color: colorAmber},
		{Text: fmt.Sprintf("Shots: %d", s.Shots), At: image.Pt(420, 55), Color: colorWhite},
	}

	if active && s.LastImpactKMPH > PowerHitKMPH {
		labels = append(labels, Label{Text: "POWER HIT!", At: image.Pt(650, 55), Color: colorRed})
	}
	if s.HasDistance {
		labels = append(labels, Label{
			Text:  fmt.Sprintf("Min Dist: %.1fpx", s.MinDistance),
			At:    image.Pt(650, 25),
			Color: colorMagenta,
		})
	}

	return labels
}

// StateFor builds the scoreboard state after the engine processed a frame.
func StateFor(e *analysis.Engine, r analysis.FrameResult) State {
	s := e.Session()
	return State{
		Frame:           r.Frame,
		Calibrated:      e.Calibrated(),
		LiveSpeedKMPH:   r.BatSpeed,
		LastImpactFrame: s.LastImpactFrame,
		LastImpactKMPH:  s.LastImpactSpeed,
		Shots:           s.ImpactCount,
		MinDistance:     r.MinDistance,
		HasDistance:     r.HasDistance,
	}
}

// Annotate draws the detections, tracked wrists, impact marker and
// scoreboard onto frame in place.
func Annotate(frame *gocv.Mat, obs analysis.Observations, r analysis.FrameResult, s State) {
	drawBoxes(frame, obs.Bats, "Bat", colorBat)
	drawBoxes(frame, obs.Balls, "Ball", colorBall)

	if r.LeftWrist != nil {
		gocv.Circle(frame, image.Pt(int(r.LeftWrist.X), int(r.LeftWrist.Y)), 5, colorLeftWrist, -1)
	}
	if r.RightWrist != nil {
		gocv.Circle(frame, image.Pt(int(r.RightWrist.X), int(r.RightWrist.Y)), 5, colorRightWrist, -1)
	}
	if r.Impact != nil {
		loc := image.Pt(r.Impact.Location[0], r.Impact.Location[1])
		gocv.Circle(frame, loc, ImpactRadius, colorImpact, 3)
	}

	drawScoreboard(frame, s)
}

func drawBoxes(frame *gocv.Mat, dets []detector.Detection, name string, c color.RGBA) {
	for _, d := range dets {
		rect := d.Box.Rect()
		gocv.Rectangle(frame, rect, c, 2)
		label := fmt.Sprintf("%s (%.2f)", name, d.Confidence)
		gocv.PutText(frame, label, image.Pt(rect.Min.X, rect.Min.Y-10), gocv.FontHersheySimplex, 0.5, c, 2)
	}
}

func drawScoreboard(frame *gocv.Mat, s State) {
	height := BannerHeight
	if rows := frame.Rows(); rows < height {
		height = rows
	}
	if height > 0 && frame.Cols() > 0 {
		band := frame.Region(image.Rect(0, 0, frame.Cols(), height))
		band.MultiplyFloat(0.3)
		band.Close()
	}

	for _, l := range Scoreboard(s) {
		gocv.PutText(frame, l.Text, l.At, gocv.FontHersheySimplex, 0.7, l.Color, 2)
	}
}
