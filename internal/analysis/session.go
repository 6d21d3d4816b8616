package analysis

import (
	"errors"
	"fmt"
	"image"

	"github.com/rs/zerolog"

	"github.com/ayusman/battrack/internal/detector"
)

// ErrFrameOrder is returned when frames are not fed in strictly increasing order.
var ErrFrameOrder = errors.New("frame index not increasing")

// Session is the mutable state of one analysis run.
type Session struct {
	FrameCount      int
	LastImpactFrame int
	LastImpactSpeed float64
	ImpactCount     int
	Impacts         []ImpactEvent
}

// NewSession returns a fresh session whose first frame is never in cooldown.
func NewSession(cooldownFrames int) *Session {
	return &Session{
		LastImpactFrame: -cooldownFrames - 1,
	}
}

// Observations holds the detector outputs for one frame.
type Observations struct {
	Bats   []detector.Detection
	Balls  []detector.Detection
	People []detector.Person
}

// FrameResult describes what the engine did with one frame.
type FrameResult struct {
	Frame       int
	BatCenters  []image.Point
	BallCenters []image.Point
	Batsman     int // index into Observations.People, -1 if none
	LeftWrist   *Point
	RightWrist  *Point
	Impact      *ImpactEvent
	MinDistance float64 // valid when HasDistance
	HasDistance bool
	BatSpeed    float64 // live peak bat speed in km/h
}

// Engine runs the per-frame fusion: batsman association, trajectory history
// updates, peak speed and impact detection. Frames must be processed in
// strictly increasing order; an Engine is not safe for concurrent use.
type Engine struct {
	cfg            Config
	fps            float64
	pixelsPerMeter float64
	calibrated     bool
	bat            *History
	leftWrist      *History
	rightWrist     *History
	session        *Session
	log            zerolog.Logger
}

// NewEngine creates an Engine for a video at fps frames per second, using
// the scale established by calibration.
func NewEngine(cfg Config, cal Calibration, fps float64) *Engine {
	e := &Engine{
		cfg:            cfg,
		fps:            fps,
		pixelsPerMeter: cal.PixelsPerMeter,
		calibrated:     cal.Found,
		log:            cfg.Logger,
	}
	e.Reset()
	return e
}

// Reset clears histories and starts a new session with the same scale.
func (e *Engine) Reset() {
	e.bat = NewHistory(e.cfg.HistorySize)
	e.leftWrist = NewHistory(e.cfg.HistorySize)
	e.rightWrist = NewHistory(e.cfg.HistorySize)
	e.session = NewSession(e.cfg.CooldownFrames)
}

// PixelsPerMeter returns the session scale.
func (e *Engine) PixelsPerMeter() float64 {
	return e.pixelsPerMeter
}

// Calibrated reports whether the scale came from a reference detection.
func (e *Engine) Calibrated() bool {
	return e.calibrated
}

// Histories returns the bat, left wrist and right wrist histories.
func (e *Engine) Histories() (bat, left, right *History) {
	return e.bat, e.leftWrist, e.rightWrist
}

// Session returns a snapshot of the session state.
func (e *Engine) Session() Session {
	s := *e.session
	s.Impacts = append([]ImpactEvent(nil), e.session.Impacts...)
	return s
}

// ProcessFrame feeds one frame's observations through the engine.
func (e *Engine) ProcessFrame(frame int, obs Observations) (FrameResult, error) {
	if frame <= e.session.FrameCount {
		return FrameResult{}, fmt.Errorf("%w: got %d after %d", ErrFrameOrder, frame, e.session.FrameCount)
	}
	e.session.FrameCount = frame

	result := FrameResult{
		Frame:       frame,
		BatCenters:  detector.Centers(obs.Bats),
		BallCenters: detector.Centers(obs.Balls),
		Batsman:     -1,
	}

	if len(result.BatCenters) > 0 {
		primary := result.BatCenters[0]
		batPoint := Point{X: float64(primary.X), Y: float64(primary.Y)}
		e.bat.Push(Sample{Frame: frame, Position: batPoint})
		e.associate(frame, batPoint, obs.People, &result)
	}

	check := e.checkImpact(frame, result.BatCenters, result.BallCenters)
	result.Impact = check.event
	result.MinDistance = check.minDistance
	result.HasDistance = check.measured

	result.BatSpeed = PeakSpeed(e.bat, e.fps, e.pixelsPerMeter)

	return result, nil
}

// associate links the batsman to the bat and records their wrists.
func (e *Engine) associate(frame int, bat Point, people []detector.Person, result *FrameResult) {
	idx, ok := SelectBatsman(bat, people, e.cfg.WristConfidence)
	if !ok {
		return
	}
	result.Batsman = idx

	left, right := confidentWrists(people[idx], e.cfg.WristConfidence)
	if left != nil {
		e.leftWrist.Push(Sample{Frame: frame, Position: *left})
		result.LeftWrist = left
	}
	if right != nil {
		e.rightWrist.Push(Sample{Frame: frame, Position: *right})
		result.RightWrist = right
	}
}

// Summary reduces the session to its final statistics.
func (e *Engine) Summary() Summary {
	return Summarize(e.Session())
}
