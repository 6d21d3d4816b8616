package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/battrack/internal/detector"
)

const (
	testFPS = 30.0
	testPPM = 100.0
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(DefaultConfig(), Calibration{PixelsPerMeter: testPPM, Found: true}, testFPS)
}

// swingFrame returns observations with the bat at x and the ball offset
// pixels to its right.
func swingFrame(x, offset float64) Observations {
	return Observations{
		Bats:  []detector.Detection{detector.BoxAt(x, 200, 20, 80, 0.9)},
		Balls: []detector.Detection{detector.BoxAt(x+offset, 200, 8, 8, 0.8)},
	}
}

func TestEngine_ImpactFromBatSpeed(t *testing.T) {
	e := newTestEngine(t)

	// 20 px per frame at 30 fps and 100 px/m is 21.6 km/h.
	r1, err := e.ProcessFrame(1, swingFrame(100, 200))
	require.NoError(t, err)
	assert.Nil(t, r1.Impact)
	assert.True(t, r1.HasDistance)
	assert.InDelta(t, 200, r1.MinDistance, 1e-9)

	r2, err := e.ProcessFrame(2, swingFrame(120, 10))
	require.NoError(t, err)
	require.NotNil(t, r2.Impact)

	assert.Equal(t, 2, r2.Impact.Frame)
	assert.InDelta(t, 21.6, r2.Impact.SpeedKMPH, 1e-9)
	assert.Equal(t, CategoryTimingShot, r2.Impact.Category)
	assert.Equal(t, [2]int{120, 200}, r2.Impact.Location)

	s := e.Session()
	assert.Equal(t, 1, s.ImpactCount)
	assert.Equal(t, 2, s.LastImpactFrame)
	assert.InDelta(t, 21.6, s.LastImpactSpeed, 1e-9)

	bat, left, right := e.Histories()
	assert.Equal(t, 0, bat.Len(), "histories are cleared after an impact")
	assert.Equal(t, 0, left.Len())
	assert.Equal(t, 0, right.Len())
}

func TestEngine_Cooldown(t *testing.T) {
	e := newTestEngine(t)

	for f := 1; f <= 16; f++ {
		_, err := e.ProcessFrame(f, swingFrame(float64(20*f), 5))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, e.Session().ImpactCount, "contact during cooldown is ignored")

	r, err := e.ProcessFrame(17, swingFrame(340, 5))
	require.NoError(t, err)
	require.NotNil(t, r.Impact)
	assert.Equal(t, 17, r.Impact.Frame)

	s := e.Session()
	require.Len(t, s.Impacts, 2)
	assert.GreaterOrEqual(t, s.Impacts[1].Frame-s.Impacts[0].Frame, DefaultCooldownFrames)
}

func TestEngine_RejectsImplausibleSpeed(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.ProcessFrame(1, swingFrame(0, 500))
	require.NoError(t, err)

	// 1000 px in one frame is 1080 km/h.
	r, err := e.ProcessFrame(2, swingFrame(1000, 5))
	require.NoError(t, err)
	assert.Nil(t, r.Impact)
	assert.True(t, r.HasDistance)

	s := e.Session()
	assert.Equal(t, 0, s.ImpactCount)
	assert.Empty(t, s.Impacts)

	bat, _, _ := e.Histories()
	assert.Equal(t, 2, bat.Len(), "a rejected impact leaves histories intact")
}

func TestEngine_RejectsSlowContact(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.ProcessFrame(1, swingFrame(100, 5))
	require.NoError(t, err)
	r, err := e.ProcessFrame(2, swingFrame(101, 5))
	require.NoError(t, err)

	assert.Nil(t, r.Impact)
	assert.Equal(t, 0, e.Session().ImpactCount)
}

func TestEngine_WristSpeedPreferred(t *testing.T) {
	e := newTestEngine(t)

	frame := func(batX, wristX float64) Observations {
		obs := swingFrame(batX, 5)
		obs.People = []detector.Person{
			detector.PersonWithWrists(wrist(wristX, 200, 0.9), detector.Keypoint{}),
		}
		return obs
	}

	r1, err := e.ProcessFrame(1, frame(100, 100))
	require.NoError(t, err)
	assert.Equal(t, 0, r1.Batsman)
	require.NotNil(t, r1.LeftWrist)
	assert.Nil(t, r1.RightWrist)

	// Bat moves 20 px, wrist 40 px: the wrist speed of 43.2 km/h wins.
	r2, err := e.ProcessFrame(2, frame(120, 140))
	require.NoError(t, err)
	require.NotNil(t, r2.Impact)
	assert.InDelta(t, 43.2, r2.Impact.SpeedKMPH, 1e-9)
}

func TestEngine_NoBatNoHistory(t *testing.T) {
	e := newTestEngine(t)

	obs := Observations{
		Balls: []detector.Detection{detector.BoxAt(10, 10, 5, 5, 0.9)},
		People: []detector.Person{
			detector.PersonWithWrists(wrist(10, 10, 0.9), wrist(12, 10, 0.9)),
		},
	}
	r, err := e.ProcessFrame(1, obs)
	require.NoError(t, err)

	assert.Equal(t, -1, r.Batsman)
	assert.False(t, r.HasDistance)
	assert.Zero(t, r.BatSpeed)

	bat, left, right := e.Histories()
	assert.Zero(t, bat.Len())
	assert.Zero(t, left.Len(), "wrists are only tracked once a batsman is associated")
	assert.Zero(t, right.Len())
}

func TestEngine_LowConfidenceWristsNotTracked(t *testing.T) {
	e := newTestEngine(t)

	for f := 1; f <= 3; f++ {
		obs := swingFrame(100+20*float64(f), 300)
		obs.People = []detector.Person{
			// Exactly at the gate and below it: neither wrist qualifies.
			detector.PersonWithWrists(wrist(100, 200, 0.5), wrist(110, 200, 0.3)),
		}
		r, err := e.ProcessFrame(f, obs)
		require.NoError(t, err)

		assert.Equal(t, -1, r.Batsman)
		assert.Nil(t, r.LeftWrist)
		assert.Nil(t, r.RightWrist)
	}

	bat, left, right := e.Histories()
	assert.Equal(t, 3, bat.Len(), "bat is still tracked")
	assert.Zero(t, left.Len())
	assert.Zero(t, right.Len())
}

func TestEngine_FrameOrder(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.ProcessFrame(0, Observations{})
	assert.True(t, errors.Is(err, ErrFrameOrder))

	_, err = e.ProcessFrame(3, Observations{})
	require.NoError(t, err)

	_, err = e.ProcessFrame(3, Observations{})
	assert.ErrorIs(t, err, ErrFrameOrder)

	_, err = e.ProcessFrame(2, Observations{})
	assert.ErrorIs(t, err, ErrFrameOrder)

	assert.Equal(t, 3, e.Session().FrameCount)
}

func TestEngine_UncalibratedNeverImpacts(t *testing.T) {
	e := NewEngine(DefaultConfig(), Calibration{}, testFPS)

	for f := 1; f <= 5; f++ {
		r, err := e.ProcessFrame(f, swingFrame(float64(30*f), 0))
		require.NoError(t, err)
		assert.Zero(t, r.BatSpeed)
		assert.Nil(t, r.Impact)
	}
	assert.Zero(t, e.ImpactDistanceThreshold())
}

func TestEngine_Reset(t *testing.T) {
	e := newTestEngine(t)
	_, _ = e.ProcessFrame(1, swingFrame(100, 200))
	_, _ = e.ProcessFrame(2, swingFrame(120, 10))
	require.Equal(t, 1, e.Session().ImpactCount)

	e.Reset()

	s := e.Session()
	assert.Zero(t, s.FrameCount)
	assert.Zero(t, s.ImpactCount)
	assert.Equal(t, testPPM, e.PixelsPerMeter())
	assert.True(t, e.Calibrated())

	_, err := e.ProcessFrame(1, Observations{})
	assert.NoError(t, err)
}

func TestEngine_ImpactDistanceThreshold(t *testing.T) {
	e := newTestEngine(t)
	assert.InDelta(t, 50, e.ImpactDistanceThreshold(), 1e-9)
}
