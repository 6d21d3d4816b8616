package analysis

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestSummarize(t *testing.T) {
	impacts := []ImpactEvent{
		{Frame: 20, SpeedKMPH: 50, Category: CategoryTimingShot, Location: [2]int{10, 20}},
		{Frame: 60, SpeedKMPH: 80, Category: CategoryTimingShot, Location: [2]int{30, 40}},
		{Frame: 90, SpeedKMPH: 65, Category: CategoryTimingShot, Location: [2]int{50, 60}},
	}

	got := Summarize(Session{
		FrameCount:  120,
		ImpactCount: 3,
		Impacts:     impacts,
	})

	want := Summary{
		TotalFrames:      120,
		TotalShots:       3,
		Impacts:          impacts,
		AverageSpeedKMPH: ptr(65),
		MaxSpeedKMPH:     ptr(80),
		PowerHitCategory: CategoryTimingShot,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summarize() mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_RoundsAverage(t *testing.T) {
	got := Summarize(Session{
		ImpactCount: 3,
		Impacts: []ImpactEvent{
			{SpeedKMPH: 20},
			{SpeedKMPH: 20},
			{SpeedKMPH: 21},
		},
	})

	require.NotNil(t, got.AverageSpeedKMPH)
	assert.Equal(t, 20.33, *got.AverageSpeedKMPH)
	assert.Equal(t, 21.0, *got.MaxSpeedKMPH)
}

func TestSummarize_NoShots(t *testing.T) {
	got := Summarize(Session{FrameCount: 42})

	assert.Equal(t, 42, got.TotalFrames)
	assert.Zero(t, got.TotalShots)
	assert.NotNil(t, got.Impacts)
	assert.Empty(t, got.Impacts)
	assert.Nil(t, got.AverageSpeedKMPH)
	assert.Nil(t, got.MaxSpeedKMPH)
	assert.Empty(t, got.PowerHitCategory)
}

func TestEngine_Summary(t *testing.T) {
	e := newTestEngine(t)
	_, _ = e.ProcessFrame(1, swingFrame(100, 200))
	_, _ = e.ProcessFrame(2, swingFrame(120, 10))
	_, _ = e.ProcessFrame(3, Observations{})

	s := e.Summary()
	assert.Equal(t, 3, s.TotalFrames)
	assert.Equal(t, 1, s.TotalShots)
	require.Len(t, s.Impacts, 1)
	assert.InDelta(t, 21.6, *s.MaxSpeedKMPH, 1e-9)
	assert.Equal(t, CategoryTimingShot, s.PowerHitCategory)
}
