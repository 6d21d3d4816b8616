package api

import (
	"path/filepath"
	"testing"

	"github.com/ayusman/battrack/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func f64(v float64) *float64 { return &v }

// seedSession stores a finished session with two impacts.
func seedSession(t *testing.T, s *store.Store) *store.Session {
	t.Helper()

	sess := &store.Session{
		InputName:        "20260101120000_nets.mp4",
		OutputName:       "20260101120000_processed_nets.mp4",
		FPS:              30,
		PixelsPerMeter:   100,
		Calibrated:       true,
		TotalFrames:      90,
		TotalShots:       2,
		AverageSpeedKMPH: f64(70),
		MaxSpeedKMPH:     f64(90),
		PowerHitCategory: "Well-Timed Power",
		Impacts: []store.Impact{
			{Frame: 20, SpeedKMPH: 50, Category: "Timing Shot", X: 10, Y: 20},
			{Frame: 60, SpeedKMPH: 90, Category: "Well-Timed Power", X: 30, Y: 40},
		},
	}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return sess
}
