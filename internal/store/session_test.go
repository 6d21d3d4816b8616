package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func f64(v float64) *float64 { return &v }

func sampleSession() *Session {
	return &Session{
		InputName:        "1700000000_nets.mp4",
		OutputName:       "1700000000_processed_nets.mp4",
		FPS:              30,
		PixelsPerMeter:   112.5,
		Calibrated:       true,
		TotalFrames:      240,
		TotalShots:       2,
		AverageSpeedKMPH: f64(72.5),
		MaxSpeedKMPH:     f64(95),
		PowerHitCategory: "Well-Timed Power",
		Impacts: []Impact{
			{Frame: 40, SpeedKMPH: 50, Category: "Timing Shot", X: 300, Y: 200},
			{Frame: 120, SpeedKMPH: 95, Category: "Well-Timed Power", X: 310, Y: 190},
		},
	}
}

func TestSessionRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := sampleSession()
	if err := repo.Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	if _, err := uuid.Parse(sess.ID); err != nil {
		t.Errorf("ID %q should be a UUID: %v", sess.ID, err)
	}
	if sess.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set after create")
	}
	for i, im := range sess.Impacts {
		if im.SessionID != sess.ID || im.Sequence != i {
			t.Errorf("impact %d not linked: %+v", i, im)
		}
	}

	got, err := repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}

	if got.InputName != sess.InputName || got.OutputName != sess.OutputName {
		t.Errorf("names = %q/%q, want %q/%q", got.InputName, got.OutputName, sess.InputName, sess.OutputName)
	}
	if got.FPS != 30 || got.PixelsPerMeter != 112.5 || !got.Calibrated {
		t.Errorf("scale fields mismatch: %+v", got)
	}
	if got.TotalFrames != 240 || got.TotalShots != 2 {
		t.Errorf("counts = %d/%d, want 240/2", got.TotalFrames, got.TotalShots)
	}
	if got.AverageSpeedKMPH == nil || *got.AverageSpeedKMPH != 72.5 {
		t.Errorf("AverageSpeedKMPH = %v, want 72.5", got.AverageSpeedKMPH)
	}
	if got.MaxSpeedKMPH == nil || *got.MaxSpeedKMPH != 95 {
		t.Errorf("MaxSpeedKMPH = %v, want 95", got.MaxSpeedKMPH)
	}
	if got.PowerHitCategory != "Well-Timed Power" {
		t.Errorf("PowerHitCategory = %q", got.PowerHitCategory)
	}
	if len(got.Impacts) != 2 || got.Impacts[0].Frame != 40 || got.Impacts[1].Frame != 120 {
		t.Errorf("impacts = %+v, want frames 40 and 120 in order", got.Impacts)
	}
}

func TestSessionRepository_CreateWithoutShots(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{ID: "fixed-id", InputName: "a.mp4", FPS: 25, PixelsPerMeter: 100, TotalFrames: 10}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	got, err := repo.GetByID("fixed-id")
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.AverageSpeedKMPH != nil || got.MaxSpeedKMPH != nil {
		t.Error("speed fields should be nil without shots")
	}
	if got.Impacts == nil || len(got.Impacts) != 0 {
		t.Errorf("Impacts = %v, want empty non-nil slice", got.Impacts)
	}
}

func TestSessionRepository_DuplicateID(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	if err := repo.Create(&Session{ID: "dup", InputName: "a.mp4"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := repo.Create(&Session{ID: "dup", InputName: "b.mp4"}); err == nil {
		t.Error("expected error creating duplicate session")
	}
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Sessions().GetByID("non-existent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sessions, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("expected 0 sessions, got %d", len(sessions))
	}

	for _, name := range []string{"first.mp4", "second.mp4", "third.mp4"} {
		if err := repo.Create(&Session{InputName: name}); err != nil {
			t.Fatalf("failed to create session %s: %v", name, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	sessions, err = repo.List()
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	if sessions[0].InputName != "third.mp4" {
		t.Errorf("expected newest first, got %q", sessions[0].InputName)
	}
}

func TestSessionRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := sampleSession()
	if err := repo.Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if err := s.Frames().Create(sess.ID, []FrameSample{{Frame: 1}}); err != nil {
		t.Fatalf("failed to create frames: %v", err)
	}

	if err := repo.Delete(sess.ID); err != nil {
		t.Fatalf("failed to delete session: %v", err)
	}

	if _, err := repo.GetByID(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	impacts, err := s.Impacts().ListBySession(sess.ID)
	if err != nil {
		t.Fatalf("failed to list impacts: %v", err)
	}
	if len(impacts) != 0 {
		t.Errorf("impacts should cascade on delete, got %d", len(impacts))
	}

	frames, err := s.Frames().ListBySession(sess.ID)
	if err != nil {
		t.Fatalf("failed to list frames: %v", err)
	}
	if len(frames) != 0 {
		t.Errorf("frame samples should cascade on delete, got %d", len(frames))
	}

	if err := repo.Delete(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestStore_SaveSession(t *testing.T) {
	s := newTestStore(t)

	sess := sampleSession()
	frames := []FrameSample{{Frame: 1, BatSpeedKMPH: 10}, {Frame: 2, BatSpeedKMPH: 20, MinDistance: f64(35)}}
	if err := s.SaveSession(sess, frames); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	got, err := s.Sessions().GetByID(sess.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(got.Impacts) != 2 {
		t.Errorf("len(Impacts) = %d, want 2", len(got.Impacts))
	}

	samples, err := s.Frames().ListBySession(sess.ID)
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(samples) != 2 {
		t.Errorf("len(samples) = %d, want 2", len(samples))
	}
}

func TestStore_SaveSession_FrameInsertFailureLeavesNothing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.DB().Exec(`CREATE TRIGGER reject_frames BEFORE INSERT ON frame_samples
		BEGIN SELECT RAISE(ABORT, 'frame insert rejected'); END`)
	if err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	sess := sampleSession()
	if err := s.SaveSession(sess, []FrameSample{{Frame: 1, BatSpeedKMPH: 10}}); err == nil {
		t.Fatal("expected SaveSession to fail")
	}

	if _, err := s.Sessions().GetByID(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}

	var impacts int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM impacts").Scan(&impacts); err != nil {
		t.Fatalf("count impacts: %v", err)
	}
	if impacts != 0 {
		t.Errorf("impacts = %d, want 0 after rollback", impacts)
	}
}
