package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a new Store backed by a temporary database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestOpen_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, filepath.Join(dir, FileName), s.Path())
	_, err = os.Stat(s.Path())
	assert.NoError(t, err, "database file should exist after Open")
}

func TestNew_Schema(t *testing.T) {
	s := newTestStore(t)

	objects := []struct {
		kind string
		name string
	}{
		{"table", "sessions"},
		{"table", "impacts"},
		{"table", "frame_samples"},
		{"index", "idx_impacts_session_id"},
		{"index", "idx_frame_samples_session_id"},
	}
	for _, o := range objects {
		t.Run(o.name, func(t *testing.T) {
			var name string
			err := s.DB().QueryRow(
				"SELECT name FROM sqlite_master WHERE type=? AND name=?", o.kind, o.name,
			).Scan(&name)
			assert.NoError(t, err, "%s %q should exist after migrations", o.kind, o.name)
		})
	}
}

func TestNew_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath)
	require.NoError(t, err)
	sess := &Session{InputName: "a.mp4", OutputName: "b.mp4", FPS: 30}
	require.NoError(t, s.Sessions().Create(sess))
	require.NoError(t, s.Close())

	s, err = New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Sessions().GetByID(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.mp4", got.InputName)
}

func TestNew_Pragmas(t *testing.T) {
	s := newTestStore(t)

	var fk int
	require.NoError(t, s.DB().QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestStore_Close(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	require.NoError(t, s.Close())
	_, err = s.DB().Exec("SELECT 1")
	assert.Error(t, err, "DB operations should fail after close")
}
