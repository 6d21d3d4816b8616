package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Session represents one analyzed video stored in the database.
type Session struct {
	ID               string
	InputName        string
	OutputName       string
	FPS              float64
	PixelsPerMeter   float64
	Calibrated       bool
	TotalFrames      int
	TotalShots       int
	AverageSpeedKMPH *float64
	MaxSpeedKMPH     *float64
	PowerHitCategory string
	CreatedAt        time.Time

	// Impacts is populated by Create and GetByID, not by List.
	Impacts []Impact
}

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

const sessionColumns = `id, input_name, output_name, fps, pixels_per_meter, calibrated,
	total_frames, total_shots, average_speed_kmh, max_speed_kmh, power_hit_category, created_at`

// Create inserts a session and its impacts in a single transaction.
// A new UUID is assigned when sess.ID is empty.
func (r *SessionRepository) Create(sess *Session) error {
	return inTx(r.db, func(tx *sql.Tx) error {
		return insertSession(tx, sess)
	})
}

// SaveSession inserts a session with its impacts and frame samples in one
// transaction. Nothing is stored when any insert fails.
func (s *Store) SaveSession(sess *Session, frames []FrameSample) error {
	return inTx(s.db, func(tx *sql.Tx) error {
		if err := insertSession(tx, sess); err != nil {
			return err
		}
		return insertFrames(tx, sess.ID, frames)
	})
}

// inTx runs fn in a transaction and commits when it succeeds.
func inTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// insertSession writes the session row and its impacts inside tx.
func insertSession(tx *sql.Tx, sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	sess.CreatedAt = time.Now()

	_, err := tx.Exec(
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.InputName, sess.OutputName, sess.FPS, sess.PixelsPerMeter, sess.Calibrated,
		sess.TotalFrames, sess.TotalShots, nullFloat(sess.AverageSpeedKMPH), nullFloat(sess.MaxSpeedKMPH),
		sess.PowerHitCategory, sess.CreatedAt,
	)
	if err != nil {
		return err
	}

	return insertImpacts(tx, sess.ID, sess.Impacts)
}

// GetByID retrieves a session and its impacts.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess, err := scanSession(r.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	impacts, err := (&ImpactRepository{db: r.db}).ListBySession(id)
	if err != nil {
		return nil, err
	}
	sess.Impacts = impacts

	return sess, nil
}

// List retrieves all sessions, newest first, without their impacts.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT ` + sessionColumns + ` FROM sessions ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Delete removes a session, its impacts and frame samples.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	sess := &Session{}
	var avg, peak sql.NullFloat64

	err := row.Scan(
		&sess.ID, &sess.InputName, &sess.OutputName, &sess.FPS, &sess.PixelsPerMeter, &sess.Calibrated,
		&sess.TotalFrames, &sess.TotalShots, &avg, &peak, &sess.PowerHitCategory, &sess.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if avg.Valid {
		sess.AverageSpeedKMPH = &avg.Float64
	}
	if peak.Valid {
		sess.MaxSpeedKMPH = &peak.Float64
	}
	return sess, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
