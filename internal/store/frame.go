package store

import "database/sql"

// FrameSample is the live bat speed and nearest bat-ball distance recorded
// for one frame.
type FrameSample struct {
	Frame        int
	BatSpeedKMPH float64
	// MinDistance is nil when the frame had no bat-ball pair to measure.
	MinDistance *float64
}

// FrameRepository stores per-frame samples.
type FrameRepository struct {
	db *sql.DB
}

// Frames returns the frame sample repository for this store.
func (s *Store) Frames() *FrameRepository {
	return &FrameRepository{db: s.db}
}

// Create inserts samples for a session in a single transaction.
func (r *FrameRepository) Create(sessionID string, samples []FrameSample) error {
	return inTx(r.db, func(tx *sql.Tx) error {
		return insertFrames(tx, sessionID, samples)
	})
}

// insertFrames writes samples for a session inside tx.
func insertFrames(tx *sql.Tx, sessionID string, samples []FrameSample) error {
	if len(samples) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(
		`INSERT INTO frame_samples (session_id, frame, bat_speed_kmh, min_distance) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, fs := range samples {
		if _, err := stmt.Exec(sessionID, fs.Frame, fs.BatSpeedKMPH, nullFloat(fs.MinDistance)); err != nil {
			return err
		}
	}

	return nil
}

// ListBySession retrieves a session's samples in frame order.
func (r *FrameRepository) ListBySession(sessionID string) ([]FrameSample, error) {
	rows, err := r.db.Query(
		`SELECT frame, bat_speed_kmh, min_distance
		 FROM frame_samples
		 WHERE session_id = ?
		 ORDER BY frame`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	samples := []FrameSample{}
	for rows.Next() {
		var fs FrameSample
		var dist sql.NullFloat64
		if err := rows.Scan(&fs.Frame, &fs.BatSpeedKMPH, &dist); err != nil {
			return nil, err
		}
		if dist.Valid {
			d := dist.Float64
			fs.MinDistance = &d
		}
		samples = append(samples, fs)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}
