package store

import "database/sql"

// Impact represents one stored bat-ball contact.
type Impact struct {
	ID        int64
	SessionID string
	Sequence  int
	Frame     int
	SpeedKMPH float64
	Category  string
	X         int
	Y         int
}

// ImpactRepository provides read access to impacts.
type ImpactRepository struct {
	db *sql.DB
}

// Impacts returns the impact repository for this store.
func (s *Store) Impacts() *ImpactRepository {
	return &ImpactRepository{db: s.db}
}

// insertImpacts writes impacts for a session in order, inside tx.
func insertImpacts(tx *sql.Tx, sessionID string, impacts []Impact) error {
	if len(impacts) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(
		`INSERT INTO impacts (session_id, sequence, frame, speed_kmh, category, x, y)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range impacts {
		im := &impacts[i]
		im.SessionID = sessionID
		im.Sequence = i
		res, err := stmt.Exec(sessionID, i, im.Frame, im.SpeedKMPH, im.Category, im.X, im.Y)
		if err != nil {
			return err
		}
		if id, err := res.LastInsertId(); err == nil {
			im.ID = id
		}
	}

	return nil
}

// ListBySession retrieves a session's impacts in detection order.
func (r *ImpactRepository) ListBySession(sessionID string) ([]Impact, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, sequence, frame, speed_kmh, category, x, y
		 FROM impacts
		 WHERE session_id = ?
		 ORDER BY sequence`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	impacts := []Impact{}
	for rows.Next() {
		var im Impact
		if err := rows.Scan(&im.ID, &im.SessionID, &im.Sequence, &im.Frame, &im.SpeedKMPH, &im.Category, &im.X, &im.Y); err != nil {
			return nil, err
		}
		impacts = append(impacts, im)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return impacts, nil
}

// CountByCategory returns how many stored impacts fall in each power
// category across all sessions.
func (r *ImpactRepository) CountByCategory() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT category, COUNT(*) FROM impacts GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[category] = n
	}

	return counts, rows.Err()
}
