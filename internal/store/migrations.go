package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per analyzed video
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			input_name TEXT NOT NULL,
			output_name TEXT NOT NULL DEFAULT '',
			fps REAL NOT NULL,
			pixels_per_meter REAL NOT NULL,
			calibrated INTEGER NOT NULL DEFAULT 0,
			total_frames INTEGER NOT NULL DEFAULT 0,
			total_shots INTEGER NOT NULL DEFAULT 0,
			average_speed_kmh REAL,
			max_speed_kmh REAL,
			power_hit_category TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Impacts table - confirmed bat-ball contacts in session order
		`CREATE TABLE IF NOT EXISTS impacts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			sequence INTEGER NOT NULL,
			frame INTEGER NOT NULL,
			speed_kmh REAL NOT NULL,
			category TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL
		)`,

		// Frame samples table - live bat speed and bat-ball distance per frame
		`CREATE TABLE IF NOT EXISTS frame_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			frame INTEGER NOT NULL,
			bat_speed_kmh REAL NOT NULL,
			min_distance REAL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_impacts_session_id ON impacts(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_frame_samples_session_id ON frame_samples(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
