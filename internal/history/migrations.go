package history

import "fmt"

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001},
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("run migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			m.version, s.now().Unix()); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}
	return nil
}

const migration001 = `
CREATE TABLE runs (
    id              TEXT PRIMARY KEY,
    roots_key       TEXT NOT NULL,
    roots           TEXT NOT NULL DEFAULT '[]',
    status          TEXT NOT NULL DEFAULT 'running',
    started_at      INTEGER NOT NULL,
    finished_at     INTEGER,
    files_walked    INTEGER NOT NULL DEFAULT 0,
    bytes_walked    INTEGER NOT NULL DEFAULT 0,
    groups_found    INTEGER NOT NULL DEFAULT 0,
    duplicate_files INTEGER NOT NULL DEFAULT 0,
    wasted_bytes    INTEGER NOT NULL DEFAULT 0,
    error_message   TEXT
);

CREATE INDEX idx_runs_started_at ON runs(started_at);
CREATE INDEX idx_runs_roots_key ON runs(roots_key);

CREATE TABLE duplicate_groups (
    id           INTEGER PRIMARY KEY,
    run_id       TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    file_hash    TEXT NOT NULL,
    file_size    INTEGER NOT NULL,
    file_count   INTEGER NOT NULL,
    wasted_bytes INTEGER NOT NULL,
    files        TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX idx_duplicate_groups_run_id ON duplicate_groups(run_id);
`
