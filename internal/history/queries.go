package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bamsammich/dupes/internal/engine"
	"github.com/bamsammich/dupes/internal/stats"
)

const runColumns = `id, roots_key, roots, status, started_at, finished_at,
	files_walked, bytes_walked, groups_found, duplicate_files, wasted_bytes, error_message`

// CreateRun records the start of a scan over roots.
func (s *Store) CreateRun(roots []string) (*Run, error) {
	rootsJSON, err := json.Marshal(roots)
	if err != nil {
		return nil, fmt.Errorf("encode roots: %w", err)
	}
	run := &Run{
		ID:        uuid.NewString(),
		RootsKey:  RootsKey(roots),
		Roots:     roots,
		Status:    StatusRunning,
		StartedAt: s.now().Truncate(time.Second),
	}
	_, err = s.db.Exec(
		`INSERT INTO runs (id, roots_key, roots, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.RootsKey, string(rootsJSON), string(run.Status), run.StartedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final status and counters of a run.
func (s *Store) FinishRun(id string, status Status, snap stats.Snapshot, runErr error) error {
	var msg *string
	if runErr != nil {
		m := runErr.Error()
		msg = &m
	}
	res, err := s.db.Exec(`
		UPDATE runs SET status = ?, finished_at = ?, files_walked = ?, bytes_walked = ?,
			groups_found = ?, duplicate_files = ?, wasted_bytes = ?, error_message = ?
		WHERE id = ?`,
		string(status), s.now().Unix(), snap.FilesWalked, snap.BytesWalked,
		snap.Groups, snap.DuplicateFiles, snap.WastedBytes, msg, id,
	)
	if err != nil {
		return fmt.Errorf("update run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrNotFound)
	}
	return nil
}

// SaveGroups stores the duplicate groups of a run in a single transaction.
func (s *Store) SaveGroups(runID string, groups []engine.DuplicateGroup) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO duplicate_groups
		(run_id, file_hash, file_size, file_count, wasted_bytes, files) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, g := range groups {
		files, err := json.Marshal(g.Files)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encode group %s: %w", g.Hash, err)
		}
		if _, err := stmt.Exec(runID, g.Hash, int64(g.Size()), len(g.Files), int64(g.WastedBytes()), string(files)); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert group %s: %w", g.Hash, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetRun returns the run whose id equals or uniquely starts with id.
func (s *Store) GetRun(id string) (*Run, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY id LIMIT 2`,
		id, stripWildcards(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	switch {
	case len(runs) == 0:
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	case len(runs) > 1 && runs[0].ID != id:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
	return runs[0], nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 returns
// all runs.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return scanRuns(rows)
}

// PreviousRun returns the latest completed run over the same roots that
// started before the given run, or ErrNotFound.
func (s *Store) PreviousRun(run *Run) (*Run, error) {
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs
		WHERE roots_key = ? AND status = ? AND id != ? AND started_at <= ?
		ORDER BY started_at DESC, rowid DESC LIMIT 1`,
		run.RootsKey, string(StatusCompleted), run.ID, run.StartedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("query previous run: %w", err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNotFound
	}
	return runs[0], nil
}

// Groups returns the stored groups of a run, most wasted space first.
func (s *Store) Groups(runID string) ([]engine.DuplicateGroup, error) {
	rows, err := s.db.Query(`SELECT file_hash, files FROM duplicate_groups
		WHERE run_id = ? ORDER BY wasted_bytes DESC, file_hash`, runID)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var groups []engine.DuplicateGroup
	for rows.Next() {
		var g engine.DuplicateGroup
		var files string
		if err := rows.Scan(&g.Hash, &files); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		if err := json.Unmarshal([]byte(files), &g.Files); err != nil {
			return nil, fmt.Errorf("decode group %s: %w", g.Hash, err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// DeleteRun removes a run and its groups.
func (s *Store) DeleteRun(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM duplicate_groups WHERE run_id = ?`, id); err != nil {
		tx.Rollback()
		return fmt.Errorf("delete groups: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

func scanRuns(rows *sql.Rows) ([]*Run, error) {
	defer rows.Close()
	var runs []*Run
	for rows.Next() {
		var (
			r        Run
			roots    string
			status   string
			started  int64
			finished sql.NullInt64
			errMsg   sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.RootsKey, &roots, &status, &started, &finished,
			&r.FilesWalked, &r.BytesWalked, &r.Groups, &r.DuplicateFiles, &r.WastedBytes, &errMsg); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(roots), &r.Roots); err != nil {
			return nil, fmt.Errorf("decode roots of %s: %w", r.ID, err)
		}
		r.Status = Status(status)
		r.StartedAt = time.Unix(started, 0)
		if finished.Valid {
			t := time.Unix(finished.Int64, 0)
			r.FinishedAt = &t
		}
		r.Error = errMsg.String
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

func stripWildcards(s string) string {
	return strings.NewReplacer("%", "", "_", "").Replace(s)
}
