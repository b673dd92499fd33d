// Package history records scan runs and their duplicate groups in SQLite.
package history

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/zeebo/blake3"
	_ "modernc.org/sqlite"

	"github.com/bamsammich/dupes/internal/engine"
)

// ErrNotFound is returned when no run matches an id.
var ErrNotFound = errors.New("run not found")

// Status is the lifecycle state of a recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// StatusFor maps a terminal scan state to a run status.
func StatusFor(s engine.State) Status {
	switch s {
	case engine.Completed:
		return StatusCompleted
	case engine.Cancelled:
		return StatusCancelled
	case engine.Failed:
		return StatusFailed
	default:
		return StatusRunning
	}
}

// Run is one recorded scan.
type Run struct {
	ID             string
	RootsKey       string
	Roots          []string
	Status         Status
	StartedAt      time.Time
	FinishedAt     *time.Time
	FilesWalked    int64
	BytesWalked    int64
	Groups         int64
	DuplicateFiles int64
	WastedBytes    int64
	Error          string
}

// Store is a handle on the history database.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// DefaultPath returns $XDG_DATA_HOME/dupes/history.db, falling back to
// ~/.local/share/dupes/history.db.
func DefaultPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "dupes", "history.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "dupes-history.db")
	}
	return filepath.Join(home, ".local", "share", "dupes", "history.db")
}

// Open opens (or creates) the history database at path and applies any
// pending migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RootsKey derives a stable identifier for a set of scan roots, so runs over
// the same roots can be compared regardless of argument order.
func RootsKey(roots []string) string {
	sorted := make([]string, len(roots))
	for i, r := range roots {
		if abs, err := filepath.Abs(r); err == nil {
			r = abs
		}
		sorted[i] = filepath.Clean(r)
	}
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	h := blake3.New()
	for _, r := range sorted {
		h.Write([]byte(r))
		h.Write([]byte{0})
	}
	digest := h.Sum(nil)
	return hex.EncodeToString(digest[:8])
}
