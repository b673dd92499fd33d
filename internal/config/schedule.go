package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// ScheduleState describes a running `dupes schedule` process. It is written
// when the scheduler starts and refreshed after every tick so other
// invocations can report on it.
type ScheduleState struct {
	PID     int       `toml:"pid"`
	Cron    string    `toml:"cron"`
	Roots   []string  `toml:"roots"`
	History string    `toml:"history"`
	Started time.Time `toml:"started"`
	NextRun time.Time `toml:"next_run"`
}

// SchedulePath returns $XDG_RUNTIME_DIR/dupes/schedule.toml, or a per-user
// file in the temp directory when XDG_RUNTIME_DIR is unset.
func SchedulePath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "dupes", "schedule.toml")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("dupes-%d", os.Getuid()), "schedule.toml")
}

// WriteScheduleState writes s to SchedulePath, readable only by the owner.
func WriteScheduleState(s ScheduleState) error {
	path := SchedulePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("encode schedule state: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// ReadScheduleState reads the state file. Returns os.ErrNotExist when no
// scheduler has written one.
func ReadScheduleState() (ScheduleState, error) {
	var s ScheduleState
	_, err := toml.DecodeFile(SchedulePath(), &s)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ScheduleState{}, os.ErrNotExist
		}
		return ScheduleState{}, err
	}
	return s, nil
}

// RemoveScheduleState removes the state file (best-effort).
func RemoveScheduleState() {
	os.Remove(SchedulePath()) //nolint:errcheck // best-effort cleanup on shutdown
}
