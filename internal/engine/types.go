package engine

import (
	"errors"
	"os"
	"time"
)

// ErrCancelled is returned (and reported in Result.Err) when a scan stops
// because its Token was set. It is an outcome, not a failure.
var ErrCancelled = errors.New("scan cancelled")

// ErrNoRoots is returned when a scan is started without any root paths.
var ErrNoRoots = errors.New("no root paths given")

// FileRecord is a metadata snapshot of one file, taken when the record is
// built. It is not kept in sync with the filesystem.
type FileRecord struct {
	Path     string `json:"path"`
	Size     uint64 `json:"size"`
	Modified uint64 `json:"modified"` // seconds since the Unix epoch
}

// DuplicateGroup is a set of two or more files whose content hashed to the
// same BLAKE3 digest.
type DuplicateGroup struct {
	Hash  string       `json:"hash"`
	Files []FileRecord `json:"files"`
}

// Size returns the size shared by the group's members, taken from the first
// member with a non-zero size.
func (g DuplicateGroup) Size() uint64 {
	for _, f := range g.Files {
		if f.Size > 0 {
			return f.Size
		}
	}
	return 0
}

// WastedBytes is the space that would be reclaimed by keeping one member.
func (g DuplicateGroup) WastedBytes() uint64 {
	if len(g.Files) < 2 {
		return 0
	}
	return uint64(len(g.Files)-1) * g.Size()
}

// Paths returns the member paths in group order.
func (g DuplicateGroup) Paths() []string {
	paths := make([]string, len(g.Files))
	for i, f := range g.Files {
		paths[i] = f.Path
	}
	return paths
}

// recordFromInfo builds a FileRecord from fresh metadata.
func recordFromInfo(path string, info os.FileInfo) FileRecord {
	rec := FileRecord{Path: path}
	if info == nil {
		return rec
	}
	if info.Size() > 0 {
		rec.Size = uint64(info.Size())
	}
	rec.Modified = unixSeconds(info.ModTime())
	return rec
}

func unixSeconds(t time.Time) uint64 {
	if s := t.Unix(); s > 0 {
		return uint64(s)
	}
	return 0
}

// State is the position of a scan in its lifecycle. Transitions only move
// forward.
type State int32

const (
	Idle State = iota
	Walking
	PartialHashing
	FullHashing
	Completed
	Cancelled
	Failed
)

var stateNames = [...]string{
	Idle:           "Idle",
	Walking:        "Walking",
	PartialHashing: "PartialHashing",
	FullHashing:    "FullHashing",
	Completed:      "Completed",
	Cancelled:      "Cancelled",
	Failed:         "Failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Terminal reports whether the state ends a scan.
func (s State) Terminal() bool {
	return s >= Completed
}
