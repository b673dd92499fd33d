// Package report reads and writes scan results as JSON, optionally
// zstd-compressed.
package report

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/bamsammich/dupes/internal/engine"
	"github.com/bamsammich/dupes/internal/stats"
)

// Version is the report format version written by this package.
const Version = 1

// Report is a saved scan result.
type Report struct {
	Version     int                     `json:"version"`
	GeneratedAt time.Time               `json:"generated_at"`
	Roots       []string                `json:"roots"`
	Groups      []engine.DuplicateGroup `json:"groups"`
	Stats       stats.Snapshot          `json:"stats"`
}

// New builds a report from a completed scan. Groups are sorted so the
// largest savings come first.
func New(roots []string, res engine.Result) *Report {
	r := &Report{
		Version:     Version,
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Roots:       roots,
		Groups:      slices.Clone(res.Groups),
		Stats:       res.Stats,
	}
	SortGroups(r.Groups)
	return r
}

// SortGroups orders groups by wasted bytes, largest first, then by hash.
// Members within a group are left in place.
func SortGroups(groups []engine.DuplicateGroup) {
	slices.SortStableFunc(groups, func(a, b engine.DuplicateGroup) int {
		if c := cmp.Compare(b.WastedBytes(), a.WastedBytes()); c != 0 {
			return c
		}
		return strings.Compare(a.Hash, b.Hash)
	})
}

// WastedBytes sums the reclaimable space across all groups.
func (r *Report) WastedBytes() uint64 {
	var total uint64
	for _, g := range r.Groups {
		total += g.WastedBytes()
	}
	return total
}

// Write encodes r as indented JSON.
func (r *Report) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// Read decodes a report from JSON.
func Read(rd io.Reader) (*Report, error) {
	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if r.Version > Version {
		return nil, fmt.Errorf("report version %d is newer than supported version %d", r.Version, Version)
	}
	return &r, nil
}

// compressed reports whether path names a zstd file.
func compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// WriteFile writes r to path, compressing with zstd when path ends in .zst.
// "-" writes uncompressed JSON to stdout.
func (r *Report) WriteFile(path string) (err error) {
	if path == "-" {
		return r.Write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if !compressed(path) {
		return r.Write(f)
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("zstd encoder: %w", err)
	}
	if err := r.Write(enc); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadFile loads a report written by WriteFile. "-" reads stdin.
func ReadFile(path string) (*Report, error) {
	if path == "-" {
		return Read(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	if !compressed(path) {
		return Read(f)
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	defer dec.Close()
	return Read(dec)
}
