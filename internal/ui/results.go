package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bamsammich/dupes/internal/engine"
)

const hashPrefixLen = 12

// PrintGroups writes one block per group: a header with the short hash,
// member count, per-file size and wasted space, then one indented path per
// member. Groups are printed in the order given. styled dims directory
// prefixes for terminal output.
func PrintGroups(w io.Writer, groups []engine.DuplicateGroup, styled bool) error {
	for i, g := range groups {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s  %d files × %s  wasted %s\n",
			ShortHash(g.Hash), len(g.Files),
			FormatBytes(int64(g.Size())), FormatBytes(int64(g.WastedBytes())),
		); err != nil {
			return err
		}
		for _, f := range g.Files {
			path := f.Path
			if styled {
				path = StyledPath(path)
			}
			if _, err := fmt.Fprintf(w, "  %s\n", path); err != nil {
				return err
			}
		}
	}
	return nil
}

// ShortHash truncates a hex digest for display.
func ShortHash(h string) string {
	if len(h) <= hashPrefixLen {
		return h
	}
	return h[:hashPrefixLen]
}

// StyledPath returns the path with the directory portion dimmed, making the
// file name stand out.
func StyledPath(path string) string {
	dir, base := filepath.Split(path)
	if dir == "" {
		return base
	}
	return ansiDim + strings.TrimSuffix(dir, string(filepath.Separator)) +
		string(filepath.Separator) + ansiReset + base
}

// TruncPath shortens a path from the left to fit within maxLen characters.
func TruncPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[:maxLen]
	}
	return "..." + path[len(path)-maxLen+3:]
}
