package remove

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/bamsammich/dupes/internal/engine"
)

// KeepStrategy picks which member of a duplicate group survives.
type KeepStrategy string

const (
	KeepNewest   KeepStrategy = "newest"   // latest modification time
	KeepOldest   KeepStrategy = "oldest"   // earliest modification time
	KeepShortest KeepStrategy = "shortest" // shortest path
)

// ParseKeepStrategy validates a strategy name.
func ParseKeepStrategy(s string) (KeepStrategy, error) {
	switch k := KeepStrategy(s); k {
	case KeepNewest, KeepOldest, KeepShortest:
		return k, nil
	}
	return "", fmt.Errorf("unknown keep strategy %q (want newest, oldest or shortest)", s)
}

// SplitGroup returns the member of group kept by strategy and the paths
// left to remove. Ties go to the member listed first.
func SplitGroup(group engine.DuplicateGroup, strategy KeepStrategy) (string, []string) {
	if len(group.Files) == 0 {
		return "", nil
	}
	files := slices.Clone(group.Files)
	slices.SortStableFunc(files, func(a, b engine.FileRecord) int {
		switch strategy {
		case KeepNewest:
			return cmp.Compare(b.Modified, a.Modified)
		case KeepOldest:
			return cmp.Compare(a.Modified, b.Modified)
		case KeepShortest:
			return cmp.Compare(len(a.Path), len(b.Path))
		}
		return 0
	})

	rest := make([]string, 0, len(files)-1)
	for _, f := range files[1:] {
		rest = append(rest, f.Path)
	}
	return files[0].Path, rest
}
