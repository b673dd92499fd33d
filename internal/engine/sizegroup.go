package engine

import (
	"cmp"
	"slices"
)

// SizeGroups maps a file size in bytes to the paths of that size, in walk
// order.
type SizeGroups map[uint64][]string

// Candidates returns the buckets holding two or more paths, largest size
// first. A file with a unique size cannot have a duplicate.
func (sg SizeGroups) Candidates() [][]string {
	sizes := make([]uint64, 0, len(sg))
	for size, paths := range sg {
		if len(paths) > 1 {
			sizes = append(sizes, size)
		}
	}
	slices.SortFunc(sizes, func(a, b uint64) int { return cmp.Compare(b, a) })

	out := make([][]string, len(sizes))
	for i, size := range sizes {
		out[i] = sg[size]
	}
	return out
}

// countFiles returns the total number of paths across groups.
func countFiles(groups [][]string) int {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	return n
}
