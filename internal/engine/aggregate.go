package engine

import (
	"os"
	"slices"
	"strings"

	"github.com/bamsammich/dupes/internal/stats"
)

// bucket is a set of paths that produced the same digest.
type bucket struct {
	hash  string
	paths []string
}

// regroup merges per-unit results into digest buckets, dropping buckets with
// a single member. Buckets are sorted by digest; paths keep unit order.
func regroup(results [][]hashed) []bucket {
	index := make(map[string]int)
	var buckets []bucket
	for _, unit := range results {
		for _, h := range unit {
			i, ok := index[h.hash]
			if !ok {
				i = len(buckets)
				index[h.hash] = i
				buckets = append(buckets, bucket{hash: h.hash})
			}
			buckets[i].paths = append(buckets[i].paths, h.path)
		}
	}

	buckets = slices.DeleteFunc(buckets, func(b bucket) bool { return len(b.paths) < 2 })
	slices.SortFunc(buckets, func(a, b bucket) int { return strings.Compare(a.hash, b.hash) })
	return buckets
}

func pathsOf(buckets []bucket) [][]string {
	out := make([][]string, len(buckets))
	for i, b := range buckets {
		out[i] = b.paths
	}
	return out
}

// aggregate builds the final groups from full-hash buckets. Each member's
// metadata is read again now; a member that can no longer be stat'ed is
// reported with zero size and modification time.
func aggregate(buckets []bucket, st *stats.Collector) []DuplicateGroup {
	groups := make([]DuplicateGroup, 0, len(buckets))
	for _, b := range buckets {
		g := DuplicateGroup{Hash: b.hash, Files: make([]FileRecord, 0, len(b.paths))}
		for _, p := range b.paths {
			info, err := os.Stat(p)
			if err != nil {
				g.Files = append(g.Files, FileRecord{Path: p})
				continue
			}
			g.Files = append(g.Files, recordFromInfo(p, info))
		}
		st.AddGroup(len(g.Files), int64(g.Size()))
		groups = append(groups, g)
	}
	return groups
}
