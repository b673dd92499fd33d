package engine

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bamsammich/dupes/internal/event"
)

// writeFile creates dir/name (and any parent directories) with data and
// returns its path.
func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

// recorder is a concurrency-safe sink that keeps every update. onEvent, if
// set, runs synchronously inside Progress.
type recorder struct {
	mu      sync.Mutex
	events  []event.Progress
	onEvent func(event.Progress)
}

func (r *recorder) Progress(p event.Progress) {
	r.mu.Lock()
	r.events = append(r.events, p)
	r.mu.Unlock()
	if r.onEvent != nil {
		r.onEvent(p)
	}
}

func (r *recorder) all() []event.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Progress(nil), r.events...)
}

func (r *recorder) phase(ph event.Phase) []event.Progress {
	var out []event.Progress
	for _, p := range r.all() {
		if p.Phase == ph {
			out = append(out, p)
		}
	}
	return out
}

// groupPaths flattens groups to sorted path sets for order-free comparison.
func groupPaths(groups []DuplicateGroup) [][]string {
	out := make([][]string, 0, len(groups))
	for _, g := range groups {
		paths := g.Paths()
		sort.Strings(paths)
		out = append(out, paths)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
