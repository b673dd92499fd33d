package engine

import (
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/bamsammich/dupes/internal/event"
	"github.com/bamsammich/dupes/internal/filter"
	"github.com/bamsammich/dupes/internal/stats"
)

// walker enumerates regular files under a list of roots and buckets them by
// size. It runs on a single goroutine and visits roots in the order given.
type walker struct {
	token  *Token
	sink   event.Sink
	filter *filter.Chain
	stats  *stats.Collector
	log    *slog.Logger

	groups SizeGroups
	seen   map[string]struct{} // files already recorded
	dirs   map[string]struct{} // directories already listed
	files  uint64
}

type pendingDir struct {
	abs string
	rel string // slash-separated, relative to the root
}

func newWalker(token *Token, sink event.Sink, f *filter.Chain, st *stats.Collector, log *slog.Logger) *walker {
	return &walker{
		token:  token,
		sink:   sink,
		filter: f,
		stats:  st,
		log:    log,
		groups: make(SizeGroups),
		seen:   make(map[string]struct{}),
		dirs:   make(map[string]struct{}),
	}
}

// walk visits every root and returns the size buckets. It returns
// ErrCancelled, discarding everything found so far, once the token is set.
func (w *walker) walk(roots []string) (SizeGroups, error) {
	emit(w.sink, event.Scanning, 0, 0)
	for _, root := range roots {
		if w.token.Cancelled() {
			return nil, ErrCancelled
		}
		if err := w.walkRoot(root); err != nil {
			return nil, err
		}
	}
	return w.groups, nil
}

func (w *walker) walkRoot(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		w.skip(root, err)
		return nil
	}
	info, err := os.Lstat(abs)
	if err != nil {
		w.skip(abs, err)
		return nil
	}
	if info.Mode().IsRegular() {
		w.visitFile(abs, filepath.Base(abs), info)
		return nil
	}
	if !info.IsDir() {
		return nil
	}

	stack := []pendingDir{{abs: abs}}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, done := w.dirs[dir.abs]; done {
			continue
		}
		w.dirs[dir.abs] = struct{}{}

		// ReadDir returns whatever it read before failing; keep those.
		entries, err := os.ReadDir(dir.abs)
		if err != nil {
			w.skip(dir.abs, err)
		}

		var subdirs []pendingDir
		for _, entry := range entries {
			if w.token.Cancelled() {
				return ErrCancelled
			}
			p := filepath.Join(dir.abs, entry.Name())
			rel := path.Join(dir.rel, entry.Name())

			switch typ := entry.Type(); {
			case typ.IsDir():
				if w.filter.AllowDir(rel) {
					subdirs = append(subdirs, pendingDir{abs: p, rel: rel})
				}
			case typ.IsRegular():
				fi, err := entry.Info()
				if err != nil {
					w.skip(p, err)
					continue
				}
				w.visitFile(p, rel, fi)
			}
		}

		// Pushed in reverse so siblings pop in name order.
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
	return nil
}

func (w *walker) visitFile(abs, rel string, info os.FileInfo) {
	if !info.Mode().IsRegular() || info.Size() <= 0 {
		return
	}
	if !w.filter.AllowFile(rel, info.Size()) {
		return
	}
	if _, dup := w.seen[abs]; dup {
		return
	}
	w.seen[abs] = struct{}{}

	size := uint64(info.Size())
	w.groups[size] = append(w.groups[size], abs)

	w.stats.AddFilesWalked(1)
	w.stats.AddBytesWalked(info.Size())
	w.files++
	if w.files%walkProgressEvery == 0 {
		emit(w.sink, event.Scanning, w.files, 0)
	}
}

func (w *walker) skip(p string, err error) {
	w.stats.AddFilesSkipped(1)
	w.log.Debug("skipping unreadable entry", "path", p, "error", err)
}
