package engine

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bamsammich/dupes/internal/event"
)

// hashFunc fingerprints one file, returning the hex digest and the number of
// bytes read.
type hashFunc func(path string) (string, int64, error)

// hashed pairs a digest with the file it came from.
type hashed struct {
	hash string
	path string
}

// hashPhase fingerprints every path in groups, one unit of work per group,
// on at most s.workers goroutines. A file that fails to hash is dropped.
// The returned buckets hold paths that share a digest, singletons removed.
func (s *Scan) hashPhase(phase event.Phase, every uint64, groups [][]string, fn hashFunc, onHashed func(int64)) ([]bucket, error) {
	total := uint64(len(groups))
	emit(s.sink, phase, 0, total)

	results := make([][]hashed, len(groups))

	// The counter and its emit share a lock so Current never goes backwards.
	var (
		mu   sync.Mutex
		done uint64
	)

	var g errgroup.Group
	g.SetLimit(s.workers)

	for i, paths := range groups {
		if s.token.Cancelled() {
			break
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%s worker panicked: %v", phase, r)
				}
			}()
			if s.token.Cancelled() {
				return nil
			}

			out := make([]hashed, 0, len(paths))
			for _, p := range paths {
				digest, n, herr := fn(p)
				if herr != nil {
					s.skip(p, herr)
					continue
				}
				out = append(out, hashed{hash: digest, path: p})
				onHashed(n)
			}
			results[i] = out

			mu.Lock()
			done++
			if done%every == 0 {
				emit(s.sink, phase, done, total)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if s.token.Cancelled() {
		return nil, ErrCancelled
	}

	buckets := regroup(results)
	s.log.Debug("hash phase finished", "phase", phase.String(), "units", total, "groups", len(buckets))
	return buckets, nil
}

func (s *Scan) skip(p string, err error) {
	s.stats.AddFilesSkipped(1)
	s.log.Debug("skipping file", "path", p, "error", err)
}
