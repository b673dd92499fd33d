package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/bamsammich/dupes/internal/event"
	"github.com/bamsammich/dupes/internal/filter"
	"github.com/bamsammich/dupes/internal/stats"
)

// Config describes a duplicate scan.
type Config struct {
	Roots   []string
	Token   *Token        // nil: the scan creates its own
	Sink    event.Sink    // nil: progress is discarded
	Workers int           // hashing parallelism; <= 0 means runtime.NumCPU()
	Filter  *filter.Chain // optional include/exclude and size rules
	Limiter *rate.Limiter // optional full-hash read throttle
	Stats   *stats.Collector
	Logger  *slog.Logger
}

// Result is the outcome of a scan. Groups is empty unless Status is
// Completed. Err is nil when completed, ErrCancelled when cancelled.
type Result struct {
	Status State
	Groups []DuplicateGroup
	Err    error
	Stats  stats.Snapshot
}

// Scan is a single run of the duplicate-detection pipeline. A Scan runs at
// most once.
type Scan struct {
	cfg     Config
	token   *Token
	sink    event.Sink
	stats   *stats.Collector
	log     *slog.Logger
	workers int
	state   atomic.Int32
}

// NewScan prepares a scan, filling in defaults for unset Config fields.
func NewScan(cfg Config) *Scan {
	s := &Scan{
		cfg:     cfg,
		token:   cfg.Token,
		sink:    cfg.Sink,
		stats:   cfg.Stats,
		log:     cfg.Logger,
		workers: cfg.Workers,
	}
	if s.token == nil {
		s.token = NewToken()
	}
	if s.sink == nil {
		s.sink = event.Discard
	}
	if s.stats == nil {
		s.stats = stats.NewCollector()
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.workers <= 0 {
		s.workers = runtime.NumCPU()
	}
	return s
}

// Run executes the scan with a fresh scan built from cfg.
func Run(ctx context.Context, cfg Config) Result {
	return NewScan(cfg).Run(ctx)
}

// State returns the current lifecycle state. Safe for concurrent use.
func (s *Scan) State() State {
	return State(s.state.Load())
}

// Token returns the token that cancels this scan.
func (s *Scan) Token() *Token {
	return s.token
}

// Cancel requests cooperative cancellation. Files being hashed finish
// first; no further work is started.
func (s *Scan) Cancel() {
	s.token.Cancel()
}

// Stats returns the live statistics collector.
func (s *Scan) Stats() *stats.Collector {
	return s.stats
}

// Run walks the roots, narrows candidates by size, partial hash and full
// hash, and returns the duplicate groups. Cancelling ctx is equivalent to
// calling Cancel.
func (s *Scan) Run(ctx context.Context) Result {
	if !s.state.CompareAndSwap(int32(Idle), int32(Walking)) {
		return Result{Status: Failed, Err: errors.New("scan already started"), Stats: s.stats.Snapshot()}
	}

	if ctx.Err() != nil {
		s.token.Cancel()
	}
	stop := context.AfterFunc(ctx, s.token.Cancel)
	defer stop()

	groups, err := s.run()

	res := Result{Stats: s.stats.Snapshot()}
	switch {
	case err == nil:
		s.setState(Completed)
		res.Status = Completed
		res.Groups = groups
	case errors.Is(err, ErrCancelled):
		s.setState(Cancelled)
		res.Status = Cancelled
		res.Err = ErrCancelled
	default:
		s.setState(Failed)
		res.Status = Failed
		res.Err = err
		s.log.Error("scan failed", "error", err)
	}
	return res
}

func (s *Scan) run() ([]DuplicateGroup, error) {
	if len(s.cfg.Roots) == 0 {
		return nil, ErrNoRoots
	}

	w := newWalker(s.token, s.sink, s.cfg.Filter, s.stats, s.log)
	sizes, err := w.walk(s.cfg.Roots)
	if err != nil {
		return nil, err
	}
	candidates := sizes.Candidates()
	s.stats.SetCandidates(int64(countFiles(candidates)))
	s.log.Debug("walk finished", "files", w.files, "size_groups", len(candidates))

	if err := s.advance(PartialHashing); err != nil {
		return nil, err
	}
	partial, err := s.hashPhase(event.PartialHash, partialProgressEvery, candidates,
		func(p string) (string, int64, error) {
			digest, err := PartialHash(p)
			return digest, 0, err
		},
		func(int64) { s.stats.AddPartialHashed(1) },
	)
	if err != nil {
		return nil, fmt.Errorf("partial hash: %w", err)
	}

	if err := s.advance(FullHashing); err != nil {
		return nil, err
	}
	full, err := s.hashPhase(event.FullHash, fullProgressEvery, pathsOf(partial),
		func(p string) (string, int64, error) {
			return hashFile(p, s.cfg.Limiter)
		},
		func(n int64) {
			s.stats.AddFullHashed(1)
			s.stats.AddBytesHashed(n)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("full hash: %w", err)
	}

	emit(s.sink, event.Complete, completeMarker, completeMarker)
	return aggregate(full, s.stats), nil
}

// advance moves to the next working state unless the token is already set.
func (s *Scan) advance(to State) error {
	if s.token.Cancelled() {
		return ErrCancelled
	}
	s.setState(to)
	return nil
}

func (s *Scan) setState(to State) {
	for {
		cur := s.state.Load()
		if State(cur) >= to || State(cur).Terminal() {
			return
		}
		if s.state.CompareAndSwap(cur, int32(to)) {
			return
		}
	}
}
