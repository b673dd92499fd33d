package ui

import (
	"io"

	"github.com/bamsammich/dupes/internal/event"
	"github.com/bamsammich/dupes/internal/stats"
)

// Presenter consumes progress updates and displays them.
type Presenter interface {
	// Run consumes updates until the channel closes. Blocks until done.
	Run(events <-chan event.Progress) error
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	ErrWriter  io.Writer
	Stats      stats.ReadTicker
	IsTTY      bool
	Quiet      bool
	NoProgress bool
	Width      int // terminal columns for the HUD line; 0 means unbounded
}

// NewPresenter creates the appropriate presenter based on configuration.
// Progress always goes to ErrWriter; stdout is reserved for results.
//
//nolint:ireturn // factory
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{stats: cfg.Stats}
	}
	if !cfg.IsTTY || cfg.NoProgress {
		return &plainPresenter{
			w:     cfg.ErrWriter,
			stats: cfg.Stats,
		}
	}
	return &hudPresenter{
		w:     cfg.ErrWriter,
		stats: cfg.Stats,
		width: cfg.Width,
	}
}

// phaseTracker remembers the most recent update and whether the scan reached
// the Complete phase.
type phaseTracker struct {
	last event.Progress
	done bool
}

// observe records p and reports whether it started a new phase.
func (t *phaseTracker) observe(p event.Progress) bool {
	changed := p.Phase != t.last.Phase
	t.last = p
	if p.Phase == Complete {
		t.done = true
	}
	return changed
}
