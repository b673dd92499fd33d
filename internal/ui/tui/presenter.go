package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bamsammich/dupes/internal/config"
	"github.com/bamsammich/dupes/internal/engine"
	"github.com/bamsammich/dupes/internal/event"
	"github.com/bamsammich/dupes/internal/stats"
	"github.com/bamsammich/dupes/internal/ui"
)

// Config configures the TUI presenter.
type Config struct {
	Stats   stats.ReadTicker
	Workers int
	Theme   config.ThemeConfig
	Hooks   Hooks
}

// Presenter wraps a Bubble Tea program and implements ui.Presenter.
type Presenter struct {
	cfg   Config
	model Model
}

var _ ui.Presenter = (*Presenter)(nil)

// NewPresenter creates a new TUI presenter.
func NewPresenter(cfg Config) *Presenter {
	ApplyTheme(cfg.Theme)
	return &Presenter{cfg: cfg}
}

// Run starts the Bubble Tea program and blocks until the user quits.
func (p *Presenter) Run(events <-chan event.Progress) error {
	p.model = NewModel(events, p.cfg.Stats, p.cfg.Workers, p.cfg.Hooks)
	prog := tea.NewProgram(
		p.model,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)
	finalModel, err := prog.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(Model); ok {
		p.model = m
	}
	return nil
}

// Summary returns the final completion summary line.
func (p *Presenter) Summary() string {
	return ui.CompletionSummary(p.cfg.Stats.Snapshot(), p.model.outcome == engine.Completed)
}
