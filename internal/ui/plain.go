package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/dupes/internal/event"
	"github.com/bamsammich/dupes/internal/stats"
)

const plainProgressInterval = 5 * time.Second

// plainPresenter prints one line per phase change and a periodic progress
// line. Used when stderr is not a terminal.
type plainPresenter struct {
	w     io.Writer
	stats stats.ReadTicker
	phase phaseTracker
}

func (p *plainPresenter) Run(events <-chan event.Progress) error {
	ticker := time.NewTicker(plainProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handle(ev)
		case <-ticker.C:
			p.stats.Tick()
			p.printProgress()
		}
	}
}

func (p *plainPresenter) handle(ev event.Progress) {
	if !p.phase.observe(ev) {
		return
	}
	switch ev.Phase {
	case Scanning:
		fmt.Fprintln(p.w, "scanning...")
	case Complete:
		fmt.Fprintln(p.w, "done")
	default:
		fmt.Fprintf(p.w, "%s %s files\n", PhaseLabel(ev.Phase), FormatCount(int64(ev.Total)))
	}
}

func (p *plainPresenter) printProgress() {
	ev := p.phase.last
	switch ev.Phase {
	case Scanning:
		snap := p.stats.Snapshot()
		fmt.Fprintf(p.w, "progress: scanning %s files %s\n",
			FormatCount(snap.FilesWalked), FormatBytes(snap.BytesWalked))
	case PartialHash, FullHash, Trashing, Deleting:
		fmt.Fprintf(p.w, "progress: %s %.0f%% %s/%s files %s\n",
			PhaseLabel(ev.Phase), Fraction(ev)*100,
			FormatCount(int64(ev.Current)), FormatCount(int64(ev.Total)),
			FormatRate(p.stats.RollingSpeed(10)))
	}
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot(), p.phase.done)
}
