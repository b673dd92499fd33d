package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/dupes/internal/event"
	"github.com/bamsammich/dupes/internal/stats"
)

// ANSI escape sequences.
const (
	ansiDim       = "\033[2m"
	ansiReset     = "\033[0m"
	ansiClearLine = "\r\033[K"
)

const (
	sparklineWidth   = 20
	progressBarWidth = 20
	hudMinInterval   = 50 * time.Millisecond // don't redraw faster than this
)

// hudPresenter redraws a single status line in place on a TTY.
type hudPresenter struct {
	w     io.Writer
	stats stats.ReadTicker
	phase phaseTracker
	width int

	drawn    bool
	lastDraw time.Time
}

func (p *hudPresenter) Run(events <-chan event.Progress) error {
	// Fire first tick quickly to seed the ring buffer, then switch to 1s.
	secTicker := time.NewTicker(250 * time.Millisecond)
	defer secTicker.Stop()
	firstTickDone := false

	// Redraw while a large file is being hashed and no updates arrive.
	redrawTicker := time.NewTicker(100 * time.Millisecond)
	defer redrawTicker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clear()
				return nil
			}
			if !p.phase.observe(ev) {
				p.maybeDraw()
				continue
			}
			if p.drawn {
				// Keep the finished phase on screen.
				fmt.Fprintln(p.w)
				p.drawn = false
			}
			p.draw()

		case <-redrawTicker.C:
			p.draw()

		case <-secTicker.C:
			p.stats.Tick()
			if !firstTickDone {
				firstTickDone = true
				secTicker.Reset(time.Second)
			}
		}
	}
}

func (p *hudPresenter) maybeDraw() {
	if time.Since(p.lastDraw) < hudMinInterval {
		return
	}
	p.draw()
}

func (p *hudPresenter) draw() {
	line := p.line()
	if line == "" {
		return
	}
	if p.width > 0 {
		// One column short so the cursor never wraps onto a new line.
		line = FitWidth(line, p.width-1)
	}
	fmt.Fprint(p.w, ansiClearLine+line)
	p.drawn = true
	p.lastDraw = time.Now()
}

func (p *hudPresenter) line() string {
	ev := p.phase.last
	snap := p.stats.Snapshot()

	switch ev.Phase {
	case Scanning:
		return fmt.Sprintf("%-12s %s files  %s  %sskipped %s%s",
			PhaseLabel(ev.Phase),
			FormatCount(snap.FilesWalked), FormatBytes(snap.BytesWalked),
			ansiDim, FormatCount(snap.FilesSkipped), ansiReset)
	case PartialHash, FullHash, Trashing, Deleting:
		pct := Fraction(ev)
		out := fmt.Sprintf("%-12s %3.0f%%  %s  %s / %s",
			PhaseLabel(ev.Phase), pct*100, ProgressBar(pct, progressBarWidth),
			FormatCount(int64(ev.Current)), FormatCount(int64(ev.Total)))
		if ev.Phase == FullHash {
			spark := Sparkline(p.stats.SparklineData(sparklineWidth), sparklineWidth)
			out += fmt.Sprintf("   %s %s", spark, FormatRate(p.stats.RollingSpeed(10)))
		}
		return out
	case Complete:
		return fmt.Sprintf("%-12s %s groups  %s wasted",
			PhaseLabel(ev.Phase), FormatCount(snap.Groups), FormatBytes(snap.WastedBytes))
	}
	return ""
}

func (p *hudPresenter) clear() {
	if !p.drawn {
		return
	}
	fmt.Fprint(p.w, ansiClearLine)
	p.drawn = false
}

func (p *hudPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot(), p.phase.done)
}
