package tui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/bamsammich/dupes/internal/engine"
	"github.com/bamsammich/dupes/internal/event"
	"github.com/bamsammich/dupes/internal/stats"
	"github.com/bamsammich/dupes/internal/ui"
)

// scanPhases are the phases shown as rows while a scan runs.
var scanPhases = []event.Phase{event.Scanning, event.PartialHash, event.FullHash}

// feedView shows per-phase progress while scanning and a scrollable list of
// duplicate groups once the scan has finished.
type feedView struct {
	latest  map[event.Phase]event.Progress
	current event.Phase

	groups       []engine.DuplicateGroup
	scrollOffset int
}

func newFeedView() feedView {
	return feedView{latest: make(map[event.Phase]event.Progress)}
}

func (f *feedView) handleEvent(ev event.Progress) {
	f.latest[ev.Phase] = ev
	f.current = ev.Phase
}

// setGroups replaces the listing shown after the scan finishes.
func (f *feedView) setGroups(groups []engine.DuplicateGroup) {
	f.groups = groups
	f.scrollOffset = 0
}

// groupLines renders the listing one screen line per entry, shortening paths
// to fit width.
func (f *feedView) groupLines(width int) []string {
	pathWidth := max(10, width-6)
	var lines []string
	for _, g := range f.groups {
		header := fmt.Sprintf("%s  %s  %s",
			styleHash.Render(ui.ShortHash(g.Hash)),
			styleSize.Render(fmt.Sprintf("%d × %s", len(g.Files), ui.FormatBytes(int64(g.Size())))),
			styleWasted.Render("wasted "+ui.FormatBytes(int64(g.WastedBytes()))),
		)
		lines = append(lines, "  "+header)
		for _, rec := range g.Files {
			lines = append(lines, "    "+styledPath(ui.TruncPath(rec.Path, pathWidth)))
		}
	}
	return lines
}

func (f *feedView) scrollDown() { f.scrollOffset++ }

func (f *feedView) scrollUp() {
	if f.scrollOffset > 0 {
		f.scrollOffset--
	}
}

func (f *feedView) scrollToTop() { f.scrollOffset = 0 }

// scrollToBottom overshoots; renderGroups clamps the offset.
func (f *feedView) scrollToBottom() { f.scrollOffset = math.MaxInt }

func (f *feedView) view(width, height int, snap stats.Snapshot, done bool) string {
	if done {
		return f.renderGroups(width, height, snap)
	}
	return f.renderPhases(width, snap)
}

func (f *feedView) renderPhases(width int, snap stats.Snapshot) string {
	barWidth := max(10, min(30, width-50))

	var b strings.Builder
	b.WriteString(styleDivider.Render("─ phases"))
	b.WriteByte('\n')
	for _, phase := range scanPhases {
		p, seen := f.latest[phase]

		var icon string
		switch {
		case !seen:
			icon = styleIconPending.Render("·")
		case phase < f.current:
			icon = styleIconDone.Render("✓")
		default:
			icon = styleIconActive.Render("⟩")
		}

		detail := ""
		switch {
		case !seen:
			detail = styleSize.Render("waiting")
		case phase == event.Scanning:
			detail = fmt.Sprintf("%s files  %s  %s",
				ui.FormatCount(snap.FilesWalked),
				ui.FormatBytes(snap.BytesWalked),
				styleSize.Render(ui.FormatCount(snap.FilesSkipped)+" skipped"))
		default:
			if phase < f.current {
				p.Current = p.Total
			}
			detail = fmt.Sprintf("%s  %s / %s",
				styleProgressFilled.Render(ui.ProgressBar(ui.Fraction(p), barWidth)),
				ui.FormatCount(int64(p.Current)), ui.FormatCount(int64(p.Total)))
		}

		fmt.Fprintf(&b, "  %s  %-12s  %s\n", icon, ui.PhaseLabel(phase), detail)
	}
	return b.String()
}

func (f *feedView) renderGroups(width, height int, snap stats.Snapshot) string {
	var b strings.Builder
	label := fmt.Sprintf("─ duplicates (%s groups · %s wasted)",
		ui.FormatCount(int64(len(f.groups))), ui.FormatBytes(snap.WastedBytes))
	b.WriteString(styleDivider.Render(label))
	b.WriteByte('\n')

	lines := f.groupLines(width)
	if len(lines) == 0 {
		b.WriteString(styleSize.Render("  no duplicates found"))
		b.WriteByte('\n')
		return b.String()
	}

	viewport := max(1, height-1)
	maxOffset := max(0, len(lines)-viewport)
	f.scrollOffset = max(0, min(f.scrollOffset, maxOffset))

	end := min(f.scrollOffset+viewport, len(lines))
	for _, line := range lines[f.scrollOffset:end] {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func styledPath(path string) string {
	dir, base := filepath.Split(path)
	if dir == "" {
		return styleFilePath.Render(base)
	}
	return styleFileDir.Render(dir) + styleFilePath.Render(base)
}
