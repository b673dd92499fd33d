package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/bamsammich/dupes/internal/event"
)

// FormatBytes formats a byte count with binary units.
func FormatBytes(b int64) string {
	if b < 0 {
		return "-" + humanize.IBytes(uint64(-b))
	}
	return humanize.IBytes(uint64(b))
}

// FormatRate formats a bytes-per-second rate.
func FormatRate(bytesPerSec float64) string {
	if bytesPerSec <= 0 {
		return "0 B/s"
	}
	return humanize.IBytes(uint64(bytesPerSec)) + "/s"
}

// FormatCount formats an integer with comma separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// ProgressBar renders a progress bar of the given width using ▪/□ characters.
func ProgressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	pct = max(0, min(pct, 1))
	filled := min(int(pct*float64(width)), width)

	return strings.Repeat("▪", filled) + strings.Repeat("□", width-filled)
}

// FormatDuration formats elapsed time concisely.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// PhaseLabel returns the lower-case label shown for a phase.
func PhaseLabel(p event.Phase) string {
	switch p {
	case Scanning:
		return "scanning"
	case PartialHash:
		return "partial hash"
	case FullHash:
		return "full hash"
	case Complete:
		return "complete"
	case Trashing:
		return "trashing"
	case Deleting:
		return "deleting"
	}
	return strings.ToLower(p.String())
}

// Fraction returns Current/Total clamped to [0, 1], or 0 when Total is
// unknown.
func Fraction(p event.Progress) float64 {
	if p.Total == 0 {
		return 0
	}
	return min(float64(p.Current)/float64(p.Total), 1)
}

// FitWidth cuts s to at most width visible columns, ignoring ANSI SGR
// sequences. A cut line ends in "…" and a reset so no style leaks.
func FitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	visible, styled := 0, false
	for i := 0; i < len(s); {
		if s[i] == '\033' {
			end := strings.IndexByte(s[i:], 'm')
			if end < 0 {
				break
			}
			styled = true
			i += end + 1
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		if visible == width-1 && hasVisibleAfter(s[i+size:]) {
			out := s[:i] + "…"
			if styled {
				out += ansiReset
			}
			return out
		}
		visible++
		i += size
	}
	return s
}

// hasVisibleAfter reports whether s holds anything besides SGR sequences.
func hasVisibleAfter(s string) bool {
	for i := 0; i < len(s); {
		if s[i] != '\033' {
			return true
		}
		end := strings.IndexByte(s[i:], 'm')
		if end < 0 {
			return true
		}
		i += end + 1
	}
	return false
}
