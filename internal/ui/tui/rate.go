package tui

import (
	"fmt"
	"strings"

	"github.com/bamsammich/dupes/internal/stats"
	"github.com/bamsammich/dupes/internal/ui"
)

// rateView shows hashing throughput: a large rolling rate, a sparkline of the
// last minute and the per-phase file counters.
type rateView struct{}

func (rateView) view(width int, snap stats.Snapshot, collector stats.ReadTicker, workers int) string {
	width = max(width, 20)

	var b strings.Builder

	speed := collector.RollingSpeed(5)
	b.WriteString("  " + styleBigNumber.Render(ui.FormatRate(speed)))
	b.WriteString("\n\n")

	sparkWidth := max(10, width-4)
	spark := ui.Sparkline(collector.SparklineData(sparkWidth), sparkWidth)
	b.WriteString("  " + styleSparkline.Render(spark))
	b.WriteString("\n\n")

	ips := collector.RollingItemsPerSec(5)
	fmt.Fprintf(&b, "  %s   %s   %s\n\n",
		styleRate.Render(ui.FormatCount(int64(ips))+" files/s"),
		styleSize.Render(ui.FormatBytes(snap.BytesHashed)+" hashed"),
		styleSize.Render(fmt.Sprintf("%d workers", workers)),
	)

	rows := []struct {
		label string
		n     int64
	}{
		{"walked", snap.FilesWalked},
		{"candidates", snap.Candidates},
		{"partial", snap.PartialHashed},
		{"full", snap.FullHashed},
		{"skipped", snap.FilesSkipped},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "  %s  %s\n",
			styleDivider.Render(fmt.Sprintf("%-10s", r.label)),
			ui.FormatCount(r.n))
	}
	return b.String()
}
