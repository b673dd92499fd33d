package ui

import (
	"fmt"

	"github.com/bamsammich/dupes/internal/stats"
)

// CompletionSummary builds a final summary line from a snapshot.
// Format: done ✓  files 48,917  groups 212  duplicates 530  wasted 2.1 GiB  time 3m 17s  skipped 0
func CompletionSummary(snap stats.Snapshot, completed bool) string {
	icon := "✓"
	if !completed {
		icon = "✗"
	}

	return fmt.Sprintf("done %s  files %s  groups %s  duplicates %s  wasted %s  time %s  skipped %s",
		icon,
		FormatCount(snap.FilesWalked),
		FormatCount(snap.Groups),
		FormatCount(snap.DuplicateFiles),
		FormatBytes(snap.WastedBytes),
		FormatDuration(snap.Elapsed),
		FormatCount(snap.FilesSkipped),
	)
}
