package ui

import "github.com/bamsammich/dupes/internal/event"

// Re-export phases for convenience.
const (
	Scanning    = event.Scanning
	PartialHash = event.PartialHash
	FullHash    = event.FullHash
	Complete    = event.Complete
	Trashing    = event.Trashing
	Deleting    = event.Deleting
)
