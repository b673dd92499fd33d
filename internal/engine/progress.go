package engine

import (
	"time"

	"github.com/bamsammich/dupes/internal/event"
)

// Progress cadences: one event per this many files (walk) or units of work
// (hashing phases).
const (
	walkProgressEvery    = 100
	partialProgressEvery = 10
	fullProgressEvery    = 5
)

// completeMarker is reported as both current and total of the final event.
const completeMarker = 100

func emit(sink event.Sink, phase event.Phase, current, total uint64) {
	sink.Progress(event.Progress{
		Timestamp: time.Now(),
		Phase:     phase,
		Current:   current,
		Total:     total,
	})
}
