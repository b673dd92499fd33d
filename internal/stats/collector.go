package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks scan statistics using lock-free atomic counters. It is
// safe to update from hashing workers while a presenter reads snapshots.
type Collector struct {
	filesWalked    atomic.Int64
	bytesWalked    atomic.Int64
	filesSkipped   atomic.Int64
	candidates     atomic.Int64
	partialHashed  atomic.Int64
	fullHashed     atomic.Int64
	bytesHashed    atomic.Int64
	groups         atomic.Int64
	duplicateFiles atomic.Int64
	wastedBytes    atomic.Int64
	startTime      time.Time

	mu          sync.Mutex
	lastBytes   int64
	lastItems   int64
	throughput  [ringSize]int64 // hashed bytes delta per second
	itemsPerSec [ringSize]int64 // walked + hashed files delta per second
	ringIdx     int
	ringCount   int // how many samples have been written (capped at ringSize)
}

// Reader is the read side of a Collector, used by presenters.
type Reader interface {
	Snapshot() Snapshot
}

// ReadTicker is a Reader that also samples rates. Presenters call Tick once
// per second.
type ReadTicker interface {
	Reader
	Tick()
	RollingSpeed(seconds int) float64
	RollingItemsPerSec(seconds int) float64
	SparklineData(n int) []float64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesWalked    int64         `json:"files_walked"`
	BytesWalked    int64         `json:"bytes_walked"`
	FilesSkipped   int64         `json:"files_skipped"`
	Candidates     int64         `json:"candidates"`
	PartialHashed  int64         `json:"partial_hashed"`
	FullHashed     int64         `json:"full_hashed"`
	BytesHashed    int64         `json:"bytes_hashed"`
	Groups         int64         `json:"groups"`
	DuplicateFiles int64         `json:"duplicate_files"`
	WastedBytes    int64         `json:"wasted_bytes"`
	Elapsed        time.Duration `json:"elapsed_ns"`
}

func (c *Collector) AddFilesWalked(n int64)   { c.filesWalked.Add(n) }
func (c *Collector) AddBytesWalked(n int64)   { c.bytesWalked.Add(n) }
func (c *Collector) AddFilesSkipped(n int64)  { c.filesSkipped.Add(n) }
func (c *Collector) AddPartialHashed(n int64) { c.partialHashed.Add(n) }
func (c *Collector) AddFullHashed(n int64)    { c.fullHashed.Add(n) }
func (c *Collector) AddBytesHashed(n int64)   { c.bytesHashed.Add(n) }

// SetCandidates records how many files survived size grouping. Unique sizes
// are not part of this baseline.
func (c *Collector) SetCandidates(n int64) { c.candidates.Store(n) }

// AddGroup records one confirmed duplicate group of members files, each
// size bytes long. Every member beyond the first counts as wasted space.
func (c *Collector) AddGroup(members int, size int64) {
	if members < 2 {
		return
	}
	c.groups.Add(1)
	c.duplicateFiles.Add(int64(members))
	c.wastedBytes.Add(int64(members-1) * size)
}

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesWalked:    c.filesWalked.Load(),
		BytesWalked:    c.bytesWalked.Load(),
		FilesSkipped:   c.filesSkipped.Load(),
		Candidates:     c.candidates.Load(),
		PartialHashed:  c.partialHashed.Load(),
		FullHashed:     c.fullHashed.Load(),
		BytesHashed:    c.bytesHashed.Load(),
		Groups:         c.groups.Load(),
		DuplicateFiles: c.duplicateFiles.Load(),
		WastedBytes:    c.wastedBytes.Load(),
		Elapsed:        c.Elapsed(),
	}
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"walked=%d candidates=%d partial=%d full=%d skipped=%d groups=%d duplicates=%d wasted=%d",
		s.FilesWalked, s.Candidates, s.PartialHashed, s.FullHashed,
		s.FilesSkipped, s.Groups, s.DuplicateFiles, s.WastedBytes,
	)
}
