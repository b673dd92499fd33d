package event

import (
	"fmt"
	"time"
)

// Phase identifies the pipeline stage a progress update belongs to.
type Phase int

const (
	Scanning Phase = iota + 1
	PartialHash
	FullHash
	Complete
	Trashing
	Deleting
)

var phaseNames = [...]string{
	Scanning:    "Scanning",
	PartialHash: "PartialHash",
	FullHash:    "FullHash",
	Complete:    "Complete",
	Trashing:    "Trashing",
	Deleting:    "Deleting",
}

func (p Phase) String() string {
	if p > 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "Unknown"
}

// MarshalText encodes the phase by name so JSON consumers see "Scanning"
// rather than an integer.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a phase name produced by MarshalText.
func (p *Phase) UnmarshalText(b []byte) error {
	s := string(b)
	for i, name := range phaseNames {
		if name != "" && name == s {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", s)
}

// Progress is a single throttled status update. Total is zero when the
// amount of work is not yet known (the walk).
type Progress struct {
	Timestamp time.Time `json:"-"`
	Phase     Phase     `json:"phase"`
	Current   uint64    `json:"current"`
	Total     uint64    `json:"total"`
}

// Sink receives progress updates. Implementations must be safe for
// concurrent use: hashing phases report from worker goroutines.
type Sink interface {
	Progress(p Progress)
}

// SinkFunc adapts a plain function to a Sink.
type SinkFunc func(p Progress)

func (f SinkFunc) Progress(p Progress) { f(p) }

// ChannelSink forwards updates to a channel without blocking. Updates are
// dropped when the channel is full.
type ChannelSink chan<- Progress

func (c ChannelSink) Progress(p Progress) {
	if c == nil {
		return
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now()
	}
	select {
	case c <- p:
	default:
	}
}

type discard struct{}

func (discard) Progress(Progress) {}

// Discard is a Sink that drops every update.
var Discard Sink = discard{}

// Tee returns a Sink that forwards each update to every non-nil sink in order.
func Tee(sinks ...Sink) Sink {
	var out []Sink
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return SinkFunc(func(p Progress) {
		for _, s := range out {
			s.Progress(p)
		}
	})
}
