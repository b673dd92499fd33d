// Package remove moves files to the trash or deletes them, recording every
// successful removal in an append-only audit log.
package remove

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bamsammich/dupes/internal/event"
)

// batchProgressEvery is the batch progress cadence, in items.
const batchProgressEvery = 5

// Result is the outcome of a single or batch removal. Error is nil on
// success.
type Result struct {
	Success bool    `json:"success"`
	Error   *string `json:"error"`
}

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.Error == nil {
		return nil
	}
	return fmt.Errorf("%s", *r.Error)
}

func succeeded() Result {
	return Result{Success: true}
}

func failed(msg string) Result {
	return Result{Error: &msg}
}

// Trasher moves a file into a recoverable trash location.
type Trasher interface {
	Trash(path string) error
}

// Remover performs removals and writes the audit log.
type Remover struct {
	trasher Trasher
	audit   *AuditLog
	log     *slog.Logger
}

// NewRemover creates a Remover. A nil trasher uses the user's freedesktop.org
// trash; a nil audit log disables auditing; a nil logger uses slog.Default.
func NewRemover(trasher Trasher, audit *AuditLog, log *slog.Logger) *Remover {
	if trasher == nil {
		trasher = NewFreedesktopTrash("")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Remover{trasher: trasher, audit: audit, log: log}
}

// Trash moves path to the trash.
func (r *Remover) Trash(path string) Result {
	if err := r.trasher.Trash(path); err != nil {
		return failed(err.Error())
	}
	r.record(ActionTrash, path)
	return succeeded()
}

// Delete removes path permanently.
func (r *Remover) Delete(path string) Result {
	if err := os.Remove(path); err != nil {
		return failed(err.Error())
	}
	r.record(ActionDelete, path)
	return succeeded()
}

// TrashAll trashes every path in order, reporting progress to sink.
func (r *Remover) TrashAll(paths []string, sink event.Sink) Result {
	return r.batch(paths, event.Trashing, r.Trash, sink)
}

// DeleteAll permanently deletes every path in order, reporting progress to
// sink.
func (r *Remover) DeleteAll(paths []string, sink event.Sink) Result {
	return r.batch(paths, event.Deleting, r.Delete, sink)
}

// batch applies one to each path. Items are independent: a failure does not
// stop the batch. Only the last failure message is kept.
func (r *Remover) batch(paths []string, phase event.Phase, one func(string) Result, sink event.Sink) Result {
	if sink == nil {
		sink = event.Discard
	}
	total := uint64(len(paths))
	progress(sink, phase, 0, total)

	var removed uint64
	var lastErr string
	for i, p := range paths {
		if res := one(p); res.Success {
			removed++
		} else if res.Error != nil {
			lastErr = *res.Error
			r.log.Debug("removal failed", "path", p, "error", lastErr)
		}

		if i%batchProgressEvery == 0 || i == len(paths)-1 {
			progress(sink, phase, uint64(i+1), total)
		}
	}

	if removed == total {
		return succeeded()
	}
	return failed(fmt.Sprintf("removed %d of %d files; last error: %s", removed, total, lastErr))
}

func (r *Remover) record(action Action, path string) {
	if err := r.audit.Record(action, path); err != nil {
		r.log.Warn("audit log write failed", "path", path, "error", err)
	}
}

func progress(sink event.Sink, phase event.Phase, current, total uint64) {
	sink.Progress(event.Progress{
		Timestamp: time.Now(),
		Phase:     phase,
		Current:   current,
		Total:     total,
	})
}
