package remove

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// DefaultAuditLog is the audit file used when none is configured, relative
// to the working directory.
const DefaultAuditLog = "deletion_log.txt"

// Action names a removal kind in the audit log.
type Action string

const (
	ActionTrash  Action = "TRASH"
	ActionDelete Action = "DELETE"
)

// AuditLog appends one line per successful removal:
//
//	[<unix-seconds>] TRASH: /path/to/file
//
// A nil *AuditLog records nothing.
type AuditLog struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// NewAuditLog returns an audit log writing to path, or DefaultAuditLog when
// path is empty. The file is created on first write.
func NewAuditLog(path string) *AuditLog {
	if path == "" {
		path = DefaultAuditLog
	}
	return &AuditLog{path: path, now: time.Now}
}

// Path returns the file the log appends to.
func (a *AuditLog) Path() string {
	if a == nil {
		return ""
	}
	return a.path
}

// Record appends an entry for action on path.
func (a *AuditLog) Record(action Action, path string) error {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	if _, err := fmt.Fprintf(f, "[%d] %s: %s\n", a.now().Unix(), action, path); err != nil {
		f.Close()
		return fmt.Errorf("write audit log: %w", err)
	}
	return f.Close()
}
