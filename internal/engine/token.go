package engine

import "sync/atomic"

// Token is a cooperative cancellation flag shared by every phase of a scan.
// Once cancelled it stays cancelled. The zero value is ready to use.
type Token struct {
	cancelled atomic.Bool
}

// NewToken returns a fresh, uncancelled token.
func NewToken() *Token {
	return &Token{}
}

// Cancel sets the token. It is safe to call from any goroutine, any number
// of times.
func (t *Token) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (t *Token) Cancelled() bool {
	return t.cancelled.Load()
}
