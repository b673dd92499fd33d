//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// preallocate reserves space for the copy. Not every filesystem supports
// fallocate, so failures are ignored.
//
//nolint:gosec // G115: fd values are small non-negative integers
func preallocate(f *os.File, size int64) {
	if size <= 0 {
		return
	}
	//nolint:errcheck // advisory
	unix.Fallocate(int(f.Fd()), 0, 0, size)
}
