//go:build linux

package platform

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// copyFile uses copy_file_range and falls back to read/write when the
// kernel or filesystem refuses before any byte is written.
func copyFile(dst, src *os.File, size int64) (CopyResult, error) {
	result, err := copyFileRange(dst, src, size)
	if err == nil {
		return result, nil
	}
	if result.BytesWritten > 0 || !isFallbackErr(err) {
		return result, err
	}
	return copyReadWrite(dst, src)
}

//nolint:gosec // G115: fd values are small non-negative integers
func copyFileRange(dst, src *os.File, size int64) (CopyResult, error) {
	var written int64
	for remaining := size; remaining > 0; {
		n, err := unix.CopyFileRange(int(src.Fd()), nil, int(dst.Fd()), nil, int(remaining), 0)
		if err != nil {
			return CopyResult{BytesWritten: written, Method: CopyFileRange}, err
		}
		if n == 0 {
			break
		}
		remaining -= int64(n)
		written += int64(n)
	}
	return CopyResult{BytesWritten: written, Method: CopyFileRange}, nil
}

func isFallbackErr(err error) bool {
	return errors.Is(err, unix.ENOSYS) ||
		errors.Is(err, unix.EXDEV) ||
		errors.Is(err, unix.EINVAL) ||
		errors.Is(err, unix.EOPNOTSUPP) ||
		errors.Is(err, unix.ENOTSUP) ||
		errors.Is(err, unix.EPERM)
}
