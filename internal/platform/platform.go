// Package platform moves files between directories, falling back to a
// kernel-assisted copy when the source and destination live on different
// filesystems.
package platform

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

// CopyMethod identifies which strategy moved a file.
type CopyMethod int

const (
	Rename        CopyMethod = iota
	ReadWrite                // buffered read/write
	CopyFileRange            // Linux copy_file_range(2)
)

func (m CopyMethod) String() string {
	switch m {
	case Rename:
		return "rename"
	case ReadWrite:
		return "read_write"
	case CopyFileRange:
		return "copy_file_range"
	default:
		return "unknown"
	}
}

// CopyResult reports the outcome of a move.
type CopyResult struct {
	BytesWritten int64
	Method       CopyMethod
}

// MoveFile renames src to dst. When the two paths are on different devices
// and src is a regular file, the content is copied to dst, synced, and src
// is removed. dst must not exist.
func MoveFile(src, dst string) (CopyResult, error) {
	err := os.Rename(src, dst)
	if err == nil {
		return CopyResult{Method: Rename}, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return CopyResult{}, err
	}
	info, serr := os.Lstat(src)
	if serr != nil || !info.Mode().IsRegular() {
		return CopyResult{}, err
	}

	result, err := copyAcross(src, dst, info)
	if err != nil {
		_ = os.Remove(dst)
		return result, err
	}
	if err := os.Remove(src); err != nil {
		// Never leave both copies behind.
		_ = os.Remove(dst)
		return result, fmt.Errorf("remove source after copy: %w", err)
	}
	return result, nil
}

func copyAcross(src, dst string, info os.FileInfo) (CopyResult, error) {
	in, err := os.Open(src)
	if err != nil {
		return CopyResult{}, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return CopyResult{}, err
	}

	preallocate(out, info.Size())
	result, err := copyFile(out, in, info.Size())
	if err == nil && result.BytesWritten != info.Size() {
		err = fmt.Errorf("short copy: %d of %d bytes", result.BytesWritten, info.Size())
	}
	if err == nil {
		err = out.Sync()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return result, err
	}

	mtime := info.ModTime()
	if err := os.Chtimes(dst, mtime, mtime); err != nil {
		return result, err
	}
	return result, nil
}

func copyReadWrite(dst, src *os.File) (CopyResult, error) {
	bufp, _ := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)

	// Strip ReaderFrom/WriterTo so the pooled buffer is used.
	n, err := io.CopyBuffer(struct{ io.Writer }{dst}, struct{ io.Reader }{src}, *bufp)
	return CopyResult{BytesWritten: n, Method: ReadWrite}, err
}
