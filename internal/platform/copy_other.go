//go:build !linux

package platform

import "os"

func copyFile(dst, src *os.File, _ int64) (CopyResult, error) {
	return copyReadWrite(dst, src)
}
