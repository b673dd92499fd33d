package engine

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
	"golang.org/x/time/rate"
)

const (
	// PartialWindow is the size of the head and tail samples hashed for a
	// partial fingerprint.
	PartialWindow = 16 * 1024

	// FullChunk is the read size used when streaming a whole file.
	FullChunk = 64 * 1024
)

// PartialHash computes a cheap fingerprint of the file at path. Files up to
// twice PartialWindow are hashed whole; larger files hash the first and last
// PartialWindow bytes only. Equal fingerprints do not imply equal content.
func PartialHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	size := info.Size()

	h := blake3.New()
	if size <= 2*PartialWindow {
		if _, err := io.Copy(h, f); err != nil {
			return "", fmt.Errorf("partial hash %s: %w", path, err)
		}
		return hex.EncodeToString(h.Sum(nil)), nil
	}

	buf := make([]byte, PartialWindow)
	for _, off := range [2]int64{0, size - PartialWindow} {
		if _, err := f.ReadAt(buf, off); err != nil {
			return "", fmt.Errorf("partial hash %s at %d: %w", path, off, err)
		}
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFile computes the BLAKE3 hash of the whole file at path, returning the
// hex-encoded digest. The file is streamed in FullChunk reads.
func HashFile(path string) (string, error) {
	digest, _, err := hashFile(path, nil)
	return digest, err
}

// hashFile streams path through BLAKE3, optionally throttled by limiter, and
// returns the digest and the number of bytes read.
func hashFile(path string, limiter *rate.Limiter) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	adviseSequential(f)

	var r io.Reader = f
	if limiter != nil {
		// In-flight files always finish; cancellation is checked between units.
		r = newRateLimitedReader(context.Background(), f, limiter)
	}

	h := blake3.New()
	buf := make([]byte, FullChunk)
	n, err := io.CopyBuffer(h, onlyReader{r}, buf)
	if err != nil {
		return "", n, fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// onlyReader hides WriterTo/ReaderFrom so io.CopyBuffer honors the chunk size.
type onlyReader struct {
	io.Reader
}
