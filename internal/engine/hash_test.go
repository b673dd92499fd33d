package engine

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

func blake3Hex(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "test.txt", []byte("hello world"))

	h1, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, blake3Hex([]byte("hello world")), h1)
	assert.Len(t, h1, 64)

	// Same content should produce the same hash.
	h2, err := HashFile(writeFile(t, dir, "test2.txt", []byte("hello world")))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	// Different content should produce a different hash.
	h3, err := HashFile(writeFile(t, dir, "test3.txt", []byte("different content")))
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestHashFileSpansChunks(t *testing.T) {
	data := make([]byte, 3*FullChunk+17)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := writeFile(t, t.TempDir(), "big.bin", data)

	digest, n, err := hashFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, blake3Hex(data), digest)
	assert.EqualValues(t, len(data), n)
}

func TestHashFileEmpty(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.txt", nil)

	h, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, blake3Hex(nil), h)
}

func TestHashFileNotExist(t *testing.T) {
	_, err := HashFile("/nonexistent/file")
	assert.Error(t, err)
}

func TestPartialHash(t *testing.T) {
	dir := t.TempDir()

	t.Run("small file hashes whole content", func(t *testing.T) {
		data := bytes.Repeat([]byte("s"), 2*PartialWindow)
		path := writeFile(t, dir, "small.bin", data)

		got, err := PartialHash(path)
		require.NoError(t, err)
		assert.Equal(t, blake3Hex(data), got)

		full, err := HashFile(path)
		require.NoError(t, err)
		assert.Equal(t, full, got)
	})

	t.Run("large file hashes head and tail", func(t *testing.T) {
		data := make([]byte, 5*PartialWindow)
		for i := range data {
			data[i] = byte(i % 13)
		}
		path := writeFile(t, dir, "large.bin", data)

		sample := append([]byte{}, data[:PartialWindow]...)
		sample = append(sample, data[len(data)-PartialWindow:]...)

		got, err := PartialHash(path)
		require.NoError(t, err)
		assert.Equal(t, blake3Hex(sample), got)
	})

	t.Run("interior differences are invisible", func(t *testing.T) {
		a := bytes.Repeat([]byte{1}, 4*PartialWindow)
		b := bytes.Clone(a)
		b[2*PartialWindow] = 2

		pa := writeFile(t, dir, "a.bin", a)
		pb := writeFile(t, dir, "b.bin", b)

		ha, err := PartialHash(pa)
		require.NoError(t, err)
		hb, err := PartialHash(pb)
		require.NoError(t, err)
		assert.Equal(t, ha, hb)

		fa, err := HashFile(pa)
		require.NoError(t, err)
		fb, err := HashFile(pb)
		require.NoError(t, err)
		assert.NotEqual(t, fa, fb)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := PartialHash(filepath.Join(dir, "gone"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
