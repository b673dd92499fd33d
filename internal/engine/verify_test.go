package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyGroup(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte("payload"))
	b := writeFile(t, dir, "b", []byte("payload"))
	c := writeFile(t, dir, "c", []byte("payload"))
	gone := filepath.Join(dir, "gone")

	group := DuplicateGroup{
		Hash:  blake3Hex([]byte("payload")),
		Files: []FileRecord{{Path: a}, {Path: b}, {Path: c}, {Path: gone}},
	}
	require.NoError(t, os.WriteFile(b, []byte("changed"), 0o644))

	res, err := VerifyGroup(context.Background(), group, 2)
	require.NoError(t, err)
	assert.False(t, res.OK())

	assert.Equal(t, []FileRecord{{Path: a}, {Path: c}}, res.Matched)
	require.Len(t, res.Mismatched, 2)
	assert.Equal(t, b, res.Mismatched[0].Path)
	assert.Equal(t, blake3Hex([]byte("changed")), res.Mismatched[0].Actual)
	assert.NoError(t, res.Mismatched[0].Err)
	assert.Equal(t, gone, res.Mismatched[1].Path)
	assert.Empty(t, res.Mismatched[1].Actual)
	assert.ErrorIs(t, res.Mismatched[1].Err, os.ErrNotExist)
}

func TestVerifyGroup_Cancelled(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := VerifyGroup(ctx, DuplicateGroup{Hash: "h", Files: []FileRecord{{Path: a}}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatchReference(t *testing.T) {
	dir := t.TempDir()
	keep := writeFile(t, dir, "keep", []byte("original"))
	copy1 := writeFile(t, dir, "copy1", []byte("original"))
	other := writeFile(t, dir, "other", []byte("not the same"))

	res, err := MatchReference(context.Background(), keep, []string{copy1, other}, 0)
	require.NoError(t, err)
	assert.Equal(t, []FileRecord{{Path: copy1}}, res.Matched)
	require.Len(t, res.Mismatched, 1)
	assert.Equal(t, other, res.Mismatched[0].Path)

	_, err = MatchReference(context.Background(), filepath.Join(dir, "missing"), []string{copy1}, 1)
	assert.Error(t, err)
}
