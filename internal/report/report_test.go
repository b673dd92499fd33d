package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/dupes/internal/engine"
	"github.com/bamsammich/dupes/internal/stats"
)

func sampleResult() engine.Result {
	return engine.Result{
		Status: engine.Completed,
		Groups: []engine.DuplicateGroup{
			{Hash: "small", Files: []engine.FileRecord{
				{Path: "/a/1", Size: 10, Modified: 100},
				{Path: "/a/2", Size: 10, Modified: 101},
			}},
			{Hash: "large", Files: []engine.FileRecord{
				{Path: "/b/1", Size: 4096, Modified: 200},
				{Path: "/b/2", Size: 4096, Modified: 201},
			}},
			{Hash: "medium", Files: []engine.FileRecord{
				{Path: "/c/1", Size: 100, Modified: 300},
				{Path: "/c/2", Size: 100, Modified: 301},
				{Path: "/c/3", Size: 100, Modified: 302},
			}},
		},
		Stats: stats.Snapshot{FilesWalked: 42, Groups: 3},
	}
}

func TestNew_SortsByWasted(t *testing.T) {
	res := sampleResult()
	r := New([]string{"/a", "/b", "/c"}, res)

	assert.Equal(t, Version, r.Version)
	hashes := make([]string, len(r.Groups))
	for i, g := range r.Groups {
		hashes[i] = g.Hash
	}
	assert.Equal(t, []string{"large", "medium", "small"}, hashes)
	assert.EqualValues(t, 4096+200+10, r.WastedBytes())

	// The caller's slice is not reordered.
	assert.Equal(t, "small", res.Groups[0].Hash)
}

func TestWriteRead(t *testing.T) {
	r := New([]string{"/a"}, sampleResult())

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))
	assert.Contains(t, buf.String(), `"path": "/b/1"`)

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, r.Groups, got.Groups)
	assert.Equal(t, r.Stats.FilesWalked, got.Stats.FilesWalked)
	assert.True(t, r.GeneratedAt.Equal(got.GeneratedAt))
}

func TestReadRejectsNewerVersion(t *testing.T) {
	_, err := Read(bytes.NewBufferString(`{"version": 99, "groups": []}`))
	assert.ErrorContains(t, err, "newer")

	_, err = Read(bytes.NewBufferString(`not json`))
	assert.Error(t, err)
}

func TestFileRoundTrip(t *testing.T) {
	r := New([]string{"/a"}, sampleResult())

	for _, name := range []string{"report.json", "report.json.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, r.WriteFile(path))

			got, err := ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, r.Groups, got.Groups)
			assert.Equal(t, r.Roots, got.Roots)
		})
	}
}

func TestZstdFileIsCompressed(t *testing.T) {
	dir := t.TempDir()
	res := sampleResult()
	// Enough repetitive content for compression to matter.
	for i := range 200 {
		res.Groups = append(res.Groups, engine.DuplicateGroup{
			Hash: "h" + string(rune('a'+i%26)),
			Files: []engine.FileRecord{
				{Path: "/some/long/repeated/directory/name/file-a", Size: 1},
				{Path: "/some/long/repeated/directory/name/file-b", Size: 1},
			},
		})
	}
	r := New(nil, res)

	plain := filepath.Join(dir, "r.json")
	packed := filepath.Join(dir, "r.json.zst")
	require.NoError(t, r.WriteFile(plain))
	require.NoError(t, r.WriteFile(packed))

	pi, err := os.Stat(plain)
	require.NoError(t, err)
	zi, err := os.Stat(packed)
	require.NoError(t, err)
	assert.Less(t, zi.Size(), pi.Size())

	raw, err := os.ReadFile(packed)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, raw[:4], "zstd magic")
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
