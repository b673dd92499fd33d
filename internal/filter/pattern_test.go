package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternMatching(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		isDir   bool
		want    bool
	}{
		{"star basename", "*.tmp", "file.tmp", false, true},
		{"star nested", "*.tmp", "a/b/file.tmp", false, true},
		{"star no partial", "*.tmp", "file.tmp.bak", false, false},
		{"double star root", "**/*.jpg", "a.jpg", false, true},
		{"double star deep", "**/*.jpg", "2024/06/a.jpg", false, true},
		{"double star other ext", "**/*.jpg", "a.png", false, false},
		{"anchored root", "/thumbs.db", "thumbs.db", false, true},
		{"anchored nested", "/thumbs.db", "sub/thumbs.db", false, false},
		{"slash anchors", "backup/old/*.zip", "backup/old/a.zip", false, true},
		{"slash anchors nested", "backup/old/*.zip", "x/backup/old/a.zip", false, false},
		{"dir only dir", "build/", "src/build", true, true},
		{"dir only file", "build/", "build", false, false},
		{"question one char", "img?.raw", "img1.raw", false, true},
		{"question two chars", "img?.raw", "img12.raw", false, false},
		{"question no slash", "img?.raw", "img/.raw", false, false},
		{"class", "img[0-9].raw", "img7.raw", false, true},
		{"negated class", "img[!0-9].raw", "img7.raw", false, false},
		{"negated class other", "img[!0-9].raw", "imgx.raw", false, true},
		{"literal dot", "a.b", "axb", false, false},
		{"unterminated class literal", "weird[", "weird[", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := compilePattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.match(tt.path, tt.isDir))
		})
	}
}

func TestPatternFlags(t *testing.T) {
	p, err := compilePattern("/cache/")
	require.NoError(t, err)
	assert.True(t, p.anchored)
	assert.True(t, p.dirOnly)
	assert.Equal(t, "/cache/", p.original)
}
