package wallpaper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngData  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")
	jpegData = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	webpData = []byte("RIFF\x24\x00\x00\x00WEBPVP8 \x18\x00\x00\x00")
)

func writeFiles(t *testing.T, dir string, files map[string][]byte) {
	t.Helper()
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string][]byte{
		"b.png":     pngData,
		"a b.JPG":   jpegData,
		"c.webp":    webpData,
		"notes.txt": []byte("hello"),
		"fake.gif":  []byte("not really a gif"),
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.png"), 0o755))

	urls, err := NewLister(dir, nil).List()
	require.NoError(t, err)
	assert.Equal(t, []string{"/wallpapers/a%20b.JPG", "/wallpapers/b.png", "/wallpapers/c.webp"}, urls)
}

func TestListMissingDirectory(t *testing.T) {
	tests := []struct {
		name string
		dir  string
	}{
		{"missing", filepath.Join(t.TempDir(), "nope")},
		{"unset", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			urls, err := NewLister(tt.dir, nil).List()
			require.NoError(t, err)
			assert.NotNil(t, urls)
			assert.Empty(t, urls)
		})
	}
}

func TestPath(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string][]byte{
		"b.png":     pngData,
		"notes.txt": []byte("hello"),
		"fake.gif":  []byte("text"),
	})
	l := NewLister(dir, nil)

	path, err := l.Path("b.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b.png"), path)

	for _, name := range []string{"", ".", "..", "../b.png", "sub/b.png", `..\b.png`, "notes.txt", "fake.gif", "missing.png"} {
		_, err := l.Path(name)
		assert.ErrorIs(t, err, ErrNotFound, name)
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.jpg", true},
		{"a.JPEG", true},
		{"a.Png", true},
		{"a.webp", true},
		{"a.gif", true},
		{"a.svg", false},
		{"a.jpg.txt", false},
		{"jpg", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matches(tt.name), tt.name)
	}
}
