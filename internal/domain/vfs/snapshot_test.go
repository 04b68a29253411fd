package vfs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
)

func fastHTTPOptions() HTTPOptions {
	return HTTPOptions{RetryMax: 1, RetryWaitMin: time.Millisecond, RetryWaitMax: 5 * time.Millisecond}
}

func TestDecodeTree(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    types.Directory
		wantErr bool
	}{
		{
			name: "nested tree",
			body: `{"~":{"a.txt":"hello","docs":{"b.md":"# b"},"empty":{}}}`,
			want: types.Directory{"~": types.Directory{
				"a.txt": types.File("hello"),
				"docs":  types.Directory{"b.md": types.File("# b")},
				"empty": types.Directory{},
			}},
		},
		{name: "missing home", body: `{"root":{}}`, wantErr: true},
		{name: "home is a file", body: `{"~":"nope"}`, wantErr: true},
		{name: "unsupported node", body: `{"~":{"n":42}}`, wantErr: true},
		{name: "not json", body: `<html>`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTree([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, types.NodesEqual(tt.want, got))
		})
	}
}

func TestEncodeDecodeTree(t *testing.T) {
	data, err := EncodeTree(DefaultTree())
	require.NoError(t, err)

	got, err := DecodeTree(data)
	require.NoError(t, err)
	assert.True(t, types.NodesEqual(DefaultTree(), got))

	data, err = EncodeTree(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestStaticSourceReturnsCopy(t *testing.T) {
	src := StaticSource{Tree: DefaultTree()}

	tree, err := src.Fetch(context.Background())
	require.NoError(t, err)
	tree["~"].(types.Directory)["about.txt"] = types.File("changed")

	again, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, types.NodesEqual(DefaultTree(), again))
}

func TestHTTPSourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/vfs", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"~":{"about.txt":"from server"}}`))
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL+"/api/vfs", fastHTTPOptions())
	tree, err := src.Fetch(context.Background())
	require.NoError(t, err)

	assert.True(t, types.NodesEqual(
		types.Directory{"~": types.Directory{"about.txt": types.File("from server")}},
		tree,
	))
}

func TestHTTPSourceRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"~":{}}`))
	}))
	defer server.Close()

	tree, err := NewHTTPSource(server.URL, fastHTTPOptions()).Fetch(context.Background())
	require.NoError(t, err)
	assert.Contains(t, tree, "~")
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPSourceFailures(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		_, err := NewHTTPSource(server.URL, fastHTTPOptions()).Fetch(context.Background())
		assert.Error(t, err)
	})

	t.Run("persistent server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := NewHTTPSource(server.URL, fastHTTPOptions()).Fetch(context.Background())
		assert.Error(t, err)
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`["not","a","tree"]`))
		}))
		defer server.Close()

		_, err := NewHTTPSource(server.URL, fastHTTPOptions()).Fetch(context.Background())
		assert.Error(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		_, err := NewHTTPSource("http://127.0.0.1:1/vfs", fastHTTPOptions()).Fetch(context.Background())
		assert.Error(t, err)
	})
}

func writeFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, data, 0o644))
}

func TestDirSourceFetch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "about.txt", []byte("about me"))
	writeFile(t, root, "notes/glitch.md", []byte("# glitch\n\nbody\n"))
	writeFile(t, root, "notes/empty.md", nil)
	writeFile(t, root, "images/logo.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01"))
	writeFile(t, root, ".git/HEAD", []byte("ref: refs/heads/main"))
	writeFile(t, root, "drafts/secret.txt", []byte("hidden"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "projects"), 0o755))

	src := NewDirSource(root, []string{".git", ".git/**", "drafts", "drafts/**"})
	tree, err := src.Fetch(context.Background())
	require.NoError(t, err)

	want := types.Directory{"~": types.Directory{
		"about.txt": types.File("about me"),
		"notes": types.Directory{
			"glitch.md": types.File("# glitch\n\nbody\n"),
			"empty.md":  types.File(""),
		},
		"images":   types.Directory{},
		"projects": types.Directory{},
	}}
	assert.True(t, types.NodesEqual(want, tree), "got %#v", tree)
}

func TestDirSourceMissingRoot(t *testing.T) {
	tree, err := NewDirSource(filepath.Join(t.TempDir(), "nope"), nil).Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, types.NodesEqual(EmptyTree(), tree))
}

func TestDirSourceRejectsBadPattern(t *testing.T) {
	_, err := NewDirSource(t.TempDir(), []string{"[unclosed"}).Fetch(context.Background())
	assert.Error(t, err)
}

func TestDirSourceSizeLimit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "small.txt", []byte("ok"))
	writeFile(t, root, "big.txt", []byte("0123456789"))

	src := &DirSource{Root: root, MaxFileSize: 5}
	tree, err := src.Fetch(context.Background())
	require.NoError(t, err)

	home := tree["~"].(types.Directory)
	assert.Contains(t, home, "small.txt")
	assert.NotContains(t, home, "big.txt")
}

func TestDirSourceFeedsFilesystem(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "readme.txt", []byte("shipped"))

	fs := New(nil, NewDirSource(root, nil), nil)
	fs.Hydrate(context.Background())

	assert.True(t, fs.IsBundledFile([]string{"~", "readme.txt"}))
	content, err := fs.ReadFile([]string{"~", "readme.txt"})
	require.NoError(t, err)
	assert.Equal(t, "shipped", content)
}
