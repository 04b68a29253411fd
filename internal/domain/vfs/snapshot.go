package vfs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/GriffinCanCode/retrodesk/internal/shared/paths"
	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
	"github.com/GriffinCanCode/retrodesk/internal/shared/utils"
)

// SnapshotSource supplies the bundled read-only tree
type SnapshotSource interface {
	Fetch(ctx context.Context) (types.Directory, error)
}

// DecodeTree parses the wire shape (strings are files, objects are
// directories) and checks that it is rooted at a home directory
func DecodeTree(data []byte) (types.Directory, error) {
	var raw map[string]interface{}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	tree, err := types.DirectoryFrom(raw)
	if err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	if err := validateRoot(tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// EncodeTree renders a tree in the wire shape
func EncodeTree(tree types.Directory) ([]byte, error) {
	if tree == nil {
		tree = types.Directory{}
	}
	return sonic.ConfigStd.Marshal(tree)
}

func validateRoot(tree types.Directory) error {
	home, ok := tree[paths.Home]
	if !ok {
		return fmt.Errorf("tree has no %q root", paths.Home)
	}
	if _, ok := home.(types.Directory); !ok {
		return fmt.Errorf("tree root %q is not a directory", paths.Home)
	}
	return nil
}

// StaticSource always returns a copy of Tree
type StaticSource struct {
	Tree types.Directory
}

// Fetch returns a deep copy of the configured tree
func (s StaticSource) Fetch(ctx context.Context) (types.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateRoot(s.Tree); err != nil {
		return nil, err
	}
	return s.Tree.Clone(), nil
}

// HTTPOptions tunes the snapshot HTTP client
type HTTPOptions struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string
}

// DefaultHTTPOptions returns the options used by the server
func DefaultHTTPOptions() HTTPOptions {
	return HTTPOptions{
		RetryMax:     2,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
		UserAgent:    "retrodesk/1.0",
	}
}

// HTTPSource fetches the snapshot JSON from a URL
type HTTPSource struct {
	url    string
	client *resty.Client
}

// NewHTTPSource creates a source that GETs url with retries on transient failures
func NewHTTPSource(url string, opts HTTPOptions) *HTTPSource {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.RetryWaitMin = opts.RetryWaitMin
	retryClient.RetryWaitMax = opts.RetryWaitMax
	retryClient.Logger = nil

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetHeader("Accept", "application/json")
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	return &HTTPSource{url: url, client: client}
}

// URL returns the snapshot location
func (s *HTTPSource) URL() string {
	return s.url
}

// Fetch downloads and decodes the snapshot
func (s *HTTPSource) Fetch(ctx context.Context) (types.Directory, error) {
	resp, err := s.client.R().SetContext(ctx).Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.url, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("get %s: unexpected status %d", s.url, resp.StatusCode())
	}
	return DecodeTree(resp.Body())
}

// DirSource builds the snapshot from a directory on disk: every text file
// becomes a File holding its contents, placed under the home directory.
type DirSource struct {
	Root        string
	Ignore      []string // doublestar patterns matched against slash-separated relative paths
	MaxFileSize int64
}

// NewDirSource creates a directory source with the default size limit
func NewDirSource(root string, ignore []string) *DirSource {
	return &DirSource{Root: root, Ignore: ignore, MaxFileSize: utils.MaxFileSize}
}

// Fetch walks Root. A missing root yields an empty home directory.
func (s *DirSource) Fetch(ctx context.Context) (types.Directory, error) {
	for _, pattern := range s.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	info, err := os.Stat(s.Root)
	if errors.Is(err, os.ErrNotExist) {
		return EmptyTree(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", s.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", s.Root)
	}

	home := types.Directory{}
	var mu sync.Mutex

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, s.Root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(s.Root, p)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if s.ignored(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		segments := strings.Split(rel, "/")
		switch {
		case d.IsDir():
			mu.Lock()
			ensureDir(home, segments)
			mu.Unlock()
		case d.Type().IsRegular():
			content, ok, readErr := s.readText(p)
			if readErr != nil {
				return readErr
			}
			if !ok {
				return nil
			}
			mu.Lock()
			parent := ensureDir(home, segments[:len(segments)-1])
			parent[segments[len(segments)-1]] = types.File(content)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.Root, err)
	}

	return types.Directory{paths.Home: home}, nil
}

func (s *DirSource) ignored(rel string) bool {
	for _, pattern := range s.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// readText returns the file contents when the file is small enough and
// sniffs as text
func (s *DirSource) readText(p string) (string, bool, error) {
	info, err := os.Stat(p)
	if err != nil {
		return "", false, err
	}
	if s.MaxFileSize > 0 && info.Size() > s.MaxFileSize {
		return "", false, nil
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return "", false, err
	}
	if len(data) == 0 {
		return "", true, nil
	}
	if !isText(mimetype.Detect(data)) {
		return "", false, nil
	}
	return string(data), true, nil
}

func isText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// ensureDir walks segments under root creating directories as needed.
// A file already sitting on the path is replaced by a directory.
func ensureDir(root types.Directory, segments []string) types.Directory {
	current := root
	for _, seg := range segments {
		next, ok := current[seg].(types.Directory)
		if !ok {
			next = types.Directory{}
			current[seg] = next
		}
		current = next
	}
	return current
}
