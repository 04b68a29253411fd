package wallpaper

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// URLPrefix is prepended to every listed image
const URLPrefix = "/wallpapers/"

// Pattern matches the accepted image extensions, compared in lower case
const Pattern = "*.{jpg,jpeg,png,webp,gif}"

// ErrNotFound is returned for names that are not listed wallpapers
var ErrNotFound = errors.New("wallpaper not found")

// Lister reads images from a directory
type Lister struct {
	dir    string
	logger *zap.Logger
}

// NewLister creates a lister over dir
func NewLister(dir string, logger *zap.Logger) *Lister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lister{dir: dir, logger: logger}
}

// Dir returns the directory being listed
func (l *Lister) Dir() string {
	return l.dir
}

// List returns the URL paths of all images, sorted. A missing directory
// yields an empty list.
func (l *Lister) List() ([]string, error) {
	names, err := l.names()
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(names))
	for _, name := range names {
		urls = append(urls, URLPrefix+url.PathEscape(name))
	}
	return urls, nil
}

// Path returns the file path of the wallpaper called name
func (l *Lister) Path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if !matches(name) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	path := filepath.Join(l.dir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if !l.isImage(path) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return path, nil
}

func (l *Lister) names() ([]string, error) {
	if l.dir == "" {
		return []string{}, nil
	}

	entries, err := os.ReadDir(l.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read wallpapers: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !matches(entry.Name()) {
			continue
		}
		if !l.isImage(filepath.Join(l.dir, entry.Name())) {
			l.logger.Debug("Skipping non-image wallpaper", zap.String("name", entry.Name()))
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (l *Lister) isImage(path string) bool {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		l.logger.Debug("Wallpaper sniff failed", zap.String("path", path), zap.Error(err))
		return false
	}
	return strings.HasPrefix(mtype.String(), "image/")
}

func matches(name string) bool {
	ok, err := doublestar.Match(Pattern, strings.ToLower(name))
	return err == nil && ok
}
