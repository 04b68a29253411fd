package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

const fileSuffix = ".dat"

// zstd frame magic number
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// FileStore keeps one file per key under a directory
type FileStore struct {
	dir      string
	compress bool

	mu      sync.Mutex
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewFileStore creates the directory if needed. When compress is set values are
// written as zstd frames; reads accept both forms.
func NewFileStore(dir string, compress bool) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty storage directory", ErrUnavailable)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrUnavailable, dir, err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd encoder: %v", ErrUnavailable, err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("%w: zstd decoder: %v", ErrUnavailable, err)
	}

	return &FileStore{
		dir:      dir,
		compress: compress,
		encoder:  encoder,
		decoder:  decoder,
	}, nil
}

// Dir returns the backing directory
func (f *FileStore) Dir() string {
	return f.dir
}

// Close releases the codec resources
func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.decoder.Close()
	return f.encoder.Close()
}

// Get reads and, if needed, decompresses the value for key
func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}

	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, key, err)
	}

	if !bytes.HasPrefix(data, zstdMagic) {
		return data, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out, err := f.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress %s: %v", ErrUnavailable, key, err)
	}
	return out, nil
}

// Set writes value to a temp file and renames it over the key's file
func (f *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.Join(ErrUnavailable, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data := value
	if f.compress {
		data = f.encoder.EncodeAll(value, nil)
	}

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", ErrUnavailable, key, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: write %s: %v", ErrUnavailable, key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close %s: %v", ErrUnavailable, key, err)
	}
	if err := os.Rename(tmpPath, f.path(key)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// Delete removes the key's file; missing keys are ignored
func (f *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return errors.Join(ErrUnavailable, err)
	}

	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: delete %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// Keys lists stored keys with the given prefix in lexical order
func (f *FileStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", ErrUnavailable, f.dir, err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, fileSuffix))
		if err != nil {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// path escapes key so that any string maps to a single file inside dir
func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+fileSuffix)
}
