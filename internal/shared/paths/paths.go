package paths

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
)

const (
	// Home is the root alias every path starts from
	Home = "~"
	// Separator joins segments on the wire
	Separator = "/"
)

// ErrNotFound is wrapped by every resolution failure
var ErrNotFound = errors.New("no such file or directory")

// ErrInvalidPath is returned by Parse for malformed wire paths
var ErrInvalidPath = errors.New("invalid path")

// ResolveError carries the original expression for display
type ResolveError struct {
	Expr string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotFound.Error(), e.Expr)
}

func (e *ResolveError) Unwrap() error {
	return ErrNotFound
}

// Resolve translates expr, relative to current, into an absolute segment list.
func Resolve(expr string, current []string, tree types.Directory) ([]string, error) {
	parts := strings.Split(expr, Separator)

	var resolved []string
	switch {
	case strings.HasPrefix(expr, Separator):
		resolved = []string{Home}
	case len(parts) > 0 && parts[0] == Home:
		resolved = []string{Home}
		parts = parts[1:]
	case len(current) == 0:
		resolved = []string{Home}
	default:
		resolved = append(make([]string, 0, len(current)+len(parts)), current...)
	}

	// Drop empty segments from "a//b" and trailing slashes
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}

	for i, part := range segments {
		switch part {
		case ".":
			continue
		case "..":
			if len(resolved) > 1 {
				resolved = resolved[:len(resolved)-1]
			}
			continue
		}

		node, ok := GetNode(resolved, tree)
		dir, isDir := node.(types.Directory)
		if !ok || !isDir {
			return nil, &ResolveError{Expr: expr}
		}

		child, exists := dir[part]
		if !exists {
			return nil, &ResolveError{Expr: expr}
		}
		if _, isFile := child.(types.File); isFile && i != len(segments)-1 {
			return nil, &ResolveError{Expr: expr}
		}
		resolved = append(resolved, part)
	}

	return resolved, nil
}

// GetNode walks the tree and returns whatever node exists at segments.
// An empty segment list yields the tree root.
func GetNode(segments []string, tree types.Directory) (types.Node, bool) {
	var current types.Node = tree
	for _, seg := range segments {
		dir, ok := current.(types.Directory)
		if !ok {
			return nil, false
		}
		next, ok := dir[seg]
		if !ok {
			return nil, false
		}
		current = next
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// GetDirectory is GetNode restricted to directories.
func GetDirectory(segments []string, tree types.Directory) (types.Directory, bool) {
	node, ok := GetNode(segments, tree)
	if !ok {
		return nil, false
	}
	dir, ok := node.(types.Directory)
	return dir, ok
}

// Parse converts a normalized wire path ("~/notes/a.md" or "/notes/a.md")
// into segments. Relative components are rejected; use Resolve for those.
func Parse(p string) ([]string, error) {
	if p == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPath)
	}

	raw := strings.Split(p, Separator)
	segments := make([]string, 0, len(raw)+1)
	if strings.HasPrefix(p, Separator) {
		segments = append(segments, Home)
	}
	for _, seg := range raw {
		if seg == "" {
			continue
		}
		if err := ValidateSegment(seg); err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	if len(segments) == 0 || segments[0] != Home {
		return nil, fmt.Errorf("%w: must start with %s or %s: %q", ErrInvalidPath, Home, Separator, p)
	}
	for _, seg := range segments[1:] {
		if seg == Home {
			return nil, fmt.Errorf("%w: %q may only appear first", ErrInvalidPath, Home)
		}
	}
	return segments, nil
}

// ValidateSegment rejects names that cannot be stored as a directory entry.
func ValidateSegment(seg string) error {
	switch {
	case seg == "":
		return fmt.Errorf("%w: empty segment", ErrInvalidPath)
	case seg == "." || seg == "..":
		return fmt.Errorf("%w: relative segment %q", ErrInvalidPath, seg)
	case strings.Contains(seg, Separator):
		return fmt.Errorf("%w: segment contains %q", ErrInvalidPath, Separator)
	}
	return nil
}

// Join renders segments in wire form.
func Join(segments []string) string {
	return strings.Join(segments, Separator)
}
