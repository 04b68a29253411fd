package vfs

import (
	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
)

// Diff returns the parts of live that are not structurally identical to base
// at the same path. A file is kept unless base holds the same content at that
// path. A directory that base also has is kept only if something inside it
// survives; a directory base lacks (or holds as a file) is kept whole, even
// when empty. The result shares no maps with either input.
func Diff(live, base types.Directory) types.Directory {
	out := types.Directory{}
	for name, node := range live {
		baseNode, inBase := base[name]

		switch n := node.(type) {
		case types.File:
			if bf, ok := baseNode.(types.File); inBase && ok && bf == n {
				continue
			}
			out[name] = n

		case types.Directory:
			bd, ok := baseNode.(types.Directory)
			if !inBase || !ok {
				out[name] = n.Clone()
				continue
			}
			if sub := Diff(n, bd); len(sub) > 0 {
				out[name] = sub
			}
		}
	}
	return out
}

// Merge overlays overlay onto base. Base entries are never replaced: an
// overlay entry is inserted only where base has nothing at that path, and
// directories present in both are merged recursively. When the two disagree
// on the type of a path, base wins. The result shares no maps with either
// input.
func Merge(base, overlay types.Directory) types.Directory {
	out := base.Clone()
	if out == nil {
		out = types.Directory{}
	}
	for name, node := range overlay {
		existing, ok := out[name]
		if !ok {
			out[name] = types.CloneNode(node)
			continue
		}

		ed, baseIsDir := existing.(types.Directory)
		od, overlayIsDir := node.(types.Directory)
		if baseIsDir && overlayIsDir {
			out[name] = Merge(ed, od)
		}
	}
	return out
}

// countFiles returns the number of files under d
func countFiles(d types.Directory) int {
	n := 0
	for _, node := range d {
		switch v := node.(type) {
		case types.File:
			n++
		case types.Directory:
			n += countFiles(v)
		}
	}
	return n
}
