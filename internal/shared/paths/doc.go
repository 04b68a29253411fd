// Package paths resolves path expressions against the virtual filesystem tree.
//
// Paths are ordered segment lists rooted at the home alias "~". Resolution is
// pure: it never mutates the tree and only reports whether the expression
// leads somewhere that exists.
//
// # Rules
//
//   - A leading "/" (or a leading "~" segment) starts from the home alias.
//   - Anything else is relative to the current directory.
//   - "." is ignored; ".." pops one level but never above "~".
//   - Every intermediate segment must be an existing directory. The final
//     segment may name a file; callers decide whether that is acceptable.
//
// # Usage
//
//	segs, err := paths.Resolve("../notes", []string{"~", "projects"}, tree)
//	if errors.Is(err, paths.ErrNotFound) {
//	    // "no such file or directory: ../notes"
//	}
//
//	node, ok := paths.GetNode(segs, tree)
package paths
