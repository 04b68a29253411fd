package types

import (
	"fmt"
	"sort"

	"github.com/bytedance/sonic"
)

// Node is either a File or a Directory
type Node interface {
	isNode()
}

// File is a leaf holding arbitrary text
type File string

// Directory maps entry names to child nodes
type Directory map[string]Node

func (File) isNode()      {}
func (Directory) isNode() {}

// Names returns the entry names in lexical order.
func (d Directory) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy that shares no maps with d.
func (d Directory) Clone() Directory {
	if d == nil {
		return nil
	}
	out := make(Directory, len(d))
	for name, child := range d {
		out[name] = CloneNode(child)
	}
	return out
}

// CloneNode deep-copies a node.
func CloneNode(n Node) Node {
	switch v := n.(type) {
	case Directory:
		return v.Clone()
	default:
		return v
	}
}

// NodesEqual reports whether two nodes are structurally identical.
func NodesEqual(a, b Node) bool {
	switch av := a.(type) {
	case File:
		bv, ok := b.(File)
		return ok && av == bv
	case Directory:
		bv, ok := b.(Directory)
		if !ok || len(av) != len(bv) {
			return false
		}
		for name, child := range av {
			other, ok := bv[name]
			if !ok || !NodesEqual(child, other) {
				return false
			}
		}
		return true
	default:
		return a == nil && b == nil
	}
}

// UnmarshalJSON decodes the wire shape: strings are files, objects are directories.
func (d *Directory) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	dir, err := DirectoryFrom(raw)
	if err != nil {
		return err
	}
	*d = dir
	return nil
}

// DirectoryFrom converts a decoded JSON object into a Directory.
func DirectoryFrom(raw map[string]interface{}) (Directory, error) {
	dir := make(Directory, len(raw))
	for name, value := range raw {
		if name == "" {
			return nil, fmt.Errorf("empty entry name")
		}
		switch v := value.(type) {
		case string:
			dir[name] = File(v)
		case map[string]interface{}:
			child, err := DirectoryFrom(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			dir[name] = child
		default:
			return nil, fmt.Errorf("%s: unsupported node type %T", name, value)
		}
	}
	return dir, nil
}
