package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
)

func TestDiff(t *testing.T) {
	base := types.Directory{"~": types.Directory{
		"a.txt": types.File("hello"),
		"docs":  types.Directory{"x.md": types.File("x")},
		"empty": types.Directory{},
	}}

	tests := []struct {
		name string
		live types.Directory
		want types.Directory
	}{
		{
			name: "identical tree yields empty overlay",
			live: base.Clone(),
			want: types.Directory{},
		},
		{
			name: "changed file content",
			live: types.Directory{"~": types.Directory{
				"a.txt": types.File("changed"),
				"docs":  types.Directory{"x.md": types.File("x")},
				"empty": types.Directory{},
			}},
			want: types.Directory{"~": types.Directory{"a.txt": types.File("changed")}},
		},
		{
			name: "new file inside bundled directory",
			live: types.Directory{"~": types.Directory{
				"a.txt": types.File("hello"),
				"docs":  types.Directory{"x.md": types.File("x"), "y.md": types.File("")},
				"empty": types.Directory{},
			}},
			want: types.Directory{"~": types.Directory{"docs": types.Directory{"y.md": types.File("")}}},
		},
		{
			name: "new empty directory is kept",
			live: types.Directory{"~": types.Directory{
				"a.txt": types.File("hello"),
				"docs":  types.Directory{"x.md": types.File("x"), "sub": types.Directory{}},
				"empty": types.Directory{},
			}},
			want: types.Directory{"~": types.Directory{"docs": types.Directory{"sub": types.Directory{}}}},
		},
		{
			name: "directory where base has a file",
			live: types.Directory{"~": types.Directory{
				"a.txt": types.Directory{"inner": types.File("i")},
				"docs":  types.Directory{"x.md": types.File("x")},
				"empty": types.Directory{},
			}},
			want: types.Directory{"~": types.Directory{"a.txt": types.Directory{"inner": types.File("i")}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.live, base)
			assert.True(t, types.NodesEqual(tt.want, got), "got %#v", got)
		})
	}
}

func TestDiffDoesNotAlias(t *testing.T) {
	live := types.Directory{"~": types.Directory{"new": types.Directory{"f": types.File("1")}}}
	overlay := Diff(live, EmptyTree())

	overlay["~"].(types.Directory)["new"].(types.Directory)["f"] = types.File("2")
	assert.Equal(t, types.File("1"), live["~"].(types.Directory)["new"].(types.Directory)["f"])
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name    string
		base    types.Directory
		overlay types.Directory
		want    types.Directory
	}{
		{
			name:    "overlay fills paths base lacks",
			base:    types.Directory{"~": types.Directory{"a": types.File("1")}},
			overlay: types.Directory{"~": types.Directory{"b": types.File("2")}},
			want:    types.Directory{"~": types.Directory{"a": types.File("1"), "b": types.File("2")}},
		},
		{
			name:    "base file content wins",
			base:    types.Directory{"~": types.Directory{"a": types.File("shipped")}},
			overlay: types.Directory{"~": types.Directory{"a": types.File("stale")}},
			want:    types.Directory{"~": types.Directory{"a": types.File("shipped")}},
		},
		{
			name:    "base directory wins over overlay file",
			base:    types.Directory{"~": types.Directory{"a": types.Directory{"k": types.File("v")}}},
			overlay: types.Directory{"~": types.Directory{"a": types.File("file")}},
			want:    types.Directory{"~": types.Directory{"a": types.Directory{"k": types.File("v")}}},
		},
		{
			name:    "base file wins over overlay directory",
			base:    types.Directory{"~": types.Directory{"a": types.File("file")}},
			overlay: types.Directory{"~": types.Directory{"a": types.Directory{"k": types.File("v")}}},
			want:    types.Directory{"~": types.Directory{"a": types.File("file")}},
		},
		{
			name:    "directories merge recursively",
			base:    types.Directory{"~": types.Directory{"d": types.Directory{"x": types.File("1")}}},
			overlay: types.Directory{"~": types.Directory{"d": types.Directory{"y": types.File("2"), "s": types.Directory{}}}},
			want: types.Directory{"~": types.Directory{"d": types.Directory{
				"x": types.File("1"), "y": types.File("2"), "s": types.Directory{},
			}}},
		},
		{
			name:    "empty overlay",
			base:    DefaultTree(),
			overlay: types.Directory{},
			want:    DefaultTree(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.base, tt.overlay)
			assert.True(t, types.NodesEqual(tt.want, got), "got %#v", got)
		})
	}
}

func TestMergeOfDiffRestoresLiveTree(t *testing.T) {
	base := DefaultTree()
	live := DefaultTree()
	home := live["~"].(types.Directory)
	home["todo.md"] = types.File("- [ ] ship")
	home["projects"].(types.Directory)["new"] = types.Directory{}

	restored := Merge(base, Diff(live, base))
	assert.True(t, types.NodesEqual(live, restored))
}

func TestCountFiles(t *testing.T) {
	assert.Equal(t, 5, countFiles(DefaultTree()))
	assert.Equal(t, 0, countFiles(EmptyTree()))
}
