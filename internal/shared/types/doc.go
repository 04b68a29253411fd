// Package types provides shared data structures for the desktop backend.
//
// Core Types:
//   - WindowRecord: bookkeeping entry for one open application window
//   - Rect, Point, Viewport: pixel geometry
//   - Appearance: per-window visual overrides (opacity, theme, blur)
//   - Node, File, Directory: the virtual filesystem tree
//   - AppDefinition, WindowDefaults: application registry entries
//   - Event: notifications pushed to the desktop shell
//
// The filesystem tree uses the same shape on the wire as in memory:
// a File marshals to a JSON string and a Directory to a JSON object.
//
//	tree := types.Directory{
//	    "~": types.Directory{
//	        "about.txt": types.File("hello"),
//	        "notes":     types.Directory{},
//	    },
//	}
package types
