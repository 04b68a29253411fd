/*
Package vfs implements the desktop's virtual filesystem.

The live tree is a types.Directory rooted at the home alias "~". It is built
by merging a read-only bundled snapshot with a locally persisted overlay: the
snapshot is authoritative wherever it defines a path, the overlay fills in
everything else. Mutations apply to the live tree immediately and the overlay
(live tree minus everything identical to the snapshot) is re-persisted after
each one.

Snapshots come from a SnapshotSource: HTTPSource fetches the JSON tree from a
URL, DirSource walks a directory on disk and StaticSource returns a fixed tree.
When the fetch fails or times out the overlay is merged onto DefaultTree.

Persistence failures are logged and counted but never returned; the
filesystem keeps working in memory.
*/
package vfs
