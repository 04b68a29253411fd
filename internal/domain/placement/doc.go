// Package placement decides where new windows appear.
//
// All functions are pure: given the same sizes, occupied rectangles and
// viewport they return the same answer, so they can be tested without a
// window manager.
//
//   - RectsIntersect: strict AABB overlap (shared edges do not count)
//   - FindNonOverlapping: preferred point first, then a coarse grid scan
//   - ComputeCascade: diagonal fallback that always stays on screen
//   - SnapToGrid: nearest multiple of the grid size
package placement
