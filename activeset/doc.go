// Package activeset builds the active vertex/edge set a solve operates
// on and assigns the dense tempIndex each active, non-fixed vertex
// occupies in the linear system.
//
// Two entry points mirror the two ways a caller can scope a solve: from
// a vertex set (collect the edges fully contained in it) or from an
// edge set (collect the vertices it touches). Both produce a Set whose
// Vertices and Edges slices are sorted ascending by id, giving
// deterministic ordering and O(log n) lookups via FindVertex/FindEdge.
package activeset
