// Package propagator computes an initial guess for vertices that have
// no usable estimate yet, by growing a best-first spanning tree outward
// from a set of root vertices (fixed vertices and vertices with a prior
// that fully constrains them).
//
// The priority-queue traversal mirrors prim_kruskal's min-heap MST
// growth: instead of "cheapest edge crossing the cut", the frontier
// here is "cheapest edge able to initialize an uninitialized neighbor",
// with the cost supplied by the caller per edge.
package propagator
