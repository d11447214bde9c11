package optimizer

import "github.com/schdomin/g2o/hypergraph"

// findGauge returns a candidate vertex to fix for gauge removal: the
// first vertex (in the given, id-sorted order) whose Dimension equals
// the maximum vertex dimension present. Returns nil, false on an empty
// slice.
func findGauge(vertices []hypergraph.Vertex) (hypergraph.Vertex, bool) {
	if len(vertices) == 0 {
		return nil, false
	}
	maxDim := 0
	for _, v := range vertices {
		if v.Dimension() > maxDim {
			maxDim = v.Dimension()
		}
	}
	for _, v := range vertices {
		if v.Dimension() == maxDim {
			return v, true
		}
	}
	return nil, false
}

// gaugeFreedom reports whether the graph is under-constrained for its
// global symmetry group: true iff no given vertex of maximum
// dimension is fixed, and no unary edge of that dimension is attached
// to a max-dimension vertex. Purely advisory — the optimizer never
// auto-fixes a gauge vertex.
func gaugeFreedom(vertices []hypergraph.Vertex, edges []hypergraph.Edge) bool {
	if len(vertices) == 0 {
		return false
	}
	maxDim := 0
	for _, v := range vertices {
		if v.Dimension() > maxDim {
			maxDim = v.Dimension()
		}
	}
	for _, v := range vertices {
		if v.Dimension() == maxDim && v.Fixed() {
			return false
		}
	}
	for _, e := range edges {
		vs := e.Vertices()
		if len(vs) != 1 {
			continue
		}
		if vs[0].Dimension() == maxDim && e.Dimension() == maxDim {
			return false
		}
	}
	return true
}
