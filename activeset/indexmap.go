package activeset

import "github.com/schdomin/g2o/hypergraph"

// IndexMap is the ordered sequence of active, non-fixed vertices; the
// position of a vertex in this sequence is also the tempIndex the
// builder assigned it. Non-marginalized vertices occupy the prefix
// [0, NonMarginalizedCount()); marginalized vertices occupy the suffix.
// This two-region layout is the contract between the graph and the
// LinearSolver's Schur-complement partitioning.
type IndexMap struct {
	ordered []hypergraph.Vertex
	k1      int
}

// BuildIndexMapping assigns tempIndex to every non-fixed vertex in
// vlist: pass 0 walks vlist in order assigning indices to non-
// marginalized vertices, pass 1 appends marginalized vertices. Fixed
// vertices receive tempIndex -1. Fails with ErrEmptyVertexList iff
// vlist is empty; an all-fixed, non-empty vlist succeeds with an empty
// map.
func BuildIndexMapping(vlist []hypergraph.Vertex) (*IndexMap, error) {
	if len(vlist) == 0 {
		return nil, ErrEmptyVertexList
	}

	im := &IndexMap{}
	for _, v := range vlist {
		if v.Fixed() {
			v.SetTempIndex(-1)
		}
	}
	for _, v := range vlist {
		if !v.Fixed() && !v.Marginalized() {
			v.SetTempIndex(len(im.ordered))
			im.ordered = append(im.ordered, v)
		}
	}
	im.k1 = len(im.ordered)
	for _, v := range vlist {
		if !v.Fixed() && v.Marginalized() {
			v.SetTempIndex(len(im.ordered))
			im.ordered = append(im.ordered, v)
		}
	}
	return im, nil
}

// Clear resets every mapped vertex's tempIndex to -1 and empties the map.
func (m *IndexMap) Clear() {
	if m == nil {
		return
	}
	for _, v := range m.ordered {
		v.SetTempIndex(-1)
	}
	m.ordered = nil
	m.k1 = 0
}

// Len returns the number of active, non-fixed vertices (the dimension
// of the tangent-space index, not counting per-vertex local dimension).
func (m *IndexMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.ordered)
}

// NonMarginalizedCount returns k1, the size of the non-marginalized prefix.
func (m *IndexMap) NonMarginalizedCount() int {
	if m == nil {
		return 0
	}
	return m.k1
}

// At returns the vertex occupying tempIndex i.
func (m *IndexMap) At(i int) hypergraph.Vertex { return m.ordered[i] }

// Vertices returns the full ordered sequence.
func (m *IndexMap) Vertices() []hypergraph.Vertex { return m.ordered }

// Append extends the map with vlist without reordering existing
// indices, per updateInitialization's incremental contract: only non-
// fixed, non-marginalized vertices receive new indices, fixed vertices
// receive tempIndex -1, and a marginalized vertex in vlist is a
// programmer error (unsupported incremental addition, spec §7) that
// panics rather than returning an error.
//
// Returns the subset of vlist that actually received a new tempIndex,
// in the order appended.
func (m *IndexMap) Append(vlist []hypergraph.Vertex) []hypergraph.Vertex {
	added := make([]hypergraph.Vertex, 0, len(vlist))
	for _, v := range vlist {
		if v.Fixed() {
			v.SetTempIndex(-1)
			continue
		}
		if v.Marginalized() {
			panic("activeset: incremental addition of a marginalized vertex is not supported")
		}
		v.SetTempIndex(len(m.ordered))
		m.ordered = append(m.ordered, v)
		added = append(added, v)
	}
	// NonMarginalizedCount() deliberately keeps reporting the prefix size
	// from the last full BuildIndexMapping: appended vertices land after
	// the existing tail in index order, so once a marginalized block is
	// present an incremental append no longer yields a clean two-region
	// split. This mirrors g2o's own updateInitialization, which has the
	// same property — incremental updates never add marginalized
	// vertices, but they do not re-partition the index either.
	return added
}
