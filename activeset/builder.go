package activeset

import (
	"sort"

	"github.com/schdomin/g2o/hypergraph"
)

// Set is the active vertex/edge selection for a solve, sorted ascending
// by id in both slices.
type Set struct {
	Vertices []hypergraph.Vertex
	Edges    []hypergraph.Edge
}

// FromVertexSet selects, from vset, every edge whose level matches
// level (level < 0 is a wildcard matching every level) and whose
// incident vertices all lie in vset, then every vertex in vset that is
// incident to at least one selected edge.
//
// Idempotent and total: calling it twice with the same vset/level
// produces an equal Set.
func FromVertexSet(vset map[hypergraph.ID]hypergraph.Vertex, level int) *Set {
	edges := make(map[hypergraph.ID]hypergraph.Edge)
	included := make(map[hypergraph.ID]hypergraph.Vertex)

	for _, v := range vset {
		n := 0
		for _, e := range v.Edges() {
			if level >= 0 && e.Level() != level {
				continue
			}
			allPresent := true
			for _, ev := range e.Vertices() {
				if _, ok := vset[ev.ID()]; !ok {
					allPresent = false
					break
				}
			}
			if !allPresent {
				continue
			}
			edges[e.ID()] = e
			n++
		}
		if n > 0 {
			included[v.ID()] = v
		}
	}
	return sortedSet(included, edges)
}

// FromEdgeSet selects every edge in eset and every vertex any of those
// edges reference.
func FromEdgeSet(eset map[hypergraph.ID]hypergraph.Edge) *Set {
	vertices := make(map[hypergraph.ID]hypergraph.Vertex)
	for _, e := range eset {
		for _, v := range e.Vertices() {
			vertices[v.ID()] = v
		}
	}
	return sortedSet(vertices, eset)
}

func sortedSet(vset map[hypergraph.ID]hypergraph.Vertex, eset map[hypergraph.ID]hypergraph.Edge) *Set {
	vs := make([]hypergraph.Vertex, 0, len(vset))
	for _, v := range vset {
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].ID() < vs[j].ID() })

	es := make([]hypergraph.Edge, 0, len(eset))
	for _, e := range eset {
		es = append(es, e)
	}
	sort.Slice(es, func(i, j int) bool { return es[i].ID() < es[j].ID() })

	return &Set{Vertices: vs, Edges: es}
}

// FindVertex returns the vertex with id, using binary search over the
// sorted Vertices slice, or (nil, false) if absent.
func (s *Set) FindVertex(id hypergraph.ID) (hypergraph.Vertex, bool) {
	i := sort.Search(len(s.Vertices), func(i int) bool { return s.Vertices[i].ID() >= id })
	if i < len(s.Vertices) && s.Vertices[i].ID() == id {
		return s.Vertices[i], true
	}
	return nil, false
}

// FindEdge returns the edge with id, using binary search over the
// sorted Edges slice, or (nil, false) if absent.
func (s *Set) FindEdge(id hypergraph.ID) (hypergraph.Edge, bool) {
	i := sort.Search(len(s.Edges), func(i int) bool { return s.Edges[i].ID() >= id })
	if i < len(s.Edges) && s.Edges[i].ID() == id {
		return s.Edges[i], true
	}
	return nil, false
}
