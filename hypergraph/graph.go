package hypergraph

import (
	"fmt"
	"sort"
	"sync"
)

// HyperGraph is the typed container of vertices, edges, and parameters.
// It owns every element inserted into it until explicitly removed.
//
// muVert guards the vertex catalog; muEdge guards the edge catalog and
// the vertex<->edge back-references. Mutations that touch both (e.g.
// RemoveVertex, which must also detach incident edges) acquire muVert
// then muEdge, matching the lock order documented on core.Graph in the
// teacher package this was adapted from.
type HyperGraph struct {
	muVert sync.RWMutex
	muEdge sync.RWMutex

	vertices   map[ID]Vertex
	edges      map[ID]Edge
	parameters map[ID]Parameter
}

// NewHyperGraph creates an empty HyperGraph.
func NewHyperGraph() *HyperGraph {
	return &HyperGraph{
		vertices:   make(map[ID]Vertex),
		edges:      make(map[ID]Edge),
		parameters: make(map[ID]Parameter),
	}
}

// AddVertex inserts v. Returns false (no-op) if a vertex with the same
// id is already present.
func (g *HyperGraph) AddVertex(v Vertex) bool {
	g.muVert.Lock()
	defer g.muVert.Unlock()

	if _, exists := g.vertices[v.ID()]; exists {
		return false
	}
	g.vertices[v.ID()] = v
	return true
}

// AddEdge inserts e after verifying every incident vertex is already in
// the graph, and registers e as incident on each of them. Returns false
// if e's id is a duplicate or it references an unknown vertex.
func (g *HyperGraph) AddEdge(e Edge) bool {
	g.muVert.RLock()
	for _, v := range e.Vertices() {
		if _, ok := g.vertices[v.ID()]; !ok {
			g.muVert.RUnlock()
			return false
		}
	}
	g.muVert.RUnlock()

	g.muEdge.Lock()
	defer g.muEdge.Unlock()
	if _, exists := g.edges[e.ID()]; exists {
		return false
	}
	g.edges[e.ID()] = e
	for _, v := range e.Vertices() {
		v.addEdge(e)
	}
	return true
}

// RemoveVertex deletes v and every edge incident on it. Returns false if
// v is not present.
func (g *HyperGraph) RemoveVertex(v Vertex) bool {
	g.muVert.Lock()
	defer g.muVert.Unlock()
	g.muEdge.Lock()
	defer g.muEdge.Unlock()

	if _, exists := g.vertices[v.ID()]; !exists {
		return false
	}

	for id := range v.Edges() {
		e := g.edges[id]
		if e == nil {
			continue
		}
		for _, other := range e.Vertices() {
			other.removeEdge(id)
		}
		delete(g.edges, id)
	}
	delete(g.vertices, v.ID())
	return true
}

// RemoveEdge deletes e and detaches it from its incident vertices.
// Returns false if e is not present.
func (g *HyperGraph) RemoveEdge(e Edge) bool {
	g.muEdge.Lock()
	defer g.muEdge.Unlock()

	if _, exists := g.edges[e.ID()]; !exists {
		return false
	}
	for _, v := range e.Vertices() {
		v.removeEdge(e.ID())
	}
	delete(g.edges, e.ID())
	return true
}

// Vertex looks up a vertex by id.
func (g *HyperGraph) Vertex(id ID) (Vertex, bool) {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	v, ok := g.vertices[id]
	return v, ok
}

// Edge looks up an edge by id.
func (g *HyperGraph) Edge(id ID) (Edge, bool) {
	g.muEdge.RLock()
	defer g.muEdge.RUnlock()
	e, ok := g.edges[id]
	return e, ok
}

// Vertices returns every vertex in the graph, ascending by id.
func (g *HyperGraph) Vertices() []Vertex {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	out := make([]Vertex, 0, len(g.vertices))
	for _, v := range g.vertices {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Edges returns every edge in the graph, ascending by id.
func (g *HyperGraph) Edges() []Edge {
	g.muEdge.RLock()
	defer g.muEdge.RUnlock()
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// VertexSet returns every vertex in the graph as an id-keyed set,
// convenient for passing to the active-set builder's vertex-set entry
// point.
func (g *HyperGraph) VertexSet() map[ID]Vertex {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	out := make(map[ID]Vertex, len(g.vertices))
	for id, v := range g.vertices {
		out[id] = v
	}
	return out
}

// AddParameter registers p. Returns false if p's id is a duplicate.
func (g *HyperGraph) AddParameter(p Parameter) bool {
	g.muVert.Lock()
	defer g.muVert.Unlock()
	if _, exists := g.parameters[p.ID()]; exists {
		return false
	}
	g.parameters[p.ID()] = p
	return true
}

// Parameter looks up a parameter by id.
func (g *HyperGraph) Parameter(id ID) (Parameter, error) {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	p, ok := g.parameters[id]
	if !ok {
		return nil, fmt.Errorf("hypergraph: parameter %d: %w", id, ErrParameterNotFound)
	}
	return p, nil
}

// Clear empties the graph.
func (g *HyperGraph) Clear() {
	g.muVert.Lock()
	defer g.muVert.Unlock()
	g.muEdge.Lock()
	defer g.muEdge.Unlock()
	g.vertices = make(map[ID]Vertex)
	g.edges = make(map[ID]Edge)
	g.parameters = make(map[ID]Parameter)
}
