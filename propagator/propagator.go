package propagator

import (
	"container/heap"
	"math"

	"github.com/schdomin/g2o/hypergraph"
)

// CostFunc estimates the cost of using e to initialize target given the
// subset of e's vertices already initialized. Return math.Inf(1) when e
// cannot initialize target from that subset.
type CostFunc func(e hypergraph.Edge, initialized map[hypergraph.ID]hypergraph.Vertex, target hypergraph.Vertex) float64

// frontierEntry is one candidate in the priority queue: vertex reachable
// at accumulated cost, through edge (nil for a root).
type frontierEntry struct {
	cost   float64
	vertex hypergraph.Vertex
	edge   hypergraph.Edge
}

type frontier []*frontierEntry

func (f frontier) Len() int            { return len(f) }
func (f frontier) Less(i, j int) bool  { return f[i].cost < f[j].cost }
func (f frontier) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x interface{}) { *f = append(*f, x.(*frontierEntry)) }
func (f *frontier) Pop() interface{} {
	old := *f
	n := len(old)
	e := old[n-1]
	*f = old[:n-1]
	return e
}

// initializedSubset returns the vertices of e that are already
// initialized, excluding target itself.
func initializedSubset(e hypergraph.Edge, initialized map[hypergraph.ID]hypergraph.Vertex, target hypergraph.Vertex) map[hypergraph.ID]hypergraph.Vertex {
	sub := make(map[hypergraph.ID]hypergraph.Vertex, len(e.Vertices()))
	for _, v := range e.Vertices() {
		if v.ID() == target.ID() {
			continue
		}
		if iv, ok := initialized[v.ID()]; ok {
			sub[v.ID()] = iv
		}
	}
	return sub
}

// Propagate seeds a priority queue with roots at cost 0 and grows a
// spanning tree: each time a vertex is popped at its cheapest known
// cost, every incident edge reachable through it is offered as a
// candidate parent for its uninitialized neighbors. A neighbor is only
// ever initialized once, through the cheapest parent edge discovered
// before it is popped. Unreachable vertices are left untouched.
//
// edges is the active edge set to traverse; roots must already be
// initialized by the caller (typically fixed vertices and vertices with
// a fully-constraining unary prior).
func Propagate(roots []hypergraph.Vertex, edges []hypergraph.Edge, cost CostFunc) {
	incident := make(map[hypergraph.ID][]hypergraph.Edge, len(edges))
	for _, e := range edges {
		for _, ev := range e.Vertices() {
			incident[ev.ID()] = append(incident[ev.ID()], e)
		}
	}

	initialized := make(map[hypergraph.ID]hypergraph.Vertex, len(roots))
	best := make(map[hypergraph.ID]float64, len(roots))

	q := &frontier{}
	heap.Init(q)
	for _, r := range roots {
		if _, seen := initialized[r.ID()]; seen {
			continue
		}
		initialized[r.ID()] = r
		best[r.ID()] = 0
		heap.Push(q, &frontierEntry{cost: 0, vertex: r})
	}

	for q.Len() > 0 {
		entry := heap.Pop(q).(*frontierEntry)
		v := entry.vertex

		if entry.edge != nil {
			if _, already := initialized[v.ID()]; already {
				continue // stale queue entry: a cheaper path already won
			}
			sub := initializedSubset(entry.edge, initialized, v)
			entry.edge.InitialEstimate(sub, v)
			initialized[v.ID()] = v
		}

		for _, e := range incident[v.ID()] { // only edges from the given set
			for _, nb := range e.Vertices() {
				if _, done := initialized[nb.ID()]; done {
					continue
				}
				sub := initializedSubset(e, initialized, nb)
				c := cost(e, sub, nb)
				if math.IsInf(c, 1) {
					continue
				}
				total := entry.cost + c
				if bc, ok := best[nb.ID()]; !ok || total < bc {
					best[nb.ID()] = total
					heap.Push(q, &frontierEntry{cost: total, vertex: nb, edge: e})
				}
			}
		}
	}
}
