package solver

import (
	"github.com/schdomin/g2o/activeset"
	"github.com/schdomin/g2o/hypergraph"
)

// State is the LinearSolver's lifecycle: a fresh solver starts
// Uninitialized, Init builds the sparsity/offset pattern (Structured),
// the first Solve assembles the numeric Hessian (Numeric) before
// producing an increment (Solved).
type State int

const (
	Uninitialized State = iota
	Structured
	Numeric
	Solved
)

// Outcome is the per-iteration result Solve reports to the optimizer loop.
type Outcome int

const (
	OK Outcome = iota
	Fail
	Terminate
)

// Graph is the slice of optimizer behavior a LinearSolver needs: the
// active edge/vertex sets and index map to build the system from, the
// error/Jacobian refresh hooks, and Update to apply a solved increment.
// *optimizer.Optimizer implements this.
type Graph interface {
	ActiveEdges() []hypergraph.Edge
	ActiveVertices() []hypergraph.Vertex
	IndexMap() *activeset.IndexMap
	ComputeActiveErrors()
	LinearizeSystem()
	Update(delta []float64)
}

// LinearSolver is the contract the optimizer loop drives each
// iteration. Concrete solvers assemble H = sum J'*Omega*J and
// b = sum J'*Omega*r from the active edges, solve H*delta = -b (or the
// damped equivalent), and apply delta via Graph.Update.
type LinearSolver interface {
	// SetGraph binds the solver to the graph it will read from and
	// update; called once before Init.
	SetGraph(g Graph)

	// Init builds the block-sparse pattern from the current active
	// edges and index map. Idempotent; returns false if the active set
	// cannot support a solve (e.g. an empty index map).
	Init(online bool) bool

	// UpdateStructure extends the pattern for newly active vertices and
	// edges without discarding the existing structure.
	UpdateStructure(newVertices []hypergraph.Vertex, newEdges []hypergraph.Edge) bool

	// Solve assembles the normal equations, solves them, and applies the
	// resulting increment to the graph.
	Solve(iteration int, online bool) Outcome

	// ComputeMarginals returns selected blocks of H^-1, keyed by the
	// (row, col) tempIndex block pairs in blockIndices.
	ComputeMarginals(blockIndices [][2]int) (*MarginalBlocks, bool)

	State() State
}
