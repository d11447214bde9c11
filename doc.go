// Package g2o is a sparse nonlinear least-squares graph optimizer: a
// hyper-graph of vertices (manifold states) and edges (measurement
// constraints with information matrices) solved by iterative
// Gauss-Newton or Levenberg-Marquardt refinement.
//
// The core pipeline, end to end:
//
//	hypergraph  — Vertex/Edge contracts, the HyperGraph container, parameter/cache machinery
//	activeset   — builds the active vertex/edge set and assigns tempIndex via a two-pass index map
//	propagator  — spanning-tree initial-guess propagation over the active edge set
//	robust      — M-estimator kernels (Huber) that reweight outlier edges
//	solver      — LinearSolver contract; DenseSolver assembles and solves the normal equations
//	optimizer   — the iteration loop: linearize, solve, apply, repeat
//	types/      — concrete manifold vertex/edge types (SE(2), 3D points)
//	wire        — the whitespace-delimited edge/parameter text format
//	metrics     — per-iteration Prometheus instrumentation
//
// A typical session builds a HyperGraph, adds vertices and edges,
// fixes the gauge (or relies on gaugeFreedom() detection), calls
// InitializeOptimization, optionally ComputeInitialGuess, then Optimize
// for a bounded number of iterations.
package g2o
