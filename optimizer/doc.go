// Package optimizer drives the iterative solve: build the active
// vertex/edge set and index map, optionally propagate an initial
// guess, then repeatedly linearize, solve, and apply an increment
// until the iteration budget is spent, the algorithm reports failure,
// or an external stop flag is observed.
//
// Optimizer implements solver.Graph, so any solver.LinearSolver can
// drive it; this package ships no solver of its own (see the solver
// package for DenseSolver).
package optimizer
