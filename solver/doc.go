// Package solver implements the LinearSolver contract the optimizer
// loop consumes: given the active edge set and the graph's index map,
// assemble the Hessian and gradient of the normal equations, solve for
// an increment, and apply it back to the active vertices.
//
// DenseSolver is the one concrete implementation this repository ships.
// It assembles a dense gonum Hessian (adequate for the graph sizes this
// package's tests exercise) and supports both the Gauss-Newton and the
// Levenberg-Marquardt variants, plus a Schur-complement elimination of
// the marginalized block described by the index map's two-region
// layout.
package solver
