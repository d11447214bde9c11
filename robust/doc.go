// Package robust implements robust kernels consumed by edges through
// the hypergraph.RobustKernel interface.
package robust
