package hypergraph

import "errors"

// Sentinel errors for hyper-graph structural operations.
var (
	// ErrDuplicateVertexID indicates AddVertex was called with an ID already in the graph.
	ErrDuplicateVertexID = errors.New("hypergraph: duplicate vertex id")

	// ErrDuplicateEdgeID indicates AddEdge was called with an ID already in the graph.
	ErrDuplicateEdgeID = errors.New("hypergraph: duplicate edge id")

	// ErrUnknownVertex indicates an edge references a vertex absent from the graph.
	ErrUnknownVertex = errors.New("hypergraph: edge references unknown vertex")

	// ErrVertexNotFound indicates an operation referenced a vertex id not present in the graph.
	ErrVertexNotFound = errors.New("hypergraph: vertex not found")

	// ErrEdgeNotFound indicates an operation referenced an edge id not present in the graph.
	ErrEdgeNotFound = errors.New("hypergraph: edge not found")

	// ErrParameterNotFound indicates a lookup for an unregistered parameter id.
	ErrParameterNotFound = errors.New("hypergraph: parameter not found")

	// ErrAsymmetricInformation indicates an edge's information matrix failed the symmetry check.
	ErrAsymmetricInformation = errors.New("hypergraph: information matrix is not symmetric")
)
