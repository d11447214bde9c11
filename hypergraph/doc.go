// Package hypergraph defines the data model of the optimizer core: the
// Vertex and Edge contracts that concrete measurement/state types must
// satisfy, the HyperGraph container that owns them, and the shared
// Parameter and Cache machinery edges and vertices rely on.
//
// The package never references a concrete manifold (SE(2), SE(3), XYZ,
// camera intrinsics, ...). Those live under types/ and only depend on
// the interfaces declared here.
//
// Concurrency: HyperGraph guards its vertex catalog and its edge/
// adjacency catalog with two separate sync.RWMutex locks, acquired in
// a fixed order (vertices before edges) to avoid lock inversion with
// code that walks incident edges while mutating the vertex set.
package hypergraph
