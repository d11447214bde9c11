package optimizer_test

import (
	"testing"

	"github.com/schdomin/g2o/hypergraph"
	"github.com/schdomin/g2o/optimizer"
	"github.com/schdomin/g2o/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// xyzVertex/xyzEdge mirror solver package's test fixtures: a minimal
// 3-dimensional Euclidean point and a displacement-measurement edge,
// enough to exercise the optimizer loop without a concrete manifold
// type from types/.
type xyzVertex struct {
	hypergraph.BaseVertex
	estimate [3]float64
}

func newXYZVertex(id hypergraph.ID, x, y, z float64) *xyzVertex {
	v := &xyzVertex{BaseVertex: hypergraph.NewBaseVertex(id), estimate: [3]float64{x, y, z}}
	v.Init(v)
	return v
}

func (v *xyzVertex) Dimension() int          { return 3 }
func (v *xyzVertex) EstimateDimension() int  { return 3 }
func (v *xyzVertex) EstimateData() []float64 { return []float64{v.estimate[0], v.estimate[1], v.estimate[2]} }
func (v *xyzVertex) SetEstimateData(data []float64) { copy(v.estimate[:], data) }
func (v *xyzVertex) Oplus(delta []float64) {
	for i := range v.estimate {
		v.estimate[i] += delta[i]
	}
	v.Touch()
}

type xyzEdge struct {
	hypergraph.BaseEdge
	measurement [3]float64
}

func newXYZEdge(id hypergraph.ID, v0, v1 hypergraph.Vertex, m [3]float64) *xyzEdge {
	return &xyzEdge{BaseEdge: hypergraph.NewBaseEdge(id, v0, v1), measurement: m}
}

func (e *xyzEdge) Dimension() int { return 3 }

func (e *xyzEdge) ComputeError() {
	v0 := e.Vertices()[0].EstimateData()
	v1 := e.Vertices()[1].EstimateData()
	r := make([]float64, 3)
	for i := 0; i < 3; i++ {
		r[i] = v1[i] - v0[i] - e.measurement[i]
	}
	e.SetError(r)
}

func (e *xyzEdge) LinearizeOplus() {
	neg := mat.NewDense(3, 3, []float64{-1, 0, 0, 0, -1, 0, 0, 0, -1})
	pos := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	e.SetJacobian(e.Vertices()[0], neg)
	e.SetJacobian(e.Vertices()[1], pos)
}

func (e *xyzEdge) InitialEstimatePossible(map[hypergraph.ID]hypergraph.Vertex, hypergraph.Vertex) float64 {
	return 0
}
func (e *xyzEdge) InitialEstimate(map[hypergraph.ID]hypergraph.Vertex, hypergraph.Vertex) {}

func buildTwoVertexGraph(t *testing.T) (*hypergraph.HyperGraph, *xyzVertex, *xyzVertex, *xyzEdge) {
	t.Helper()
	g := hypergraph.NewHyperGraph()
	v0 := newXYZVertex(0, 0, 0, 0)
	v0.SetFixed(true)
	v1 := newXYZVertex(1, 0, 0, 0)
	require.True(t, g.AddVertex(v0))
	require.True(t, g.AddVertex(v1))

	e := newXYZEdge(0, v0, v1, [3]float64{1, 2, 3})
	require.NoError(t, e.SetInformation(mat.NewSymDense(3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})))
	require.True(t, g.AddEdge(e))
	return g, v0, v1, e
}

func TestOptimizer_InitializeOptimization_EmptyGraphFails(t *testing.T) {
	g := hypergraph.NewHyperGraph()
	o := optimizer.NewOptimizer(g)
	assert.False(t, o.InitializeOptimization(-1))
	assert.Equal(t, -1, o.Optimize(10, false))
}

func TestOptimizer_Optimize_TwoVertexXYZReducesChi2(t *testing.T) {
	g, _, v1, _ := buildTwoVertexGraph(t)

	o := optimizer.NewOptimizer(g)
	require.True(t, o.InitializeOptimization(-1))
	o.SetAlgorithm(solver.NewDenseSolver(solver.GaussNewton, 0))

	ran := o.Optimize(1, false)
	assert.Equal(t, 1, ran)

	got := v1.EstimateData()
	assert.InDelta(t, 1.0, got[0], 1e-9)
	assert.InDelta(t, 2.0, got[1], 1e-9)
	assert.InDelta(t, 3.0, got[2], 1e-9)
	assert.InDelta(t, 0.0, o.ActiveChi2(), 1e-12)
}

func TestOptimizer_AllFixedGraph_OptimizeReturnsNegativeOne(t *testing.T) {
	// Two fixed vertices joined by an edge: the active set is non-empty
	// (both have a qualifying edge) but every vertex is fixed, so the
	// index map builds successfully with zero entries.
	g := hypergraph.NewHyperGraph()
	v0 := newXYZVertex(0, 0, 0, 0)
	v0.SetFixed(true)
	v1 := newXYZVertex(1, 1, 1, 1)
	v1.SetFixed(true)
	require.True(t, g.AddVertex(v0))
	require.True(t, g.AddVertex(v1))
	e := newXYZEdge(0, v0, v1, [3]float64{1, 1, 1})
	require.NoError(t, e.SetInformation(mat.NewSymDense(3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})))
	require.True(t, g.AddEdge(e))

	o := optimizer.NewOptimizer(g)
	assert.True(t, o.InitializeOptimization(-1), "an all-fixed vertex set still builds (an empty) index map")
	o.SetAlgorithm(solver.NewDenseSolver(solver.GaussNewton, 0))
	assert.Equal(t, -1, o.Optimize(10, false))
}

func TestOptimizer_GaugeFreedom(t *testing.T) {
	g, _, _, _ := buildTwoVertexGraph(t)
	o := optimizer.NewOptimizer(g)
	require.True(t, o.InitializeOptimization(-1))

	// v0 is fixed and of max dimension (3): no gauge freedom.
	assert.False(t, o.GaugeFreedom())

	gauge, ok := o.FindGauge()
	require.True(t, ok)
	assert.Equal(t, 3, gauge.Dimension())
}

func TestOptimizer_GaugeFreedom_ScansFullGraphNotJustActiveSet(t *testing.T) {
	// v0 is fixed and of max dimension but is wired to the rest of the
	// graph only through an edge that never enters the active set below;
	// GaugeFreedom must still see it, since gauge freedom is a property
	// of the whole graph, not of whatever subset happens to be solving.
	g := hypergraph.NewHyperGraph()
	v0 := newXYZVertex(0, 0, 0, 0)
	v0.SetFixed(true)
	v1 := newXYZVertex(1, 0, 0, 0)
	v2 := newXYZVertex(2, 0, 0, 0)
	require.True(t, g.AddVertex(v0))
	require.True(t, g.AddVertex(v1))
	require.True(t, g.AddVertex(v2))

	e01 := newXYZEdge(0, v0, v1, [3]float64{1, 1, 1})
	require.NoError(t, e01.SetInformation(mat.NewSymDense(3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})))
	require.True(t, g.AddEdge(e01))

	e12 := newXYZEdge(1, v1, v2, [3]float64{1, 1, 1})
	require.NoError(t, e12.SetInformation(mat.NewSymDense(3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})))
	require.True(t, g.AddEdge(e12))

	o := optimizer.NewOptimizer(g)
	vset := map[hypergraph.ID]hypergraph.Vertex{v1.ID(): v1, v2.ID(): v2}
	require.True(t, o.InitializeOptimizationVertexSet(vset, -1))

	assert.False(t, o.GaugeFreedom(), "v0 is fixed and max-dimension in the full graph, even though it is outside the active set")

	gauge, ok := o.FindGauge()
	require.True(t, ok)
	assert.Equal(t, 3, gauge.Dimension())
}

func TestOptimizer_GaugeFreedom_NoFixedVertexIsFree(t *testing.T) {
	g := hypergraph.NewHyperGraph()
	v0 := newXYZVertex(0, 0, 0, 0)
	v1 := newXYZVertex(1, 0, 0, 0)
	require.True(t, g.AddVertex(v0))
	require.True(t, g.AddVertex(v1))
	e := newXYZEdge(0, v0, v1, [3]float64{1, 2, 3})
	require.NoError(t, e.SetInformation(mat.NewSymDense(3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})))
	require.True(t, g.AddEdge(e))

	o := optimizer.NewOptimizer(g)
	require.True(t, o.InitializeOptimization(-1))
	assert.True(t, o.GaugeFreedom())
}

func TestOptimizer_StopFlagHaltsLoopWithinBounds(t *testing.T) {
	g, _, _, _ := buildTwoVertexGraph(t)
	o := optimizer.NewOptimizer(g)
	require.True(t, o.InitializeOptimization(-1))
	o.SetAlgorithm(solver.NewDenseSolver(solver.GaussNewton, 0))

	stop := false
	o.SetForceStopFlag(&stop)

	count := 0
	require.True(t, o.AddComputeErrorAction(func() {
		count++
		if count == 2 {
			stop = true
		}
	}))

	ran := o.Optimize(1000, false)
	assert.Contains(t, []int{2, 3}, ran, "stop flag set after the second iteration's error computation must halt within a bounded number of further steps")
}

func TestOptimizer_ActionsRegistry_DuplicateAndRemoval(t *testing.T) {
	g, _, _, _ := buildTwoVertexGraph(t)
	o := optimizer.NewOptimizer(g)
	require.True(t, o.InitializeOptimization(-1))

	calls := 0
	action := func() { calls++ }

	assert.True(t, o.AddComputeErrorAction(action))
	assert.False(t, o.AddComputeErrorAction(action), "re-adding the same func value must report it as already present")

	o.ComputeActiveErrors()
	assert.Equal(t, 1, calls)

	assert.True(t, o.RemoveComputeErrorAction(action))
	assert.False(t, o.RemoveComputeErrorAction(action), "removing an absent action must report false")

	o.ComputeActiveErrors()
	assert.Equal(t, 1, calls, "removed action must not fire again")
}

func TestOptimizer_UpdateInitialization_ExtendsActiveSetAndConverges(t *testing.T) {
	g, _, v1, _ := buildTwoVertexGraph(t)
	o := optimizer.NewOptimizer(g)
	require.True(t, o.InitializeOptimization(-1))
	o.SetAlgorithm(solver.NewDenseSolver(solver.GaussNewton, 0))
	require.Equal(t, 1, o.Optimize(1, false))

	v2 := newXYZVertex(2, 0, 0, 0)
	require.True(t, g.AddVertex(v2))
	e2 := newXYZEdge(1, v1, v2, [3]float64{1, 1, 1})
	require.NoError(t, e2.SetInformation(mat.NewSymDense(3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})))
	require.True(t, g.AddEdge(e2))

	require.True(t, o.UpdateInitialization([]hypergraph.Vertex{v2}, []hypergraph.Edge{e2}))
	assert.Equal(t, 3, len(o.ActiveVertices()))
	assert.Equal(t, 2, len(o.ActiveEdges()))

	ran := o.Optimize(5, false)
	assert.Greater(t, ran, 0)
	assert.InDelta(t, 0.0, o.ActiveChi2(), 1e-6)
}

func TestOptimizer_FindActiveVertexAndEdge(t *testing.T) {
	g, _, v1, e := buildTwoVertexGraph(t)
	o := optimizer.NewOptimizer(g)
	require.True(t, o.InitializeOptimization(-1))

	got, ok := o.FindActiveVertex(v1.ID())
	require.True(t, ok)
	assert.Equal(t, v1.ID(), got.ID())

	_, ok = o.FindActiveVertex(hypergraph.ID(99))
	assert.False(t, ok)

	gotEdge, ok := o.FindActiveEdge(e.ID())
	require.True(t, ok)
	assert.Equal(t, e.ID(), gotEdge.ID())
}
