package solver_test

import (
	"testing"

	"github.com/schdomin/g2o/activeset"
	"github.com/schdomin/g2o/hypergraph"
	"github.com/schdomin/g2o/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// xyzVertex is a minimal 3-dimensional Euclidean point, standing in for
// types/slam3d.VertexPointXYZ for the purposes of exercising DenseSolver
// without pulling in a concrete manifold type.
type xyzVertex struct {
	hypergraph.BaseVertex
	estimate [3]float64
}

func newXYZVertex(id hypergraph.ID, x, y, z float64) *xyzVertex {
	v := &xyzVertex{BaseVertex: hypergraph.NewBaseVertex(id), estimate: [3]float64{x, y, z}}
	v.Init(v)
	return v
}

func (v *xyzVertex) Dimension() int         { return 3 }
func (v *xyzVertex) EstimateDimension() int { return 3 }
func (v *xyzVertex) EstimateData() []float64 {
	return []float64{v.estimate[0], v.estimate[1], v.estimate[2]}
}
func (v *xyzVertex) SetEstimateData(data []float64) {
	copy(v.estimate[:], data)
}
func (v *xyzVertex) Oplus(delta []float64) {
	for i := range v.estimate {
		v.estimate[i] += delta[i]
	}
	v.Touch()
}

// xyzEdge measures the displacement between two xyzVertex points:
// r = v1.estimate - v0.estimate - measurement, matching EdgePointXYZ's
// convention in the original implementation's types/slam3d package.
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

func (e *xyzEdge) InitialEstimatePossible(initialized map[hypergraph.ID]hypergraph.Vertex, target hypergraph.Vertex) float64 {
	return 0
}
func (e *xyzEdge) InitialEstimate(initialized map[hypergraph.ID]hypergraph.Vertex, target hypergraph.Vertex) {
}

// fakeGraph is the minimal solver.Graph a unit test needs: a fixed
// active edge/vertex set plus the hooks DenseSolver drives each Solve.
type fakeGraph struct {
	vertices []hypergraph.Vertex
	edges    []hypergraph.Edge
	im       *activeset.IndexMap
}

func newFakeGraph(vertices []hypergraph.Vertex, edges []hypergraph.Edge) *fakeGraph {
	im, err := activeset.BuildIndexMapping(vertices)
	if err != nil {
		panic("fakeGraph: " + err.Error())
	}
	return &fakeGraph{vertices: vertices, edges: edges, im: im}
}

func (g *fakeGraph) ActiveEdges() []hypergraph.Edge       { return g.edges }
func (g *fakeGraph) ActiveVertices() []hypergraph.Vertex  { return g.vertices }
func (g *fakeGraph) IndexMap() *activeset.IndexMap        { return g.im }
func (g *fakeGraph) ComputeActiveErrors() {
	for _, e := range g.edges {
		e.ComputeError()
	}
}
func (g *fakeGraph) LinearizeSystem() {
	for _, e := range g.edges {
		e.LinearizeOplus()
	}
}
func (g *fakeGraph) Update(delta []float64) {
	for _, v := range g.vertices {
		ti := v.TempIndex()
		if ti < 0 {
			continue
		}
		off := 0
		for _, ov := range g.im.Vertices() {
			if ov.ID() == v.ID() {
				break
			}
			off += ov.Dimension()
		}
		v.Oplus(delta[off : off+v.Dimension()])
	}
}

func TestDenseSolver_TwoVertexXYZLinearSolve(t *testing.T) {
	v0 := newXYZVertex(0, 0, 0, 0)
	v0.SetFixed(true)
	v1 := newXYZVertex(1, 0, 0, 0)

	e := newXYZEdge(0, v0, v1, [3]float64{1, 2, 3})
	require.NoError(t, e.SetInformation(mat.NewSymDense(3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})))

	g := newFakeGraph([]hypergraph.Vertex{v0, v1}, []hypergraph.Edge{e})

	s := solver.NewDenseSolver(solver.GaussNewton, 0)
	s.SetGraph(g)
	require.True(t, s.Init(false))

	outcome := s.Solve(0, false)
	require.Equal(t, solver.OK, outcome)

	got := v1.EstimateData()
	assert.InDelta(t, 1.0, got[0], 1e-9)
	assert.InDelta(t, 2.0, got[1], 1e-9)
	assert.InDelta(t, 3.0, got[2], 1e-9)

	e.ComputeError()
	r := e.ErrorVector()
	chi2 := r[0]*r[0] + r[1]*r[1] + r[2]*r[2]
	assert.InDelta(t, 0.0, chi2, 1e-12)
}

func TestDenseSolver_SchurEliminatesMarginalizedLandmark(t *testing.T) {
	v0 := newXYZVertex(0, 0, 0, 0)
	v0.SetFixed(true)
	v1 := newXYZVertex(1, 0, 0, 0)
	landmark := newXYZVertex(2, 0, 0, 0)
	landmark.SetMarginalized(true)

	pose := newXYZEdge(0, v0, v1, [3]float64{1, 0, 0})
	require.NoError(t, pose.SetInformation(mat.NewSymDense(3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})))
	sighting := newXYZEdge(1, v1, landmark, [3]float64{2, 0, 0})
	require.NoError(t, sighting.SetInformation(mat.NewSymDense(3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})))

	g := newFakeGraph([]hypergraph.Vertex{v0, v1, landmark}, []hypergraph.Edge{pose, sighting})
	require.Equal(t, 1, g.im.NonMarginalizedCount(), "only v1 is non-marginalized")
	require.Equal(t, 2, g.im.Len(), "sanity: exactly v1 and landmark are non-fixed")

	s := solver.NewDenseSolver(solver.GaussNewton, 0)
	s.SetGraph(g)
	require.True(t, s.Init(false))

	outcome := s.Solve(0, false)
	require.Equal(t, solver.OK, outcome)

	gotV1 := v1.EstimateData()
	assert.InDelta(t, 1.0, gotV1[0], 1e-9)
	assert.InDelta(t, 0.0, gotV1[1], 1e-9)
	assert.InDelta(t, 0.0, gotV1[2], 1e-9)

	gotLandmark := landmark.EstimateData()
	assert.InDelta(t, 3.0, gotLandmark[0], 1e-9, "landmark = v1 + sighting measurement, recovered via the Schur back-substitution")
	assert.InDelta(t, 0.0, gotLandmark[1], 1e-9)
	assert.InDelta(t, 0.0, gotLandmark[2], 1e-9)

	pose.ComputeError()
	sighting.ComputeError()
	var chi2 float64
	for _, r := range pose.ErrorVector() {
		chi2 += r * r
	}
	for _, r := range sighting.ErrorVector() {
		chi2 += r * r
	}
	assert.InDelta(t, 0.0, chi2, 1e-12, "both constraints are exactly satisfiable, Schur elimination must not lose residual")
}

func TestDenseSolver_LevenbergMarquardtDampsStepRelativeToGaussNewton(t *testing.T) {
	buildGraph := func() (*fakeGraph, *xyzVertex) {
		v0 := newXYZVertex(0, 0, 0, 0)
		v0.SetFixed(true)
		v1 := newXYZVertex(1, 0, 0, 0)
		v2 := newXYZVertex(2, 0, 0, 0)
		v2.SetFixed(true)

		pull := newXYZEdge(0, v0, v1, [3]float64{2, 0, 0})
		require.NoError(t, pull.SetInformation(mat.NewSymDense(3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})))
		anchor := newXYZEdge(1, v2, v1, [3]float64{0, 0, 0})
		require.NoError(t, anchor.SetInformation(mat.NewSymDense(3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})))

		g := newFakeGraph([]hypergraph.Vertex{v0, v1, v2}, []hypergraph.Edge{pull, anchor})
		return g, v1
	}

	gGN, v1GN := buildGraph()
	sGN := solver.NewDenseSolver(solver.GaussNewton, 0)
	sGN.SetGraph(gGN)
	require.True(t, sGN.Init(false))
	require.Equal(t, solver.OK, sGN.Solve(0, false))

	gLM, v1LM := buildGraph()
	sLM := solver.NewDenseSolver(solver.LevenbergMarquardt, 9)
	sLM.SetGraph(gLM)
	require.True(t, sLM.Init(false))
	require.Equal(t, solver.OK, sLM.Solve(0, false))

	// The unconstrained minimum averages the two anchors' pulls to x=1;
	// plain Gauss-Newton on this linear system reaches it in one step.
	gotGN := v1GN.EstimateData()
	assert.InDelta(t, 1.0, gotGN[0], 1e-9)

	// Levenberg-Marquardt damps the same normal equations by scaling H's
	// diagonal by (1+lambda): with lambda=9 the diagonal is scaled by
	// 10, so the step shrinks to a tenth of the undamped one.
	gotLM := v1LM.EstimateData()
	assert.InDelta(t, 0.1, gotLM[0], 1e-9, "LM step must be the GN step scaled down by 1/(1+lambda)")
	assert.Less(t, gotLM[0], gotGN[0], "damped LM step must undershoot the undamped GN step")
}

func TestDenseSolver_FailsWithEmptyIndexMap(t *testing.T) {
	v0 := newXYZVertex(0, 0, 0, 0)
	v0.SetFixed(true)
	g := newFakeGraph([]hypergraph.Vertex{v0}, nil)

	s := solver.NewDenseSolver(solver.GaussNewton, 0)
	s.SetGraph(g)
	assert.False(t, s.Init(false), "an all-fixed active set has no tangent dimensions to solve for")

	outcome := s.Solve(0, false)
	assert.Equal(t, solver.Fail, outcome, "Solve must not panic on a zero-dimensional system, and reports it as Fail")
}
