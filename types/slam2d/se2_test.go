package slam2d_test

import (
	"math"
	"testing"

	"github.com/schdomin/g2o/hypergraph"
	"github.com/schdomin/g2o/types/slam2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSE2_ComposeInverseRoundTrip(t *testing.T) {
	a := slam2d.SE2{X: 1, Y: 2, Theta: 0.3}
	b := slam2d.SE2{X: -1, Y: 0.5, Theta: 1.1}

	composed := a.Compose(b)
	back := a.Inverse().Compose(composed)

	assert.InDelta(t, b.X, back.X, 1e-9)
	assert.InDelta(t, b.Y, back.Y, 1e-9)
	assert.InDelta(t, b.Theta, back.Theta, 1e-9)
}

func TestSE2_InverseIsSelfInverse(t *testing.T) {
	a := slam2d.SE2{X: 3, Y: -4, Theta: 2.9}
	id := a.Compose(a.Inverse())
	assert.InDelta(t, 0, id.X, 1e-9)
	assert.InDelta(t, 0, id.Y, 1e-9)
	assert.InDelta(t, 0, id.Theta, 1e-9)
}

func TestVertexSE2_OplusRotatesTranslationByHeading(t *testing.T) {
	v := slam2d.NewVertexSE2(0, slam2d.SE2{Theta: math.Pi / 2})
	v.Oplus([]float64{1, 0, 0})

	pose := v.Pose()
	assert.InDelta(t, 0, pose.X, 1e-9)
	assert.InDelta(t, 1, pose.Y, 1e-9)
}

func TestEdgeSE2_ComputeErrorZeroAtExactMeasurement(t *testing.T) {
	v0 := slam2d.NewVertexSE2(0, slam2d.SE2{})
	v1 := slam2d.NewVertexSE2(1, slam2d.SE2{X: 1, Y: 0, Theta: 0.2})
	e := slam2d.NewEdgeSE2(0, v0, v1, slam2d.SE2{X: 1, Y: 0, Theta: 0.2})

	e.ComputeError()
	for _, component := range e.ErrorVector() {
		assert.InDelta(t, 0, component, 1e-9)
	}
}

func TestEdgeSE2_LinearizeOplusMatchesTranslationOnlyCase(t *testing.T) {
	v0 := slam2d.NewVertexSE2(0, slam2d.SE2{})
	v1 := slam2d.NewVertexSE2(1, slam2d.SE2{X: 1})
	e := slam2d.NewEdgeSE2(0, v0, v1, slam2d.SE2{X: 1})
	e.ComputeError()
	e.LinearizeOplus()

	// At theta=0 the relative-pose error's Jacobian w.r.t. vj's local
	// increment is the identity: a unit x-step on vj shifts the error
	// by exactly one unit in its own x-component.
	jj := e.JacobianOplus(v1)
	require.NotNil(t, jj)
	assert.InDelta(t, 1, jj.At(0, 0), 1e-4)
	assert.InDelta(t, 0, jj.At(0, 1), 1e-4)
}

func TestEdgeSE2_InitialEstimatePropagatesChain(t *testing.T) {
	v0 := slam2d.NewVertexSE2(0, slam2d.SE2{})
	v1 := slam2d.NewVertexSE2(1, slam2d.SE2{})
	e := slam2d.NewEdgeSE2(0, v0, v1, slam2d.SE2{X: 1, Y: 0, Theta: 0})

	initialized := map[hypergraph.ID]hypergraph.Vertex{v0.ID(): v0}
	cost := e.InitialEstimatePossible(initialized, v1)
	assert.Equal(t, 1.0, cost)

	e.InitialEstimate(initialized, v1)
	assert.InDelta(t, 1, v1.Pose().X, 1e-9)
	assert.InDelta(t, 0, v1.Pose().Y, 1e-9)
}

func TestEdgeSE2_InitialEstimateImpossibleWhenNeitherKnown(t *testing.T) {
	v0 := slam2d.NewVertexSE2(0, slam2d.SE2{})
	v1 := slam2d.NewVertexSE2(1, slam2d.SE2{})
	e := slam2d.NewEdgeSE2(0, v0, v1, slam2d.SE2{})

	cost := e.InitialEstimatePossible(map[hypergraph.ID]hypergraph.Vertex{}, v1)
	assert.True(t, math.IsInf(cost, 1))
}

func TestVertexSE2_WorldPoseComposesOwnerAndOffset(t *testing.T) {
	owner := slam2d.NewVertexSE2(0, slam2d.SE2{X: 1, Theta: math.Pi / 2})
	param := slam2d.NewParameterSE2Offset(0, slam2d.SE2{X: 1})

	world := owner.WorldPose(param)
	assert.InDelta(t, 1, world.X, 1e-9)
	assert.InDelta(t, 1, world.Y, 1e-9)
}

func TestVertexSE2_WorldPoseRecomputesAfterPoseChanges(t *testing.T) {
	owner := slam2d.NewVertexSE2(0, slam2d.SE2{})
	param := slam2d.NewParameterSE2Offset(0, slam2d.SE2{X: 1})

	first := owner.WorldPose(param)
	assert.InDelta(t, 1, first.X, 1e-9)

	owner.SetPose(slam2d.SE2{X: 5})
	second := owner.WorldPose(param)
	assert.InDelta(t, 6, second.X, 1e-9, "cached world pose must refresh once the owner's version advances")
}
