package slam2d

import (
	"math"

	"github.com/schdomin/g2o/hypergraph"
)

// VertexSE2 is a planar robot pose. The tangent space and the ambient
// representation coincide (both dimension 3), so EstimateData/
// SetEstimateData round-trip the pose directly.
type VertexSE2 struct {
	hypergraph.BaseVertex
	pose  SE2
	cache *hypergraph.CacheStore
}

// NewVertexSE2 constructs a VertexSE2 at the given initial pose.
func NewVertexSE2(id hypergraph.ID, pose SE2) *VertexSE2 {
	v := &VertexSE2{BaseVertex: hypergraph.NewBaseVertex(id), pose: pose}
	v.Init(v)
	v.cache = hypergraph.NewCacheStore(v)
	return v
}

func (v *VertexSE2) Dimension() int         { return 3 }
func (v *VertexSE2) EstimateDimension() int { return 3 }

// Pose returns the current planar pose estimate.
func (v *VertexSE2) Pose() SE2 { return v.pose }

// WorldPose composes this vertex's pose with offset's stored offset,
// yielding the sensor's pose in the world frame. The result is cached
// against this vertex's version, recomputed only when the pose has
// changed since the last call — the original's CacheSE2Offset caches
// the same quantity there, named n2w ("node to world"). The rest of
// that cache (the world-to-local transform and the Jacobian-
// preparation term) has no consumer in this port since no sensor-
// offset edge type has been built yet, so it is not reproduced here.
func (v *VertexSE2) WorldPose(offset *ParameterSE2Offset) SE2 {
	payload := v.cache.Get(offset.CacheKey(), []hypergraph.ID{offset.ID()}, func() any {
		return v.pose.Compose(offset.Offset)
	})
	return payload.(SE2)
}

// SetPose overwrites the pose estimate, bumping the version counter;
// used when seeding an initial guess, mirroring Vertex.Oplus callers
// that expect a plain assignment rather than a retraction.
func (v *VertexSE2) SetPose(pose SE2) {
	v.pose = pose
	v.Touch()
}

func (v *VertexSE2) EstimateData() []float64 {
	return []float64{v.pose.X, v.pose.Y, v.pose.Theta}
}

func (v *VertexSE2) SetEstimateData(data []float64) {
	v.pose = SE2{X: data[0], Y: data[1], Theta: normalizeAngle(data[2])}
	v.Touch()
}

// Oplus applies a body-frame increment: the translation component is
// rotated into the world frame by the current heading before being
// added, matching the original VertexSE2::oplusImpl retraction.
func (v *VertexSE2) Oplus(delta []float64) {
	c, s := math.Cos(v.pose.Theta), math.Sin(v.pose.Theta)
	v.pose.X += c*delta[0] - s*delta[1]
	v.pose.Y += s*delta[0] + c*delta[1]
	v.pose.Theta = normalizeAngle(v.pose.Theta + delta[2])
	v.Touch()
}
