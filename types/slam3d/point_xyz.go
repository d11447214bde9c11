package slam3d

import (
	"io"
	"math"
	"strings"

	"github.com/schdomin/g2o/hypergraph"
	"github.com/schdomin/g2o/wire"
	"gonum.org/v1/gonum/mat"
)

var posInf = math.Inf(1)

// VertexPointXYZ is a free point in Euclidean 3-space. Tangent space
// and ambient representation coincide: Oplus is plain vector addition.
type VertexPointXYZ struct {
	hypergraph.BaseVertex
	point [3]float64
}

// NewVertexPointXYZ constructs a VertexPointXYZ at the given position.
func NewVertexPointXYZ(id hypergraph.ID, x, y, z float64) *VertexPointXYZ {
	v := &VertexPointXYZ{BaseVertex: hypergraph.NewBaseVertex(id), point: [3]float64{x, y, z}}
	v.Init(v)
	return v
}

func (v *VertexPointXYZ) Dimension() int         { return 3 }
func (v *VertexPointXYZ) EstimateDimension() int { return 3 }

// Point returns the current position estimate.
func (v *VertexPointXYZ) Point() [3]float64 { return v.point }

func (v *VertexPointXYZ) EstimateData() []float64 {
	return []float64{v.point[0], v.point[1], v.point[2]}
}

func (v *VertexPointXYZ) SetEstimateData(data []float64) {
	v.point = [3]float64{data[0], data[1], data[2]}
	v.Touch()
}

func (v *VertexPointXYZ) Oplus(delta []float64) {
	v.point[0] += delta[0]
	v.point[1] += delta[1]
	v.point[2] += delta[2]
	v.Touch()
}

// EdgePointXYZ measures the displacement from vi to vj: error =
// vj.point - vi.point - measurement, matching the original's
// EdgePointXYZ::computeError and its constant +-Identity Jacobians.
type EdgePointXYZ struct {
	hypergraph.BaseEdge
	measurement [3]float64
}

// NewEdgePointXYZ constructs a displacement constraint between vi and
// vj (vi -> vj) with the given measured displacement.
func NewEdgePointXYZ(id hypergraph.ID, vi, vj *VertexPointXYZ, measurement [3]float64) *EdgePointXYZ {
	return &EdgePointXYZ{BaseEdge: hypergraph.NewBaseEdge(id, vi, vj), measurement: measurement}
}

func (e *EdgePointXYZ) Dimension() int { return 3 }

func (e *EdgePointXYZ) vertices() (*VertexPointXYZ, *VertexPointXYZ) {
	vs := e.Vertices()
	return vs[0].(*VertexPointXYZ), vs[1].(*VertexPointXYZ)
}

func (e *EdgePointXYZ) ComputeError() {
	vi, vj := e.vertices()
	pi, pj := vi.Point(), vj.Point()
	e.SetError([]float64{
		pj[0] - pi[0] - e.measurement[0],
		pj[1] - pi[1] - e.measurement[1],
		pj[2] - pi[2] - e.measurement[2],
	})
}

var (
	negIdentity3 = mat.NewDense(3, 3, []float64{-1, 0, 0, 0, -1, 0, 0, 0, -1})
	posIdentity3 = mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
)

func (e *EdgePointXYZ) LinearizeOplus() {
	vi, vj := e.vertices()
	e.SetJacobian(vi, negIdentity3)
	e.SetJacobian(vj, posIdentity3)
}

func (e *EdgePointXYZ) InitialEstimatePossible(initialized map[hypergraph.ID]hypergraph.Vertex, target hypergraph.Vertex) float64 {
	vi, vj := e.vertices()
	_, iKnown := initialized[vi.ID()]
	_, jKnown := initialized[vj.ID()]
	if iKnown && target.ID() == vj.ID() {
		return 1
	}
	if jKnown && target.ID() == vi.ID() {
		return 1
	}
	return posInf
}

func (e *EdgePointXYZ) InitialEstimate(initialized map[hypergraph.ID]hypergraph.Vertex, target hypergraph.Vertex) {
	vi, vj := e.vertices()
	if target.ID() == vj.ID() {
		p := vi.Point()
		vj.SetEstimateData([]float64{p[0] + e.measurement[0], p[1] + e.measurement[1], p[2] + e.measurement[2]})
		return
	}
	p := vj.Point()
	vi.SetEstimateData([]float64{p[0] - e.measurement[0], p[1] - e.measurement[1], p[2] - e.measurement[2]})
}

// WriteTo serializes the measurement and information matrix in the
// wire package's edge record format (no parameter ids: EdgePointXYZ
// references none).
func (e *EdgePointXYZ) WriteTo(w io.Writer) error {
	return wire.WriteEdge(w, nil, e.measurement[:], e.Information())
}

// ReadFrom parses a wire-format edge record (as produced by WriteTo)
// into this edge's measurement and information matrix.
func (e *EdgePointXYZ) ReadFrom(line string) error {
	_, measurement, information, err := wire.ReadEdgeLine(strings.TrimSpace(line), 0, 3)
	if err != nil {
		return err
	}
	e.measurement = [3]float64{measurement[0], measurement[1], measurement[2]}
	return e.SetInformation(information)
}
