package slam2d

import (
	"io"
	"math"
	"strings"

	"github.com/schdomin/g2o/hypergraph"
	"github.com/schdomin/g2o/wire"
	"gonum.org/v1/gonum/mat"
)

const numericJacobianEps = 1e-6

// EdgeSE2 measures the relative pose between two VertexSE2 poses:
// error = inverseMeasurement * (vi.pose^-1 * vj.pose), expressed as
// (dx, dy, dtheta).
type EdgeSE2 struct {
	hypergraph.BaseEdge
	measurement        SE2
	inverseMeasurement SE2
}

// NewEdgeSE2 constructs a pose-pose constraint between vi and vj with
// the given relative-pose measurement (vi -> vj).
func NewEdgeSE2(id hypergraph.ID, vi, vj *VertexSE2, measurement SE2) *EdgeSE2 {
	e := &EdgeSE2{BaseEdge: hypergraph.NewBaseEdge(id, vi, vj)}
	e.SetMeasurement(measurement)
	return e
}

// SetMeasurement updates the relative-pose measurement and its cached
// inverse, used by ComputeError on every call.
func (e *EdgeSE2) SetMeasurement(measurement SE2) {
	e.measurement = measurement
	e.inverseMeasurement = measurement.Inverse()
}

func (e *EdgeSE2) Dimension() int { return 3 }

func (e *EdgeSE2) vertices() (*VertexSE2, *VertexSE2) {
	vs := e.Vertices()
	return vs[0].(*VertexSE2), vs[1].(*VertexSE2)
}

func (e *EdgeSE2) ComputeError() {
	vi, vj := e.vertices()
	delta := e.inverseMeasurement.Compose(vi.Pose().Inverse().Compose(vj.Pose()))
	e.SetError(delta.ToVector())
}

// LinearizeOplus computes both Jacobian blocks by central finite
// differences rather than a closed-form derivation: the original
// ships both an analytic and a preprocessor-gated numeric path
// (NUMERIC_JACOBIAN) for this edge type, and the numeric path is the
// one that needs no rederivation to generalize correctly.
func (e *EdgeSE2) LinearizeOplus() {
	vi, vj := e.vertices()
	e.SetJacobian(vi, numericJacobian(vi, e.ComputeError, e.ErrorVector))
	e.SetJacobian(vj, numericJacobian(vj, e.ComputeError, e.ErrorVector))
}

func numericJacobian(v hypergraph.Vertex, computeError func(), errorVector func() []float64) *mat.Dense {
	dim := v.EstimateDimension()
	rows := len(errorVector())
	jac := mat.NewDense(rows, dim, nil)
	delta := make([]float64, dim)

	for col := 0; col < dim; col++ {
		delta[col] = numericJacobianEps
		v.Push()
		v.Oplus(delta)
		computeError()
		plus := append([]float64(nil), errorVector()...)
		v.Pop()

		delta[col] = -numericJacobianEps
		v.Push()
		v.Oplus(delta)
		computeError()
		minus := append([]float64(nil), errorVector()...)
		v.Pop()

		delta[col] = 0
		for row := 0; row < rows; row++ {
			jac.Set(row, col, (plus[row]-minus[row])/(2*numericJacobianEps))
		}
	}

	computeError()
	return jac
}

func (e *EdgeSE2) InitialEstimatePossible(initialized map[hypergraph.ID]hypergraph.Vertex, target hypergraph.Vertex) float64 {
	vi, vj := e.vertices()
	_, iKnown := initialized[vi.ID()]
	_, jKnown := initialized[vj.ID()]
	if iKnown && target.ID() == vj.ID() {
		return 1
	}
	if jKnown && target.ID() == vi.ID() {
		return 1
	}
	return math.Inf(1)
}

func (e *EdgeSE2) InitialEstimate(initialized map[hypergraph.ID]hypergraph.Vertex, target hypergraph.Vertex) {
	vi, vj := e.vertices()
	if target.ID() == vj.ID() {
		vj.SetPose(vi.Pose().Compose(e.measurement))
		return
	}
	vi.SetPose(vj.Pose().Compose(e.measurement.Inverse()))
}

// WriteTo serializes the measurement and information matrix in the
// wire package's edge record format (no parameter ids: EdgeSE2
// references none).
func (e *EdgeSE2) WriteTo(w io.Writer) error {
	return wire.WriteEdge(w, nil, e.measurement.ToVector(), e.Information())
}

// ReadFrom parses a wire-format edge record (as produced by WriteTo)
// into this edge's measurement and information matrix.
func (e *EdgeSE2) ReadFrom(line string) error {
	_, measurement, information, err := wire.ReadEdgeLine(strings.TrimSpace(line), 0, 3)
	if err != nil {
		return err
	}
	e.SetMeasurement(SE2{X: measurement[0], Y: measurement[1], Theta: measurement[2]})
	return e.SetInformation(information)
}
