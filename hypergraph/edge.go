package hypergraph

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// RobustKernel reweights an edge's squared error to reduce the
// influence of outliers. Robustify maps an edge's raw chi2 = r'*Omega*r
// to a robustified cost rho and its first two derivatives w.r.t. chi2,
// following the same (rho, rho', rho'') contract g2o's kernels use: the
// linear solver scales the edge's information matrix by rho' when
// assembling the normal equations.
type RobustKernel interface {
	Robustify(chi2 float64) (rho, rhoPrime, rhoDoublePrime float64)
}

// Edge is the contract every measurement constraint must satisfy.
//
// Vertices returns the ordered tuple of incident vertices; arity is
// len(Vertices()) and may be 1 (unary/prior edges) or more.
type Edge interface {
	ID() ID
	Level() int
	SetLevel(int)

	Vertices() []Vertex
	Dimension() int

	Information() *mat.SymDense
	SetInformation(omega *mat.SymDense) error

	// ComputeError refreshes the edge's cached error vector r from the
	// current vertex estimates, after first refreshing any cache the
	// edge's parameters depend on.
	ComputeError()
	ErrorVector() []float64

	// Chi2 returns r'*Omega*r, robustified (rho) if a kernel is set.
	Chi2() float64

	RobustKernel() RobustKernel
	SetRobustKernel(k RobustKernel)

	// RobustifyError recomputes the per-edge weight and robustified chi2
	// from the current raw error. A no-op when no kernel is attached.
	RobustifyError()
	// Weight is the multiplier downstream assembly applies to Information,
	// i.e. the linear solver treats this edge as Omega' = Weight()*Omega.
	Weight() float64

	// LinearizeOplus computes the Jacobian blocks w.r.t. every incident
	// non-fixed vertex's local parameterization.
	LinearizeOplus()
	// JacobianOplus returns the block last computed for v, or nil if v
	// is not incident or LinearizeOplus has not run yet.
	JacobianOplus(v Vertex) *mat.Dense

	// InitialEstimatePossible returns the propagation cost of using this
	// edge to set target's estimate given the vertices already
	// initialized (a subset of Vertices()). Returns math.Inf(1) when the
	// edge cannot initialize target from the given set.
	InitialEstimatePossible(initialized map[ID]Vertex, target Vertex) float64
	// InitialEstimate sets target's estimate from this edge and the
	// already-initialized incident vertices.
	InitialEstimate(initialized map[ID]Vertex, target Vertex)

	addVertex(v Vertex)
}

// BaseEdge implements the id/level/vertices/information/error/robust-
// kernel/Jacobian-storage bookkeeping shared by every concrete edge
// type. Concrete edges embed it by value, construct it with
// NewBaseEdge(id, vertices...), and implement Dimension, ComputeError, LinearizeOplus,
// InitialEstimatePossible and InitialEstimate themselves.
type BaseEdge struct {
	id    ID
	level int

	vertices []Vertex
	omega    *mat.SymDense

	err    []float64
	weight float64

	kernel RobustKernel

	jacobians map[ID]*mat.Dense
}

// NewBaseEdge constructs a BaseEdge with the given id and incident
// vertices in arity order.
func NewBaseEdge(id ID, vertices ...Vertex) BaseEdge {
	return BaseEdge{
		id:        id,
		vertices:  append([]Vertex(nil), vertices...),
		weight:    1,
		jacobians: make(map[ID]*mat.Dense, len(vertices)),
	}
}

func (b *BaseEdge) ID() ID          { return b.id }
func (b *BaseEdge) Level() int      { return b.level }
func (b *BaseEdge) SetLevel(l int)  { b.level = l }
func (b *BaseEdge) Vertices() []Vertex { return b.vertices }

func (b *BaseEdge) addVertex(v Vertex) { b.vertices = append(b.vertices, v) }

// Information returns the edge's information matrix Omega.
func (b *BaseEdge) Information() *mat.SymDense { return b.omega }

// SetInformation installs Omega after checking it is symmetric.
func (b *BaseEdge) SetInformation(omega *mat.SymDense) error {
	n, _ := omega.Dims()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if omega.At(i, j) != omega.At(j, i) {
				return fmt.Errorf("edge %d: %w", b.id, ErrAsymmetricInformation)
			}
		}
	}
	b.omega = omega
	return nil
}

func (b *BaseEdge) ErrorVector() []float64 { return b.err }

// SetError stores the error vector computed by the concrete edge's
// ComputeError implementation.
func (b *BaseEdge) SetError(r []float64) { b.err = r }

// Chi2Raw returns r'*Omega*r without robustification.
func (b *BaseEdge) Chi2Raw() float64 {
	if b.omega == nil || b.err == nil {
		return 0
	}
	r := mat.NewVecDense(len(b.err), b.err)
	var tmp mat.VecDense
	tmp.MulVec(b.omega, r)
	return mat.Dot(r, &tmp)
}

// Chi2 returns the robustified cost when a kernel is attached, the raw
// chi2 otherwise. It is computed from the stored error vector on every
// call, so it reflects the last ComputeError.
func (b *BaseEdge) Chi2() float64 {
	chi2 := b.Chi2Raw()
	if b.kernel == nil {
		return chi2
	}
	rho, _, _ := b.kernel.Robustify(chi2)
	return rho
}

func (b *BaseEdge) RobustKernel() RobustKernel     { return b.kernel }
func (b *BaseEdge) SetRobustKernel(k RobustKernel) { b.kernel = k }

// RobustifyError recomputes Weight() from the current raw chi2 via the
// kernel's first derivative rho'. A no-op (weight stays 1) without a
// kernel.
func (b *BaseEdge) RobustifyError() {
	if b.kernel == nil {
		b.weight = 1
		return
	}
	chi2 := b.Chi2Raw()
	_, rhoPrime, _ := b.kernel.Robustify(chi2)
	b.weight = rhoPrime
}

func (b *BaseEdge) Weight() float64 { return b.weight }

// JacobianOplus returns the Jacobian block last stored for v.
func (b *BaseEdge) JacobianOplus(v Vertex) *mat.Dense { return b.jacobians[v.ID()] }

// SetJacobian stores the Jacobian block for v, called by the concrete
// edge's LinearizeOplus.
func (b *BaseEdge) SetJacobian(v Vertex, j *mat.Dense) { b.jacobians[v.ID()] = j }
