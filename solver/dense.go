package solver

import (
	"errors"

	"github.com/schdomin/g2o/hypergraph"
	"gonum.org/v1/gonum/mat"
)

var errNotPositiveDefinite = errors.New("solver: system is not positive definite")

// Variant selects which normal-equations flavor DenseSolver assembles.
type Variant int

const (
	GaussNewton Variant = iota
	LevenbergMarquardt
)

// DenseSolver is a dense, gonum-backed LinearSolver. It assembles the
// full H = sum J'*Omega*J and b = sum J'*Omega*r from the active edges
// every Solve call, optionally damps the diagonal (Levenberg-Marquardt),
// and eliminates the marginalized block (the index map's suffix) via
// Schur complement before solving the reduced system with a Cholesky
// factorization. Adequate for the graph sizes exercised by this
// package's tests; a block-sparse solver is out of scope (spec §12).
type DenseSolver struct {
	graph   Graph
	variant Variant
	lambda  float64

	state State

	offsets     map[hypergraph.ID]int
	dim         int
	schurCutoff int

	lastH *mat.Dense // retained for ComputeMarginals after a successful Solve
}

// NewDenseSolver constructs a solver using the given normal-equations
// variant. LM damping uses lambda for the solver's whole lifetime; the
// solver has no setter for it and does not adapt it between iterations.
func NewDenseSolver(variant Variant, lambda float64) *DenseSolver {
	return &DenseSolver{variant: variant, lambda: lambda}
}

func (d *DenseSolver) SetGraph(g Graph) { d.graph = g }

func (d *DenseSolver) State() State { return d.state }

// buildOffsets lays out the tangent-space block offset of every active
// vertex in tempIndex order, and records where the non-marginalized
// prefix ends in offset terms (schurCutoff), since NonMarginalizedCount
// counts vertices, not tangent dimensions.
func (d *DenseSolver) buildOffsets() bool {
	im := d.graph.IndexMap()
	if im == nil || im.Len() == 0 {
		return false
	}
	d.offsets = make(map[hypergraph.ID]int, im.Len())
	offset := 0
	for i := 0; i < im.Len(); i++ {
		v := im.At(i)
		d.offsets[v.ID()] = offset
		offset += v.Dimension()
		if i+1 == im.NonMarginalizedCount() {
			d.schurCutoff = offset
		}
	}
	if im.NonMarginalizedCount() == 0 {
		d.schurCutoff = 0
	}
	d.dim = offset
	return true
}

func (d *DenseSolver) Init(online bool) bool {
	if !d.buildOffsets() {
		return false
	}
	d.state = Structured
	return true
}

// UpdateStructure rebuilds the offset table from the index map the
// optimizer has already extended via activeset.IndexMap.Append; the
// solver itself owns no independent sparsity pattern to patch.
func (d *DenseSolver) UpdateStructure(newVertices []hypergraph.Vertex, newEdges []hypergraph.Edge) bool {
	return d.buildOffsets()
}

func (d *DenseSolver) Solve(iteration int, online bool) Outcome {
	if d.state == Uninitialized {
		if !d.Init(online) {
			return Fail
		}
	}

	d.graph.ComputeActiveErrors()
	d.graph.LinearizeSystem()

	H := mat.NewDense(d.dim, d.dim, nil)
	b := make([]float64, d.dim)

	for _, e := range d.graph.ActiveEdges() {
		omega := e.Information()
		if omega == nil {
			continue
		}
		r := e.ErrorVector()
		weight := e.Weight()

		wr := mat.NewVecDense(len(r), nil)
		wr.MulVec(omega, mat.NewVecDense(len(r), r))
		wr.ScaleVec(weight, wr)

		vertices := e.Vertices()
		for _, vi := range vertices {
			if vi.TempIndex() < 0 {
				continue
			}
			Ji := e.JacobianOplus(vi)
			if Ji == nil {
				continue
			}
			di := vi.Dimension()
			bi := d.offsets[vi.ID()]

			biVec := mat.NewVecDense(di, nil)
			biVec.MulVec(Ji.T(), wr)
			for k := 0; k < di; k++ {
				b[bi+k] += biVec.AtVec(k)
			}

			var JtOmega mat.Dense
			JtOmega.Mul(Ji.T(), omega)

			for _, vj := range vertices {
				if vj.TempIndex() < 0 {
					continue
				}
				Jj := e.JacobianOplus(vj)
				if Jj == nil {
					continue
				}
				dj := vj.Dimension()
				bj := d.offsets[vj.ID()]

				var block mat.Dense
				block.Mul(&JtOmega, Jj)
				block.Scale(weight, &block)

				sub := H.Slice(bi, bi+di, bj, bj+dj).(*mat.Dense)
				sub.Add(sub, &block)
			}
		}
	}

	if d.variant == LevenbergMarquardt {
		for i := 0; i < d.dim; i++ {
			H.Set(i, i, H.At(i, i)*(1+d.lambda))
		}
	}

	d.lastH = H
	d.state = Numeric

	var delta []float64
	var err error
	if d.schurCutoff == 0 || d.schurCutoff == d.dim {
		delta, err = choleskySolveNeg(H, b)
	} else {
		delta, err = d.schurSolve(H, b)
	}
	if err != nil {
		d.state = Numeric
		return Fail
	}

	d.graph.Update(delta)
	d.state = Solved
	return OK
}

// schurSolve eliminates the marginalized suffix block (rows/cols
// [schurCutoff, dim)) before solving the reduced non-marginalized
// system, then back-substitutes for the marginalized increment.
func (d *DenseSolver) schurSolve(H *mat.Dense, b []float64) ([]float64, error) {
	c := d.schurCutoff
	n := d.dim

	Hpp := denseBlock(H, 0, c, 0, c)
	Hpl := denseBlock(H, 0, c, c, n)
	Hlp := denseBlock(H, c, n, 0, c)
	Hll := denseBlock(H, c, n, c, n)
	bp := b[:c]
	bl := b[c:]

	HllInv, err := luInvert(Hll)
	if err != nil {
		return nil, err
	}

	var HplHllInv, schurTerm mat.Dense
	HplHllInv.Mul(Hpl, HllInv)
	schurTerm.Mul(&HplHllInv, Hlp)

	Hschur := mat.NewDense(c, c, nil)
	Hschur.Sub(Hpp, &schurTerm)

	blVec := mat.NewVecDense(n-c, bl)
	var HplHllInvBl mat.VecDense
	HplHllInvBl.MulVec(&HplHllInv, blVec)
	bschur := make([]float64, c)
	for i := 0; i < c; i++ {
		bschur[i] = bp[i] - HplHllInvBl.AtVec(i)
	}

	deltaP, err := choleskySolveNeg(Hschur, bschur)
	if err != nil {
		return nil, err
	}

	deltaPVec := mat.NewVecDense(c, deltaP)
	var HlpDeltaP mat.VecDense
	HlpDeltaP.MulVec(Hlp, deltaPVec)
	rhsL := make([]float64, n-c)
	for i := 0; i < n-c; i++ {
		rhsL[i] = -bl[i] - HlpDeltaP.AtVec(i)
	}
	rhsLVec := mat.NewVecDense(n-c, rhsL)
	var deltaLVec mat.VecDense
	deltaLVec.MulVec(HllInv, rhsLVec)

	delta := make([]float64, n)
	copy(delta[:c], deltaP)
	for i := 0; i < n-c; i++ {
		delta[c+i] = deltaLVec.AtVec(i)
	}
	return delta, nil
}

// denseBlock copies H[r0:r1, c0:c1] into a fresh matrix; Schur
// elimination needs independent storage for Hll's factors regardless of
// H's own backing array.
func denseBlock(H *mat.Dense, r0, r1, c0, c1 int) *mat.Dense {
	var out mat.Dense
	out.CloneFrom(H.Slice(r0, r1, c0, c1))
	return &out
}

// choleskySolveNeg solves H*delta = -b via Cholesky, reporting failure
// when H is not positive definite (spec's numerical-failure outcome).
func choleskySolveNeg(H *mat.Dense, b []float64) ([]float64, error) {
	n := len(b)
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, H.At(i, j))
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, errNotPositiveDefinite
	}
	negB := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		negB.SetVec(i, -b[i])
	}
	var delta mat.VecDense
	if err := chol.SolveVecTo(&delta, negB); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = delta.AtVec(i)
	}
	return out, nil
}

// ComputeMarginals inverts the last assembled Hessian and returns the
// requested tempIndex-indexed blocks. Must follow a successful Solve.
func (d *DenseSolver) ComputeMarginals(blockIndices [][2]int) (*MarginalBlocks, bool) {
	if d.lastH == nil {
		return nil, false
	}
	inv, err := luInvert(d.lastH)
	if err != nil {
		return nil, false
	}

	im := d.graph.IndexMap()
	blockOffset := func(tempIdx int) (int, int) {
		v := im.At(tempIdx)
		return d.offsets[v.ID()], v.Dimension()
	}

	out := &MarginalBlocks{blocks: make(map[[2]int]*mat.Dense, len(blockIndices))}
	for _, pair := range blockIndices {
		ri, rd := blockOffset(pair[0])
		ci, cd := blockOffset(pair[1])
		var block mat.Dense
		block.CloneFrom(inv.Slice(ri, ri+rd, ci, ci+cd))
		out.blocks[pair] = &block
	}
	return out, true
}
