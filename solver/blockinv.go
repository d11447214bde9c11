package solver

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// luInvert inverts a square matrix via Doolittle LU decomposition with
// forward/back substitution against the identity, one column at a time.
// Adapted from the teacher package's matrix/ops.LU: same staged
// decomposition, retargeted at gonum's mat.Dense and at producing a
// full inverse rather than returning L and U separately, since that is
// exactly what Schur-complement elimination and ComputeMarginals need.
//
// Returns an error if m is not square or is numerically singular (a
// zero pivot), which the caller reports as a Fail outcome.
func luInvert(m *mat.Dense) (*mat.Dense, error) {
	rows, cols := m.Dims()
	if rows != cols {
		return nil, fmt.Errorf("solver: luInvert: non-square matrix %dx%d", rows, cols)
	}
	n := rows

	// Stage 1: Doolittle decomposition A = L*U, L unit lower triangular.
	L := mat.NewDense(n, n, nil)
	U := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		L.Set(i, i, 1)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sum := 0.0
			for k := 0; k < i; k++ {
				sum += L.At(i, k) * U.At(k, j)
			}
			U.Set(i, j, m.At(i, j)-sum)
		}
		pivot := U.At(i, i)
		if pivot == 0 {
			return nil, fmt.Errorf("solver: luInvert: zero pivot at %d", i)
		}
		for j := i + 1; j < n; j++ {
			sum := 0.0
			for k := 0; k < i; k++ {
				sum += L.At(j, k) * U.At(k, i)
			}
			L.Set(j, i, (m.At(j, i)-sum)/pivot)
		}
	}

	// Stage 2: solve A*x_col = e_col for every standard basis vector,
	// via forward substitution (L*y = e) then back substitution (U*x = y).
	inv := mat.NewDense(n, n, nil)
	y := make([]float64, n)
	x := make([]float64, n)
	for col := 0; col < n; col++ {
		for i := 0; i < n; i++ {
			rhs := 0.0
			if i == col {
				rhs = 1
			}
			sum := 0.0
			for k := 0; k < i; k++ {
				sum += L.At(i, k) * y[k]
			}
			y[i] = rhs - sum
		}
		for i := n - 1; i >= 0; i-- {
			sum := 0.0
			for k := i + 1; k < n; k++ {
				sum += U.At(i, k) * x[k]
			}
			x[i] = (y[i] - sum) / U.At(i, i)
		}
		for i := 0; i < n; i++ {
			inv.Set(i, col, x[i])
		}
	}
	return inv, nil
}
