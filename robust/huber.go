package robust

import "math"

// Huber is the classic Huber M-estimator: quadratic below the Delta
// threshold (the edge contributes its raw chi2 unweighted) and linear
// above it (outliers are reweighted down so their influence on the
// normal equations grows only linearly with residual size instead of
// quadratically).
type Huber struct {
	Delta float64
}

// Robustify returns rho(chi2) and its first two derivatives. Below
// Delta^2, rho is the identity (rho'=1, rho''=0); above it, rho follows
// the standard Huber cost 2*Delta*sqrt(chi2) - Delta^2.
func (h Huber) Robustify(chi2 float64) (rho, rhoPrime, rhoDoublePrime float64) {
	d2 := h.Delta * h.Delta
	if chi2 <= d2 {
		return chi2, 1, 0
	}
	sqrtChi2 := math.Sqrt(chi2)
	rho = 2*h.Delta*sqrtChi2 - d2
	rhoPrime = h.Delta / sqrtChi2
	rhoDoublePrime = -0.5 * h.Delta / (chi2 * sqrtChi2)
	return rho, rhoPrime, rhoDoublePrime
}
