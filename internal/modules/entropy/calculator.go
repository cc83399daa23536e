// Package entropy computes information-theoretic quantities over density
// matrices: von Neumann entropy, purity, and quantum mutual information
// across a bipartite decomposition.
package entropy

import (
	"math"

	"github.com/aristath/qualia/internal/modules/density"
	"github.com/aristath/qualia/pkg/linalg"
	"gonum.org/v1/gonum/mat"
)

// eigenEpsilon filters numerical-zero eigenvalues out of the entropy sum
// and pads the logarithm argument.
const eigenEpsilon = 1e-12

// Calculator computes von Neumann entropy and purity. All inputs are
// regularized before the spectrum is taken, so malformed matrices degrade
// to valid ones rather than to NaN.
type Calculator struct {
	reg *density.Regularizer
}

// NewCalculator creates an entropy calculator backed by the given
// regularizer.
func NewCalculator(reg *density.Regularizer) *Calculator {
	return &Calculator{reg: reg}
}

// VonNeumann computes S(rho) = -Tr(rho ln rho) in nats via the spectrum:
// eigenvalues at or below the numerical floor are dropped and the result
// is floored at zero, since the true quantity is non-negative.
func (c *Calculator) VonNeumann(rho *mat.CDense) float64 {
	valid := c.reg.Regularize(rho)
	var s float64
	for _, lambda := range linalg.HermitianEigenvalues(valid) {
		if lambda > eigenEpsilon {
			s -= lambda * math.Log(lambda+eigenEpsilon)
		}
	}
	return math.Max(0, s)
}

// Purity computes Tr(rho²), clipped to its theoretical range [1/n, 1]
// where n is the dimension of rho. 1/n is the maximally mixed state, 1 a
// pure state.
func (c *Calculator) Purity(rho *mat.CDense) float64 {
	valid := c.reg.Regularize(rho)
	n, _ := valid.Dims()

	// Tr(rho²) = Σ_ij rho[i,j]*rho[j,i]; only the real part survives for
	// Hermitian input.
	var p float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			p += real(valid.At(i, j) * valid.At(j, i))
		}
	}

	lo := 1 / float64(n)
	return math.Min(1, math.Max(lo, p))
}
