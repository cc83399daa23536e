// Package evolution advances a density matrix under an open-system
// Lindblad master equation: unitary evolution generated by a fixed random
// Hamiltonian plus dephasing toward the computational basis.
package evolution

import (
	"math"
	"math/rand/v2"

	"github.com/aristath/qualia/internal/modules/density"
	"github.com/aristath/qualia/pkg/linalg"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// hamiltonianSigma is the standard deviation of the Gaussian entries of
// the random Hamiltonian.
const hamiltonianSigma = 0.1

// Evolver holds a fixed Hamiltonian and Lindblad operator set for one
// workspace dimension.
//
// The Lindblad operators are the site projectors L_k = sqrt(rate)|k><k|,
// one per dimension: pure dephasing that decays off-diagonal coherences at
// the decoherence rate while leaving populations untouched.
type Evolver struct {
	dim         int
	dt          float64
	hamiltonian *mat.CDense
	lindblad    []*mat.CDense
	reg         *density.Regularizer
}

// NewEvolver creates an evolver for dimension dim with Euler step dt and
// the given decoherence rate. The Hamiltonian is drawn once from src at
// construction and stays fixed for the evolver's lifetime.
func NewEvolver(dim int, dt, decoherenceRate float64, src rand.Source, reg *density.Regularizer) *Evolver {
	return &Evolver{
		dim:         dim,
		dt:          dt,
		hamiltonian: randomHamiltonian(dim, src),
		lindblad:    dephasingOperators(dim, decoherenceRate),
		reg:         reg,
	}
}

// DT returns the simulated time advanced by one tick.
func (e *Evolver) DT() float64 {
	return e.dt
}

// Step applies ticks Euler steps of
//
//	drho = dt * ( -i[H, rho] + Σ_k ( L_k rho L_k† - ½{L_k†L_k, rho} ) )
//
// regularizing after every step so the Euler error never accumulates into
// an invalid state. rho is not modified; the evolved matrix is returned.
func (e *Evolver) Step(rho *mat.CDense, ticks int) *mat.CDense {
	out := linalg.Clone(rho)
	for t := 0; t < ticks; t++ {
		delta := e.generator(out)
		linalg.AddScaled(out, delta, complex(e.dt, 0))
		out = e.reg.Regularize(out)
	}
	return out
}

// generator evaluates the right-hand side of the master equation at rho.
func (e *Evolver) generator(rho *mat.CDense) *mat.CDense {
	// -i(H rho - rho H)
	comm := linalg.Mul(e.hamiltonian, rho)
	linalg.AddScaled(comm, linalg.Mul(rho, e.hamiltonian), -1)
	linalg.Scale(comm, complex(0, -1))

	for _, l := range e.lindblad {
		lDag := linalg.Adjoint(l)
		lDagL := linalg.Mul(lDag, l)

		// L rho L†
		linalg.AddScaled(comm, linalg.Mul(linalg.Mul(l, rho), lDag), 1)
		// -½ {L†L, rho}
		linalg.AddScaled(comm, linalg.Mul(lDagL, rho), -0.5)
		linalg.AddScaled(comm, linalg.Mul(rho, lDagL), -0.5)
	}
	return comm
}

// randomHamiltonian draws a Hermitian matrix with independent N(0, 0.1)
// entries: real on the diagonal, conjugate-paired off it.
func randomHamiltonian(dim int, src rand.Source) *mat.CDense {
	normal := distuv.Normal{Mu: 0, Sigma: hamiltonianSigma, Src: src}
	h := linalg.Zeros(dim, dim)
	for i := 0; i < dim; i++ {
		h.Set(i, i, complex(normal.Rand(), 0))
		for j := i + 1; j < dim; j++ {
			v := complex(normal.Rand(), normal.Rand())
			h.Set(i, j, v)
			h.Set(j, i, complex(real(v), -imag(v)))
		}
	}
	return h
}

// dephasingOperators builds the site projectors sqrt(rate)|k><k|.
func dephasingOperators(dim int, rate float64) []*mat.CDense {
	amp := complex(math.Sqrt(math.Max(0, rate)), 0)
	ops := make([]*mat.CDense, dim)
	for k := 0; k < dim; k++ {
		l := linalg.Zeros(dim, dim)
		l.Set(k, k, amp)
		ops[k] = l
	}
	return ops
}
