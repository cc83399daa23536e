// Package density maintains the validity of density matrices and reduces
// joint bipartite states to subsystem marginals.
//
// A valid density matrix is Hermitian, positive semidefinite and has unit
// trace. Floating-point arithmetic erodes all three properties, so every
// matrix produced by the engine passes through the Regularizer before it
// is consumed further.
package density

import (
	"math"

	"github.com/aristath/qualia/pkg/linalg"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultEigenFloor is the smallest eigenvalue retained after the PSD
	// projection. Eigenvalues below it are raised to it, never dropped.
	DefaultEigenFloor = 1e-10

	// DefaultTraceTolerance bounds the acceptable deviation of Tr(rho)
	// from 1 before the matrix is rescaled.
	DefaultTraceTolerance = 1e-8
)

// Regularizer projects candidate matrices back onto the set of valid
// density matrices.
type Regularizer struct {
	eigenFloor float64
	traceTol   float64
}

// NewRegularizer creates a regularizer with the default eigenvalue floor
// and trace tolerance.
func NewRegularizer() *Regularizer {
	return &Regularizer{
		eigenFloor: DefaultEigenFloor,
		traceTol:   DefaultTraceTolerance,
	}
}

// EigenFloor returns the eigenvalue floor applied by Regularize.
func (r *Regularizer) EigenFloor() float64 {
	return r.eigenFloor
}

// Regularize returns the nearest valid density matrix to m:
//  1. Hermitize: m -> (m + m†)/2
//  2. Clip eigenvalues to the positive floor and reconstruct
//  3. Rescale to unit trace when the trace has drifted past tolerance
//
// The operation is idempotent on an already-valid matrix up to floating
// tolerance, and never fails for finite input.
func (r *Regularizer) Regularize(m *mat.CDense) *mat.CDense {
	h := linalg.Hermitize(m)
	h = linalg.ClipEigenvalues(h, r.eigenFloor)

	// The clipped spectrum is strictly positive, so the trace is too.
	tr := real(linalg.Trace(h))
	if math.Abs(tr-1) > r.traceTol && tr > 0 {
		linalg.Scale(h, complex(1/tr, 0))
	}
	return h
}
