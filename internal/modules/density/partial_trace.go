package density

import (
	"github.com/aristath/qualia/pkg/linalg"
	"gonum.org/v1/gonum/mat"
)

// PartialTracer reduces a joint density matrix on H_A ⊗ H_B to either
// subsystem's marginal.
//
// The flat (dimA*dimB) x (dimA*dimB) matrix is treated as a 4-index tensor
// rho[i,j,k,l] with i,k ranging over subsystem A and j,l over subsystem B,
// related to the flat layout by rho[i*dimB+j, k*dimB+l]. The traces are
// explicit index-mapped summations over that layout.
type PartialTracer struct {
	dimA int
	dimB int
	reg  *Regularizer
}

// NewPartialTracer creates a partial tracer for the dimA ⊗ dimB
// decomposition. Results are regularized before being returned.
func NewPartialTracer(dimA, dimB int, reg *Regularizer) *PartialTracer {
	return &PartialTracer{dimA: dimA, dimB: dimB, reg: reg}
}

// TraceOutB computes rho_A = Tr_B(rho_AB):
//
//	rho_A[i,k] = Σ_j rho_AB[i*dimB+j, k*dimB+j]
//
// For any valid input the result is Hermitian, PSD and has unit trace.
func (p *PartialTracer) TraceOutB(rhoAB *mat.CDense) *mat.CDense {
	rhoA := linalg.Zeros(p.dimA, p.dimA)
	for i := 0; i < p.dimA; i++ {
		for k := 0; k < p.dimA; k++ {
			var sum complex128
			for j := 0; j < p.dimB; j++ {
				sum += rhoAB.At(i*p.dimB+j, k*p.dimB+j)
			}
			rhoA.Set(i, k, sum)
		}
	}
	return p.reg.Regularize(rhoA)
}

// TraceOutA computes rho_B = Tr_A(rho_AB):
//
//	rho_B[j,l] = Σ_i rho_AB[i*dimB+j, i*dimB+l]
func (p *PartialTracer) TraceOutA(rhoAB *mat.CDense) *mat.CDense {
	rhoB := linalg.Zeros(p.dimB, p.dimB)
	for j := 0; j < p.dimB; j++ {
		for l := 0; l < p.dimB; l++ {
			var sum complex128
			for i := 0; i < p.dimA; i++ {
				sum += rhoAB.At(i*p.dimB+j, i*p.dimB+l)
			}
			rhoB.Set(j, l, sum)
		}
	}
	return p.reg.Regularize(rhoB)
}
