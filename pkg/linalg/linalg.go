// Package linalg provides dense complex linear algebra for Hermitian
// matrices on top of gonum.
//
// gonum's eigensolvers are real-valued, so the Hermitian eigenproblem is
// solved through the real symmetric embedding of H = X + iY:
//
//	M = | X  -Y |
//	    | Y   X |
//
// M is symmetric whenever H is Hermitian, every eigenvalue of H appears
// twice in M, and spectral functions commute with the embedding. This lets
// eigenvalue extraction and PSD projection run through mat.EigenSym and be
// read back from the embedding blocks without ever pairing complex
// eigenvectors.
package linalg

import (
	"math"
	"math/cmplx"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// degenerateNorm is the row norm below which Gram-Schmidt treats a row as
// linearly dependent and substitutes a canonical basis vector.
const degenerateNorm = 1e-12

// Zeros returns an r x c complex matrix of zeros.
func Zeros(r, c int) *mat.CDense {
	return mat.NewCDense(r, c, nil)
}

// Clone returns a deep copy of m.
func Clone(m *mat.CDense) *mat.CDense {
	r, c := m.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, m.At(i, j))
		}
	}
	return out
}

// Adjoint returns the conjugate transpose of m.
func Adjoint(m *mat.CDense) *mat.CDense {
	r, c := m.Dims()
	out := mat.NewCDense(c, r, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(j, i, cmplx.Conj(m.At(i, j)))
		}
	}
	return out
}

// Mul returns the matrix product a*b.
func Mul(a, b *mat.CDense) *mat.CDense {
	ar, ac := a.Dims()
	_, bc := b.Dims()
	out := mat.NewCDense(ar, bc, nil)
	for i := 0; i < ar; i++ {
		for j := 0; j < bc; j++ {
			var sum complex128
			for k := 0; k < ac; k++ {
				sum += a.At(i, k) * b.At(k, j)
			}
			out.Set(i, j, sum)
		}
	}
	return out
}

// AddScaled adds s*src to dst in place.
func AddScaled(dst, src *mat.CDense, s complex128) {
	r, c := dst.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			dst.Set(i, j, dst.At(i, j)+s*src.At(i, j))
		}
	}
}

// Scale multiplies every element of m by s in place.
func Scale(m *mat.CDense, s complex128) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, s*m.At(i, j))
		}
	}
}

// Trace returns the sum of the diagonal elements of m.
func Trace(m *mat.CDense) complex128 {
	n, _ := m.Dims()
	var tr complex128
	for i := 0; i < n; i++ {
		tr += m.At(i, i)
	}
	return tr
}

// Hermitize returns (m + m†)/2, the nearest Hermitian matrix to m.
func Hermitize(m *mat.CDense) *mat.CDense {
	n, _ := m.Dims()
	out := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, (m.At(i, j)+cmplx.Conj(m.At(j, i)))/2)
		}
	}
	return out
}

// Outer returns the projector |v><v|.
func Outer(v []complex128) *mat.CDense {
	n := len(v)
	out := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, v[i]*cmplx.Conj(v[j]))
		}
	}
	return out
}

// embedHermitian builds the real symmetric 2n x 2n embedding of a
// Hermitian matrix. The input must already be Hermitian; callers go
// through Hermitize first.
func embedHermitian(h *mat.CDense) *mat.SymDense {
	n, _ := h.Dims()
	m := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			x := real(h.At(i, j))
			m.SetSym(i, j, x)
			m.SetSym(n+i, n+j, x)
		}
		// The whole upper-right block sits above the diagonal.
		for j := 0; j < n; j++ {
			m.SetSym(i, n+j, -imag(h.At(i, j)))
		}
	}
	return m
}

// HermitianEigenvalues returns the n eigenvalues of a Hermitian matrix in
// ascending order. Each eigenvalue appears twice in the embedding, so
// adjacent pairs of the 2n real eigenvalues are averaged.
func HermitianEigenvalues(h *mat.CDense) []float64 {
	n, _ := h.Dims()
	var es mat.EigenSym
	if !es.Factorize(embedHermitian(h), false) {
		// Finite symmetric input should always factorize; fall back to the
		// diagonal so callers never see a hard failure.
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			vals[i] = real(h.At(i, i))
		}
		sort.Float64s(vals)
		return vals
	}
	doubled := es.Values(nil)
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		vals[i] = (doubled[2*i] + doubled[2*i+1]) / 2
	}
	return vals
}

// ClipEigenvalues raises every eigenvalue of a Hermitian matrix to at
// least floor and reconstructs the matrix. The reconstruction happens in
// the real embedding, so complex eigenvectors are never formed. If no
// eigenvalue falls below the floor the input is returned unchanged (up to
// a copy), which keeps the operation idempotent on valid matrices.
func ClipEigenvalues(h *mat.CDense, floor float64) *mat.CDense {
	n, _ := h.Dims()
	var es mat.EigenSym
	if !es.Factorize(embedHermitian(h), true) {
		return Clone(h)
	}
	vals := es.Values(nil)
	clipped := false
	for i, v := range vals {
		if v < floor {
			vals[i] = floor
			clipped = true
		}
	}
	if !clipped {
		return Clone(h)
	}

	var q mat.Dense
	es.VectorsTo(&q)
	d := mat.NewDiagDense(2*n, vals)
	var t, recon mat.Dense
	t.Mul(&q, d)
	recon.Mul(&t, q.T())

	out := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, complex(recon.At(i, j), recon.At(n+i, j)))
		}
	}
	return out
}

// OrthonormalizeRows applies modified Gram-Schmidt to the rows of b and
// returns the result. After normalization each row's phase is fixed so
// that its diagonal entry is real and non-negative, which makes the
// factorization unique (the QR sign convention). gonum has no complex QR,
// and triangularity is not preserved by the real embedding, so this is
// done directly on the complex rows.
func OrthonormalizeRows(b *mat.CDense) *mat.CDense {
	r, c := b.Dims()
	out := Clone(b)
	for i := 0; i < r; i++ {
		orthonormalizeRow(out, i, c)
		if rowNorm(out, i, c) < degenerateNorm {
			// Linearly dependent row: try canonical basis vectors until one
			// survives projection onto the settled rows. The first candidate
			// can itself lie in their span, so keep going; with i < c at
			// least one of the c candidates always survives.
			for cand := 0; cand < c; cand++ {
				for j := 0; j < c; j++ {
					out.Set(i, j, 0)
				}
				out.Set(i, (i+cand)%c, 1)
				orthonormalizeRow(out, i, c)
				if rowNorm(out, i, c) >= degenerateNorm {
					break
				}
			}
		}
		norm := rowNorm(out, i, c)
		if norm < degenerateNorm {
			// Only reachable with more rows than columns; leave the row
			// zero rather than divide it into NaN.
			continue
		}
		for j := 0; j < c; j++ {
			out.Set(i, j, out.At(i, j)/complex(norm, 0))
		}
		if i < c {
			if d := out.At(i, i); cmplx.Abs(d) > degenerateNorm {
				phase := cmplx.Conj(d / complex(cmplx.Abs(d), 0))
				for j := 0; j < c; j++ {
					out.Set(i, j, out.At(i, j)*phase)
				}
			}
		}
	}
	return out
}

// orthonormalizeRow subtracts from row i its projections onto rows 0..i-1,
// which are assumed orthonormal.
func orthonormalizeRow(m *mat.CDense, i, c int) {
	for k := 0; k < i; k++ {
		var dot complex128
		for j := 0; j < c; j++ {
			dot += cmplx.Conj(m.At(k, j)) * m.At(i, j)
		}
		for j := 0; j < c; j++ {
			m.Set(i, j, m.At(i, j)-dot*m.At(k, j))
		}
	}
}

func rowNorm(m *mat.CDense, i, c int) float64 {
	var sum float64
	for j := 0; j < c; j++ {
		v := m.At(i, j)
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return math.Sqrt(sum)
}

// RandomComplex returns an r x c matrix whose real and imaginary parts are
// independent N(0, sigma) draws from src.
func RandomComplex(r, c int, sigma float64, src rand.Source) *mat.CDense {
	normal := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, complex(normal.Rand(), normal.Rand()))
		}
	}
	return out
}

// RandomUnitary draws a Haar-distributed n x n unitary by orthonormalizing
// a Ginibre matrix with the phase-corrected Gram-Schmidt above.
func RandomUnitary(n int, src rand.Source) *mat.CDense {
	return OrthonormalizeRows(RandomComplex(n, n, 1, src))
}
