// Package collapse implements Born-rule stochastic projection: a basis
// index is drawn with probability equal to the squared magnitude of its
// amplitude.
package collapse

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// minProbabilityMass is the total weight below which the distribution is
// replaced with the uniform one instead of renormalizing near-zero mass.
const minProbabilityMass = 1e-10

// Sampler draws collapse outcomes from a caller-supplied random source.
// The sampler never owns or seeds a generator, so reproducibility is the
// caller's responsibility.
type Sampler struct {
	src rand.Source
}

// NewSampler creates a sampler reading from src.
func NewSampler(src rand.Source) *Sampler {
	return &Sampler{src: src}
}

// SampleAmplitudes draws one index from the categorical distribution
// p_k = |amps[k]|², renormalized to sum to 1.
func (s *Sampler) SampleAmplitudes(amps []complex128) int {
	weights := make([]float64, len(amps))
	for i, a := range amps {
		weights[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return s.sample(weights)
}

// SampleDiagonal draws one index from the diagonal of a density matrix,
// the outcome distribution of a measurement on a mixed state.
func (s *Sampler) SampleDiagonal(rho *mat.CDense) int {
	n, _ := rho.Dims()
	weights := make([]float64, n)
	for i := 0; i < n; i++ {
		weights[i] = real(rho.At(i, i))
	}
	return s.sample(weights)
}

// sample draws from the categorical distribution proportional to weights.
// Negative weights (floating-point debris) are clamped to zero, and a
// near-zero total mass falls back to the uniform distribution.
func (s *Sampler) sample(weights []float64) int {
	for i, w := range weights {
		if w < 0 {
			weights[i] = 0
		}
	}
	if floats.Sum(weights) < minProbabilityMass {
		for i := range weights {
			weights[i] = 1
		}
	}
	cat := distuv.NewCategorical(weights, s.src)
	return int(cat.Rand())
}
