// Package basis performs iterative, randomized re-orthonormalization of
// the representation basis.
package basis

import (
	"math/rand/v2"

	"github.com/aristath/qualia/pkg/linalg"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

// Optimizer perturbs the basis with scaled complex noise and restores
// orthonormality through a QR-style decomposition.
//
// The loop targets the free energy F = -I(A:B) - S(rho), but the candidate
// basis replaces the current one unconditionally on every iteration; F is
// evaluated and reported at debug level without gating acceptance.
type Optimizer struct {
	src rand.Source
	log zerolog.Logger
}

// NewOptimizer creates a basis optimizer drawing perturbations from src.
func NewOptimizer(src rand.Source, log zerolog.Logger) *Optimizer {
	return &Optimizer{
		src: src,
		log: log.With().Str("module", "basis").Logger(),
	}
}

// Optimize runs iterations rounds of perturb-and-reorthonormalize on b and
// returns the final basis. freeEnergy is evaluated once per iteration
// against the caller's current state. b is not modified.
func (o *Optimizer) Optimize(b *mat.CDense, freeEnergy func() float64, learningRate float64, iterations int) *mat.CDense {
	n, _ := b.Dims()
	current := linalg.Clone(b)

	for it := 0; it < iterations; it++ {
		f := freeEnergy()

		perturbation := linalg.RandomComplex(n, n, 1, o.src)
		linalg.AddScaled(current, perturbation, complex(learningRate, 0))
		current = linalg.OrthonormalizeRows(current)

		o.log.Debug().
			Int("iteration", it).
			Float64("free_energy", f).
			Float64("learning_rate", learningRate).
			Msg("Accepted perturbed basis")
	}
	return current
}
