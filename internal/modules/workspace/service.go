// Package workspace owns the mutable quantum-inspired state of the engine
// and exposes its public operations.
//
// The workspace holds a length-n complex amplitude vector over an
// orthonormal qualia basis, the derived n x n density matrix, and the
// bipartite decomposition n = dimA * dimB used for mutual information. It
// is a plain owned struct, designed for exclusive use by one logical
// caller: mutating calls perform read-modify-write of the density matrix
// and history and are not internally synchronized.
package workspace

import (
	"math"
	"math/rand/v2"

	"github.com/aristath/qualia/internal/modules/basis"
	"github.com/aristath/qualia/internal/modules/collapse"
	"github.com/aristath/qualia/internal/modules/density"
	"github.com/aristath/qualia/internal/modules/entropy"
	"github.com/aristath/qualia/internal/modules/evolution"
	"github.com/aristath/qualia/pkg/linalg"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

// minVectorNorm is the amplitude-vector norm below which UpdateState
// substitutes the uniform superposition instead of dividing by it.
const minVectorNorm = 1e-10

// Config holds workspace construction parameters. Zero values fall back
// to the defaults of the reference configuration (12 = 3 ⊗ 4, threshold
// 0.95).
type Config struct {
	TotalDim         int
	SubsystemADim    int
	SubsystemBDim    int
	EntropyThreshold float64 // fraction of max entropy in (0, 1]
	DT               float64 // simulated seconds per evolution tick
	DecoherenceRate  float64 // Lindblad dephasing rate
}

func (c *Config) applyDefaults() {
	if c.TotalDim <= 0 {
		c.TotalDim = 12
	}
	if c.SubsystemADim <= 0 {
		c.SubsystemADim = 3
	}
	if c.SubsystemBDim <= 0 {
		c.SubsystemBDim = 4
	}
	if c.EntropyThreshold <= 0 || c.EntropyThreshold > 1 {
		c.EntropyThreshold = 0.95
	}
	if c.DT <= 0 {
		c.DT = 0.01
	}
	if c.DecoherenceRate < 0 {
		c.DecoherenceRate = 0
	}
}

// Workspace is the orchestrator: it owns the state vector, density matrix,
// qualia basis and history, and wires the numerical components together.
type Workspace struct {
	dim              int
	dimA             int
	dimB             int
	entropyThreshold float64
	maxEntropy       float64

	qualiaBasis *mat.CDense
	state       []complex128
	rho         *mat.CDense

	// mixed marks that evolution has produced a state the amplitude
	// vector no longer describes; collapse then samples the density
	// matrix diagonal instead.
	mixed bool

	collapseCount  int
	ticks          int
	simTime        float64
	entropyHistory []float64
	phiQHistory    []float64

	reg         *density.Regularizer
	tracer      *density.PartialTracer
	entropyCalc *entropy.Calculator
	miEstimator *entropy.Estimator
	sampler     *collapse.Sampler
	optimizer   *basis.Optimizer
	evolver     *evolution.Evolver

	log zerolog.Logger
}

// New constructs a workspace. The basis is initialized to a Haar-random
// orthonormal matrix and the state to the uniform superposition, both
// drawn from the caller-supplied source; the workspace never seeds a
// generator of its own.
//
// A dimension mismatch (TotalDim != SubsystemADim*SubsystemBDim) is
// corrected by recomputing the total dimension as the product; a warning
// is logged and construction proceeds. No input makes New fail.
func New(cfg Config, src rand.Source, log zerolog.Logger) *Workspace {
	cfg.applyDefaults()
	log = log.With().Str("module", "workspace").Logger()

	if cfg.SubsystemADim*cfg.SubsystemBDim != cfg.TotalDim {
		corrected := cfg.SubsystemADim * cfg.SubsystemBDim
		log.Warn().
			Int("total_dim", cfg.TotalDim).
			Int("subsystem_a_dim", cfg.SubsystemADim).
			Int("subsystem_b_dim", cfg.SubsystemBDim).
			Int("corrected_dim", corrected).
			Msg("Total dimension does not factor as A ⊗ B, using the product instead")
		cfg.TotalDim = corrected
	}

	reg := density.NewRegularizer()
	tracer := density.NewPartialTracer(cfg.SubsystemADim, cfg.SubsystemBDim, reg)
	calc := entropy.NewCalculator(reg)

	w := &Workspace{
		dim:              cfg.TotalDim,
		dimA:             cfg.SubsystemADim,
		dimB:             cfg.SubsystemBDim,
		entropyThreshold: cfg.EntropyThreshold,
		maxEntropy:       math.Log(float64(cfg.TotalDim)),
		qualiaBasis:      linalg.RandomUnitary(cfg.TotalDim, src),
		reg:              reg,
		tracer:           tracer,
		entropyCalc:      calc,
		miEstimator:      entropy.NewEstimator(tracer, calc, reg),
		sampler:          collapse.NewSampler(src),
		optimizer:        basis.NewOptimizer(src, log),
		evolver:          evolution.NewEvolver(cfg.TotalDim, cfg.DT, cfg.DecoherenceRate, src, reg),
		log:              log,
	}
	w.setUniformState()
	return w
}

// UpdateState replaces the amplitude vector with newAmplitudes,
// renormalized to unit norm, rebuilds the density matrix and appends the
// recomputed entropy and mutual information to the histories.
//
// A near-zero-norm vector is substituted with the uniform superposition,
// and a wrong-length vector is truncated or zero-padded to the workspace
// dimension; both cases log a warning and proceed.
func (w *Workspace) UpdateState(newAmplitudes []complex128) {
	amps := newAmplitudes
	if len(amps) != w.dim {
		w.log.Warn().
			Int("len", len(amps)).
			Int("dimension", w.dim).
			Msg("Amplitude vector length mismatch, coercing")
		amps = make([]complex128, w.dim)
		copy(amps, newAmplitudes)
	}

	norm := vectorNorm(amps)
	if norm < minVectorNorm {
		w.log.Warn().Float64("norm", norm).Msg("Near-zero amplitude vector, substituting uniform superposition")
		w.setUniformState()
	} else {
		state := make([]complex128, w.dim)
		for i, a := range amps {
			state[i] = a / complex(norm, 0)
		}
		w.setPureState(state)
	}

	w.recordHistory()
}

// Collapse performs a Born-rule stochastic projection: one basis index is
// drawn with probability |c_k|² (for a mixed state, from the density
// matrix diagonal), the state becomes the one-hot vector at that index,
// and the density matrix becomes the corresponding pure projector. The
// collapse counter is incremented and the index returned.
//
// This is the engine's only stochastic mutation: repeated calls on the
// same superposed workspace may return different indices, governed
// strictly by the squared-amplitude distribution at the moment of the
// call. Immediately after a collapse the state is a basis eigenstate, so
// a second Collapse deterministically returns the same index.
func (w *Workspace) Collapse() int {
	var idx int
	if w.mixed {
		idx = w.sampler.SampleDiagonal(w.rho)
	} else {
		idx = w.sampler.SampleAmplitudes(w.state)
	}

	oneHot := make([]complex128, w.dim)
	oneHot[idx] = 1
	w.setPureState(oneHot)
	w.collapseCount++

	w.log.Debug().Int("index", idx).Int("collapse_count", w.collapseCount).Msg("State collapsed")
	return idx
}

// CheckCollapseCondition reports whether the current entropy has reached
// the collapse threshold: S(rho) >= threshold * ln(n), boundary included.
func (w *Workspace) CheckCollapseCondition() bool {
	return w.Entropy() >= w.entropyThreshold*w.maxEntropy
}

// Evolve advances the density matrix by ticks steps of the Lindblad
// master equation, recording entropy and mutual information after each
// tick. Evolution generally produces a mixed state, so the amplitude
// vector is superseded until the next UpdateState, Collapse or Reset.
// Collapse remains an explicit caller transition; Evolve never collapses
// on its own.
func (w *Workspace) Evolve(ticks int) {
	for t := 0; t < ticks; t++ {
		w.rho = w.evolver.Step(w.rho, 1)
		w.mixed = true
		w.ticks++
		w.simTime += w.evolver.DT()
		w.recordHistory()
	}
}

// Reset returns the workspace to the uniform superposition. History and
// the collapse counter are preserved.
func (w *Workspace) Reset() {
	w.setUniformState()
	w.log.Debug().Msg("Workspace reset to uniform superposition")
}

// OptimizeBasis runs the randomized basis re-orthonormalization loop for
// the given number of iterations. This is the only mutator of the qualia
// basis; the state and density matrix are untouched.
func (w *Workspace) OptimizeBasis(learningRate float64, iterations int) {
	freeEnergy := func() float64 {
		return -w.MutualInformation() - w.Entropy()
	}
	w.qualiaBasis = w.optimizer.Optimize(w.qualiaBasis, freeEnergy, learningRate, iterations)
}

// Entropy returns the von Neumann entropy of the current state in nats.
func (w *Workspace) Entropy() float64 {
	return w.entropyCalc.VonNeumann(w.rho)
}

// EntropyOf returns the von Neumann entropy of an explicit density matrix.
func (w *Workspace) EntropyOf(rho *mat.CDense) float64 {
	return w.entropyCalc.VonNeumann(rho)
}

// MutualInformation returns I(A:B) of the current state in nats.
func (w *Workspace) MutualInformation() float64 {
	return w.miEstimator.MutualInformation(w.rho)
}

// MutualInformationOf returns I(A:B) of an explicit joint density matrix.
func (w *Workspace) MutualInformationOf(rhoAB *mat.CDense) float64 {
	return w.miEstimator.MutualInformation(rhoAB)
}

// Purity returns Tr(rho²) of the current state, in [1/n, 1].
func (w *Workspace) Purity() float64 {
	return w.entropyCalc.Purity(w.rho)
}

// PurityOf returns Tr(rho²) of an explicit density matrix.
func (w *Workspace) PurityOf(rho *mat.CDense) float64 {
	return w.entropyCalc.Purity(rho)
}

// Summary returns the current state metrics.
func (w *Workspace) Summary() Summary {
	return Summary{
		Dimension:         w.dim,
		SubsystemADim:     w.dimA,
		SubsystemBDim:     w.dimB,
		Entropy:           w.Entropy(),
		MaxEntropy:        w.maxEntropy,
		MutualInformation: w.MutualInformation(),
		Purity:            w.Purity(),
		CollapseCount:     w.collapseCount,
		ThresholdNats:     w.entropyThreshold * w.maxEntropy,
		Ticks:             w.ticks,
		SimTime:           w.simTime,
	}
}

// Dimension returns the total dimension n = dimA * dimB.
func (w *Workspace) Dimension() int {
	return w.dim
}

// SubsystemDims returns the bipartite decomposition (dimA, dimB).
func (w *Workspace) SubsystemDims() (int, int) {
	return w.dimA, w.dimB
}

// MaxEntropy returns ln(n), the entropy of the maximally mixed state.
func (w *Workspace) MaxEntropy() float64 {
	return w.maxEntropy
}

// CollapseCount returns the number of collapses performed so far.
func (w *Workspace) CollapseCount() int {
	return w.collapseCount
}

// StateVector returns a copy of the current amplitude vector. After
// Evolve the vector is stale until the next pure-state mutation.
func (w *Workspace) StateVector() []complex128 {
	out := make([]complex128, len(w.state))
	copy(out, w.state)
	return out
}

// DensityMatrix returns a copy of the current density matrix.
func (w *Workspace) DensityMatrix() *mat.CDense {
	return linalg.Clone(w.rho)
}

// QualiaBasis returns a copy of the current orthonormal basis, one basis
// vector per row.
func (w *Workspace) QualiaBasis() *mat.CDense {
	return linalg.Clone(w.qualiaBasis)
}

// EntropyHistory returns a copy of the recorded entropy trajectory. The
// history is append-only and never pruned by the engine.
func (w *Workspace) EntropyHistory() []float64 {
	out := make([]float64, len(w.entropyHistory))
	copy(out, w.entropyHistory)
	return out
}

// PhiQHistory returns a copy of the recorded mutual information
// trajectory.
func (w *Workspace) PhiQHistory() []float64 {
	out := make([]float64, len(w.phiQHistory))
	copy(out, w.phiQHistory)
	return out
}

// setPureState installs a unit-norm amplitude vector and rebuilds the
// density matrix as its regularized projector.
func (w *Workspace) setPureState(state []complex128) {
	w.state = state
	w.rho = w.reg.Regularize(linalg.Outer(state))
	w.mixed = false
}

func (w *Workspace) setUniformState() {
	state := make([]complex128, w.dim)
	amp := complex(1/math.Sqrt(float64(w.dim)), 0)
	for i := range state {
		state[i] = amp
	}
	w.setPureState(state)
}

func (w *Workspace) recordHistory() {
	w.entropyHistory = append(w.entropyHistory, w.Entropy())
	w.phiQHistory = append(w.phiQHistory, w.MutualInformation())
}

func vectorNorm(v []complex128) float64 {
	var sum float64
	for _, a := range v {
		sum += real(a)*real(a) + imag(a)*imag(a)
	}
	return math.Sqrt(sum)
}
