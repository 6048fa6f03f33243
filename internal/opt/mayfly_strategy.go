package opt

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/mayfly"
	"github.com/cwbudde/multistart/internal/search"
)

// mayfly v0.1.0 rejects smaller populations
const minPopSize = 20

// MayflyStrategy adapts the external Mayfly library to the search.Strategy
// contract. Each Optimize call is one fresh mayfly run whose iteration
// count is derived from the evaluation budget, and the best result of the
// run is reported to the attached tracker. The library keeps no state
// between runs, so the strategy does not implement Reoptimize and the
// restart loop falls back to Optimize on every restart.
type MayflyStrategy struct {
	eval    func([]float64) float64
	dim     int
	popSize int
	lower   float64
	upper   float64
	rng     *rand.Rand
	tracker *search.ProgressTracker[[]float64]
}

// NewMayflyStrategy creates a mayfly-backed strategy for a boxed
// minimization problem. The same scalar bounds apply to every dimension,
// matching the external library's bound model.
func NewMayflyStrategy(eval func([]float64) float64, dim, popSize int, lower, upper float64, seed int64) (*MayflyStrategy, error) {
	if eval == nil {
		return nil, &search.ConfigurationError{Reason: "objective function is required"}
	}
	if dim < 1 {
		return nil, &search.ConfigurationError{Reason: fmt.Sprintf("problem dimension must be positive, got %d", dim)}
	}
	if popSize < minPopSize {
		return nil, &search.ConfigurationError{Reason: fmt.Sprintf("population size must be at least %d, got %d", minPopSize, popSize)}
	}
	if lower >= upper {
		return nil, &search.ConfigurationError{Reason: fmt.Sprintf("lower bound %g must be below upper bound %g", lower, upper)}
	}

	return &MayflyStrategy{
		eval:    eval,
		dim:     dim,
		popSize: popSize,
		lower:   lower,
		upper:   upper,
		rng:     rand.New(rand.NewSource(seed)),
	}, nil
}

// Optimize runs one mayfly optimization bounded by runLength evaluations.
// Evaluations per iteration scale with the population size, so the
// iteration count is runLength/popSize, floored at one iteration.
func (s *MayflyStrategy) Optimize(runLength int) (search.SolutionCostPair[[]float64], error) {
	var zero search.SolutionCostPair[[]float64]

	iters := runLength / s.popSize
	if iters < 1 {
		iters = 1
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = s.eval
	config.ProblemSize = s.dim
	config.MaxIterations = iters
	config.NPop = s.popSize
	config.LowerBound = s.lower
	config.UpperBound = s.upper
	config.Rand = rand.New(rand.NewSource(s.rng.Int63()))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return zero, fmt.Errorf("mayfly optimization failed: %w", err)
	}

	solution := append([]float64(nil), result.GlobalBest.Position...)
	pair := search.NewSolutionCostPair(solution, result.GlobalBest.Cost)

	if s.tracker != nil {
		s.tracker.Update(solution, result.GlobalBest.Cost)
	}
	return pair, nil
}

// Split returns an independent copy sharing only the immutable problem
// configuration and the tracker reference. The child's random stream is
// derived deterministically from the parent's, so sibling trajectories stay
// uncorrelated without sharing generator state.
func (s *MayflyStrategy) Split() search.Strategy[[]float64] {
	return &MayflyStrategy{
		eval:    s.eval,
		dim:     s.dim,
		popSize: s.popSize,
		lower:   s.lower,
		upper:   s.upper,
		rng:     rand.New(rand.NewSource(s.rng.Int63())),
		tracker: s.tracker,
	}
}

// ProgressTracker returns the attached tracker, nil if none was set
func (s *MayflyStrategy) ProgressTracker() *search.ProgressTracker[[]float64] {
	return s.tracker
}

// SetProgressTracker attaches a tracker; a nil argument is ignored
func (s *MayflyStrategy) SetProgressTracker(tracker *search.ProgressTracker[[]float64]) {
	if tracker != nil {
		s.tracker = tracker
	}
}
