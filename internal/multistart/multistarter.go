package multistart

import (
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/multistart/internal/search"
)

// runState is the terminal state of one restart loop
type runState int

const (
	stateRunning runState = iota
	stateStoppedByBudget
	stateStoppedByTracker
	stateFailed
)

func (s runState) String() string {
	switch s {
	case stateStoppedByBudget:
		return "stopped_by_budget"
	case stateStoppedByTracker:
		return "stopped_by_tracker"
	case stateFailed:
		return "failed"
	default:
		return "running"
	}
}

// runResult collects what one restart loop produced for the orchestrator
type runResult[T any] struct {
	best     search.SolutionCostPair[T]
	hasBest  bool
	consumed int
	state    runState
	err      error
}

// Multistarter repeatedly restarts a search strategy, giving each restart a
// fixed slice of the run-length budget and re-checking the tracker's stop
// and found-best latches between restarts. Cancellation latency is bounded
// by one restart's run length; strategy code never needs to be
// cancellation-aware.
//
// Multistarter itself satisfies search.Reoptimizer, so multistarters nest
// inside larger composite searches, including the parallel orchestrator.
type Multistarter[T any] struct {
	strategy       search.Strategy[T]
	restartLength  int
	totalRunLength atomic.Int64
}

// NewMultistarter wraps a strategy with a restart loop. Each restart is
// bounded by restartLength evaluations.
func NewMultistarter[T any](strategy search.Strategy[T], restartLength int) (*Multistarter[T], error) {
	if strategy == nil {
		return nil, &search.ConfigurationError{Reason: "strategy is required"}
	}
	if restartLength < 1 {
		return nil, &search.ConfigurationError{Reason: fmt.Sprintf("restart length must be positive, got %d", restartLength)}
	}
	return &Multistarter[T]{strategy: strategy, restartLength: restartLength}, nil
}

// RestartLength returns the per-restart evaluation budget
func (m *Multistarter[T]) RestartLength() int {
	return m.restartLength
}

// TotalRunLength returns the cumulative run length consumed by the
// receiver's restarts across its lifetime. Zero until the first restart.
func (m *Multistarter[T]) TotalRunLength() int64 {
	return m.totalRunLength.Load()
}

// Optimize runs restarts of the underlying strategy until the budget is
// exhausted or the shared tracker signals stop or found-best. The first
// restart is a fresh Optimize; later restarts resume via Reoptimize when
// the strategy supports it. Returns the best pair observed by the session.
func (m *Multistarter[T]) Optimize(totalRunLength int) (search.SolutionCostPair[T], error) {
	return m.finish(m.run(totalRunLength, false, nil))
}

// Reoptimize is like Optimize but resumes from prior state on every
// restart, beginning with the first, when the strategy supports resumption.
func (m *Multistarter[T]) Reoptimize(totalRunLength int) (search.SolutionCostPair[T], error) {
	return m.finish(m.run(totalRunLength, true, nil))
}

// Split returns a multistarter around an independent split of the
// underlying strategy, sharing only the tracker reference with the receiver.
func (m *Multistarter[T]) Split() search.Strategy[T] {
	return &Multistarter[T]{strategy: m.strategy.Split(), restartLength: m.restartLength}
}

// ProgressTracker returns the tracker attached to the underlying strategy
func (m *Multistarter[T]) ProgressTracker() *search.ProgressTracker[T] {
	return m.strategy.ProgressTracker()
}

// SetProgressTracker attaches a tracker to the underlying strategy.
// A nil argument is ignored.
func (m *Multistarter[T]) SetProgressTracker(tracker *search.ProgressTracker[T]) {
	m.strategy.SetProgressTracker(tracker)
}

// run is the restart loop shared by Optimize, Reoptimize and the parallel
// orchestrator's workers. The budget is decremented by the run length
// handed to each restart; the tracker is consulted only between restarts.
// A non-nil lifetime counter is advanced alongside the receiver's own, so
// an owning orchestrator sees consumption while workers are still running.
func (m *Multistarter[T]) run(budget int, resume bool, lifetime *atomic.Int64) runResult[T] {
	var res runResult[T]
	res.state = stateRunning

	tracker := m.strategy.ProgressTracker()
	direction := search.Minimize
	if tracker != nil {
		direction = tracker.Direction()
	}

	reopt, canResume := m.strategy.(search.Reoptimizer[T])
	first := !resume
	remaining := budget

	for remaining > 0 {
		if tracker != nil && (tracker.Stopped() || tracker.FoundBest()) {
			res.state = stateStoppedByTracker
			return res
		}

		step := m.restartLength
		if step > remaining {
			step = remaining
		}

		var pair search.SolutionCostPair[T]
		var err error
		if first || !canResume {
			pair, err = m.strategy.Optimize(step)
		} else {
			pair, err = reopt.Reoptimize(step)
		}
		first = false

		if err != nil {
			res.state = stateFailed
			res.err = err
			return res
		}

		remaining -= step
		res.consumed += step
		m.totalRunLength.Add(int64(step))
		if lifetime != nil {
			lifetime.Add(int64(step))
		}

		if !res.hasBest || direction.Better(pair.Cost(), res.best.Cost()) {
			res.best = pair
			res.hasBest = true
		}
	}

	res.state = stateStoppedByBudget
	return res
}

// finish turns a restart loop's result into the Optimize/Reoptimize return
// value: the tracker's best when anything was ever reported, otherwise the
// loop's local best.
func (m *Multistarter[T]) finish(res runResult[T]) (search.SolutionCostPair[T], error) {
	var zero search.SolutionCostPair[T]
	if res.state == stateFailed {
		return zero, res.err
	}
	if tracker := m.strategy.ProgressTracker(); tracker != nil {
		if best, ok := tracker.Best(); ok {
			return best, nil
		}
	}
	if res.hasBest {
		return res.best, nil
	}
	return zero, nil
}
