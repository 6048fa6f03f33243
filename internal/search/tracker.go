package search

import (
	"sync"
	"sync/atomic"
)

// Direction is the cost ordering for one search session. It is fixed when
// the tracker is constructed and never changes mid-session.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

// Better reports whether cost a is strictly better than cost b under d.
func (d Direction) Better(a, b float64) bool {
	if d == Maximize {
		return a > b
	}
	return a < b
}

func (d Direction) String() string {
	if d == Maximize {
		return "maximize"
	}
	return "minimize"
}

// ProgressTracker is the shared best-result register for one multistart
// session. Every split belonging to the session references the same
// instance. All operations are non-blocking: the compare-and-replace in
// Update is one indivisible critical section, and the stop / found-best
// flags are one-way latches that never reset for the session's lifetime.
type ProgressTracker[T any] struct {
	mu        sync.Mutex
	direction Direction
	hasBest   bool
	best      T
	bestCost  float64
	found     atomic.Bool
	stopped   atomic.Bool
}

// NewProgressTracker creates a tracker with the given cost ordering
func NewProgressTracker[T any](direction Direction) *ProgressTracker[T] {
	return &ProgressTracker[T]{direction: direction}
}

// Direction returns the session's cost ordering
func (t *ProgressTracker[T]) Direction() Direction {
	return t.direction
}

// Update replaces the tracked best if cost is strictly better under the
// session ordering. The compare and the replace happen as one atomic unit,
// so concurrent updates never lose a strictly better result. Returns true
// if the candidate was accepted as the new best.
func (t *ProgressTracker[T]) Update(solution T, cost float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hasBest && !t.direction.Better(cost, t.bestCost) {
		return false
	}

	t.best = solution
	t.bestCost = cost
	t.hasBest = true
	return true
}

// Best returns a snapshot of the current best pair. The second result is
// false until the first Update.
func (t *ProgressTracker[T]) Best() (SolutionCostPair[T], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.hasBest {
		var zero SolutionCostPair[T]
		return zero, false
	}
	return NewSolutionCostPair(t.best, t.bestCost), true
}

// Cost returns a snapshot of the current best cost. The second result is
// false until the first Update.
func (t *ProgressTracker[T]) Cost() (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bestCost, t.hasBest
}

// MarkFoundBest latches the problem-specific "known optimal reached"
// condition. Once set it never resets.
func (t *ProgressTracker[T]) MarkFoundBest() {
	t.found.Store(true)
}

// FoundBest reports whether a participant declared the known optimal reached
func (t *ProgressTracker[T]) FoundBest() bool {
	return t.found.Load()
}

// Stop latches the cooperative cancellation signal. Workers observe it
// between restarts; once set it never resets.
func (t *ProgressTracker[T]) Stop() {
	t.stopped.Store(true)
}

// Stopped reports whether the session was asked to stop
func (t *ProgressTracker[T]) Stopped() bool {
	return t.stopped.Load()
}
