package search

// Strategy is the unit of work driven by the multistart engine. Concrete
// search algorithms (evolutionary loops, annealers, adapters around
// external optimizers) implement it; the engine never looks inside.
//
// Implementations own their random stream and mutable search state. The
// only state a strategy shares with its splits is the immutable problem
// configuration and the attached ProgressTracker.
type Strategy[T any] interface {
	// Optimize runs one fresh search attempt bounded by runLength
	// evaluations and returns the best pair found during this call.
	// Improvements are reported to the attached tracker as a side effect.
	Optimize(runLength int) (SolutionCostPair[T], error)

	// Split returns a new instance with independent mutable and random
	// state, sharing only the immutable configuration and the tracker
	// reference with the receiver.
	Split() Strategy[T]

	// ProgressTracker returns the currently attached tracker, which may
	// be nil for a strategy that was never wired into a session.
	ProgressTracker() *ProgressTracker[T]

	// SetProgressTracker attaches a tracker. A nil argument is ignored
	// and leaves the previously attached tracker unchanged.
	SetProgressTracker(tracker *ProgressTracker[T])
}

// Reoptimizer is a Strategy that can resume from the state left behind by
// its previous Optimize or Reoptimize call. Strategies without this
// capability are driven through Optimize on every restart instead.
type Reoptimizer[T any] interface {
	Strategy[T]

	// Reoptimize runs a search attempt bounded by runLength evaluations,
	// resuming from the receiver's previous call when possible.
	Reoptimize(runLength int) (SolutionCostPair[T], error)
}
