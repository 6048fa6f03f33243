package multistart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/multistart/internal/search"
)

// ParallelMultistarter drives a pool of pre-split strategies, one worker
// goroutine per pooled instance, all sharing one ProgressTracker. The pool
// is created once at construction and reused across calls, so an instance
// stays valid for repeated Optimize/Reoptimize invocations.
//
// The orchestrator never mutates solution state itself; workers report
// improvements through the shared tracker, and the tracker is the only
// mutable state shared between them.
type ParallelMultistarter[T any] struct {
	pool           []*Multistarter[T]
	tracker        *search.ProgressTracker[T]
	totalRunLength atomic.Int64
}

// NewParallelMultistarter builds an orchestrator whose pool holds the given
// number of independent splits of strategy, each restarted with
// restartLength evaluation slices.
// The passed strategy becomes the first pool member; the remaining members
// are splits of it. All pool members share the strategy's tracker, or a
// fresh minimizing tracker when the strategy has none attached.
func NewParallelMultistarter[T any](strategy search.Strategy[T], restartLength, threads int) (*ParallelMultistarter[T], error) {
	if strategy == nil {
		return nil, &search.ConfigurationError{Reason: "strategy is required"}
	}
	if threads < 1 {
		return nil, &search.ConfigurationError{Reason: fmt.Sprintf("parallelism must be positive, got %d", threads)}
	}

	tracker := strategy.ProgressTracker()
	if tracker == nil {
		tracker = search.NewProgressTracker[T](search.Minimize)
		strategy.SetProgressTracker(tracker)
	}

	pool := make([]*Multistarter[T], threads)
	first, err := NewMultistarter(strategy, restartLength)
	if err != nil {
		return nil, err
	}
	pool[0] = first
	for i := 1; i < threads; i++ {
		pool[i], err = NewMultistarter(strategy.Split(), restartLength)
		if err != nil {
			return nil, err
		}
	}

	return &ParallelMultistarter[T]{pool: pool, tracker: tracker}, nil
}

// Parallelism returns the worker pool size
func (p *ParallelMultistarter[T]) Parallelism() int {
	return len(p.pool)
}

// TotalRunLength returns the cumulative run length consumed across the
// orchestrator's lifetime. Zero immediately after construction.
func (p *ParallelMultistarter[T]) TotalRunLength() int64 {
	return p.totalRunLength.Load()
}

// ProgressTracker returns the shared session tracker
func (p *ParallelMultistarter[T]) ProgressTracker() *search.ProgressTracker[T] {
	return p.tracker
}

// SetProgressTracker replaces the shared tracker for the whole pool.
// A nil argument is ignored.
func (p *ParallelMultistarter[T]) SetProgressTracker(tracker *search.ProgressTracker[T]) {
	if tracker == nil {
		return
	}
	p.tracker = tracker
	for _, m := range p.pool {
		m.SetProgressTracker(tracker)
	}
}

// Split returns a new orchestrator wrapping fresh splits of every pooled
// strategy, wired to a fresh tracker with the same cost ordering. This lets
// an orchestrator nest as a building block inside a larger composite search.
func (p *ParallelMultistarter[T]) Split() *ParallelMultistarter[T] {
	tracker := search.NewProgressTracker[T](p.tracker.Direction())
	pool := make([]*Multistarter[T], len(p.pool))
	for i, m := range p.pool {
		s := m.strategy.Split()
		s.SetProgressTracker(tracker)
		pool[i] = &Multistarter[T]{strategy: s, restartLength: m.restartLength}
	}
	return &ParallelMultistarter[T]{pool: pool, tracker: tracker}
}

// Optimize partitions totalRunLength into near-equal per-worker shares,
// runs every pooled strategy's restart loop on its own goroutine, joins all
// workers, and returns the best observed pair. Cancelling ctx stops the
// session cooperatively: the tracker's stop latch is set, workers wind down
// at their next restart boundary, and the call returns the context error
// after every worker has been drained.
func (p *ParallelMultistarter[T]) Optimize(ctx context.Context, totalRunLength int) (search.SolutionCostPair[T], error) {
	return p.runParallel(ctx, totalRunLength, false)
}

// Reoptimize is like Optimize but resumes every pooled strategy from its
// prior state when the strategy supports resumption.
func (p *ParallelMultistarter[T]) Reoptimize(ctx context.Context, totalRunLength int) (search.SolutionCostPair[T], error) {
	return p.runParallel(ctx, totalRunLength, true)
}

func (p *ParallelMultistarter[T]) runParallel(ctx context.Context, total int, resume bool) (search.SolutionCostPair[T], error) {
	var zero search.SolutionCostPair[T]
	if total < 1 {
		return zero, &search.ConfigurationError{Reason: fmt.Sprintf("run length must be positive, got %d", total)}
	}

	if err := ctx.Err(); err != nil {
		p.tracker.Stop()
		return zero, fmt.Errorf("multistart interrupted: %w", err)
	}

	k := len(p.pool)
	base := total / k
	rem := total % k

	slog.Debug("Starting parallel multistart",
		"workers", k,
		"total_run_length", total,
		"resume", resume,
	)

	// External cancellation maps onto the tracker's cooperative stop latch.
	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			p.tracker.Stop()
		case <-watchDone:
		}
	}()

	results := make([]runResult[T], k)
	var wg sync.WaitGroup
	for i := range p.pool {
		share := base
		if i < rem {
			share++
		}
		if share == 0 {
			results[i] = runResult[T]{state: stateStoppedByBudget}
			continue
		}
		wg.Add(1)
		go func(i, share int) {
			defer wg.Done()
			results[i] = p.pool[i].run(share, resume, &p.totalRunLength)
		}(i, share)
	}

	// Every worker is joined before returning, also on failure and on
	// cancellation, so the instance stays reusable.
	wg.Wait()
	close(watchDone)

	var consumed int64
	for i := range results {
		consumed += int64(results[i].consumed)
	}

	if err := ctx.Err(); err != nil {
		slog.Warn("Parallel multistart interrupted", "consumed", consumed, "error", err)
		return zero, fmt.Errorf("multistart interrupted: %w", err)
	}

	pair, err := p.aggregate(results)
	if err != nil {
		return zero, err
	}

	slog.Debug("Parallel multistart complete",
		"workers", k,
		"consumed", consumed,
		"best_cost", pair.Cost(),
	)
	return pair, nil
}

// aggregate picks the session result: the tracker's best when any worker
// ever improved it, otherwise the best worker-local result. Failed workers
// are excluded unless every worker that ran failed, in which case the first
// captured failure surfaces. Workers that never ran (a zero share when the
// budget is smaller than the pool, or a tracker stopped before their first
// restart) count as neither succeeded nor failed.
func (p *ParallelMultistarter[T]) aggregate(results []runResult[T]) (search.SolutionCostPair[T], error) {
	var zero search.SolutionCostPair[T]
	direction := p.tracker.Direction()

	var best search.SolutionCostPair[T]
	hasBest := false
	failures := 0
	successes := 0
	var firstErr error

	for i := range results {
		res := &results[i]
		if res.state == stateFailed {
			failures++
			if firstErr == nil {
				firstErr = res.err
			}
			slog.Warn("Multistart worker failed", "worker", i, "error", res.err)
			continue
		}
		if res.consumed == 0 {
			continue
		}
		successes++
		if res.hasBest && (!hasBest || direction.Better(res.best.Cost(), best.Cost())) {
			best = res.best
			hasBest = true
		}
	}

	if failures > 0 && successes == 0 {
		return zero, fmt.Errorf("all %d workers that ran failed: %w", failures, firstErr)
	}

	if pair, ok := p.tracker.Best(); ok {
		return pair, nil
	}
	if hasBest {
		return best, nil
	}
	return zero, nil
}
