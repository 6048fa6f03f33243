package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cwbudde/multistart/internal/multistart"
	"github.com/cwbudde/multistart/internal/opt"
	"github.com/cwbudde/multistart/internal/problems"
	"github.com/cwbudde/multistart/internal/search"
)

// Run executes a session to completion on the calling goroutine. Callers
// wanting a background session launch it with `go m.Run(...)` and follow
// progress through the broadcaster. Cancelling ctx, or calling Cancel on
// the manager, stops the session cooperatively at restart boundaries.
func (m *Manager) Run(ctx context.Context, id string) error {
	sess, exists := m.Get(id)
	if !exists {
		return fmt.Errorf("session not found: %s", id)
	}
	cfg := sess.Config

	bench, ok := problems.ByName(cfg.Problem)
	if !ok {
		err := fmt.Errorf("unknown problem %q, want one of: %s", cfg.Problem, strings.Join(problems.Names(), ", "))
		m.markFailed(id, err)
		return err
	}

	strategy, err := opt.NewMayflyStrategy(bench.Eval, cfg.Dim, cfg.PopSize, bench.Lower, bench.Upper, cfg.Seed)
	if err != nil {
		m.markFailed(id, err)
		return err
	}

	tracker := search.NewProgressTracker[[]float64](search.Minimize)
	strategy.SetProgressTracker(tracker)

	engine, err := multistart.NewParallelMultistarter[[]float64](strategy, cfg.RestartLength, cfg.Threads)
	if err != nil {
		m.markFailed(id, err)
		return err
	}

	m.Update(id, func(s *Session) {
		s.State = StateRunning
		s.stop = tracker.Stop
	})

	slog.Info("Starting session",
		"session_id", id,
		"problem", cfg.Problem,
		"dim", cfg.Dim,
		"threads", cfg.Threads,
		"total_run_length", cfg.TotalRunLength,
	)

	progressDone := make(chan struct{})
	go m.monitorProgress(ctx, id, tracker, engine, progressDone)

	start := time.Now()
	result, err := engine.Optimize(ctx, cfg.TotalRunLength)
	close(progressDone)
	elapsed := time.Since(start)

	endTime := time.Now()
	consumed := engine.TotalRunLength()

	if err != nil {
		if ctx.Err() != nil || tracker.Stopped() {
			m.Update(id, func(s *Session) {
				s.State = StateCancelled
				s.Consumed = consumed
				s.EndTime = &endTime
				s.stop = nil
			})
			slog.Info("Session cancelled", "session_id", id, "consumed", consumed)
			return err
		}
		m.markFailed(id, err)
		return err
	}

	m.Update(id, func(s *Session) {
		s.State = StateCompleted
		s.BestSolution = result.Solution()
		s.BestCost = result.Cost()
		s.Consumed = consumed
		s.EndTime = &endTime
		s.stop = nil
	})

	slog.Info("Session completed",
		"session_id", id,
		"elapsed", elapsed,
		"best_cost", result.Cost(),
		"consumed", consumed,
	)

	m.broadcaster.Broadcast(ProgressEvent{
		SessionID: id,
		State:     StateCompleted,
		BestCost:  result.Cost(),
		Consumed:  consumed,
		Timestamp: time.Now(),
	})

	return nil
}

// monitorProgress periodically publishes the tracker's best and the
// engine's consumed run length while a session runs
func (m *Manager) monitorProgress(ctx context.Context, id string, tracker *search.ProgressTracker[[]float64], engine *multistart.ParallelMultistarter[[]float64], done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Throttle to 2 updates per second
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			cost, ok := tracker.Cost()
			if !ok {
				continue
			}
			consumed := engine.TotalRunLength()

			m.Update(id, func(s *Session) {
				s.BestCost = cost
				s.Consumed = consumed
			})

			m.broadcaster.Broadcast(ProgressEvent{
				SessionID: id,
				State:     StateRunning,
				BestCost:  cost,
				Consumed:  consumed,
				Timestamp: time.Now(),
			})
		}
	}
}

// markFailed marks a session as failed with an error message
func (m *Manager) markFailed(id string, err error) {
	endTime := time.Now()
	m.Update(id, func(s *Session) {
		s.State = StateFailed
		s.Error = err.Error()
		s.EndTime = &endTime
		s.stop = nil
	})
	slog.Error("Session failed", "session_id", id, "error", err)
}
