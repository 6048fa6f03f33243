package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/cwbudde/multistart/internal/problems"
	"github.com/cwbudde/multistart/internal/session"
	"github.com/spf13/cobra"
)

var (
	problem       string
	dim           int
	threads       int
	budget        int
	restartLength int
	popSize       int
	seed          int64
	watch         bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a parallel multistart session on a benchmark problem",
	Long: `Runs a parallel multistart optimization of a built-in benchmark
function and prints the best result found.`,
	RunE: runSession,
}

func init() {
	runCmd.Flags().StringVar(&problem, "problem", "sphere", "Benchmark problem: "+strings.Join(problems.Names(), ", "))
	runCmd.Flags().IntVar(&dim, "dim", 10, "Problem dimension")
	runCmd.Flags().IntVar(&threads, "threads", 4, "Number of parallel workers")
	runCmd.Flags().IntVar(&budget, "budget", 200000, "Total run length (problem evaluations)")
	runCmd.Flags().IntVar(&restartLength, "restart", 5000, "Run length per restart")
	runCmd.Flags().IntVar(&popSize, "pop", 30, "Population size per restart")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	runCmd.Flags().BoolVar(&watch, "watch", false, "Print progress events while the session runs")

	rootCmd.AddCommand(runCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	manager := session.NewManager()
	sess := manager.Create(session.Config{
		Problem:        problem,
		Dim:            dim,
		Threads:        threads,
		RestartLength:  restartLength,
		TotalRunLength: budget,
		PopSize:        popSize,
		Seed:           seed,
	})

	slog.Info("Starting run", "session_id", sess.ID, "problem", problem, "threads", threads, "budget", budget)

	// Ctrl-C stops the session cooperatively at restart boundaries
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var watchDone chan struct{}
	if watch {
		events := manager.Broadcaster().Subscribe(sess.ID)
		watchDone = make(chan struct{})
		go func() {
			defer close(watchDone)
			for event := range events {
				fmt.Printf("%s  cost=%.6g  consumed=%d\n", event.State, event.BestCost, event.Consumed)
			}
		}()
	}

	start := time.Now()
	err := manager.Run(ctx, sess.ID)
	elapsed := time.Since(start)

	if watch {
		manager.Broadcaster().Cleanup(sess.ID)
		<-watchDone
	}

	if err != nil {
		return fmt.Errorf("session failed: %w", err)
	}

	final, _ := manager.Get(sess.ID)
	fmt.Printf("Best cost %.6g after %d evaluations in %s (%d workers)\n",
		final.BestCost, final.Consumed, elapsed.Round(time.Millisecond), threads)

	return nil
}
