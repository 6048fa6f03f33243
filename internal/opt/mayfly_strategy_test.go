package opt

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/multistart/internal/problems"
	"github.com/cwbudde/multistart/internal/search"
)

func TestNewMayflyStrategy_ConfigurationErrors(t *testing.T) {
	cases := []struct {
		name    string
		eval    func([]float64) float64
		dim     int
		popSize int
		lower   float64
		upper   float64
	}{
		{"nil objective", nil, 3, 20, -10, 10},
		{"zero dimension", problems.Sphere, 0, 20, -10, 10},
		{"population too small", problems.Sphere, 3, 10, -10, 10},
		{"inverted bounds", problems.Sphere, 3, 20, 10, -10},
		{"empty bounds", problems.Sphere, 3, 20, 5, 5},
	}

	for _, tc := range cases {
		_, err := NewMayflyStrategy(tc.eval, tc.dim, tc.popSize, tc.lower, tc.upper, 42)
		if !errors.Is(err, &search.ConfigurationError{}) {
			t.Errorf("%s: expected configuration error, got %v", tc.name, err)
		}
	}
}

func TestMayflyStrategyOnSphere(t *testing.T) {
	strategy, err := NewMayflyStrategy(problems.Sphere, 3, 20, -10, 10, 42)
	if err != nil {
		t.Fatalf("NewMayflyStrategy failed: %v", err)
	}

	// 2000 evaluations with a population of 20 is 100 mayfly iterations
	pair, err := strategy.Optimize(2000)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if len(pair.Solution()) != 3 {
		t.Fatalf("Expected 3 parameters, got %d", len(pair.Solution()))
	}

	// Should converge close to zero
	if pair.Cost() > 0.1 {
		t.Errorf("Expected cost near 0, got %f", pair.Cost())
	}
	for i, v := range pair.Solution() {
		if math.Abs(v) > 1.0 {
			t.Errorf("Parameter %d = %f, expected near 0", i, v)
		}
	}
}

func TestMayflyStrategy_Deterministic(t *testing.T) {
	run := func() float64 {
		strategy, err := NewMayflyStrategy(problems.Sphere, 2, 20, -5, 5, 123)
		if err != nil {
			t.Fatalf("NewMayflyStrategy failed: %v", err)
		}
		pair, err := strategy.Optimize(1000)
		if err != nil {
			t.Fatalf("Optimize failed: %v", err)
		}
		return pair.Cost()
	}

	if cost1, cost2 := run(), run(); cost1 != cost2 {
		t.Errorf("Non-deterministic: cost1=%f, cost2=%f", cost1, cost2)
	}
}

func TestMayflyStrategy_ReportsToTracker(t *testing.T) {
	strategy, err := NewMayflyStrategy(problems.Sphere, 2, 20, -5, 5, 42)
	if err != nil {
		t.Fatalf("NewMayflyStrategy failed: %v", err)
	}

	tracker := search.NewProgressTracker[[]float64](search.Minimize)
	strategy.SetProgressTracker(tracker)

	pair, err := strategy.Optimize(1000)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	cost, ok := tracker.Cost()
	if !ok {
		t.Fatal("Tracker should have received the restart's best")
	}
	if cost != pair.Cost() {
		t.Errorf("Tracker cost %f should match returned cost %f", cost, pair.Cost())
	}
}

func TestMayflyStrategy_SplitIndependence(t *testing.T) {
	strategy, err := NewMayflyStrategy(problems.Sphere, 2, 20, -5, 5, 42)
	if err != nil {
		t.Fatalf("NewMayflyStrategy failed: %v", err)
	}
	tracker := search.NewProgressTracker[[]float64](search.Minimize)
	strategy.SetProgressTracker(tracker)

	split := strategy.Split().(*MayflyStrategy)

	if split == strategy {
		t.Fatal("Split must be a new instance")
	}
	if split.ProgressTracker() != tracker {
		t.Error("Split should share the tracker reference")
	}
	if split.rng == strategy.rng {
		t.Error("Split must own an independent random stream")
	}

	// Derivation is deterministic: splitting twice from identically seeded
	// parents yields identically seeded children.
	other, _ := NewMayflyStrategy(problems.Sphere, 2, 20, -5, 5, 42)
	otherSplit := other.Split().(*MayflyStrategy)
	if split.rng.Int63() != otherSplit.rng.Int63() {
		t.Error("Split streams should derive deterministically from the parent seed")
	}
}

func TestMayflyStrategy_SetTrackerNilIgnored(t *testing.T) {
	strategy, _ := NewMayflyStrategy(problems.Sphere, 2, 20, -5, 5, 42)
	tracker := search.NewProgressTracker[[]float64](search.Minimize)
	strategy.SetProgressTracker(tracker)

	strategy.SetProgressTracker(nil)
	if strategy.ProgressTracker() != tracker {
		t.Error("Nil tracker must leave the attached tracker unchanged")
	}
}

func TestMayflyStrategy_MinimumOneIteration(t *testing.T) {
	strategy, _ := NewMayflyStrategy(problems.Sphere, 2, 20, -5, 5, 42)

	// A run length below the population size still runs one iteration
	pair, err := strategy.Optimize(5)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if len(pair.Solution()) != 2 {
		t.Errorf("Expected a 2-dimensional result, got %d", len(pair.Solution()))
	}
}
