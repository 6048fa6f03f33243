package search

// SolutionCostPair holds a candidate solution together with its cost.
// Immutable once constructed.
type SolutionCostPair[T any] struct {
	solution T
	cost     float64
}

// NewSolutionCostPair creates a solution/cost pair
func NewSolutionCostPair[T any](solution T, cost float64) SolutionCostPair[T] {
	return SolutionCostPair[T]{solution: solution, cost: cost}
}

// Solution returns the candidate solution
func (p SolutionCostPair[T]) Solution() T {
	return p.solution
}

// Cost returns the cost of the candidate solution
func (p SolutionCostPair[T]) Cost() float64 {
	return p.cost
}
