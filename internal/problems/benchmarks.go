package problems

import (
	"math"
	"strings"
)

// Benchmark is a boxed continuous minimization problem with a known
// optimum, used to exercise the multistart engine end to end.
type Benchmark struct {
	Name        string
	Eval        func([]float64) float64
	Lower       float64
	Upper       float64
	OptimalCost float64
}

// Sphere computes f(x) = sum(x_i^2), minimum 0 at the origin
func Sphere(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

// Rastrigin computes the highly multimodal Rastrigin function,
// minimum 0 at the origin
func Rastrigin(x []float64) float64 {
	sum := 10.0 * float64(len(x))
	for _, v := range x {
		sum += v*v - 10.0*math.Cos(2.0*math.Pi*v)
	}
	return sum
}

// Rosenbrock computes the banana-valley Rosenbrock function,
// minimum 0 at (1, ..., 1)
func Rosenbrock(x []float64) float64 {
	var sum float64
	for i := 0; i+1 < len(x); i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1.0 - x[i]
		sum += 100.0*a*a + b*b
	}
	return sum
}

var benchmarks = []Benchmark{
	{Name: "sphere", Eval: Sphere, Lower: -10, Upper: 10, OptimalCost: 0},
	{Name: "rastrigin", Eval: Rastrigin, Lower: -5.12, Upper: 5.12, OptimalCost: 0},
	{Name: "rosenbrock", Eval: Rosenbrock, Lower: -5, Upper: 10, OptimalCost: 0},
}

// ByName looks up a benchmark by its lower-case name
func ByName(name string) (Benchmark, bool) {
	name = strings.ToLower(name)
	for _, b := range benchmarks {
		if b.Name == name {
			return b, true
		}
	}
	return Benchmark{}, false
}

// Names lists the available benchmark names
func Names() []string {
	names := make([]string, len(benchmarks))
	for i, b := range benchmarks {
		names[i] = b.Name
	}
	return names
}
