package fit

// Benchmark objectives for comparing engines. Standard test functions;
// both have their minimum at a known point.

// Sphere is sum of squares, minimum 0 at the origin.
func Sphere(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

// Rosenbrock is the classic banana valley, minimum 0 at (1, ..., 1).
func Rosenbrock(x []float64) float64 {
	var sum float64
	for i := 0; i < len(x)-1; i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1 - x[i]
		sum += 100*a*a + b*b
	}
	return sum
}

// Benchmark couples a named objective with its search bounds.
type Benchmark struct {
	Name  string
	Fn    func([]float64) float64
	Lower float64
	Upper float64
}

// Benchmarks returns the standard suite.
func Benchmarks() []Benchmark {
	return []Benchmark{
		{Name: "sphere", Fn: Sphere, Lower: -10, Upper: 10},
		{Name: "rosenbrock", Fn: Rosenbrock, Lower: -5, Upper: 5},
	}
}
