package opt

import (
	"fmt"

	"github.com/cwbudde/simplexfit/internal/nm"
)

// Optimizer defines an optimization algorithm interface
type Optimizer interface {
	// Run executes the optimization
	// eval: objective function to minimize
	// lower, upper: parameter bounds
	// dim: dimensionality of parameter space
	// Returns: best parameters and best cost
	Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64)
}

// Select builds the optimizer named by the CLI/server config.
// Known names: "nelder-mead", "mayfly".
func Select(name string, maxIters, popSize int, seed int64, params nm.Params) (Optimizer, error) {
	switch name {
	case "nelder-mead":
		return NewNelderMead(maxIters, seed, params), nil
	case "mayfly":
		return NewMayfly(maxIters, popSize, seed), nil
	default:
		return nil, fmt.Errorf("unknown optimizer: %s", name)
	}
}
