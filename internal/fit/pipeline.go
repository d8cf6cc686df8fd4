package fit

import (
	"context"
	"log/slog"
	"math"

	"github.com/cwbudde/simplexfit/internal/nm"
	"github.com/cwbudde/simplexfit/internal/opt"
)

// OptimizationResult holds the output of an optimization run
type OptimizationResult struct {
	BestParams  []float64
	BestCost    float64
	InitialCost float64
	Iterations  int
	BestGuess   string
}

// Observer is invoked after every iteration with the running best and the
// full simplex, so callers can stream progress or checkpoint exact state.
type Observer func(iteration int, best nm.Vertex, bestCost float64, sx nm.Simplex)

// bestOf scores every vertex through eval and returns the lowest.
func bestOf(sx nm.Simplex, eval nm.Evaluator) (nm.Vertex, float64, error) {
	var best nm.Vertex
	bestW := math.Inf(1)
	for _, v := range sx {
		w, err := eval(v)
		if err != nil {
			return nil, 0, err
		}
		if w < bestW {
			best, bestW = v, w
		}
	}
	return best, bestW, nil
}

// Optimize drives the lazy simplex iterator against the target for at most
// iters iterations, starting from the given simplex (resume passes a
// checkpointed one). The objective is memoized, so surviving vertices are
// scored once per run. Returns the result and the final simplex.
func Optimize(ctx context.Context, target *Target, start nm.Simplex, params nm.Params, iters int, obs Observer) (*OptimizationResult, nm.Simplex, error) {
	slog.Info("Starting phrase optimization", "dim", target.Dim(), "iters", iters)

	memo := nm.NewMemo(target.Weight)
	_, initialCost, err := bestOf(start, memo.Weight)
	if err != nil {
		return nil, nil, err
	}

	it := nm.Iterate(start, memo.Weight, params)
	completed := 0
	for i := 0; i < iters; i++ {
		select {
		case <-ctx.Done():
			slog.Info("Optimization cancelled", "iteration", completed)
			return nil, nil, ctx.Err()
		default:
		}

		sx, err := it.Next()
		if err != nil {
			return nil, nil, err
		}
		completed++

		if obs != nil {
			best, bestW, err := bestOf(sx, memo.Weight)
			if err != nil {
				return nil, nil, err
			}
			obs(completed, best, bestW, sx)
		}
	}

	final := it.Current()
	best, bestCost, err := bestOf(final, memo.Weight)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("Phrase optimization complete",
		"initial_cost", initialCost,
		"best_cost", bestCost,
		"best_guess", target.Decode(best),
	)

	return &OptimizationResult{
		BestParams:  best.Clone(),
		BestCost:    bestCost,
		InitialCost: initialCost,
		Iterations:  completed,
		BestGuess:   target.Decode(best),
	}, final, nil
}

// OptimizeWith runs an arbitrary engine against the target through the
// generic Optimizer interface. Used for the mayfly engine and benchmarks;
// it has no per-iteration hooks.
func OptimizeWith(optimizer opt.Optimizer, target *Target) *OptimizationResult {
	slog.Info("Starting phrase optimization", "dim", target.Dim())

	lower, upper := target.Bounds()
	initialCost := target.Cost(lower) // worst corner as a baseline

	best, bestCost := optimizer.Run(target.Cost, lower, upper, target.Dim())

	slog.Info("Phrase optimization complete",
		"initial_cost", initialCost,
		"best_cost", bestCost,
		"best_guess", target.Decode(best),
	)

	return &OptimizationResult{
		BestParams:  best,
		BestCost:    bestCost,
		InitialCost: initialCost,
		BestGuess:   target.Decode(best),
	}
}
