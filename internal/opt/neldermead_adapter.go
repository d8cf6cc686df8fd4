package opt

import (
	"math"
	"math/rand"

	"github.com/cwbudde/simplexfit/internal/nm"
)

// NelderMeadAdapter drives the simplex engine for a fixed number of
// iterations from a seeded random initial simplex inside the bounds. The
// raw objective is wrapped in a memo so vertices that survive an iteration
// are never scored twice.
type NelderMeadAdapter struct {
	maxIters int
	seed     int64
	params   nm.Params
}

// NewNelderMead creates a new Nelder-Mead optimizer adapter.
func NewNelderMead(maxIters int, seed int64, params nm.Params) Optimizer {
	return &NelderMeadAdapter{
		maxIters: maxIters,
		seed:     seed,
		params:   params,
	}
}

// Run executes the optimization and returns the best vertex of the final
// simplex together with its cost.
func (a *NelderMeadAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64) {
	rng := rand.New(rand.NewSource(a.seed))

	sx := make(nm.Simplex, dim+1)
	for i := range sx {
		v := make(nm.Vertex, dim)
		for d := 0; d < dim; d++ {
			v[d] = lower[d] + rng.Float64()*(upper[d]-lower[d])
		}
		sx[i] = v
	}

	memo := nm.NewMemo(func(v nm.Vertex) (float64, error) {
		return eval(v), nil
	})

	it := nm.Iterate(sx, memo.Weight, a.params)
	for i := 0; i < a.maxIters; i++ {
		if _, err := it.Next(); err != nil {
			// The wrapped objective cannot fail; only a malformed simplex
			// gets here, and the initial one is well-formed.
			break
		}
	}

	var best nm.Vertex
	bestCost := math.Inf(1)
	for _, v := range it.Current() {
		w, err := memo.Weight(v)
		if err != nil {
			continue
		}
		if w < bestCost {
			best, bestCost = v, w
		}
	}
	return best.Clone(), bestCost
}
