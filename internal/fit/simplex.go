package fit

import (
	"math/rand"

	"github.com/cwbudde/simplexfit/internal/nm"
)

// InitialSimplex builds the N+1 starting vertices for a target: uniform
// random points inside the target's bounds, reproducible from the seed.
func InitialSimplex(t *Target, seed int64) nm.Simplex {
	rng := rand.New(rand.NewSource(seed))
	lower, upper := t.Bounds()

	sx := make(nm.Simplex, t.Dim()+1)
	for i := range sx {
		v := make(nm.Vertex, t.Dim())
		for d := range v {
			v[d] = lower[d] + rng.Float64()*(upper[d]-lower[d])
		}
		sx[i] = v
	}
	return sx
}
