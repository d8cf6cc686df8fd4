package nm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sphere is the canonical convex test objective: sum of squares.
func sphere(v Vertex) (float64, error) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return sum, nil
}

// tableEval scores 1-dimensional vertices from a fixed table, failing the
// test on any unexpected point. Useful for forcing a specific branch.
func tableEval(t *testing.T, table map[float64]float64) Evaluator {
	t.Helper()
	return func(v Vertex) (float64, error) {
		w, ok := table[v[0]]
		if !ok {
			t.Fatalf("unexpected evaluation at %v", v)
		}
		return w, nil
	}
}

func TestStepContraction(t *testing.T) {
	// Vertices [0] and [10] under the sphere: the mirror [-10] scores 100,
	// no better than the worst, so the step contracts to [5].
	sx := Simplex{{0}, {10}}
	next, err := Step(sx, sphere, DefaultParams())
	require.NoError(t, err)

	require.Len(t, next, 2)
	assert.Equal(t, Vertex{0}, next[0])
	assert.Equal(t, Vertex{5}, next[1])
}

func TestStepReflectionAccepted(t *testing.T) {
	// Weights 0, 1, 1: the mirror of the worst lands on weight 0, inside
	// [best, worser] thanks to the inclusive boundaries, and replaces the
	// worst vertex.
	eval := func(v Vertex) (float64, error) {
		return v[0] + v[1], nil
	}
	sx := Simplex{{0, 0}, {1, 0}, {0, 1}}
	next, err := Step(sx, eval, DefaultParams())
	require.NoError(t, err)

	require.Len(t, next, 3)
	assert.Equal(t, Vertex{0, 0}, next[0])
	assert.Equal(t, Vertex{1, 0}, next[1])
	assert.Equal(t, Vertex{1, -1}, next[2])
}

func TestStepExpansion(t *testing.T) {
	// Mirror beats the best; expansion is tried but loses to the mirror.
	sx := Simplex{{4}, {10}}
	next, err := Step(sx, sphere, DefaultParams())
	require.NoError(t, err)

	require.Len(t, next, 2)
	assert.Equal(t, Vertex{4}, next[0])
	assert.Equal(t, Vertex{-2}, next[1])
}

func TestStepExpansionAccepted(t *testing.T) {
	// Table forces: mirror improves on best, and the expansion point
	// improves on the mirror, so the expansion is kept.
	eval := tableEval(t, map[float64]float64{
		0:  10,
		2:  20,
		-2: 5,
		-4: 1,
	})
	sx := Simplex{{0}, {2}}
	next, err := Step(sx, eval, DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, Simplex{{0}, {-4}}, next)
}

func TestStepShrink(t *testing.T) {
	// Mirror and contraction both fail to improve: every vertex except the
	// best is pulled halfway toward it.
	eval := tableEval(t, map[float64]float64{
		0:  0,
		2:  1,
		-2: 5, // mirror, no better than worser
		1:  2, // contraction, no better than worst -> shrink
	})
	sx := Simplex{{0}, {2}}
	next, err := Step(sx, eval, DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, Simplex{{0}, {1}}, next)
}

func TestStepDeterministic(t *testing.T) {
	sx := Simplex{{1, 2}, {3, -1}, {-2, 0.5}}
	p := DefaultParams()

	first, err := Step(sx, sphere, p)
	require.NoError(t, err)
	second, err := Step(sx, sphere, p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestStepKeepsVertexCount(t *testing.T) {
	simplices := []Simplex{
		{{0}, {10}},
		{{0, 0}, {1, 0}, {0, 1}},
		{{1, 1, 1}, {2, 0, 0}, {0, 2, 0}, {0, 0, 2}},
	}
	for _, sx := range simplices {
		next, err := Step(sx, sphere, DefaultParams())
		require.NoError(t, err)
		assert.Len(t, next, len(sx))
	}
}

func TestStepKeepsBestVertex(t *testing.T) {
	// Across many iterations the input's best vertex must survive every
	// non-shrink branch, and a shrink keeps it as the anchor.
	sx := Simplex{{3, 4}, {5, 1}, {-2, -6}}
	for i := 0; i < 50; i++ {
		bestW := -1.0
		var best Vertex
		for _, v := range sx {
			w, err := sphere(v)
			require.NoError(t, err)
			if best == nil || w < bestW {
				best, bestW = v, w
			}
		}

		next, err := Step(sx, sphere, DefaultParams())
		require.NoError(t, err)

		found := false
		for _, v := range next {
			if assert.ObjectsAreEqual(best, v) {
				found = true
				break
			}
		}
		assert.True(t, found, "iteration %d dropped the best vertex %v", i, best)
		sx = next
	}
}

func TestStepPropagatesEvaluatorFailure(t *testing.T) {
	boom := errors.New("boom")
	eval := func(v Vertex) (float64, error) {
		if v[0] < 0 {
			return 0, boom
		}
		return sphere(v)
	}

	// The mirror of [[0],[10]] is [-10], which fails.
	next, err := Step(Simplex{{0}, {10}}, eval, DefaultParams())
	require.ErrorIs(t, err, boom)
	assert.Nil(t, next)
}

func TestStepRejectsMalformedInput(t *testing.T) {
	t.Run("wrong vertex count", func(t *testing.T) {
		_, err := Step(Simplex{{0, 0}, {1, 1}}, sphere, DefaultParams())
		require.Error(t, err)
	})
	t.Run("ragged dimensions", func(t *testing.T) {
		_, err := Step(Simplex{{0}, {1, 2}}, sphere, DefaultParams())
		require.Error(t, err)
	})
	t.Run("bad coefficients", func(t *testing.T) {
		p := DefaultParams()
		p.Alpha = 0
		_, err := Step(Simplex{{0}, {10}}, sphere, p)
		require.Error(t, err)
	})
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	cases := []Params{
		{Alpha: 0, Gamma: 2, Rho: 0.5, Sigma: 0.5},
		{Alpha: 1, Gamma: 1, Rho: 0.5, Sigma: 0.5},
		{Alpha: 1, Gamma: 2, Rho: 0, Sigma: 0.5},
		{Alpha: 1, Gamma: 2, Rho: 0.6, Sigma: 0.5},
	}
	for _, p := range cases {
		assert.Error(t, p.Validate(), "%+v", p)
	}
}

func TestCentroidExcludesWorst(t *testing.T) {
	// N=1 boundary: centroid of everything but the worst is just the best
	// vertex, and worser coincides with best. The same formulas apply.
	sx := Simplex{{6}, {0}}
	next, err := Step(sx, sphere, DefaultParams())
	require.NoError(t, err)

	// mirror of [6] around centroid [0] is [-6]; weight 36 ties the worst,
	// so contraction at [3] (weight 9) wins.
	assert.Equal(t, Simplex{{0}, {3}}, next)
}
