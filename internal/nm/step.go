package nm

import "sort"

// scored couples a vertex with its evaluated weight for ranking.
type scored struct {
	v Vertex
	w float64
}

// rank sorts ascending by weight. The sort is stable so tied weights keep
// their input order and every scheduling adapter ranks identically.
func rank(sv []scored) {
	sort.SliceStable(sv, func(i, j int) bool { return sv[i].w < sv[j].w })
}

// decide applies one reflect/expand/contract/shrink transition to a ranked
// simplex. ranked must be sorted ascending by weight; eval is consulted
// only for the candidate points, in a fixed order: the mirror first, then
// at most one of expansion or contraction. Every scheduling adapter
// funnels into this one function, so their transitions cannot drift apart.
//
// The comparison operators are deliberate: the mirror is accepted on
// best <= mirror <= worser (ties included), expansion and contraction are
// taken only on strict improvement. Degenerate and tied simplices depend
// on these exact boundaries.
func decide(ranked []scored, eval Evaluator, p Params) (Simplex, error) {
	n := len(ranked)
	best := ranked[0]
	worser := ranked[n-2] // second worst; coincides with best when n == 2
	worst := ranked[n-1]

	rest := make([]Vertex, n-1)
	for i := 0; i < n-1; i++ {
		rest[i] = ranked[i].v
	}
	cen := Centroid(rest)

	mirror := cen.Add(cen.Sub(worst.v).Scale(p.Alpha))
	mw, err := eval(mirror)
	if err != nil {
		return nil, err
	}

	switch {
	case best.w <= mw && mw <= worser.w:
		return replaceWorst(ranked, mirror), nil

	case mw < best.w:
		expansion := cen.Add(mirror.Sub(cen).Scale(p.Gamma))
		ew, err := eval(expansion)
		if err != nil {
			return nil, err
		}
		if ew < mw {
			return replaceWorst(ranked, expansion), nil
		}
		return replaceWorst(ranked, mirror), nil

	default:
		contraction := cen.Add(worst.v.Sub(cen).Scale(p.Rho))
		cw, err := eval(contraction)
		if err != nil {
			return nil, err
		}
		if cw < worst.w {
			return replaceWorst(ranked, contraction), nil
		}
		return shrinkToward(ranked, p.Sigma), nil
	}
}

// replaceWorst rebuilds the simplex with the worst-ranked vertex swapped
// for the accepted candidate.
func replaceWorst(ranked []scored, v Vertex) Simplex {
	out := make(Simplex, len(ranked))
	for i := 0; i < len(ranked)-1; i++ {
		out[i] = ranked[i].v
	}
	out[len(ranked)-1] = v
	return out
}

// shrinkToward pulls every vertex except the best toward the best:
// best + sigma·(v - best). The best vertex survives unchanged as the
// anchor.
func shrinkToward(ranked []scored, sigma float64) Simplex {
	best := ranked[0].v
	out := make(Simplex, len(ranked))
	out[0] = best
	for i := 1; i < len(ranked); i++ {
		out[i] = best.Add(ranked[i].v.Sub(best).Scale(sigma))
	}
	return out
}

// Step runs one synchronous Nelder–Mead iteration: score every vertex,
// rank, then reflect/expand/contract/shrink. The returned simplex always
// has the same vertex count as the input; on evaluator failure no partial
// simplex is returned.
func Step(sx Simplex, eval Evaluator, p Params) (Simplex, error) {
	if err := check(sx, p); err != nil {
		return nil, err
	}
	sv := make([]scored, len(sx))
	for i, v := range sx {
		w, err := eval(v)
		if err != nil {
			return nil, err
		}
		sv[i] = scored{v: v, w: w}
	}
	rank(sv)
	return decide(sv, eval, p)
}
