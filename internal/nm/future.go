package nm

// StepFuture runs one iteration against a future-returning evaluator. All
// N+1 initial evaluations are launched before any is awaited, since the
// objective is usually the dominant cost. The candidate evaluations that
// follow are inherently sequential (each depends on the previous weight)
// and are awaited one at a time.
//
// For identical inputs and evaluator behavior the result is identical to
// Step's.
func StepFuture(sx Simplex, eval AsyncEvaluator, p Params) (Simplex, error) {
	if err := check(sx, p); err != nil {
		return nil, err
	}

	pending := make([]<-chan Result, len(sx))
	for i, v := range sx {
		pending[i] = eval(v)
	}

	sv := make([]scored, len(sx))
	for i, ch := range pending {
		r := <-ch
		if r.Err != nil {
			return nil, r.Err
		}
		sv[i] = scored{v: sx[i], w: r.Weight}
	}
	rank(sv)
	return decide(sv, await(eval), p)
}
