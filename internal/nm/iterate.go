package nm

// Iterator lazily produces successive simplex states. It holds no state
// beyond the current simplex and never terminates on its own: the sequence
// is infinite and the consumer decides when to stop pulling.
type Iterator struct {
	current Simplex
	eval    Evaluator
	params  Params
}

// Iterate returns an infinite iterator over simplex states starting from
// sx. The starting simplex is copied, so the caller may keep mutating its
// own slice.
func Iterate(sx Simplex, eval Evaluator, p Params) *Iterator {
	return &Iterator{current: sx.Clone(), eval: eval, params: p}
}

// Next advances one iteration and returns the new simplex. On evaluator
// failure the iterator's current simplex is left unchanged, so the
// consumer may stop or re-drive it.
func (it *Iterator) Next() (Simplex, error) {
	next, err := Step(it.current, it.eval, it.params)
	if err != nil {
		return nil, err
	}
	it.current = next
	return next, nil
}

// Current returns the simplex the iterator will advance from.
func (it *Iterator) Current() Simplex { return it.current }

// FutureIterator is the future-backed lazy variant: each pull launches the
// initial evaluations through the future adapter, so they run
// concurrently.
type FutureIterator struct {
	current Simplex
	eval    AsyncEvaluator
	params  Params
}

// IterateFuture returns an infinite future-backed iterator starting from
// sx.
func IterateFuture(sx Simplex, eval AsyncEvaluator, p Params) *FutureIterator {
	return &FutureIterator{current: sx.Clone(), eval: eval, params: p}
}

// Next advances one iteration and returns the new simplex. On evaluator
// failure the iterator's current simplex is left unchanged.
func (it *FutureIterator) Next() (Simplex, error) {
	next, err := StepFuture(it.current, it.eval, it.params)
	if err != nil {
		return nil, err
	}
	it.current = next
	return next, nil
}

// Current returns the simplex the iterator will advance from.
func (it *FutureIterator) Current() Simplex { return it.current }
