package nm

import (
	"sync"
	"sync/atomic"
)

// StepCallback runs one iteration against a callback-style evaluator and
// reports through done exactly once, with either the next simplex or an
// error, never both. A nil done gets a no-op substitute.
//
// All N+1 initial evaluations fire before the counting join; whichever
// callback arrives last carries the step into the decision tree, so the
// engine borrows that goroutine for the remaining sequential candidate
// evaluations. For identical inputs and evaluator behavior the result is
// identical to Step's.
func StepCallback(sx Simplex, eval CallbackEvaluator, p Params, done func(Simplex, error)) {
	if done == nil {
		done = func(Simplex, error) {}
	}
	if err := check(sx, p); err != nil {
		done(nil, err)
		return
	}

	n := len(sx)
	sv := make([]scored, n)
	remaining := int32(n)

	var mu sync.Mutex
	var evalErr error

	for i, v := range sx {
		i, v := i, v
		eval(v, func(w float64, err error) {
			mu.Lock()
			if err != nil && evalErr == nil {
				evalErr = err
			}
			sv[i] = scored{v: v, w: w}
			mu.Unlock()

			if atomic.AddInt32(&remaining, -1) != 0 {
				return
			}

			// Join fired: this callback owns the rest of the step.
			mu.Lock()
			err = evalErr
			mu.Unlock()
			if err != nil {
				done(nil, err)
				return
			}
			rank(sv)
			done(decide(sv, awaitCallback(eval), p))
		})
	}
}
