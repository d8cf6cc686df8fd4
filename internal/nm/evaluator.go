package nm

// Result is the outcome of one asynchronous weight evaluation.
type Result struct {
	Weight float64
	Err    error
}

// Evaluator produces the weight of a vertex; lower is better. Within one
// optimization run an evaluator must be deterministic for a given vertex,
// which is what makes memoization valid.
type Evaluator func(Vertex) (float64, error)

// AsyncEvaluator starts an evaluation and returns a channel that delivers
// exactly one Result. Implementations should return a buffered channel so
// an abandoned future does not strand its sender.
type AsyncEvaluator func(Vertex) <-chan Result

// CallbackEvaluator reports its result through done, which it must invoke
// exactly once, with either a weight or an error, never both.
type CallbackEvaluator func(v Vertex, done func(weight float64, err error))

// Promise lifts a synchronous evaluator into the future convention. Each
// call evaluates on its own goroutine.
func Promise(eval Evaluator) AsyncEvaluator {
	return func(v Vertex) <-chan Result {
		ch := make(chan Result, 1)
		go func() {
			w, err := eval(v)
			ch <- Result{Weight: w, Err: err}
			close(ch)
		}()
		return ch
	}
}

// Completion lifts a synchronous evaluator into the callback convention.
// The callback fires on the caller's goroutine before Completion returns.
func Completion(eval Evaluator) CallbackEvaluator {
	return func(v Vertex, done func(float64, error)) {
		done(eval(v))
	}
}

// await turns a future-returning evaluator back into a blocking one for
// the strictly sequential candidate evaluations inside a step.
func await(eval AsyncEvaluator) Evaluator {
	return func(v Vertex) (float64, error) {
		r := <-eval(v)
		return r.Weight, r.Err
	}
}

// awaitCallback blocks until a single callback completion arrives. The
// buffered channel keeps evaluators that invoke done synchronously from
// deadlocking.
func awaitCallback(eval CallbackEvaluator) Evaluator {
	return func(v Vertex) (float64, error) {
		ch := make(chan Result, 1)
		eval(v, func(w float64, err error) {
			ch <- Result{Weight: w, Err: err}
		})
		r := <-ch
		return r.Weight, r.Err
	}
}
