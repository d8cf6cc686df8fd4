package nm

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepFutureMatchesStep(t *testing.T) {
	sx := Simplex{{1, 2}, {3, -1}, {-2, 0.5}}
	p := DefaultParams()

	want, err := Step(sx, sphere, p)
	require.NoError(t, err)

	got, err := StepFuture(sx, Promise(sphere), p)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestStepFutureScoresInitialVerticesConcurrently(t *testing.T) {
	// Every initial future is launched before any is awaited, so with an
	// evaluator that blocks until all N+1 evaluations have started, the
	// step can only finish if the fan-out really is concurrent.
	sx := Simplex{{0, 0}, {1, 0}, {0, 1}}
	var started sync.WaitGroup
	started.Add(len(sx))
	first := int32(len(sx))

	eval := func(v Vertex) (float64, error) {
		if atomic.AddInt32(&first, -1) >= 0 {
			started.Done()
			started.Wait()
		}
		return sphere(v)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		next, err := StepFuture(sx, Promise(eval), DefaultParams())
		assert.NoError(t, err)
		assert.Len(t, next, len(sx))
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("initial scoring deadlocked; futures were awaited sequentially")
	}
}

func TestStepFuturePropagatesFailure(t *testing.T) {
	boom := errors.New("boom")
	eval := func(v Vertex) (float64, error) {
		if v[0] > 5 {
			return 0, boom
		}
		return sphere(v)
	}

	next, err := StepFuture(Simplex{{0}, {10}}, Promise(eval), DefaultParams())
	require.ErrorIs(t, err, boom)
	assert.Nil(t, next)
}

func TestStepCallbackMatchesStep(t *testing.T) {
	sx := Simplex{{1, 2}, {3, -1}, {-2, 0.5}}
	p := DefaultParams()

	want, err := Step(sx, sphere, p)
	require.NoError(t, err)

	// Synchronous callbacks.
	var got Simplex
	var gotErr error
	StepCallback(sx, Completion(sphere), p, func(next Simplex, err error) {
		got, gotErr = next, err
	})
	require.NoError(t, gotErr)
	assert.Equal(t, want, got)

	// Callbacks delivered from another goroutine.
	async := func(v Vertex, done func(float64, error)) {
		go func() {
			w, err := sphere(v)
			done(w, err)
		}()
	}
	ch := make(chan Simplex, 1)
	StepCallback(sx, async, p, func(next Simplex, err error) {
		assert.NoError(t, err)
		ch <- next
	})
	select {
	case got = <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("callback step never completed")
	}
	assert.Equal(t, want, got)
}

func TestStepCallbackInvokesDoneExactlyOnce(t *testing.T) {
	sx := Simplex{{0}, {10}}
	var calls int32
	finished := make(chan struct{})
	StepCallback(sx, Completion(sphere), DefaultParams(), func(Simplex, error) {
		atomic.AddInt32(&calls, 1)
		close(finished)
	})
	<-finished
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestStepCallbackNilDone(t *testing.T) {
	// A nil completion must not panic; a no-op is substituted.
	StepCallback(Simplex{{0}, {10}}, Completion(sphere), DefaultParams(), nil)
}

func TestStepCallbackPropagatesFailure(t *testing.T) {
	boom := errors.New("boom")
	eval := Completion(func(v Vertex) (float64, error) {
		if v[0] > 5 {
			return 0, boom
		}
		return sphere(v)
	})

	var gotErr error
	var got Simplex
	StepCallback(Simplex{{0}, {10}}, eval, DefaultParams(), func(next Simplex, err error) {
		got, gotErr = next, err
	})
	require.ErrorIs(t, gotErr, boom)
	assert.Nil(t, got)
}

func TestAllAdaptersAgreeOverManyIterations(t *testing.T) {
	p := DefaultParams()
	sync1 := Simplex{{3, 4}, {5, 1}, {-2, -6}}
	fut := sync1.Clone()
	cb := sync1.Clone()

	for i := 0; i < 25; i++ {
		var err error
		sync1, err = Step(sync1, sphere, p)
		require.NoError(t, err)

		fut, err = StepFuture(fut, Promise(sphere), p)
		require.NoError(t, err)

		next := make(chan Simplex, 1)
		StepCallback(cb, Completion(sphere), p, func(sx Simplex, err error) {
			require.NoError(t, err)
			next <- sx
		})
		cb = <-next

		require.Equal(t, sync1, fut, "future adapter diverged at iteration %d", i)
		require.Equal(t, sync1, cb, "callback adapter diverged at iteration %d", i)
	}
}
