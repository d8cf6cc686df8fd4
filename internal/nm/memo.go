package nm

import (
	"bytes"
	"encoding/binary"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// canonicalKey serializes a vertex for cache lookup: the IEEE-754 bit
// pattern of every coordinate in order. Bit-identical vertices encode
// identically; there is no epsilon equality.
func canonicalKey(v Vertex) []byte {
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		binary.BigEndian.PutUint64(buf[i*8:], math.Float64bits(x))
	}
	return buf
}

// memoEntry holds one cached outcome together with the full canonical
// encoding it was stored under, so an xxhash collision is detected and
// treated as a miss instead of returning a foreign weight.
type memoEntry struct {
	args   []byte
	weight float64
	err    error
}

// Memo caches evaluator results so numerically identical vertices are
// never scored twice. Failures are cached too: a vertex that failed keeps
// failing, cheaply, until Reset. Safe for concurrent use. Concurrent
// misses on the same key may both evaluate the objective; the last write
// wins, which is harmless because evaluators are deterministic.
type Memo struct {
	mu      sync.RWMutex
	fn      Evaluator
	entries map[uint64]memoEntry
}

// NewMemo wraps fn with a fresh, unshared cache.
func NewMemo(fn Evaluator) *Memo {
	return &Memo{fn: fn, entries: make(map[uint64]memoEntry)}
}

// Weight returns the cached weight for v, evaluating the underlying
// objective only on a miss. A replayed failure is wrapped in *CachedError.
func (m *Memo) Weight(v Vertex) (float64, error) {
	args := canonicalKey(v)
	sum := xxhash.Sum64(args)

	m.mu.RLock()
	e, ok := m.entries[sum]
	m.mu.RUnlock()
	if ok && bytes.Equal(e.args, args) {
		if e.err != nil {
			return 0, &CachedError{Err: e.err}
		}
		return e.weight, nil
	}

	// Evaluate outside the lock so concurrent initial scoring is not
	// serialized behind the objective.
	w, err := m.fn(v)

	m.mu.Lock()
	m.entries[sum] = memoEntry{args: args, weight: w, err: err}
	m.mu.Unlock()
	return w, err
}

// Evaluator exposes the memo under the plain evaluator contract.
func (m *Memo) Evaluator() Evaluator { return m.Weight }

// Reset drops every cached entry, successes and failures alike.
func (m *Memo) Reset() {
	m.mu.Lock()
	m.entries = make(map[uint64]memoEntry)
	m.mu.Unlock()
}

// Len reports the number of cached entries.
func (m *Memo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// CallbackMemo is the memo for callback-style objectives. The completion
// callback is always invoked exactly once, with either a weight or an
// error; a nil callback gets a no-op substitute. Reset clears successes
// and failures alike, matching Memo.
type CallbackMemo struct {
	mu      sync.RWMutex
	fn      CallbackEvaluator
	entries map[uint64]memoEntry
}

// NewCallbackMemo wraps fn with a fresh, unshared cache.
func NewCallbackMemo(fn CallbackEvaluator) *CallbackMemo {
	return &CallbackMemo{fn: fn, entries: make(map[uint64]memoEntry)}
}

// Eval delivers the cached result for v through done, invoking the
// underlying objective only on a miss.
func (m *CallbackMemo) Eval(v Vertex, done func(float64, error)) {
	if done == nil {
		done = func(float64, error) {}
	}

	args := canonicalKey(v)
	sum := xxhash.Sum64(args)

	m.mu.RLock()
	e, ok := m.entries[sum]
	m.mu.RUnlock()
	if ok && bytes.Equal(e.args, args) {
		if e.err != nil {
			done(0, &CachedError{Err: e.err})
			return
		}
		done(e.weight, nil)
		return
	}

	m.fn(v, func(w float64, err error) {
		m.mu.Lock()
		m.entries[sum] = memoEntry{args: args, weight: w, err: err}
		m.mu.Unlock()
		done(w, err)
	})
}

// Evaluator exposes the memo under the callback evaluator contract.
func (m *CallbackMemo) Evaluator() CallbackEvaluator { return m.Eval }

// Reset drops every cached entry, successes and failures alike.
func (m *CallbackMemo) Reset() {
	m.mu.Lock()
	m.entries = make(map[uint64]memoEntry)
	m.mu.Unlock()
}
