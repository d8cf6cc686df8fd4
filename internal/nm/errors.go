package nm

import "fmt"

// ObjectiveError reports a failure of the user-supplied objective for a
// specific vertex.
type ObjectiveError struct {
	Vertex Vertex
	Err    error
}

func (e *ObjectiveError) Error() string {
	return fmt.Sprintf("objective failed at %v: %v", e.Vertex, e.Err)
}

func (e *ObjectiveError) Unwrap() error { return e.Err }

// CachedError marks a failure replayed from a memo without re-invoking the
// underlying objective. Unwrap exposes the original failure so errors.Is
// and errors.As behave as if the objective had failed again.
type CachedError struct {
	Err error
}

func (e *CachedError) Error() string { return "cached: " + e.Err.Error() }

func (e *CachedError) Unwrap() error { return e.Err }
