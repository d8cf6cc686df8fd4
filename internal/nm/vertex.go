// Package nm implements the Nelder–Mead simplex method, a derivative-free
// optimizer for expensive scalar objectives. One decision tree serves four
// evaluation models: synchronous, future-based, callback-based, and a lazy
// iterator the consumer pulls.
package nm

// Vertex is a point in N-dimensional parameter space, one corner of the
// simplex. Vertices are treated as immutable: every arithmetic operation
// returns a freshly allocated vertex, so a vertex handed to an evaluator
// or cached in a memo stays stable.
type Vertex []float64

// Clone returns an independent copy of the vertex.
func (v Vertex) Clone() Vertex {
	out := make(Vertex, len(v))
	copy(out, v)
	return out
}

// Add returns v + o elementwise.
func (v Vertex) Add(o Vertex) Vertex {
	out := make(Vertex, len(v))
	for i := range v {
		out[i] = v[i] + o[i]
	}
	return out
}

// Sub returns v - o elementwise.
func (v Vertex) Sub(o Vertex) Vertex {
	out := make(Vertex, len(v))
	for i := range v {
		out[i] = v[i] - o[i]
	}
	return out
}

// Scale returns f·v elementwise.
func (v Vertex) Scale(f float64) Vertex {
	out := make(Vertex, len(v))
	for i := range v {
		out[i] = f * v[i]
	}
	return out
}

// Simplex is the set of N+1 vertices maintained by the optimizer. The
// count is invariant across iterations; ordering by weight is a transient,
// per-iteration concern, not a property of the simplex itself.
type Simplex []Vertex

// Dim returns the dimensionality of the simplex's vertices.
func (s Simplex) Dim() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Clone returns a deep copy of the simplex.
func (s Simplex) Clone() Simplex {
	out := make(Simplex, len(s))
	for i, v := range s {
		out[i] = v.Clone()
	}
	return out
}

// Centroid returns the coordinate-wise mean of the given vertices.
func Centroid(vs []Vertex) Vertex {
	out := make(Vertex, len(vs[0]))
	for _, v := range vs {
		for i := range out {
			out[i] += v[i]
		}
	}
	inv := 1 / float64(len(vs))
	for i := range out {
		out[i] *= inv
	}
	return out
}
