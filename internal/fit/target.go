// Package fit provides the phrase-recovery objective: a target phrase is
// encoded as rune codes, candidate vertices are decoded back to text, and
// the cost is the squared distance between the candidate and the target in
// code space. It is a deliberately cheap stand-in for expensive objectives
// that still exercises the full optimizer surface.
package fit

import (
	"fmt"

	"github.com/cwbudde/simplexfit/internal/nm"
)

// Printable ASCII range used when decoding parameters back to text.
const (
	minPrintable = 32  // space
	maxPrintable = 126 // tilde
)

// Target is the phrase being recovered. The optimization dimension equals
// the rune count.
type Target struct {
	phrase string
	codes  []float64
}

// NewTarget builds a target from a non-empty phrase.
func NewTarget(phrase string) (*Target, error) {
	if phrase == "" {
		return nil, fmt.Errorf("target phrase cannot be empty")
	}
	runes := []rune(phrase)
	codes := make([]float64, len(runes))
	for i, r := range runes {
		codes[i] = float64(r)
	}
	return &Target{phrase: phrase, codes: codes}, nil
}

// Phrase returns the target phrase.
func (t *Target) Phrase() string { return t.phrase }

// Dim returns the optimization dimensionality (rune count).
func (t *Target) Dim() int { return len(t.codes) }

// Bounds returns per-dimension parameter bounds covering the printable
// ASCII range.
func (t *Target) Bounds() (lower, upper []float64) {
	lower = make([]float64, t.Dim())
	upper = make([]float64, t.Dim())
	for i := range lower {
		lower[i] = minPrintable
		upper[i] = maxPrintable
	}
	return lower, upper
}

// Cost is the sum of squared rune-code differences between the candidate
// parameters and the target. Zero cost means the phrase was recovered
// exactly (after rounding).
func (t *Target) Cost(params []float64) float64 {
	var sum float64
	for i, c := range t.codes {
		d := params[i] - c
		sum += d * d
	}
	return sum
}

// Weight adapts Cost to the evaluator contract, rejecting vertices of the
// wrong dimension.
func (t *Target) Weight(v nm.Vertex) (float64, error) {
	if len(v) != t.Dim() {
		return 0, &nm.ObjectiveError{
			Vertex: v,
			Err:    fmt.Errorf("dimension %d does not match target length %d", len(v), t.Dim()),
		}
	}
	return t.Cost(v), nil
}

// Decode rounds the parameters back to runes, clamping into the printable
// range.
func (t *Target) Decode(params []float64) string {
	runes := make([]rune, 0, len(params))
	for _, p := range params {
		r := int(p + 0.5)
		if r < minPrintable {
			r = minPrintable
		}
		if r > maxPrintable {
			r = maxPrintable
		}
		runes = append(runes, rune(r))
	}
	return string(runes)
}
