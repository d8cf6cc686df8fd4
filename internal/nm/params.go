package nm

import "fmt"

// Params holds the four Nelder–Mead coefficients.
type Params struct {
	Alpha float64 // reflection, > 0
	Gamma float64 // expansion, > 1
	Rho   float64 // contraction, 0 < rho <= 0.5
	Sigma float64 // shrink
}

// DefaultParams returns the standard coefficients (1, 2, 0.5, 0.5).
func DefaultParams() Params {
	return Params{Alpha: 1, Gamma: 2, Rho: 0.5, Sigma: 0.5}
}

// Validate checks the coefficient ranges.
func (p Params) Validate() error {
	if p.Alpha <= 0 {
		return fmt.Errorf("reflection coefficient must be positive, got %g", p.Alpha)
	}
	if p.Gamma <= 1 {
		return fmt.Errorf("expansion coefficient must exceed 1, got %g", p.Gamma)
	}
	if p.Rho <= 0 || p.Rho > 0.5 {
		return fmt.Errorf("contraction coefficient must be in (0, 0.5], got %g", p.Rho)
	}
	return nil
}

// check validates params and simplex shape before a step. A simplex of
// dimension N must carry exactly N+1 vertices of uniform dimension.
func check(sx Simplex, p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if len(sx) < 2 {
		return fmt.Errorf("simplex needs at least 2 vertices, got %d", len(sx))
	}
	dim := len(sx[0])
	if len(sx) != dim+1 {
		return fmt.Errorf("simplex of dimension %d needs %d vertices, got %d", dim, dim+1, len(sx))
	}
	for i, v := range sx {
		if len(v) != dim {
			return fmt.Errorf("vertex %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	return nil
}
