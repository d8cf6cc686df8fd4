package store

import (
	"fmt"
	"time"
)

// JobConfig holds configuration for an optimization job (checkpoint copy).
// This avoids import cycles with server package.
type JobConfig struct {
	Target             string  `json:"target"`
	Optimizer          string  `json:"optimizer"` // nelder-mead, mayfly
	Iters              int     `json:"iters"`
	PopSize            int     `json:"popSize,omitempty"` // mayfly only
	Seed               int64   `json:"seed"`
	Alpha              float64 `json:"alpha,omitempty"`
	Gamma              float64 `json:"gamma,omitempty"`
	Rho                float64 `json:"rho,omitempty"`
	Sigma              float64 `json:"sigma,omitempty"`
	CheckpointInterval int     `json:"checkpointInterval,omitempty"` // Checkpoint every N seconds (0 = disabled)
}

// Checkpoint represents a saved optimization state that can be resumed later.
// All fields are serialized to JSON for persistence.
//
// Unlike population metaheuristics, the simplex method's entire internal
// state is the simplex itself, so the checkpoint carries it in full and a
// resume is an exact continuation, not a restart from the best point. The
// best vertex/cost are stored redundantly for cheap listing and display.
type Checkpoint struct {
	// JobID is the unique identifier for this optimization job
	JobID string `json:"jobId"`

	// Simplex is the full optimizer state: dim+1 vertices of the phrase's
	// dimension, exactly as they stood after Iteration iterations.
	Simplex [][]float64 `json:"simplex"`

	// BestParams is the lowest-cost vertex of Simplex.
	BestParams []float64 `json:"bestParams"`

	// BestCost is the cost achieved by BestParams
	BestCost float64 `json:"bestCost"`

	// InitialCost is the starting cost for tracking improvement
	InitialCost float64 `json:"initialCost"`

	// Iteration is the iteration count when this checkpoint was created
	Iteration int `json:"iteration"`

	// Timestamp records when this checkpoint was created
	Timestamp time.Time `json:"timestamp"`

	// Config holds the job configuration, needed for validation during resume.
	// We ensure that resumed jobs use compatible settings (same target, etc.)
	Config JobConfig `json:"config"`
}

// CheckpointInfo contains metadata about a checkpoint without the full
// simplex. Used for listing checkpoints efficiently.
type CheckpointInfo struct {
	JobID     string    `json:"jobId"`
	BestCost  float64   `json:"bestCost"`
	Iteration int       `json:"iteration"`
	Timestamp time.Time `json:"timestamp"`
	Optimizer string    `json:"optimizer"`
	Target    string    `json:"target"`
}

// NewCheckpoint creates a checkpoint from job state.
func NewCheckpoint(jobID string, simplex [][]float64, bestParams []float64, bestCost, initialCost float64, iteration int, config JobConfig) *Checkpoint {
	return &Checkpoint{
		JobID:       jobID,
		Simplex:     simplex,
		BestParams:  bestParams,
		BestCost:    bestCost,
		InitialCost: initialCost,
		Iteration:   iteration,
		Timestamp:   time.Now(),
		Config:      config,
	}
}

// ToInfo converts a full Checkpoint to CheckpointInfo (metadata only).
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:     c.JobID,
		BestCost:  c.BestCost,
		Iteration: c.Iteration,
		Timestamp: c.Timestamp,
		Optimizer: c.Config.Optimizer,
		Target:    c.Config.Target,
	}
}

// Validate checks if the checkpoint has valid data.
// Returns an error if any required field is missing or invalid.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if c.Config.Target == "" {
		return &ValidationError{Field: "Config.Target", Reason: "cannot be empty"}
	}
	if c.Config.Iters <= 0 {
		return &ValidationError{Field: "Config.Iters", Reason: "must be positive"}
	}
	if len(c.Simplex) == 0 {
		return &ValidationError{Field: "Simplex", Reason: "cannot be empty"}
	}
	dim := len([]rune(c.Config.Target))
	if len(c.Simplex) != dim+1 {
		return &ValidationError{
			Field:  "Simplex",
			Reason: fmt.Sprintf("need %d vertices for a %d-rune target, got %d", dim+1, dim, len(c.Simplex)),
		}
	}
	for i, v := range c.Simplex {
		if len(v) != dim {
			return &ValidationError{
				Field:  "Simplex",
				Reason: fmt.Sprintf("vertex %d has dimension %d, want %d", i, len(v), dim),
			}
		}
	}
	if len(c.BestParams) != dim {
		return &ValidationError{Field: "BestParams", Reason: fmt.Sprintf("dimension mismatch: got %d, want %d", len(c.BestParams), dim)}
	}
	if c.BestCost < 0 {
		return &ValidationError{Field: "BestCost", Reason: "cannot be negative"}
	}
	if c.InitialCost < 0 {
		return &ValidationError{Field: "InitialCost", Reason: "cannot be negative"}
	}
	if c.Iteration < 0 {
		return &ValidationError{Field: "Iteration", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks if this checkpoint can be resumed with the given config.
// Returns an error if the configs are incompatible.
func (c *Checkpoint) IsCompatible(config JobConfig) error {
	if c.Config.Target != config.Target {
		return &CompatibilityError{
			Field:    "Target",
			Expected: c.Config.Target,
			Actual:   config.Target,
		}
	}
	if c.Config.Optimizer != config.Optimizer {
		return &CompatibilityError{
			Field:    "Optimizer",
			Expected: c.Config.Optimizer,
			Actual:   config.Optimizer,
		}
	}
	return nil
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
