package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/simplexfit/internal/fit"
	"github.com/cwbudde/simplexfit/internal/nm"
	"github.com/cwbudde/simplexfit/internal/store"
)

var (
	resumeDataDir string
	resumeIters   int
	resumeTarget  string
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume an optimization from its checkpoint",
	Long: `Loads the checkpointed simplex for the given job and continues the
optimization exactly where it stopped. The checkpoint is rewritten
with the new state and the cost trace is appended, so a run can be
resumed any number of times.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for checkpoint storage")
	resumeCmd.Flags().IntVar(&resumeIters, "iters", 1000, "Additional iterations to run")
	resumeCmd.Flags().StringVar(&resumeTarget, "target", "", "Expected target phrase, as a safeguard against resuming the wrong job (optional)")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	checkpointStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	if resumeTarget != "" {
		desired := checkpoint.Config
		desired.Target = resumeTarget
		if err := checkpoint.IsCompatible(desired); err != nil {
			return fmt.Errorf("checkpoint mismatch: %w", err)
		}
	}

	if checkpoint.Config.Optimizer != "" && checkpoint.Config.Optimizer != "nelder-mead" {
		return fmt.Errorf("cannot resume %s checkpoint: only nelder-mead state is resumable", checkpoint.Config.Optimizer)
	}

	target, err := fit.NewTarget(checkpoint.Config.Target)
	if err != nil {
		return fmt.Errorf("invalid target in checkpoint: %w", err)
	}

	params := nm.DefaultParams()
	if checkpoint.Config.Alpha != 0 {
		params.Alpha = checkpoint.Config.Alpha
	}
	if checkpoint.Config.Gamma != 0 {
		params.Gamma = checkpoint.Config.Gamma
	}
	if checkpoint.Config.Rho != 0 {
		params.Rho = checkpoint.Config.Rho
	}
	if checkpoint.Config.Sigma != 0 {
		params.Sigma = checkpoint.Config.Sigma
	}

	startSimplex := make(nm.Simplex, len(checkpoint.Simplex))
	for i, v := range checkpoint.Simplex {
		startSimplex[i] = nm.Vertex(v).Clone()
	}

	slog.Info("Resuming optimization",
		"job_id", jobID,
		"iteration", checkpoint.Iteration,
		"best_cost", checkpoint.BestCost,
		"additional_iters", resumeIters,
	)

	tracer, err := store.NewTraceWriter(resumeDataDir, jobID, true)
	if err != nil {
		return fmt.Errorf("failed to open trace: %w", err)
	}
	defer tracer.Close()

	baseIteration := checkpoint.Iteration
	observer := func(iteration int, best nm.Vertex, bestCost float64, sx nm.Simplex) {
		entry := store.TraceEntry{
			Iteration: baseIteration + iteration,
			Cost:      bestCost,
			Timestamp: time.Now(),
			Guess:     target.Decode(best),
		}
		if err := tracer.Write(entry); err != nil {
			slog.Warn("Failed to write trace entry", "job_id", jobID, "error", err)
		}
	}

	start := time.Now()
	result, final, err := fit.Optimize(context.Background(), target, startSimplex, params, resumeIters, observer)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	totalIterations := baseIteration + result.Iterations
	updated := store.NewCheckpoint(
		jobID,
		simplexToSlices(final),
		result.BestParams,
		result.BestCost,
		checkpoint.InitialCost,
		totalIterations,
		checkpoint.Config,
	)
	if err := checkpointStore.SaveCheckpoint(jobID, updated); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Resume complete",
		"job_id", jobID,
		"elapsed", elapsed,
		"iteration", totalIterations,
		"best_cost", result.BestCost,
	)

	fmt.Printf("Best guess: %q (cost: %.2f -> %.2f, iteration %d)\n",
		result.BestGuess, checkpoint.BestCost, result.BestCost, totalIterations)

	return nil
}

func simplexToSlices(sx nm.Simplex) [][]float64 {
	out := make([][]float64, len(sx))
	for i, v := range sx {
		out[i] = v.Clone()
	}
	return out
}
