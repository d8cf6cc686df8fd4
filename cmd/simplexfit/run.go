package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cwbudde/simplexfit/internal/fit"
	"github.com/cwbudde/simplexfit/internal/nm"
	"github.com/cwbudde/simplexfit/internal/opt"
	"github.com/cwbudde/simplexfit/internal/store"
)

var (
	targetPhrase  string
	optimizerName string
	iters         int
	popSize       int
	seed          int64
	alpha         float64
	gamma         float64
	rho           float64
	sigma         float64
	saveDataDir   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run single-shot optimization",
	Long: `Runs phrase recovery optimization and prints the best guess.
With --save-to, the final simplex is checkpointed so the run can be
continued later with the resume command.`,
	RunE: runOptimization,
}

func init() {
	runCmd.Flags().StringVar(&targetPhrase, "target", "", "Target phrase to recover (required)")
	runCmd.Flags().StringVar(&optimizerName, "optimizer", "nelder-mead", "Optimizer: nelder-mead, mayfly")
	runCmd.Flags().IntVar(&iters, "iters", 1000, "Max iterations")
	runCmd.Flags().IntVar(&popSize, "pop", 30, "Population size (mayfly only)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	runCmd.Flags().Float64Var(&alpha, "alpha", 1.0, "Mirror coefficient")
	runCmd.Flags().Float64Var(&gamma, "gamma", 2.0, "Expansion coefficient")
	runCmd.Flags().Float64Var(&rho, "rho", 0.5, "Contraction coefficient")
	runCmd.Flags().Float64Var(&sigma, "sigma", 0.5, "Shrink coefficient")
	runCmd.Flags().StringVar(&saveDataDir, "save-to", "", "Data directory to checkpoint the final state (optional)")

	runCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(runCmd)
}

func runOptimization(cmd *cobra.Command, args []string) error {
	slog.Info("Starting optimization", "optimizer", optimizerName, "iters", iters, "seed", seed)

	target, err := fit.NewTarget(targetPhrase)
	if err != nil {
		return fmt.Errorf("invalid target: %w", err)
	}

	params := nm.Params{Alpha: alpha, Gamma: gamma, Rho: rho, Sigma: sigma}
	if err := params.Validate(); err != nil {
		return err
	}

	start := time.Now()
	var result *fit.OptimizationResult
	var final nm.Simplex

	switch optimizerName {
	case "nelder-mead":
		startSimplex := fit.InitialSimplex(target, seed)
		result, final, err = fit.Optimize(context.Background(), target, startSimplex, params, iters, nil)
		if err != nil {
			return err
		}
	case "mayfly":
		optimizer := opt.NewMayfly(iters, popSize, seed)
		result = fit.OptimizeWith(optimizer, target)
		result.Iterations = iters
	default:
		return fmt.Errorf("unknown optimizer: %s", optimizerName)
	}

	elapsed := time.Since(start)
	ips := float64(result.Iterations) / elapsed.Seconds()

	slog.Info("Optimization complete",
		"elapsed", elapsed,
		"initial_cost", result.InitialCost,
		"final_cost", result.BestCost,
		"improvement", result.InitialCost-result.BestCost,
		"iterations_per_second", fmt.Sprintf("%.0f", ips),
	)

	if saveDataDir != "" {
		if final == nil {
			slog.Warn("Skipping checkpoint, engine state is not resumable", "optimizer", optimizerName)
		} else {
			jobID, err := saveRunCheckpoint(saveDataDir, target, result, final)
			if err != nil {
				return err
			}
			fmt.Printf("Checkpoint saved as job %s\n", jobID)
		}
	}

	fmt.Printf("Best guess: %q (cost: %.2f -> %.2f, %.0f iters/sec)\n",
		result.BestGuess, result.InitialCost, result.BestCost, ips)

	return nil
}

func saveRunCheckpoint(dataDir string, target *fit.Target, result *fit.OptimizationResult, final nm.Simplex) (string, error) {
	checkpointStore, err := store.NewFSStore(dataDir)
	if err != nil {
		return "", fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	jobID := uuid.New().String()
	config := store.JobConfig{
		Target:    target.Phrase(),
		Optimizer: optimizerName,
		Iters:     iters,
		Seed:      seed,
		Alpha:     alpha,
		Gamma:     gamma,
		Rho:       rho,
		Sigma:     sigma,
	}

	simplex := make([][]float64, len(final))
	for i, v := range final {
		simplex[i] = v.Clone()
	}

	checkpoint := store.NewCheckpoint(jobID, simplex, result.BestParams, result.BestCost, result.InitialCost, result.Iterations, config)
	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return "", fmt.Errorf("failed to save checkpoint: %w", err)
	}

	return jobID, nil
}
