package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cwbudde/simplexfit/internal/fit"
	"github.com/cwbudde/simplexfit/internal/nm"
	"github.com/cwbudde/simplexfit/internal/opt"
	"github.com/cwbudde/simplexfit/internal/store"
)

// broadcastThrottle limits SSE progress events to 2 per second.
const broadcastThrottle = 500 * time.Millisecond

// runJob executes an optimization job in the background.
// If checkpointStore is not nil and the job has checkpointInterval > 0,
// periodic checkpoints carrying the full simplex are saved.
func runJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, dataDir, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "target_len", len(job.Config.Target), "optimizer", job.Config.Optimizer)

	target, err := fit.NewTarget(job.Config.Target)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("invalid target: %w", err))
		return err
	}

	// Check for cancellation before starting expensive work
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	start := time.Now()
	var result *fit.OptimizationResult

	switch job.Config.Optimizer {
	case "", "nelder-mead":
		result, err = runSimplexJob(ctx, jm, checkpointStore, dataDir, jobID, target, job.Config, start)
	case "mayfly":
		optimizer := opt.NewMayfly(job.Config.Iters, job.Config.PopSize, job.Config.Seed)
		result = fit.OptimizeWith(optimizer, target)
		result.Iterations = job.Config.Iters
	default:
		err = fmt.Errorf("unknown optimizer: %s", job.Config.Optimizer)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			markJobCancelled(jm, jobID)
		} else {
			markJobFailed(jm, jobID, err)
		}
		return err
	}

	elapsed := time.Since(start)

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.BestParams = result.BestParams
		j.BestGuess = result.BestGuess
		j.BestCost = result.BestCost
		j.InitialCost = result.InitialCost
		j.Iterations = result.Iterations
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	ips := float64(result.Iterations) / elapsed.Seconds()

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"initial_cost", result.InitialCost,
		"best_cost", result.BestCost,
		"best_guess", result.BestGuess,
		"iterations_per_second", ips,
	)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateCompleted,
		Iteration: result.Iterations,
		BestCost:  result.BestCost,
		BestGuess: result.BestGuess,
		IPS:       ips,
		Timestamp: time.Now(),
	})

	return nil
}

// runSimplexJob drives the native simplex engine with an observer that
// updates job state, streams throttled progress events, records the cost
// trace, and saves periodic checkpoints of the full simplex.
func runSimplexJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, dataDir, jobID string, target *fit.Target, cfg JobConfig, start time.Time) (*fit.OptimizationResult, error) {
	params := paramsFromConfig(cfg)
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var tracer *store.TraceWriter
	if dataDir != "" {
		tw, err := store.NewTraceWriter(dataDir, jobID, false)
		if err != nil {
			slog.Warn("Trace disabled", "job_id", jobID, "error", err)
		} else {
			tracer = tw
			defer tracer.Close()
		}
	}

	checkpointEvery := time.Duration(cfg.CheckpointInterval) * time.Second
	lastBroadcast := time.Time{}
	lastCheckpoint := start

	observer := func(iteration int, best nm.Vertex, bestCost float64, sx nm.Simplex) {
		guess := target.Decode(best)
		jm.UpdateJob(jobID, func(j *Job) {
			j.BestParams = best.Clone()
			j.BestGuess = guess
			j.BestCost = bestCost
			j.Iterations = iteration
		})

		if tracer != nil {
			entry := store.TraceEntry{
				Iteration: iteration,
				Cost:      bestCost,
				Timestamp: time.Now(),
				Guess:     guess,
			}
			if err := tracer.Write(entry); err != nil {
				slog.Warn("Failed to write trace entry", "job_id", jobID, "error", err)
			}
		}

		now := time.Now()
		if now.Sub(lastBroadcast) >= broadcastThrottle {
			lastBroadcast = now
			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:     jobID,
				State:     StateRunning,
				Iteration: iteration,
				BestCost:  bestCost,
				BestGuess: guess,
				IPS:       float64(iteration) / now.Sub(start).Seconds(),
				Timestamp: now,
			})
		}

		if checkpointStore != nil && checkpointEvery > 0 && now.Sub(lastCheckpoint) >= checkpointEvery {
			lastCheckpoint = now
			if err := saveCheckpoint(jm, checkpointStore, jobID, iteration, best, bestCost, sx); err != nil {
				slog.Error("Failed to save checkpoint", "job_id", jobID, "error", err)
			}
		}
	}

	startSimplex := fit.InitialSimplex(target, cfg.Seed)

	initialCost := math.Inf(1)
	for _, v := range startSimplex {
		if w := target.Cost(v); w < initialCost {
			initialCost = w
		}
	}
	jm.UpdateJob(jobID, func(j *Job) {
		j.InitialCost = initialCost
	})

	result, final, err := fit.Optimize(ctx, target, startSimplex, params, cfg.Iters, observer)
	if err != nil {
		return nil, err
	}

	if tracer != nil {
		if err := tracer.Flush(); err != nil {
			slog.Warn("Failed to flush trace", "job_id", jobID, "error", err)
		}
	}

	// Final checkpoint so a completed job can still seed a longer run
	if checkpointStore != nil && checkpointEvery > 0 {
		best := nm.Vertex(result.BestParams)
		if err := saveCheckpoint(jm, checkpointStore, jobID, result.Iterations, best, result.BestCost, final); err != nil {
			slog.Error("Failed to save final checkpoint", "job_id", jobID, "error", err)
		}
	}

	return result, nil
}

// saveCheckpoint persists the full simplex state for the given job.
func saveCheckpoint(jm *JobManager, checkpointStore store.Store, jobID string, iteration int, best nm.Vertex, bestCost float64, sx nm.Simplex) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	simplex := make([][]float64, len(sx))
	for i, v := range sx {
		simplex[i] = v.Clone()
	}

	checkpoint := store.NewCheckpoint(
		jobID,
		simplex,
		best.Clone(),
		bestCost,
		job.InitialCost,
		iteration,
		job.Config,
	)

	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved",
		"job_id", jobID,
		"iteration", iteration,
		"best_cost", bestCost,
	)
	return nil
}

// paramsFromConfig maps job configuration onto simplex coefficients,
// falling back to defaults for unset values.
func paramsFromConfig(cfg JobConfig) nm.Params {
	params := nm.DefaultParams()
	if cfg.Alpha != 0 {
		params.Alpha = cfg.Alpha
	}
	if cfg.Gamma != 0 {
		params.Gamma = cfg.Gamma
	}
	if cfg.Rho != 0 {
		params.Rho = cfg.Rho
	}
	if cfg.Sigma != 0 {
		params.Sigma = cfg.Sigma
	}
	return params
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}
