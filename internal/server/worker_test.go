package server

import (
	"context"
	"testing"

	"github.com/cwbudde/simplexfit/internal/store"
)

func TestRunJob_Success(t *testing.T) {
	jm := NewJobManager()
	config := JobConfig{
		Target:    "go",
		Optimizer: "nelder-mead",
		Iters:     500,
		Seed:      42,
	}

	job := jm.CreateJob(config)

	ctx := context.Background()
	err := runJob(ctx, jm, nil, "", job.ID)

	if err != nil {
		t.Errorf("runJob should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCompleted {
		t.Errorf("Job should be completed, got %s", updated.State)
	}

	if len(updated.BestParams) != 2 { // one coordinate per rune
		t.Errorf("Expected 2 params, got %d", len(updated.BestParams))
	}

	if updated.Iterations != 500 {
		t.Errorf("Expected 500 iterations, got %d", updated.Iterations)
	}

	if updated.BestCost >= updated.InitialCost {
		t.Errorf("Best cost %f should improve on initial %f", updated.BestCost, updated.InitialCost)
	}

	if updated.BestGuess == "" {
		t.Error("BestGuess should be set")
	}
}

func TestRunJob_EmptyTarget(t *testing.T) {
	jm := NewJobManager()
	config := JobConfig{
		Target:    "",
		Optimizer: "nelder-mead",
		Iters:     10,
		Seed:      42,
	}

	job := jm.CreateJob(config)

	ctx := context.Background()
	err := runJob(ctx, jm, nil, "", job.ID)

	if err == nil {
		t.Error("runJob should fail with empty target")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateFailed {
		t.Errorf("Job should be failed, got %s", updated.State)
	}

	if updated.Error == "" {
		t.Error("Error message should be set")
	}
}

func TestRunJob_UnknownOptimizer(t *testing.T) {
	jm := NewJobManager()
	config := JobConfig{
		Target:    "go",
		Optimizer: "gradient-descent",
		Iters:     10,
		Seed:      42,
	}

	job := jm.CreateJob(config)

	err := runJob(context.Background(), jm, nil, "", job.ID)
	if err == nil {
		t.Error("runJob should fail with unknown optimizer")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateFailed {
		t.Errorf("Job should be failed, got %s", updated.State)
	}
}

func TestRunJob_Cancellation(t *testing.T) {
	jm := NewJobManager()
	config := JobConfig{
		Target:    "a somewhat longer target phrase",
		Optimizer: "nelder-mead",
		Iters:     100,
		Seed:      42,
	}

	job := jm.CreateJob(config)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel before the run starts

	err := runJob(ctx, jm, nil, "", job.ID)
	if err == nil {
		t.Error("runJob should return error when cancelled")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCancelled {
		t.Errorf("Job should be cancelled, got %s", updated.State)
	}
}

func TestRunJob_SavesCheckpointAndTrace(t *testing.T) {
	tmpDir := t.TempDir()
	fsStore, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	jm := NewJobManager()
	config := JobConfig{
		Target:             "go",
		Optimizer:          "nelder-mead",
		Iters:              200,
		Seed:               42,
		CheckpointInterval: 1,
	}

	job := jm.CreateJob(config)

	if err := runJob(context.Background(), jm, fsStore, tmpDir, job.ID); err != nil {
		t.Fatalf("runJob should succeed: %v", err)
	}

	// The final checkpoint is always written when checkpointing is enabled
	checkpoint, err := fsStore.LoadCheckpoint(job.ID)
	if err != nil {
		t.Fatalf("Checkpoint should exist: %v", err)
	}

	if checkpoint.Iteration != 200 {
		t.Errorf("Expected checkpoint at iteration 200, got %d", checkpoint.Iteration)
	}
	if len(checkpoint.Simplex) != 3 { // dim+1 vertices for a 2-rune target
		t.Errorf("Expected 3 simplex vertices, got %d", len(checkpoint.Simplex))
	}

	reader, err := store.NewTraceReader(tmpDir, job.ID)
	if err != nil {
		t.Fatalf("Trace should exist: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read trace: %v", err)
	}
	if len(entries) != 200 {
		t.Errorf("Expected 200 trace entries, got %d", len(entries))
	}
	if entries[0].Iteration != 1 {
		t.Errorf("First trace entry should be iteration 1, got %d", entries[0].Iteration)
	}
}

func TestRunJob_MayflyOptimizer(t *testing.T) {
	jm := NewJobManager()
	config := JobConfig{
		Target:    "go",
		Optimizer: "mayfly",
		Iters:     50,
		PopSize:   20,
		Seed:      42,
	}

	job := jm.CreateJob(config)

	if err := runJob(context.Background(), jm, nil, "", job.ID); err != nil {
		t.Errorf("runJob should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCompleted {
		t.Errorf("Job should be completed, got %s", updated.State)
	}
	if len(updated.BestParams) != 2 {
		t.Errorf("Expected 2 params, got %d", len(updated.BestParams))
	}
}
