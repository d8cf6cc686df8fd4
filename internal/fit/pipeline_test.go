package fit

import (
	"context"
	"testing"

	"github.com/cwbudde/simplexfit/internal/nm"
)

func TestOptimizeRecoversShortPhrase(t *testing.T) {
	target, err := NewTarget("go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := InitialSimplex(target, 42)
	result, final, err := Optimize(context.Background(), target, start, nm.DefaultParams(), 500, nil)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if result.BestGuess != "go" {
		t.Errorf("Expected to recover \"go\", got %q (cost %f)", result.BestGuess, result.BestCost)
	}
	if result.BestCost > result.InitialCost {
		t.Errorf("Best cost %f worse than initial %f", result.BestCost, result.InitialCost)
	}
	if len(final) != target.Dim()+1 {
		t.Errorf("Final simplex has %d vertices, want %d", len(final), target.Dim()+1)
	}
	if result.Iterations != 500 {
		t.Errorf("Expected 500 iterations, got %d", result.Iterations)
	}
}

func TestOptimizeObserverSeesEveryIteration(t *testing.T) {
	target, err := NewTarget("hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var seen []int
	lastCost := -1.0
	obs := func(iter int, best nm.Vertex, bestCost float64, sx nm.Simplex) {
		seen = append(seen, iter)
		if len(sx) != target.Dim()+1 {
			t.Errorf("Observer got %d vertices at iteration %d", len(sx), iter)
		}
		if lastCost >= 0 && bestCost > lastCost {
			t.Errorf("Best cost regressed at iteration %d: %f -> %f", iter, lastCost, bestCost)
		}
		lastCost = bestCost
	}

	_, _, err = Optimize(context.Background(), target, InitialSimplex(target, 7), nm.DefaultParams(), 20, obs)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if len(seen) != 20 {
		t.Fatalf("Observer called %d times, want 20", len(seen))
	}
	for i, iter := range seen {
		if iter != i+1 {
			t.Fatalf("Observer iterations out of order: %v", seen)
		}
	}
}

func TestOptimizeCancellation(t *testing.T) {
	target, err := NewTarget("hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = Optimize(ctx, target, InitialSimplex(target, 1), nm.DefaultParams(), 100, nil)
	if err != context.Canceled {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestOptimizeResumesFromSimplex(t *testing.T) {
	target, err := NewTarget("abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One 100-iteration run and 50+50 with the intermediate simplex carried
	// over must land on the same final state.
	full, _, err := Optimize(context.Background(), target, InitialSimplex(target, 9), nm.DefaultParams(), 100, nil)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	_, mid, err := Optimize(context.Background(), target, InitialSimplex(target, 9), nm.DefaultParams(), 50, nil)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	resumed, _, err := Optimize(context.Background(), target, mid, nm.DefaultParams(), 50, nil)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if full.BestCost != resumed.BestCost {
		t.Errorf("Resumed run diverged: %f vs %f", resumed.BestCost, full.BestCost)
	}
	for i := range full.BestParams {
		if full.BestParams[i] != resumed.BestParams[i] {
			t.Errorf("Resumed params diverged at %d: %f vs %f", i, resumed.BestParams[i], full.BestParams[i])
		}
	}
}

func TestBenchmarkFunctions(t *testing.T) {
	if Sphere([]float64{0, 0, 0}) != 0 {
		t.Error("Sphere minimum should be 0 at origin")
	}
	if Sphere([]float64{1, 2}) != 5 {
		t.Error("Sphere([1,2]) should be 5")
	}
	if Rosenbrock([]float64{1, 1, 1}) != 0 {
		t.Error("Rosenbrock minimum should be 0 at (1,1,1)")
	}
	if Rosenbrock([]float64{0, 0}) != 1 {
		t.Error("Rosenbrock([0,0]) should be 1")
	}
}
