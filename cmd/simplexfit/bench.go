package main

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/simplexfit/internal/fit"
	"github.com/cwbudde/simplexfit/internal/nm"
	"github.com/cwbudde/simplexfit/internal/opt"
)

var (
	benchIters   int
	benchPopSize int
	benchSeed    int64
	benchDim     int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark the optimization engines",
	Long: `Runs every engine against the standard objective suite (sphere,
rosenbrock) and prints final costs and timings. Runs execute
concurrently, one goroutine per engine/objective pair.`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchIters, "iters", 500, "Max iterations per run")
	benchCmd.Flags().IntVar(&benchPopSize, "pop", 30, "Population size (mayfly only)")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 42, "Random seed")
	benchCmd.Flags().IntVar(&benchDim, "dim", 4, "Problem dimensionality")
	rootCmd.AddCommand(benchCmd)
}

type benchResult struct {
	engine    string
	objective string
	cost      float64
	elapsed   time.Duration
}

func runBench(cmd *cobra.Command, args []string) error {
	engines := []string{"nelder-mead", "mayfly"}
	suite := fit.Benchmarks()

	var mu sync.Mutex
	var results []benchResult

	var g errgroup.Group
	for _, engine := range engines {
		for _, bm := range suite {
			engine, bm := engine, bm
			g.Go(func() error {
				optimizer, err := opt.Select(engine, benchIters, benchPopSize, benchSeed, nm.DefaultParams())
				if err != nil {
					return err
				}

				lower := make([]float64, benchDim)
				upper := make([]float64, benchDim)
				for i := range lower {
					lower[i] = bm.Lower
					upper[i] = bm.Upper
				}

				start := time.Now()
				_, cost := optimizer.Run(bm.Fn, lower, upper, benchDim)
				elapsed := time.Since(start)

				mu.Lock()
				results = append(results, benchResult{
					engine:    engine,
					objective: bm.Name,
					cost:      cost,
					elapsed:   elapsed,
				})
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].objective != results[j].objective {
			return results[i].objective < results[j].objective
		}
		return results[i].engine < results[j].engine
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OBJECTIVE\tENGINE\tFINAL COST\tELAPSED")
	fmt.Fprintln(w, "---------\t------\t----------\t-------")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%.6g\t%s\n", r.objective, r.engine, r.cost, r.elapsed.Round(time.Microsecond))
	}
	w.Flush()

	return nil
}
