/*
Copyright © 2015-2022 Leo Antunes <leo@costela.net>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command gobnp benchmarks the pricing controller on synthetic
// knapsack decompositions.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/costela/gobnp"
	"github.com/costela/gobnp/solvers"
	"gonum.org/v1/gonum/mat"
)

var (
	flagBlocks      int
	flagVars        int
	flagRounds      int
	flagSeed        int64
	flagConcurrency int
	flagChunkSize   int
	flagHeuristic   bool
	flagVerbose     bool
	flagMetricsAddr string
)

func main() {
	root := &cobra.Command{
		Use:   "gobnp",
		Short: "branch-and-price pricing controller tooling",
	}

	bench := &cobra.Command{
		Use:   "bench",
		Short: "run pricing rounds on a synthetic knapsack decomposition",
		RunE:  runBench,
	}
	bench.Flags().IntVar(&flagBlocks, "blocks", 8, "number of pricing blocks")
	bench.Flags().IntVar(&flagVars, "vars", 30, "variables per block")
	bench.Flags().IntVar(&flagRounds, "rounds", 20, "pricing rounds to run")
	bench.Flags().Int64Var(&flagSeed, "seed", 1, "random seed")
	bench.Flags().IntVar(&flagConcurrency, "concurrency", 4, "parallel jobs per chunk")
	bench.Flags().IntVar(&flagChunkSize, "chunk-size", 0, "dispatch chunk size (0 = single chunk)")
	bench.Flags().BoolVar(&flagHeuristic, "heuristic", true, "enable heuristic pricing")
	bench.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	bench.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	root.AddCommand(bench)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBench(cmd *cobra.Command, _ []string) error {
	logger := logrus.New()
	if flagVerbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	rnd := rand.New(rand.NewSource(flagSeed))
	decomp := syntheticDecomposition(rnd, flagBlocks, flagVars)

	settings := gobnp.DefaultSettings()
	settings.MaxConcurrency = flagConcurrency
	settings.ChunkSize = flagChunkSize
	settings.HeurPricingEnabled = flagHeuristic
	settings.Scoring = gobnp.ScoringColumns

	opts := []gobnp.Option{
		gobnp.WithLogger(logger),
		gobnp.WithSettings(settings),
	}
	if flagMetricsAddr != "" {
		metrics := gobnp.NewMetrics()
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			return err
		}
		opts = append(opts, gobnp.WithMetrics(metrics))
		go func() {
			logger.WithField("addr", flagMetricsAddr).Info("serving metrics")
			if err := http.ListenAndServe(flagMetricsAddr, promhttp.Handler()); err != nil {
				logger.WithError(err).Error("metrics listener failed")
			}
		}()
	}

	ctrl, err := gobnp.NewController(decomp, []gobnp.Solver{
		solvers.NewKnapsack(100),
		solvers.NewMIP(50),
		solvers.NewLP(0),
	}, opts...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctrl.InitSolve(ctx); err != nil {
		return err
	}
	defer func() {
		if err := ctrl.ExitSolve(); err != nil {
			logger.WithError(err).Warn("solver teardown failed")
		}
	}()

	totalCols := 0
	for round := 0; round < flagRounds; round++ {
		res, err := ctrl.PerformPricing(ctx, syntheticRound(rnd, decomp))
		if err != nil {
			return err
		}
		totalCols += res.NCols
		logger.WithFields(logrus.Fields{
			"round":    round,
			"cols":     res.NCols,
			"proof":    res.OptimalityProof,
			"duration": res.Duration,
		}).Info("round done")
	}

	fmt.Printf("total columns: %d\n", totalCols)
	for name, st := range ctrl.Stats() {
		fmt.Printf("%-10s cols=%d calls=%v time=%v\n", name, st.Cols, st.Calls, st.Time)
	}
	return nil
}

// syntheticDecomposition builds independent bounded-knapsack blocks
// with integral weights so that all three bundled backends get
// exercised (the knapsack DP where the structure fits, branch-and-bound
// for the blocks it rejects).
func syntheticDecomposition(rnd *rand.Rand, blocks, vars int) *gobnp.Decomposition {
	d := &gobnp.Decomposition{}
	for b := 0; b < blocks; b++ {
		weights := make([]float64, vars)
		lower := make([]float64, vars)
		upper := make([]float64, vars)
		integral := make([]bool, vars)
		for i := 0; i < vars; i++ {
			weights[i] = float64(1 + rnd.Intn(20))
			upper[i] = float64(1 + rnd.Intn(3))
			integral[i] = true
		}
		// every third block gets a second row, pushing it past the
		// knapsack backend into the MIP backend
		g := mat.NewDense(1, vars, weights)
		h := []float64{float64(vars * 5)}
		if b%3 == 2 {
			second := make([]float64, vars)
			for i := range second {
				second[i] = float64(rnd.Intn(3))
			}
			g = mat.NewDense(2, vars, append(append([]float64(nil), weights...), second...))
			h = []float64{float64(vars * 5), float64(vars * 2)}
		}
		d.Subproblems = append(d.Subproblems, &gobnp.Subproblem{
			Block:    b,
			Obj:      make([]float64, vars),
			G:        g,
			H:        h,
			Lower:    lower,
			Upper:    upper,
			Integral: integral,
		})
	}
	return d
}

// syntheticRound fakes the master's dual information: random negative
// reduced-cost objectives and small convexity duals.
func syntheticRound(rnd *rand.Rand, d *gobnp.Decomposition) gobnp.RoundInput {
	in := gobnp.RoundInput{Type: gobnp.RedcostPricing}
	for _, sp := range d.Subproblems {
		obj := make([]float64, sp.NVars())
		for i := range obj {
			obj[i] = rnd.Float64()*4 - 3
		}
		in.Objectives = append(in.Objectives, obj)
		in.ConvDuals = append(in.ConvDuals, rnd.Float64())
	}
	return in
}
