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
package solvers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/costela/gobnp"
)

func knapsackSub(obj, weights []float64, capacity float64, ub []float64) *gobnp.Subproblem {
	n := len(obj)
	integral := make([]bool, n)
	for i := range integral {
		integral[i] = true
	}
	return &gobnp.Subproblem{
		Block:    0,
		Obj:      obj,
		G:        mat.NewDense(1, n, weights),
		H:        []float64{capacity},
		Lower:    make([]float64, n),
		Upper:    ub,
		Integral: integral,
	}
}

func buildKnapsackSolver(t *testing.T, subs ...*gobnp.Subproblem) *Knapsack {
	t.Helper()

	s := NewKnapsack(100)
	require.NoError(t, s.Init(context.Background()))
	require.NoError(t, s.BuildModels(subs))
	return s
}

func TestKnapsackExact(t *testing.T) {
	sub := knapsackSub(
		[]float64{-10, -40, -30, -50},
		[]float64{5, 4, 6, 3},
		10,
		[]float64{1, 1, 1, 1},
	)
	s := buildKnapsackSolver(t, sub)

	sink := &collectSink{}
	res, err := s.SolveExact(context.Background(), 0, 0, sink)
	require.NoError(t, err)

	assert.Equal(t, gobnp.StatusOptimal, res.Status)
	assert.InDelta(t, -90, res.LowerBound, delta)
	require.Len(t, sink.cols, 1)
	assert.Equal(t, []float64{0, 1, 0, 1}, sink.cols[0].Dense(4))
	assert.NoError(t, sink.cols[0].Validate(sub))
}

func TestKnapsackExactBounded(t *testing.T) {
	// multiple copies per item
	sub := knapsackSub(
		[]float64{-3, -5},
		[]float64{2, 3},
		8,
		[]float64{4, 2},
	)
	s := buildKnapsackSolver(t, sub)

	sink := &collectSink{}
	res, err := s.SolveExact(context.Background(), 0, 0, sink)
	require.NoError(t, err)

	// best packing: one copy of item 0 and both copies of item 1
	assert.Equal(t, gobnp.StatusOptimal, res.Status)
	assert.InDelta(t, -13, res.LowerBound, delta)
	require.Len(t, sink.cols, 1)
	assert.Equal(t, []float64{1, 2}, sink.cols[0].Dense(2))
}

func TestKnapsackZeroWeightItems(t *testing.T) {
	sub := knapsackSub(
		[]float64{-7, -1},
		[]float64{0, 1},
		0,
		[]float64{3, 5},
	)
	s := buildKnapsackSolver(t, sub)

	sink := &collectSink{}
	res, err := s.SolveExact(context.Background(), 0, 0, sink)
	require.NoError(t, err)

	// free items are taken at their bound, nothing else fits
	assert.Equal(t, gobnp.StatusOptimal, res.Status)
	assert.InDelta(t, -21, res.LowerBound, delta)
	require.Len(t, sink.cols, 1)
	assert.Equal(t, []float64{3, 0}, sink.cols[0].Dense(2))
}

func TestKnapsackHeuristic(t *testing.T) {
	sub := knapsackSub(
		[]float64{-10, -40, -30, -50},
		[]float64{5, 4, 6, 3},
		10,
		[]float64{1, 1, 1, 1},
	)
	s := buildKnapsackSolver(t, sub)

	sink := &collectSink{}
	res, err := s.SolveHeuristic(context.Background(), 0, 0, gobnp.SolveLimits{}, sink)
	require.NoError(t, err)

	// greedy finds a packing but determines nothing; it must not
	// report a limit stop, a retry under larger limits cannot improve
	assert.Equal(t, gobnp.StatusUnknown, res.Status)
	require.Len(t, sink.cols, 1)
	assert.NoError(t, sink.cols[0].Validate(sub))
	assert.Less(t, sink.cols[0].RedCost, 0.0)
}

func TestKnapsackCapacityCeiling(t *testing.T) {
	sub := knapsackSub([]float64{-1}, []float64{1}, float64(1<<16+1), []float64{3})
	s := buildKnapsackSolver(t, sub)

	res, err := s.SolveExact(context.Background(), 0, 0, &collectSink{})
	require.NoError(t, err)
	assert.Equal(t, gobnp.StatusNotApplicable, res.Status, "oversized capacities are left to the MIP backend")
}

func TestKnapsackNotApplicable(t *testing.T) {
	cases := map[string]*gobnp.Subproblem{
		"continuous variable": {
			Block: 0, Obj: []float64{-1},
			G: mat.NewDense(1, 1, []float64{1}), H: []float64{5},
			Lower: []float64{0}, Upper: []float64{3}, Integral: []bool{false},
		},
		"two rows": {
			Block: 0, Obj: []float64{-1},
			G: mat.NewDense(2, 1, []float64{1, 2}), H: []float64{5, 8},
			Lower: []float64{0}, Upper: []float64{3}, Integral: []bool{true},
		},
		"fractional weight": {
			Block: 0, Obj: []float64{-1},
			G: mat.NewDense(1, 1, []float64{0.5}), H: []float64{5},
			Lower: []float64{0}, Upper: []float64{3}, Integral: []bool{true},
		},
		"negative weight": {
			Block: 0, Obj: []float64{-1},
			G: mat.NewDense(1, 1, []float64{-1}), H: []float64{5},
			Lower: []float64{0}, Upper: []float64{3}, Integral: []bool{true},
		},
		"nonzero lower bound": {
			Block: 0, Obj: []float64{-1},
			G: mat.NewDense(1, 1, []float64{1}), H: []float64{5},
			Lower: []float64{1}, Upper: []float64{3}, Integral: []bool{true},
		},
	}

	for name, sub := range cases {
		t.Run(name, func(t *testing.T) {
			s := buildKnapsackSolver(t, sub)
			res, err := s.SolveExact(context.Background(), 0, 0, &collectSink{})
			require.NoError(t, err)
			assert.Equal(t, gobnp.StatusNotApplicable, res.Status)
		})
	}
}

func TestKnapsackConstraintUpdateRechecks(t *testing.T) {
	sub := knapsackSub([]float64{-1}, []float64{1}, 5, []float64{3})
	s := buildKnapsackSolver(t, sub)

	res, err := s.SolveExact(context.Background(), 0, 0, &collectSink{})
	require.NoError(t, err)
	assert.Equal(t, gobnp.StatusOptimal, res.Status)

	// a generic branching row breaks the pure knapsack structure
	sub.Extra = append(sub.Extra, gobnp.BranchingConstraint{Name: "b", Coefs: []float64{1}, Upper: 1})
	require.NoError(t, s.Update(0, false, false, true))

	res, err = s.SolveExact(context.Background(), 0, 0, &collectSink{})
	require.NoError(t, err)
	assert.Equal(t, gobnp.StatusNotApplicable, res.Status)
}
