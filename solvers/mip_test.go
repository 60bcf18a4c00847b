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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/costela/gobnp"
)

const (
	delta = 0.0000001 // acceptable numerical deviation for test results
)

// collectSink gathers emitted columns without validation or dedup.
type collectSink struct {
	cols []*gobnp.Column
}

func (s *collectSink) AddColumn(col *gobnp.Column) (bool, error) {
	s.cols = append(s.cols, col)
	return true, nil
}

func buildMIP(t *testing.T, subs ...*gobnp.Subproblem) *MIP {
	t.Helper()

	s := NewMIP(50)
	require.NoError(t, s.Init(context.Background()))
	require.NoError(t, s.BuildModels(subs))
	return s
}

func TestMIPSolveIntegerOptimum(t *testing.T) {
	sub := &gobnp.Subproblem{
		Block:    0,
		Obj:      []float64{-1, -2},
		G:        mat.NewDense(1, 2, []float64{1, 1}),
		H:        []float64{3},
		Lower:    []float64{0, 0},
		Upper:    []float64{2, 2},
		Integral: []bool{true, true},
	}
	s := buildMIP(t, sub)

	sink := &collectSink{}
	res, err := s.SolveExact(context.Background(), 0, 0, sink)
	require.NoError(t, err)

	assert.Equal(t, gobnp.StatusOptimal, res.Status)
	assert.InDelta(t, -5, res.LowerBound, delta)
	require.Len(t, sink.cols, 1)
	assert.InDelta(t, -5, sink.cols[0].RedCost, delta)
	assert.Equal(t, []float64{1, 2}, sink.cols[0].Dense(2))
	assert.NoError(t, sink.cols[0].Validate(sub))
}

func TestMIPSolveBranches(t *testing.T) {
	// LP relaxation sits at x1 + x2 = 1.5, branching is required
	sub := &gobnp.Subproblem{
		Block:    0,
		Obj:      []float64{-1, -1},
		G:        mat.NewDense(1, 2, []float64{2, 2}),
		H:        []float64{3},
		Lower:    []float64{0, 0},
		Upper:    []float64{1, 1},
		Integral: []bool{true, true},
	}
	s := buildMIP(t, sub)

	sink := &collectSink{}
	res, err := s.SolveExact(context.Background(), 0, 0, sink)
	require.NoError(t, err)

	assert.Equal(t, gobnp.StatusOptimal, res.Status)
	assert.InDelta(t, -1, res.LowerBound, delta)
	assert.Greater(t, res.Nodes, int64(1))
	require.NotEmpty(t, sink.cols)
	assert.NoError(t, sink.cols[len(sink.cols)-1].Validate(sub))
}

func TestMIPRespectsConvexityDual(t *testing.T) {
	sub := &gobnp.Subproblem{
		Block:    0,
		Obj:      []float64{-1},
		Lower:    []float64{0},
		Upper:    []float64{1},
		Integral: []bool{true},
	}
	s := buildMIP(t, sub)

	// optimum is -1; against a convexity dual of -2 the reduced cost
	// is positive and no column must be emitted
	sink := &collectSink{}
	res, err := s.SolveExact(context.Background(), 0, -2, sink)
	require.NoError(t, err)

	assert.Equal(t, gobnp.StatusOptimal, res.Status)
	assert.InDelta(t, -1, res.LowerBound, delta)
	assert.Empty(t, sink.cols)
}

func TestMIPNodeLimit(t *testing.T) {
	sub := &gobnp.Subproblem{
		Block:    0,
		Obj:      []float64{-1, -1},
		G:        mat.NewDense(1, 2, []float64{2, 2}),
		H:        []float64{3},
		Lower:    []float64{0, 0},
		Upper:    []float64{1, 1},
		Integral: []bool{true, true},
	}
	s := buildMIP(t, sub)

	sink := &collectSink{}
	res, err := s.SolveHeuristic(context.Background(), 0, 0, gobnp.SolveLimits{Nodes: 1}, sink)
	require.NoError(t, err)

	assert.Equal(t, gobnp.StatusSolverLimit, res.Status)
	assert.Equal(t, int64(1), res.Nodes)
	// the open-node bound is still a valid dual bound
	assert.InDelta(t, -1.5, res.LowerBound, delta)
}

func TestMIPSolutionLimit(t *testing.T) {
	sub := &gobnp.Subproblem{
		Block:    0,
		Obj:      []float64{-1, -2},
		G:        mat.NewDense(1, 2, []float64{1, 1}),
		H:        []float64{3},
		Lower:    []float64{0, 0},
		Upper:    []float64{2, 2},
		Integral: []bool{true, true},
	}
	s := buildMIP(t, sub)

	sink := &collectSink{}
	res, err := s.SolveHeuristic(context.Background(), 0, 0, gobnp.SolveLimits{Sols: 1}, sink)
	require.NoError(t, err)

	assert.Equal(t, gobnp.StatusSolverLimit, res.Status)
	assert.Equal(t, 1, res.Sols)
	require.Len(t, sink.cols, 1)
}

func TestMIPInfeasible(t *testing.T) {
	sub := &gobnp.Subproblem{
		Block:    0,
		Obj:      []float64{-1},
		G:        mat.NewDense(1, 1, []float64{1}),
		H:        []float64{-1}, // x <= -1 against x >= 0
		Lower:    []float64{0},
		Upper:    []float64{5},
		Integral: []bool{true},
	}
	s := buildMIP(t, sub)

	sink := &collectSink{}
	res, err := s.SolveExact(context.Background(), 0, 0, sink)
	require.NoError(t, err)

	assert.Equal(t, gobnp.StatusInfeasible, res.Status)
	assert.Empty(t, sink.cols)
}

func TestMIPUnboundedEmitsRay(t *testing.T) {
	sub := &gobnp.Subproblem{
		Block:    0,
		Obj:      []float64{-1},
		Lower:    []float64{0},
		Upper:    []float64{math.Inf(1)},
		Integral: []bool{true},
	}
	s := buildMIP(t, sub)

	sink := &collectSink{}
	res, err := s.SolveExact(context.Background(), 0, 0, sink)
	require.NoError(t, err)

	assert.Equal(t, gobnp.StatusUnbounded, res.Status)
	require.Len(t, sink.cols, 1)

	ray := sink.cols[0]
	assert.True(t, ray.Ray)
	assert.InDelta(t, 1, ray.Dense(1)[0], delta)
	assert.Less(t, ray.RedCost, 0.0)
	assert.NoError(t, ray.Validate(sub))
}

func TestMIPUnroundableRay(t *testing.T) {
	// the cone optimum is d = (0.5, 1); rounding the integral component
	// up to (1, 1) leaves the cone row 2d0 - d1 <= 0
	sub := &gobnp.Subproblem{
		Block:    0,
		Obj:      []float64{-1, -1},
		G:        mat.NewDense(1, 2, []float64{2, -1}),
		H:        []float64{0},
		Lower:    []float64{0, 0},
		Upper:    []float64{math.Inf(1), math.Inf(1)},
		Integral: []bool{true, false},
	}
	s := buildMIP(t, sub)

	sink := &collectSink{}
	res, err := s.SolveExact(context.Background(), 0, 0, sink)
	require.NoError(t, err)

	// without a usable ray the subproblem must not count as determined
	assert.Equal(t, gobnp.StatusUnknown, res.Status)
	assert.Empty(t, sink.cols)
}

func TestMIPRayRetryWithRawBounds(t *testing.T) {
	sub := &gobnp.Subproblem{
		Block:    0,
		Obj:      []float64{-1},
		Lower:    []float64{0},
		Upper:    []float64{math.Inf(1)},
		Integral: []bool{true},
	}
	s := buildMIP(t, sub)

	// working bounds close the improving direction, the original
	// bounds do not; the second recovery attempt must find the ray
	nd := bnbNode{lower: []float64{0}, upper: []float64{5}, bound: math.Inf(-1)}

	sink := &collectSink{}
	res, err := s.emitRay(0, 0, nd, sink, 1, 0)
	require.NoError(t, err)

	assert.Equal(t, gobnp.StatusUnbounded, res.Status)
	require.Len(t, sink.cols, 1)
	assert.True(t, sink.cols[0].Ray)
	assert.InDelta(t, 1, sink.cols[0].Dense(1)[0], delta)
}

func TestMIPContextCancelled(t *testing.T) {
	sub := &gobnp.Subproblem{
		Block:    0,
		Obj:      []float64{-1},
		Lower:    []float64{0},
		Upper:    []float64{1},
		Integral: []bool{true},
	}
	s := buildMIP(t, sub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.SolveExact(ctx, 0, 0, &collectSink{})
	require.NoError(t, err)
	assert.Equal(t, gobnp.StatusUnknown, res.Status)
}

func TestMIPBoundUpdate(t *testing.T) {
	sub := &gobnp.Subproblem{
		Block:    0,
		Obj:      []float64{-1},
		Lower:    []float64{0},
		Upper:    []float64{3},
		Integral: []bool{true},
	}
	s := buildMIP(t, sub)

	sink := &collectSink{}
	res, err := s.SolveExact(context.Background(), 0, 0, sink)
	require.NoError(t, err)
	assert.InDelta(t, -3, res.LowerBound, delta)

	// variable branching tightened the bound
	sub.Upper[0] = 1.5
	require.NoError(t, s.Update(0, false, true, false))

	sink = &collectSink{}
	res, err = s.SolveExact(context.Background(), 0, 0, sink)
	require.NoError(t, err)
	assert.InDelta(t, -1, res.LowerBound, delta, "integral bound tightening rounds 1.5 down")
}
