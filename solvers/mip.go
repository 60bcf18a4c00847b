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

	"github.com/pkg/errors"

	"github.com/costela/gobnp"
)

// MIP is the general-purpose pricing backend: branch-and-bound over
// the simplex relaxation, branching on variable bounds. It supports
// both heuristic solving (honoring node, gap and solution limits) and
// exact solving.
type MIP struct {
	priority int

	subs   []*gobnp.Subproblem
	lower  [][]float64 // working bounds after preprocessing
	upper  [][]float64
	rawLo  [][]float64 // bounds as given, for the presolve-off ray retry
	rawHi  [][]float64
}

// NewMIP creates the MIP pricing backend with the given priority.
func NewMIP(priority int) *MIP {
	return &MIP{priority: priority}
}

func (s *MIP) Name() string        { return "mip" }
func (s *MIP) Description() string { return "branch-and-bound pricing solver over the simplex relaxation" }
func (s *MIP) Priority() int       { return s.priority }

func (s *MIP) HeuristicEnabled() bool { return true }
func (s *MIP) ExactEnabled() bool     { return true }

func (s *MIP) Init(context.Context) error { return nil }
func (s *MIP) Exit() error                { return nil }

// BuildModels caches the subproblems and preprocesses variable bounds
// (integral bounds are tightened to the nearest integers).
func (s *MIP) BuildModels(subs []*gobnp.Subproblem) error {
	s.subs = subs
	s.lower = make([][]float64, len(subs))
	s.upper = make([][]float64, len(subs))
	s.rawLo = make([][]float64, len(subs))
	s.rawHi = make([][]float64, len(subs))
	for i := range subs {
		s.refreshBounds(i)
	}
	return nil
}

func (s *MIP) ReleaseModels() error {
	s.subs = nil
	s.lower, s.upper, s.rawLo, s.rawHi = nil, nil, nil, nil
	return nil
}

func (s *MIP) refreshBounds(probnr int) {
	sub := s.subs[probnr]
	n := sub.NVars()
	lo := make([]float64, n)
	hi := make([]float64, n)
	copy(lo, sub.Lower)
	copy(hi, sub.Upper)
	for i := 0; i < n; i++ {
		if sub.Integral[i] {
			if !math.IsInf(lo[i], -1) {
				lo[i] = math.Ceil(lo[i] - tol)
			}
			if !math.IsInf(hi[i], 1) {
				hi[i] = math.Floor(hi[i] + tol)
			}
		}
	}
	s.lower[probnr] = lo
	s.upper[probnr] = hi
	s.rawLo[probnr] = append([]float64(nil), sub.Lower...)
	s.rawHi[probnr] = append([]float64(nil), sub.Upper...)
}

// Update re-reads the parts of the subproblem that changed. Objective
// and branching rows are read live at solve time, only bounds are
// cached.
func (s *MIP) Update(probnr int, _, boundsChanged, _ bool) error {
	if s.subs == nil {
		return errors.New("models not built")
	}
	if boundsChanged {
		s.refreshBounds(probnr)
	}
	return nil
}

func (s *MIP) SolveExact(ctx context.Context, probnr int, convDual float64, sink gobnp.ColumnSink) (gobnp.SolveResult, error) {
	return s.solve(ctx, probnr, convDual, gobnp.ExactLimits(), sink)
}

func (s *MIP) SolveHeuristic(ctx context.Context, probnr int, convDual float64, lim gobnp.SolveLimits, sink gobnp.ColumnSink) (gobnp.SolveResult, error) {
	return s.solve(ctx, probnr, convDual, lim, sink)
}

// bnbNode is one open node of the search, carrying its own bound
// overlay and the relaxation value of its parent as a dual bound.
type bnbNode struct {
	lower, upper []float64
	bound        float64
}

func (s *MIP) solve(ctx context.Context, probnr int, convDual float64, lim gobnp.SolveLimits, sink gobnp.ColumnSink) (gobnp.SolveResult, error) {
	sub := s.subs[probnr]
	res := gobnp.SolveResult{Status: gobnp.StatusUnknown, LowerBound: math.Inf(-1)}

	stack := []bnbNode{{
		lower: append([]float64(nil), s.lower[probnr]...),
		upper: append([]float64(nil), s.upper[probnr]...),
		bound: math.Inf(-1),
	}}

	incumbent := math.Inf(1)
	var nodes int64
	sols := 0

	openBound := func(extra float64) float64 {
		b := extra
		for _, nd := range stack {
			b = math.Min(b, nd.bound)
		}
		return b
	}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			res.Status = gobnp.StatusUnknown
			res.Nodes, res.Sols = nodes, sols
			return res, nil
		}
		if lim.Nodes > 0 && nodes >= lim.Nodes {
			res.Status = gobnp.StatusSolverLimit
			res.LowerBound = openBound(incumbent)
			res.Nodes, res.Sols = nodes, sols
			return res, nil
		}

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		x, z, st, err := solveRelaxation(sub, nd.lower, nd.upper)
		if err != nil {
			res.Nodes, res.Sols = nodes, sols
			return res, errors.Wrapf(err, "relaxation of block %d", probnr)
		}

		switch st {
		case relaxInfeasible:
			continue

		case relaxUnbounded:
			return s.emitRay(probnr, convDual, nd, sink, nodes, sols)

		case relaxOptimal:
			if z >= incumbent-tol {
				continue
			}

			frac := mostFractional(sub, x)
			if frac < 0 { // integer feasible
				incumbent = z
				red := z - convDual
				if red < -tol {
					col := gobnp.NewColumn(probnr, roundIntegral(sub, x), false, red)
					accepted, err := sink.AddColumn(col)
					if err != nil {
						res.Nodes, res.Sols = nodes, sols
						return res, err
					}
					if accepted {
						res.Cols++
					}
				}
				sols++
				if lim.Sols > 0 && int64(sols) >= lim.Sols {
					res.Status = gobnp.StatusSolverLimit
					res.LowerBound = openBound(incumbent)
					res.Nodes, res.Sols = nodes, sols
					return res, nil
				}
				continue
			}

			if lim.Gap > 0 && !math.IsInf(incumbent, 1) {
				bound := openBound(z)
				gap := (incumbent - bound) / math.Max(math.Abs(incumbent), 1)
				if gap <= lim.Gap {
					res.Status = gobnp.StatusSolverLimit
					res.LowerBound = bound
					res.Gap = gap
					res.Nodes, res.Sols = nodes, sols
					return res, nil
				}
			}

			down := bnbNode{
				lower: append([]float64(nil), nd.lower...),
				upper: append([]float64(nil), nd.upper...),
				bound: z,
			}
			up := bnbNode{
				lower: append([]float64(nil), nd.lower...),
				upper: append([]float64(nil), nd.upper...),
				bound: z,
			}
			down.upper[frac] = math.Floor(x[frac])
			up.lower[frac] = math.Ceil(x[frac])
			stack = append(stack, down, up)
		}
	}

	res.Nodes, res.Sols = nodes, sols
	if math.IsInf(incumbent, 1) {
		// all relaxations pruned without an integer point
		res.Status = gobnp.StatusInfeasible
		return res, nil
	}
	res.Status = gobnp.StatusOptimal
	res.LowerBound = incumbent
	return res, nil
}

// emitRay handles an unbounded relaxation: recover an improving ray
// from the direction problem, first under the preprocessed bounds,
// then (mirroring a presolve-disable retry) under the raw bounds.
// Integer components are rounded toward the improving direction; an
// unrecoverable or invalid ray soft-fails to an unknown status.
func (s *MIP) emitRay(probnr int, convDual float64, nd bnbNode, sink gobnp.ColumnSink, nodes int64, sols int) (gobnp.SolveResult, error) {
	sub := s.subs[probnr]
	res := gobnp.SolveResult{Status: gobnp.StatusUnknown, LowerBound: math.Inf(-1), Nodes: nodes, Sols: sols}

	d, ok, err := recoverRay(sub, nd.lower, nd.upper)
	if err != nil {
		return res, err
	}
	if !ok {
		d, ok, err = recoverRay(sub, s.rawLo[probnr], s.rawHi[probnr])
		if err != nil {
			return res, err
		}
	}
	if !ok {
		return res, nil
	}

	d = roundRay(sub, d)
	col := gobnp.NewColumn(probnr, d, true, rowDot(sub.Obj, d))
	if col.RedCost >= -tol || col.Validate(sub) != nil {
		// rounding pushed the direction out of the cone; without a
		// usable ray the subproblem stays undetermined
		return res, nil
	}
	accepted, err := sink.AddColumn(col)
	if err != nil {
		return res, err
	}

	// a sink rejection past this point can only be deduplication
	res.Status = gobnp.StatusUnbounded
	if accepted {
		res.Cols = 1
	}
	return res, nil
}

// mostFractional returns the integral variable farthest from an
// integer value, or -1 if the point is integer feasible.
func mostFractional(sub *gobnp.Subproblem, x []float64) int {
	best := -1
	bestDist := tol
	for i, v := range x {
		if !sub.Integral[i] {
			continue
		}
		dist := math.Abs(v - math.Round(v))
		if dist > bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

// roundIntegral snaps integral components of an (already integer
// feasible) point onto exact integers.
func roundIntegral(sub *gobnp.Subproblem, x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if sub.Integral[i] {
			v = math.Round(v)
		}
		out[i] = v
	}
	return out
}

func rowDot(row, x []float64) float64 {
	var s float64
	for i, v := range row {
		s += v * x[i]
	}
	return s
}
