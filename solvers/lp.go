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

// LP is the pricing backend for purely continuous subproblems: one
// exact simplex solve per attempt. Subproblems with integrality
// constraints are not applicable.
type LP struct {
	priority   int
	subs       []*gobnp.Subproblem
	applicable []bool
}

// NewLP creates the LP pricing backend with the given priority.
func NewLP(priority int) *LP {
	return &LP{priority: priority}
}

func (s *LP) Name() string        { return "lp" }
func (s *LP) Description() string { return "simplex pricing solver for continuous subproblems" }
func (s *LP) Priority() int       { return s.priority }

// LP solving is always exact; there is no cheaper mode to offer.
func (s *LP) HeuristicEnabled() bool { return false }
func (s *LP) ExactEnabled() bool     { return true }

func (s *LP) Init(context.Context) error { return nil }
func (s *LP) Exit() error                { return nil }

func (s *LP) BuildModels(subs []*gobnp.Subproblem) error {
	s.subs = subs
	s.applicable = make([]bool, len(subs))
	for i, sub := range subs {
		s.applicable[i] = continuous(sub)
	}
	return nil
}

func (s *LP) ReleaseModels() error {
	s.subs = nil
	s.applicable = nil
	return nil
}

func (s *LP) Update(probnr int, _, _, _ bool) error {
	if s.subs == nil {
		return errors.New("models not built")
	}
	// everything is read live at solve time
	return nil
}

func (s *LP) SolveExact(_ context.Context, probnr int, convDual float64, sink gobnp.ColumnSink) (gobnp.SolveResult, error) {
	res := gobnp.SolveResult{Status: gobnp.StatusUnknown, LowerBound: math.Inf(-1), Nodes: 1}
	if !s.applicable[probnr] {
		res.Status = gobnp.StatusNotApplicable
		return res, nil
	}
	sub := s.subs[probnr]

	x, z, st, err := solveRelaxation(sub, sub.Lower, sub.Upper)
	if err != nil {
		return res, errors.Wrapf(err, "solving block %d", probnr)
	}

	switch st {
	case relaxInfeasible:
		res.Status = gobnp.StatusInfeasible
		return res, nil

	case relaxUnbounded:
		d, ok, rayErr := recoverRay(sub, sub.Lower, sub.Upper)
		if rayErr != nil {
			return res, rayErr
		}
		if !ok {
			return res, nil // soft failure, stays unknown
		}
		col := gobnp.NewColumn(probnr, d, true, rowDot(sub.Obj, d))
		accepted, addErr := sink.AddColumn(col)
		if addErr != nil {
			return res, addErr
		}
		res.Status = gobnp.StatusUnbounded
		if accepted {
			res.Cols = 1
		}
		return res, nil

	default:
		res.Status = gobnp.StatusOptimal
		res.LowerBound = z
		if red := z - convDual; red < -tol {
			col := gobnp.NewColumn(probnr, x, false, red)
			accepted, addErr := sink.AddColumn(col)
			if addErr != nil {
				return res, addErr
			}
			if accepted {
				res.Cols = 1
			}
			res.Sols = 1
		}
		return res, nil
	}
}

func (s *LP) SolveHeuristic(context.Context, int, float64, gobnp.SolveLimits, gobnp.ColumnSink) (gobnp.SolveResult, error) {
	return gobnp.SolveResult{Status: gobnp.StatusNotApplicable}, nil
}

func continuous(sub *gobnp.Subproblem) bool {
	for _, integral := range sub.Integral {
		if integral {
			return false
		}
	}
	return true
}
