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

package gobnp

import (
	"context"
	"sort"
	"time"
)

// SolveResult is what a solver attempt reports back to the scheduler.
// Columns themselves travel through the ColumnSink, not through the
// result.
type SolveResult struct {
	Status     SolveStatus
	LowerBound float64 // valid dual bound for the subproblem; -inf if none
	Cols       int     // improving columns emitted by this attempt

	// backend statistics, used to pick the limit to escalate
	Nodes int64   // nodes actually explored
	Sols  int     // improving solutions encountered
	Gap   float64 // residual relative gap, 0 if solved to optimality
}

// Solver is the plugin boundary for pricing solver backends. A solver
// is stateful per subproblem index: Update and Solve* calls for
// different subproblems on the same solver must not interleave without
// an Update call in between, which the controller guarantees by never
// running two jobs on the same (solver, subproblem) pair concurrently.
//
// Solve calls are blocking; the backend runs to its own stopping
// criterion. Both entry points emit improving columns directly into
// the sink and report the attempt's outcome.
type Solver interface {
	Name() string
	Description() string
	// Priority orders solvers: higher-priority solvers are tried first.
	Priority() int
	HeuristicEnabled() bool
	ExactEnabled() bool

	// Init and Exit frame the whole solving process.
	Init(ctx context.Context) error
	Exit() error

	// BuildModels translates the pricing subproblems into the backend's
	// native models; ReleaseModels drops them.
	BuildModels(subs []*Subproblem) error
	ReleaseModels() error

	// Update notifies the backend that parts of a subproblem changed
	// since its last solve.
	Update(probnr int, objChanged, boundsChanged, consChanged bool) error

	SolveExact(ctx context.Context, probnr int, convDual float64, sink ColumnSink) (SolveResult, error)
	SolveHeuristic(ctx context.Context, probnr int, convDual float64, lim SolveLimits, sink ColumnSink) (SolveResult, error)
}

// sortSolvers returns the solvers ordered by descending priority,
// ties broken by name for reproducibility.
func sortSolvers(solvers []Solver) []Solver {
	sorted := make([]Solver, len(solvers))
	copy(sorted, solvers)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority() != sorted[j].Priority() {
			return sorted[i].Priority() > sorted[j].Priority()
		}
		return sorted[i].Name() < sorted[j].Name()
	})
	return sorted
}

// SolverStats aggregates per-solver call counts and wall time, split
// by pricing type and heuristic/exact mode.
type SolverStats struct {
	Calls [2][2]int           // [PricingType][mode]; mode 0 exact, 1 heuristic
	Time  [2][2]time.Duration // same indexing
	Cols  int
}

func modeIndex(heuristic bool) int {
	if heuristic {
		return 1
	}
	return 0
}

func (s *SolverStats) record(t PricingType, heuristic bool, d time.Duration, cols int) {
	s.Calls[t][modeIndex(heuristic)]++
	s.Time[t][modeIndex(heuristic)] += d
	s.Cols += cols
}
