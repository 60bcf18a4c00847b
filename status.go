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

// SolveStatus describes the outcome of one solver attempt on one
// pricing subproblem.
type SolveStatus int

const (
	// StatusUnknown means the solver could not determine anything about
	// the subproblem (including solver-internal failures).
	StatusUnknown SolveStatus = iota
	// StatusNotApplicable means the solver cannot handle the structure
	// of this subproblem at all.
	StatusNotApplicable
	// StatusSolverLimit means the solver stopped at one of its working
	// limits and could do more if the limit were relaxed.
	StatusSolverLimit
	// StatusInfeasible means the subproblem was proven infeasible.
	StatusInfeasible
	// StatusUnbounded means the subproblem was proven unbounded; an
	// improving ray should have been extracted.
	StatusUnbounded
	// StatusOptimal means the subproblem was solved to proven optimality.
	StatusOptimal
)

// String returns a human-readable representation of the status.
func (s SolveStatus) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusNotApplicable:
		return "not applicable"
	case StatusSolverLimit:
		return "solver limit"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusOptimal:
		return "optimal"
	default:
		panic("unrecognized status")
	}
}

// Determined reports whether the status settles the subproblem for the
// current round: either an optimal solution was found or the
// subproblem was proven infeasible or unbounded.
func (s SolveStatus) Determined() bool {
	return s == StatusOptimal || s == StatusInfeasible || s == StatusUnbounded
}

// boundUsable reports whether a lower bound reported together with
// this status may be cached on the pricing problem.
func (s SolveStatus) boundUsable() bool {
	return s == StatusOptimal || s == StatusSolverLimit
}

// PricingType distinguishes the two reasons for entering a pricing
// round: restoring feasibility of the master LP (farkas) or improving
// its objective (reduced cost).
type PricingType int

const (
	FarkasPricing PricingType = iota
	RedcostPricing
)

func (t PricingType) String() string {
	switch t {
	case FarkasPricing:
		return "farkas"
	case RedcostPricing:
		return "redcost"
	default:
		panic("unrecognized pricing type")
	}
}
