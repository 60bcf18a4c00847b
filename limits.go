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

// SolveLimits are the working limits handed to a heuristic solver
// attempt. A zero value means unlimited (respectively zero gap), which
// is also the sentinel used for exact solving.
type SolveLimits struct {
	Nodes int64   // max branch-and-bound nodes; <=0 unlimited
	Gap   float64 // relative gap at which the solver may stop
	Sols  int64   // max improving solutions; <=0 unlimited
}

// ExactLimits returns the limit sentinels for exact solving: unlimited
// nodes and solutions, zero gap.
func ExactLimits() SolveLimits {
	return SolveLimits{}
}

// LimitSettings holds the global start values and growth factors for
// the per-problem adaptive limits. Factors above 1 multiply the
// current limit on escalation; factors at or below 1 fall back to
// adding (respectively subtracting, for the gap) the start value.
type LimitSettings struct {
	StartNodes int64
	NodeFactor float64
	StartGap   float64
	GapFactor  float64
	StartSols  int64
	SolFactor  float64
}

// DefaultLimitSettings mirrors the documented knob defaults.
func DefaultLimitSettings() LimitSettings {
	return LimitSettings{
		StartNodes: 1000,
		NodeFactor: 2,
		StartGap:   0.2,
		GapFactor:  0.8,
		StartSols:  10,
		SolFactor:  2,
	}
}

// Start returns the initial limits for a fresh pricing problem.
func (ls LimitSettings) Start() SolveLimits {
	return SolveLimits{
		Nodes: ls.StartNodes,
		Gap:   ls.StartGap,
		Sols:  ls.StartSols,
	}
}

// escalate relaxes exactly one limit after a solver-limit outcome,
// depending on which limit was hit:
//
//   - the solver stopped on the gap criterion (residual gap within the
//     configured gap): shrink the gap toward exactness;
//   - the node limit was exhausted while an incumbent exists: grow the
//     node limit;
//   - otherwise the solution count was the binding limit: grow it.
func (ls LimitSettings) escalate(lim *SolveLimits, res SolveResult) {
	switch {
	case lim.Gap > 0 && res.Gap > 0 && res.Gap <= lim.Gap:
		if ls.GapFactor > 0 && ls.GapFactor < 1 {
			lim.Gap *= ls.GapFactor
		} else {
			lim.Gap -= ls.StartGap
		}
		if lim.Gap < 0 {
			lim.Gap = 0
		}
	case lim.Nodes > 0 && res.Nodes >= lim.Nodes && res.Sols > 0:
		if ls.NodeFactor > 1 {
			lim.Nodes = int64(float64(lim.Nodes) * ls.NodeFactor)
		} else {
			lim.Nodes += ls.StartNodes
		}
	default:
		if lim.Sols > 0 {
			if ls.SolFactor > 1 {
				lim.Sols = int64(float64(lim.Sols) * ls.SolFactor)
			} else {
				lim.Sols += ls.StartSols
			}
		}
	}
}
