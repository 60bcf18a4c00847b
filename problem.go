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
	"fmt"
	"math"
	"sync/atomic"
)

// PricingProblem is the per-block runtime bookkeeping of the pricing
// controller: round status, lower bound, column-yield history and the
// generic-branching data accumulated along the current path. It is
// created once per block and lives for the whole solving process;
// per-round state is cleared via Reset.
//
// PricingProblem is pure bookkeeping; contract violations (double
// dispatch, window misuse) are programming errors and panic.
type PricingProblem struct {
	probnr int

	status     SolveStatus
	lowerBound float64

	nColsRound int // improving columns found this round
	nSolves    int // cumulative solver attempts
	nPoints    int // cumulative point columns generated
	nRays      int // cumulative ray columns generated

	window    []int // per-round yields, ring buffer
	windowPos int
	rounds    int // number of Reset calls so far

	branchCons       []BranchingConstraint
	nextBranchCons   int  // index of the next unprocessed branching constraint
	consMaterialized bool // current branching constraint already in the subproblem

	inFlight int32 // busy flag guarding against double dispatch
}

// NewPricingProblem creates the bookkeeping state for one block. The
// window size bounds how far back NColsLastRounds can look.
func NewPricingProblem(probnr, windowSize int) *PricingProblem {
	if windowSize < 1 {
		windowSize = 1
	}
	return &PricingProblem{
		probnr:     probnr,
		status:     StatusUnknown,
		lowerBound: math.Inf(-1),
		window:     make([]int, windowSize),
	}
}

// Probnr returns the block index of the problem.
func (p *PricingProblem) Probnr() int { return p.probnr }

// Status returns the status reported by the last solver attempt of the
// current round.
func (p *PricingProblem) Status() SolveStatus { return p.status }

// LowerBound returns the current lower bound of the subproblem. It is
// only meaningful while the status is optimal or solver-limit.
func (p *PricingProblem) LowerBound() float64 { return p.lowerBound }

// NColsRound returns the number of improving columns found in the
// current round.
func (p *PricingProblem) NColsRound() int { return p.nColsRound }

// NSolves returns the cumulative number of solver attempts on this
// problem.
func (p *PricingProblem) NSolves() int { return p.nSolves }

// NPoints returns the cumulative number of point columns generated.
func (p *PricingProblem) NPoints() int { return p.nPoints }

// NRays returns the cumulative number of ray columns generated.
func (p *PricingProblem) NRays() int { return p.nRays }

// Reset prepares the problem for a new pricing round: the round status
// and counters are cleared and the yield window advances by one slot.
// Cumulative statistics and branching data are untouched.
func (p *PricingProblem) Reset() {
	p.windowPos = (p.windowPos + 1) % len(p.window)
	p.window[p.windowPos] = 0
	p.rounds++

	p.nColsRound = 0
	p.status = StatusUnknown
	p.lowerBound = math.Inf(-1)
}

// Update records the outcome of one finished solver attempt. The
// status is overwritten; the lower bound is only accepted for statuses
// under which it is usable (an infeasible or unbounded outcome
// overrides any cached bound for the round). Improving-column counts
// accumulate into the round counter and the sliding window.
func (p *PricingProblem) Update(status SolveStatus, lowerBound float64, nCols int) {
	p.status = status
	switch {
	case status.boundUsable():
		p.lowerBound = lowerBound
	case status == StatusInfeasible:
		p.lowerBound = math.Inf(1)
	default:
		p.lowerBound = math.Inf(-1)
	}

	p.nColsRound += nCols
	p.window[p.windowPos] += nCols
	p.nSolves++
}

// NColsLastRounds returns the total improving-column yield over the
// last k rounds, including the current one. k must not exceed the
// window size.
func (p *PricingProblem) NColsLastRounds(k int) int {
	if k < 1 || k > len(p.window) {
		panic(fmt.Sprintf("window query for %d rounds outside window of size %d", k, len(p.window)))
	}
	if k > p.rounds {
		k = p.rounds
	}
	sum := 0
	for i := 0; i < k; i++ {
		sum += p.window[(p.windowPos-i+len(p.window))%len(p.window)]
	}
	return sum
}

// recordColumn tracks a generated column in the cumulative
// point/ray statistics.
func (p *PricingProblem) recordColumn(ray bool) {
	if ray {
		p.nRays++
	} else {
		p.nPoints++
	}
}

// AddGenericBranchingData appends a branching constraint/dual pair for
// this block and marks it pending, so the next solver update is issued
// with consChanged set.
func (p *PricingProblem) AddGenericBranchingData(cons BranchingConstraint) {
	p.branchCons = append(p.branchCons, cons)
	p.consMaterialized = false
}

// BranchingConstraints returns the accumulated branching data.
func (p *PricingProblem) BranchingConstraints() []BranchingConstraint {
	return p.branchCons
}

// pendingBranchingCons reports whether branching constraints were
// added since the last solver update and marks them processed.
func (p *PricingProblem) pendingBranchingCons() bool {
	if p.consMaterialized || p.nextBranchCons >= len(p.branchCons) {
		return false
	}
	p.nextBranchCons = len(p.branchCons)
	p.consMaterialized = true
	return true
}

// beginSolve marks the problem as having a dispatched, uncollected
// job. At most one job may be in flight per problem.
func (p *PricingProblem) beginSolve() {
	if !atomic.CompareAndSwapInt32(&p.inFlight, 0, 1) {
		panic(fmt.Sprintf("pricing problem %d dispatched twice", p.probnr))
	}
}

// endSolve clears the busy flag set by beginSolve.
func (p *PricingProblem) endSolve() {
	if !atomic.CompareAndSwapInt32(&p.inFlight, 1, 0) {
		panic(fmt.Sprintf("pricing problem %d collected without dispatch", p.probnr))
	}
}
