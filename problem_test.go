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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProblemWindow(t *testing.T) {
	p := NewPricingProblem(0, 3)

	p.Reset()
	p.Update(StatusOptimal, -1, 2)
	p.Reset()
	p.Update(StatusOptimal, -1, 0)
	p.Reset()
	p.Update(StatusOptimal, -1, 1)

	assert.Equal(t, 1, p.NColsLastRounds(1))
	assert.Equal(t, 1, p.NColsLastRounds(2))
	assert.Equal(t, 3, p.NColsLastRounds(3))

	// oldest round falls off the ring
	p.Reset()
	p.Update(StatusOptimal, -1, 0)
	assert.Equal(t, 1, p.NColsLastRounds(3))

	assert.Panics(t, func() { p.NColsLastRounds(4) })
	assert.Panics(t, func() { p.NColsLastRounds(0) })
}

func TestProblemWindowFewerRoundsThanWindow(t *testing.T) {
	p := NewPricingProblem(0, 10)

	p.Reset()
	p.Update(StatusOptimal, -1, 4)

	// a query over more rounds than were played only sums what exists
	assert.Equal(t, 4, p.NColsLastRounds(10))
}

func TestProblemAccumulatesWithinRound(t *testing.T) {
	p := NewPricingProblem(0, 3)
	p.Reset()

	p.Update(StatusSolverLimit, -10, 1)
	p.Update(StatusOptimal, -12, 2)

	assert.Equal(t, 3, p.NColsRound())
	assert.Equal(t, 2, p.NSolves())
	assert.Equal(t, StatusOptimal, p.Status())
	assert.InDelta(t, -12, p.LowerBound(), delta)
}

func TestProblemResetClearsRoundStateOnly(t *testing.T) {
	p := NewPricingProblem(0, 3)
	p.Reset()
	p.Update(StatusOptimal, -5, 2)
	p.recordColumn(false)
	p.recordColumn(true)

	p.Reset()

	assert.Equal(t, StatusUnknown, p.Status())
	assert.True(t, math.IsInf(p.LowerBound(), -1))
	assert.Equal(t, 0, p.NColsRound())

	// cumulative statistics survive
	assert.Equal(t, 1, p.NSolves())
	assert.Equal(t, 1, p.NPoints())
	assert.Equal(t, 1, p.NRays())
	assert.Equal(t, 2, p.NColsLastRounds(2))
}

func TestProblemLowerBoundSemantics(t *testing.T) {
	p := NewPricingProblem(0, 3)
	p.Reset()

	p.Update(StatusSolverLimit, -7, 0)
	assert.InDelta(t, -7, p.LowerBound(), delta)

	p.Update(StatusUnknown, 42, 0)
	assert.True(t, math.IsInf(p.LowerBound(), -1), "unusable bound must not stick")

	p.Update(StatusInfeasible, 0, 0)
	assert.True(t, math.IsInf(p.LowerBound(), 1))
}

func TestProblemBranchingData(t *testing.T) {
	p := NewPricingProblem(0, 3)

	assert.False(t, p.pendingBranchingCons())

	p.AddGenericBranchingData(BranchingConstraint{Name: "b1", Coefs: []float64{1}, Lower: math.Inf(-1), Upper: 1})
	assert.Len(t, p.BranchingConstraints(), 1)
	assert.True(t, p.pendingBranchingCons())
	assert.False(t, p.pendingBranchingCons(), "pending flag is consumed")

	p.AddGenericBranchingData(BranchingConstraint{Name: "b2", Coefs: []float64{1}, Lower: 0, Upper: math.Inf(1)})
	assert.True(t, p.pendingBranchingCons())
}

func TestProblemDoubleDispatchPanics(t *testing.T) {
	p := NewPricingProblem(7, 3)

	p.beginSolve()
	assert.Panics(t, func() { p.beginSolve() })
	p.endSolve()
	assert.Panics(t, func() { p.endSolve() })
}
