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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobSolvers() []Solver {
	return []Solver{
		&stubSolver{name: "exactonly", priority: 10, exact: true},
		&stubSolver{name: "both", priority: 5, heur: true, exact: true},
	}
}

func TestJobCursorHeuristic(t *testing.T) {
	job := NewPricingJob(NewPricingProblem(0, 1), jobSolvers(), 0)
	job.Setup(true, 1.5)

	assert.True(t, job.Heuristic())
	assert.InDelta(t, 1.5, job.Score(), delta)

	// the cursor skips solvers without heuristic support
	require.NotNil(t, job.CurrentSolver())
	assert.Equal(t, "both", job.CurrentSolver().Name())

	assert.Nil(t, job.NextSolver())
	assert.Nil(t, job.CurrentSolver())
	assert.Panics(t, func() { job.NextSolver() }, "advancing an exhausted job")
}

func TestJobCursorExact(t *testing.T) {
	job := NewPricingJob(NewPricingProblem(0, 1), jobSolvers(), 0)
	job.Setup(false, 0)

	assert.Equal(t, "exactonly", job.CurrentSolver().Name())
	require.NotNil(t, job.NextSolver())
	assert.Equal(t, "both", job.CurrentSolver().Name())
	assert.Nil(t, job.NextSolver())
}

func TestJobSetExact(t *testing.T) {
	job := NewPricingJob(NewPricingProblem(3, 1), jobSolvers(), 0)
	job.Setup(true, 0)
	assert.Equal(t, "both", job.CurrentSolver().Name())

	// heuristic attempts exhausted, same job switches to exact mode
	job.SetExact()
	assert.False(t, job.Heuristic())
	assert.Equal(t, "exactonly", job.CurrentSolver().Name(), "cursor rewinds under the new mode")

	assert.Panics(t, func() { job.SetExact() }, "job is already exact")
}

func TestJobSetupRewinds(t *testing.T) {
	job := NewPricingJob(NewPricingProblem(0, 1), jobSolvers(), 0)

	job.Setup(false, 0)
	job.NextSolver()
	job.IncreaseNHeurIters()
	assert.Equal(t, 1, job.NHeurIters())

	job.Setup(false, 0)
	assert.Equal(t, "exactonly", job.CurrentSolver().Name())
	assert.Equal(t, 0, job.NHeurIters())

	job.IncreaseNHeurIters()
	job.ResetHeuristic()
	assert.Equal(t, 0, job.NHeurIters())
}

func TestJobNoCapableSolver(t *testing.T) {
	// nothing supports heuristic mode
	job := NewPricingJob(NewPricingProblem(0, 1), []Solver{
		&stubSolver{name: "exactonly", exact: true},
	}, 0)
	job.Setup(true, 0)

	assert.Nil(t, job.CurrentSolver())
}
