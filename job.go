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

import "fmt"

// PricingJob is one unit of scheduled pricing work: a pricing problem
// paired with a cursor into the priority-ordered solver list, in
// either heuristic or exact mode. Jobs are round-scoped; the problems
// they reference are not.
type PricingJob struct {
	problem *PricingProblem
	solvers []Solver // shared, priority-ordered

	cursor     int // active solver; len(solvers) means exhausted
	heuristic  bool
	chunk      int
	score      float64
	nHeurIters int
}

// NewPricingJob creates a job for one pricing problem over the given
// priority-ordered solver list.
func NewPricingJob(problem *PricingProblem, solvers []Solver, chunk int) *PricingJob {
	return &PricingJob{
		problem: problem,
		solvers: solvers,
		cursor:  len(solvers),
		chunk:   chunk,
	}
}

// Setup records the job's mode and priority score for this round and
// rewinds the solver cursor.
func (j *PricingJob) Setup(heuristic bool, score float64) {
	j.heuristic = heuristic
	j.score = score
	j.nHeurIters = 0
	j.ResetSolver()
}

// Problem returns the pricing problem this job works on.
func (j *PricingJob) Problem() *PricingProblem { return j.problem }

// Heuristic reports whether the job's current attempts are heuristic.
func (j *PricingJob) Heuristic() bool { return j.heuristic }

// Chunk returns the dispatch batch this job was assigned to.
func (j *PricingJob) Chunk() int { return j.chunk }

// Score returns the priority score computed during Setup.
func (j *PricingJob) Score() float64 { return j.score }

// capable reports whether the solver supports the job's current mode.
func (j *PricingJob) capable(s Solver) bool {
	if j.heuristic {
		return s.HeuristicEnabled()
	}
	return s.ExactEnabled()
}

// CurrentSolver returns the solver the cursor points at, or nil if all
// solvers for the current mode are exhausted.
func (j *PricingJob) CurrentSolver() Solver {
	if j.cursor >= len(j.solvers) {
		return nil
	}
	return j.solvers[j.cursor]
}

// ResetSolver rewinds the cursor to the highest-priority solver
// supporting the job's current mode.
func (j *PricingJob) ResetSolver() {
	j.cursor = len(j.solvers)
	for i, s := range j.solvers {
		if j.capable(s) {
			j.cursor = i
			break
		}
	}
}

// NextSolver advances the cursor to the next solver supporting the
// job's current mode and returns it; nil means the job cannot make
// further progress in this mode. Calling NextSolver on an exhausted
// cursor is a contract violation.
func (j *PricingJob) NextSolver() Solver {
	if j.cursor >= len(j.solvers) {
		panic(fmt.Sprintf("next solver requested on exhausted job for problem %d", j.problem.Probnr()))
	}
	for j.cursor++; j.cursor < len(j.solvers); j.cursor++ {
		if j.capable(j.solvers[j.cursor]) {
			return j.solvers[j.cursor]
		}
	}
	return nil
}

// SetExact converts a heuristic job in place to exact mode and rewinds
// the solver cursor under the new mode. This is the heuristic→exact
// escalation path: the same job is retried exactly instead of being
// recreated.
func (j *PricingJob) SetExact() {
	if !j.heuristic {
		panic(fmt.Sprintf("job for problem %d is already exact", j.problem.Probnr()))
	}
	j.heuristic = false
	j.ResetSolver()
}

// ResetHeuristic clears the heuristic attempt counter.
func (j *PricingJob) ResetHeuristic() { j.nHeurIters = 0 }

// IncreaseNHeurIters counts one heuristic attempt on this job.
func (j *PricingJob) IncreaseNHeurIters() { j.nHeurIters++ }

// NHeurIters returns the number of heuristic attempts so far.
func (j *PricingJob) NHeurIters() int { return j.nHeurIters }
