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

import "math"

// ScoringMode selects one of the provided job-scoring strategies.
// Higher scores are dispatched first; ties break by ascending block
// index so the schedule stays reproducible. Scoring only affects which
// subproblems get solver attempts first, never correctness.
type ScoringMode int

const (
	// ScoringOff gives every job the same score; jobs run in block order.
	ScoringOff ScoringMode = iota
	// ScoringColumns prefers problems that yielded improving columns in
	// recent rounds.
	ScoringColumns
	// ScoringDualConv prefers problems with a large convexity dual, as
	// those have the most room for negative reduced cost.
	ScoringDualConv
	// ScoringExhaustion deprioritizes problems that already generated
	// many points and rays and are likely mined out.
	ScoringExhaustion
)

// ScoreInput is the per-job information available to a scoring
// strategy during round setup.
type ScoreInput struct {
	Probnr          int
	NColsLastRounds int
	ConvDual        float64
	NPoints         int
	NRays           int
	Heuristic       bool
}

// ScoreFunc computes a job's priority score. Custom strategies can be
// plugged in via WithScoreFunc.
type ScoreFunc func(ScoreInput) float64

func scoreFor(mode ScoringMode) ScoreFunc {
	switch mode {
	case ScoringOff:
		return func(ScoreInput) float64 { return 0 }
	case ScoringColumns:
		return func(in ScoreInput) float64 { return float64(in.NColsLastRounds) }
	case ScoringDualConv:
		return func(in ScoreInput) float64 { return math.Abs(in.ConvDual) }
	case ScoringExhaustion:
		return func(in ScoreInput) float64 { return -float64(in.NPoints + in.NRays) }
	default:
		panic("unrecognized scoring mode")
	}
}
