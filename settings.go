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

import "time"

// Settings are the numeric knobs of the pricing controller. All fields
// have working defaults via DefaultSettings; zero values generally
// disable the corresponding mechanism.
type Settings struct {
	// ChunkSize groups sorted jobs into batches that are dispatched
	// one after the other; 0 puts all jobs into a single chunk.
	ChunkSize int

	// MaxConcurrency bounds how many jobs of a chunk run in parallel.
	MaxConcurrency int

	// ColumnWindow is the size of the per-problem sliding window of
	// round yields.
	ColumnWindow int

	// SkipAfterRounds skips a problem in heuristic rounds when it
	// yielded no columns in that many consecutive recent rounds (and
	// has been attempted at least that often); 0 never skips.
	SkipAfterRounds int

	// MaxColsRoundFactor scales the early-stop threshold: once
	// ceil(factor * scheduled jobs) columns were accepted this round,
	// no further jobs are dispatched. 0 disables the early stop.
	MaxColsRoundFactor float64

	// HeurPricingEnabled allows heuristic rounds at all. Farkas rounds
	// are always exact.
	HeurPricingEnabled bool

	// MaxHeurRoundsWithoutCols disables heuristic mode once that many
	// consecutive heuristic rounds yielded no columns; heuristic mode
	// re-arms as soon as a round yields columns again.
	MaxHeurRoundsWithoutCols int

	// MaxHeurIters bounds how often one job may retry the same solver
	// heuristically (with escalated limits) before moving on.
	MaxHeurIters int

	// Scoring selects the job-ordering strategy.
	Scoring ScoringMode

	// Limits configures the adaptive per-problem solver limits.
	Limits LimitSettings

	// RoundTimeout is the wall-clock budget for one pricing round;
	// when exceeded, no further jobs are dispatched and the round is
	// reported as incomplete. 0 disables the budget.
	RoundTimeout time.Duration
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		ChunkSize:                0,
		MaxConcurrency:           1,
		ColumnWindow:             15,
		SkipAfterRounds:          0,
		MaxColsRoundFactor:       0,
		HeurPricingEnabled:       true,
		MaxHeurRoundsWithoutCols: 3,
		MaxHeurIters:             2,
		Scoring:                  ScoringOff,
		Limits:                   DefaultLimitSettings(),
	}
}
