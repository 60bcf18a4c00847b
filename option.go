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
	"time"

	"github.com/sirupsen/logrus"
)

type Option func(*Controller) error

// WithLogger sets the logger used by the controller; by default all
// output is discarded.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Controller) error {
		c.logger = logger

		return nil
	}
}

// WithSettings replaces the full settings block.
func WithSettings(s Settings) Option {
	return func(c *Controller) error {
		c.settings = s
		c.score = scoreFor(s.Scoring)

		return nil
	}
}

// WithChunkSize sets the dispatch batch size; 0 disables chunking.
func WithChunkSize(n int) Option {
	return func(c *Controller) error {
		c.settings.ChunkSize = n

		return nil
	}
}

// WithMaxConcurrency bounds how many jobs of a chunk run in parallel.
func WithMaxConcurrency(n int) Option {
	return func(c *Controller) error {
		c.settings.MaxConcurrency = n

		return nil
	}
}

// WithScoring selects one of the provided scoring strategies.
func WithScoring(mode ScoringMode) Option {
	return func(c *Controller) error {
		c.settings.Scoring = mode
		c.score = scoreFor(mode)

		return nil
	}
}

// WithScoreFunc plugs in a custom scoring strategy.
func WithScoreFunc(f ScoreFunc) Option {
	return func(c *Controller) error {
		c.score = f

		return nil
	}
}

// WithBranchingSource connects the external branching infrastructure;
// it is polled at the start of every round.
func WithBranchingSource(src BranchingSource) Option {
	return func(c *Controller) error {
		c.branching = src

		return nil
	}
}

// WithMetrics attaches prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(c *Controller) error {
		c.metrics = m

		return nil
	}
}

// WithRoundTimeout sets the wall-clock budget per pricing round.
func WithRoundTimeout(d time.Duration) Option {
	return func(c *Controller) error {
		c.settings.RoundTimeout = d

		return nil
	}
}
