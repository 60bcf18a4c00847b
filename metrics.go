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

	"github.com/prometheus/client_golang/prometheus"
)

const (
	solverLabel  = "solver"
	typeLabel    = "type"
	modeLabel    = "mode"
	statusLabel  = "status"
	outcomeLabel = "outcome"

	outcomeAccepted  = "accepted"
	outcomeDuplicate = "duplicate"
	outcomeDropped   = "dropped"
)

// Metrics holds the prometheus instrumentation of the pricing
// controller. Attach via WithMetrics and register on a Registerer of
// your choice.
type Metrics struct {
	solverCalls   *prometheus.CounterVec
	solverTime    *prometheus.CounterVec
	columns       *prometheus.CounterVec
	roundDuration prometheus.Histogram
	rounds        *prometheus.CounterVec
}

// NewMetrics creates unregistered pricing metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		solverCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gobnp_solver_calls_total",
			Help: "Number of pricing solver attempts.",
		}, []string{solverLabel, typeLabel, modeLabel, statusLabel}),
		solverTime: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gobnp_solver_seconds_total",
			Help: "Wall time spent in pricing solver attempts.",
		}, []string{solverLabel, typeLabel, modeLabel}),
		columns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gobnp_columns_total",
			Help: "Columns offered to the column pool, by outcome.",
		}, []string{outcomeLabel}),
		roundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gobnp_round_duration_seconds",
			Help:    "Duration of pricing rounds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gobnp_rounds_total",
			Help: "Number of pricing rounds, by pricing type.",
		}, []string{typeLabel}),
	}
}

// Register registers all collectors on r.
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.solverCalls, m.solverTime, m.columns, m.roundDuration, m.rounds,
	} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func modeName(heuristic bool) string {
	if heuristic {
		return "heuristic"
	}
	return "exact"
}

func (m *Metrics) observeSolve(solver string, t PricingType, heuristic bool, status SolveStatus, d time.Duration) {
	if m == nil {
		return
	}
	m.solverCalls.WithLabelValues(solver, t.String(), modeName(heuristic), status.String()).Inc()
	m.solverTime.WithLabelValues(solver, t.String(), modeName(heuristic)).Add(d.Seconds())
}

func (m *Metrics) observeRound(t PricingType, d time.Duration, delta PoolStats) {
	if m == nil {
		return
	}
	m.rounds.WithLabelValues(t.String()).Inc()
	m.roundDuration.Observe(d.Seconds())
	m.columns.WithLabelValues(outcomeAccepted).Add(float64(delta.Accepted))
	m.columns.WithLabelValues(outcomeDuplicate).Add(float64(delta.Duplicates))
	m.columns.WithLabelValues(outcomeDropped).Add(float64(delta.Dropped))
}
