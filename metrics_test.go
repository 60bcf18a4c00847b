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
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.observeSolve("stub", RedcostPricing, false, StatusOptimal, time.Millisecond)
		m.observeRound(RedcostPricing, time.Millisecond, PoolStats{})
	})
}

func TestMetricsObserved(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	stub := &stubSolver{exact: true, exactFn: func(probnr int, convDual float64, sink ColumnSink) (SolveResult, error) {
		if _, err := sink.AddColumn(NewColumn(probnr, []float64{1}, false, -1)); err != nil {
			return SolveResult{}, err
		}
		return SolveResult{Status: StatusOptimal, LowerBound: -1, Cols: 1}, nil
	}}

	ctrl := initController(t, testDecomp(2), []Solver{stub}, WithMetrics(m))
	_, err := ctrl.PerformPricing(context.Background(), RoundInput{Type: RedcostPricing})
	require.NoError(t, err)

	assert.InDelta(t, 2, testutil.ToFloat64(m.solverCalls.WithLabelValues("stub", "redcost", "exact", "optimal")), delta)
	assert.InDelta(t, 1, testutil.ToFloat64(m.rounds.WithLabelValues("redcost")), delta)
	assert.InDelta(t, 2, testutil.ToFloat64(m.columns.WithLabelValues(outcomeAccepted)), delta)
}
