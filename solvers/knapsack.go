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

package solvers

import (
	"context"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/costela/gobnp"
)

// knapsack capacities beyond this are left to the MIP backend; the DP
// tables grow linearly with the capacity
const maxKnapsackCapacity = 1 << 16

// Knapsack is the specialized pricing backend for bounded knapsack
// subproblems: a single <= constraint over nonnegative integer
// variables with integral weights. It solves exactly by dynamic
// programming and heuristically by a greedy ratio fill.
type Knapsack struct {
	priority int

	subs   []*gobnp.Subproblem
	models []knapsackModel
}

type knapsackModel struct {
	ok       bool
	weights  []int
	capacity int
	ub       []int
}

// NewKnapsack creates the knapsack pricing backend with the given
// priority; it should usually outrank the generic MIP backend.
func NewKnapsack(priority int) *Knapsack {
	return &Knapsack{priority: priority}
}

func (s *Knapsack) Name() string        { return "knapsack" }
func (s *Knapsack) Description() string { return "dynamic-programming solver for bounded knapsack subproblems" }
func (s *Knapsack) Priority() int       { return s.priority }

func (s *Knapsack) HeuristicEnabled() bool { return true }
func (s *Knapsack) ExactEnabled() bool     { return true }

func (s *Knapsack) Init(context.Context) error { return nil }
func (s *Knapsack) Exit() error                { return nil }

func (s *Knapsack) BuildModels(subs []*gobnp.Subproblem) error {
	s.subs = subs
	s.models = make([]knapsackModel, len(subs))
	for i := range subs {
		s.models[i] = buildKnapsack(subs[i])
	}
	return nil
}

func (s *Knapsack) ReleaseModels() error {
	s.subs = nil
	s.models = nil
	return nil
}

func (s *Knapsack) Update(probnr int, _, boundsChanged, consChanged bool) error {
	if s.subs == nil {
		return errors.New("models not built")
	}
	if boundsChanged || consChanged {
		s.models[probnr] = buildKnapsack(s.subs[probnr])
	}
	return nil
}

// buildKnapsack checks the structural requirements and caches the
// integer view of the constraint.
func buildKnapsack(sub *gobnp.Subproblem) knapsackModel {
	var m knapsackModel
	if sub.A != nil || len(sub.Extra) != 0 || sub.G == nil || len(sub.H) != 1 {
		return m
	}
	n := sub.NVars()
	cap, ok := asInt(sub.H[0])
	if !ok || cap < 0 || cap > maxKnapsackCapacity {
		return m
	}
	m.weights = make([]int, n)
	m.ub = make([]int, n)
	row := sub.G.RawRowView(0)
	for i := 0; i < n; i++ {
		if !sub.Integral[i] || sub.Lower[i] != 0 || math.IsInf(sub.Upper[i], 1) {
			return knapsackModel{}
		}
		u, ok := asInt(sub.Upper[i])
		if !ok || u < 0 {
			return knapsackModel{}
		}
		w, ok := asInt(row[i])
		if !ok || w < 0 {
			return knapsackModel{}
		}
		m.weights[i] = w
		m.ub[i] = u
	}
	m.capacity = cap
	m.ok = true
	return m
}

func (s *Knapsack) SolveExact(_ context.Context, probnr int, convDual float64, sink gobnp.ColumnSink) (gobnp.SolveResult, error) {
	res := gobnp.SolveResult{Status: gobnp.StatusUnknown, LowerBound: math.Inf(-1)}
	m := s.models[probnr]
	if !m.ok {
		res.Status = gobnp.StatusNotApplicable
		return res, nil
	}
	sub := s.subs[probnr]

	x := s.solveDP(sub, m)
	return s.finish(sub, m, probnr, convDual, x, true, sink, res)
}

func (s *Knapsack) SolveHeuristic(_ context.Context, probnr int, convDual float64, _ gobnp.SolveLimits, sink gobnp.ColumnSink) (gobnp.SolveResult, error) {
	res := gobnp.SolveResult{Status: gobnp.StatusUnknown, LowerBound: math.Inf(-1)}
	m := s.models[probnr]
	if !m.ok {
		res.Status = gobnp.StatusNotApplicable
		return res, nil
	}
	sub := s.subs[probnr]

	x := s.solveGreedy(sub, m)
	return s.finish(sub, m, probnr, convDual, x, false, sink, res)
}

func (s *Knapsack) finish(sub *gobnp.Subproblem, m knapsackModel, probnr int, convDual float64, x []float64, exact bool, sink gobnp.ColumnSink, res gobnp.SolveResult) (gobnp.SolveResult, error) {
	z := rowDot(sub.Obj, x)

	if red := z - convDual; red < -tol {
		col := gobnp.NewColumn(probnr, x, false, red)
		accepted, err := sink.AddColumn(col)
		if err != nil {
			return res, err
		}
		if accepted {
			res.Cols = 1
		}
		res.Sols = 1
	}

	if exact {
		res.Status = gobnp.StatusOptimal
		res.LowerBound = z
	} else {
		// the greedy is deterministic and ignores the limits, so a
		// retry under larger limits cannot improve; reporting a limit
		// stop would invite exactly that retry
		res.Status = gobnp.StatusUnknown
	}
	return res, nil
}

type knapsackPiece struct {
	idx    int
	count  int
	weight int
	value  float64
}

// solveDP solves the bounded knapsack exactly: profitable items are
// split binarily into 0/1 pieces and a classic table DP picks the best
// packing. Zero-weight profitable items are taken outright.
func (s *Knapsack) solveDP(sub *gobnp.Subproblem, m knapsackModel) []float64 {
	n := sub.NVars()
	x := make([]float64, n)

	var pieces []knapsackPiece
	for i := 0; i < n; i++ {
		if sub.Obj[i] >= -tol || m.ub[i] == 0 {
			continue
		}
		if m.weights[i] == 0 {
			x[i] = float64(m.ub[i])
			continue
		}
		for remaining, k := m.ub[i], 1; remaining > 0; k *= 2 {
			if k > remaining {
				k = remaining
			}
			pieces = append(pieces, knapsackPiece{
				idx:    i,
				count:  k,
				weight: k * m.weights[i],
				value:  float64(k) * -sub.Obj[i],
			})
			remaining -= k
		}
	}
	if len(pieces) == 0 {
		return x
	}

	// rolling 1-D table; the descending weight loop keeps each piece
	// 0/1, the boolean rows allow the traceback
	cap := m.capacity
	dp := make([]float64, cap+1)
	take := make([][]bool, len(pieces))
	for p, pc := range pieces {
		row := make([]bool, cap+1)
		for w := cap; w >= pc.weight; w-- {
			if cand := dp[w-pc.weight] + pc.value; cand > dp[w] {
				dp[w] = cand
				row[w] = true
			}
		}
		take[p] = row
	}

	for p, w := len(pieces)-1, cap; p >= 0; p-- {
		if take[p][w] {
			pc := pieces[p]
			x[pc.idx] += float64(pc.count)
			w -= pc.weight
		}
	}
	return x
}

// solveGreedy fills the knapsack by descending value/weight ratio.
func (s *Knapsack) solveGreedy(sub *gobnp.Subproblem, m knapsackModel) []float64 {
	n := sub.NVars()
	x := make([]float64, n)

	order := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if sub.Obj[i] >= -tol || m.ub[i] == 0 {
			continue
		}
		if m.weights[i] == 0 {
			x[i] = float64(m.ub[i])
			continue
		}
		order = append(order, i)
	}
	sort.Slice(order, func(a, b int) bool {
		ra := -sub.Obj[order[a]] / float64(m.weights[order[a]])
		rb := -sub.Obj[order[b]] / float64(m.weights[order[b]])
		if ra != rb {
			return ra > rb
		}
		return order[a] < order[b]
	})

	left := m.capacity
	for _, i := range order {
		if m.weights[i] > left {
			continue
		}
		take := min(m.ub[i], left/m.weights[i])
		x[i] = float64(take)
		left -= take * m.weights[i]
	}
	return x
}

// asInt reports whether v is (numerically) an integer and returns it.
func asInt(v float64) (int, bool) {
	if math.IsInf(v, 0) || math.Abs(v-math.Round(v)) > tol {
		return 0, false
	}
	return int(math.Round(v)), true
}
