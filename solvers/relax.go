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
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/costela/gobnp"
)

const tol = 1e-6

type relaxStatus int

const (
	relaxOptimal relaxStatus = iota
	relaxInfeasible
	relaxUnbounded
)

// row is one linear constraint in the original variable space.
type row struct {
	coefs []float64
	rhs   float64
	eq    bool
}

// stdForm is a subproblem relaxation brought into the equality
// standard form min c·y, A y = b, y >= 0 expected by the simplex:
// finite lower bounds are shifted out, upper-bounded-only variables
// are mirrored, free variables are split, inequality rows get slack
// columns.
type stdForm struct {
	n     int // original variables
	ncols int // transformed variables (before slacks)

	split []bool    // variable is represented as y⁺ - y⁻
	neg   []bool    // variable is mirrored (x = off - y)
	off   []float64 // affine offset per variable
	col   []int     // first transformed column of each variable

	c        []float64
	constant float64

	eqRows []row // transformed, rhs adjusted
	leRows []row
}

// standardize builds the standard form of sub's LP relaxation under
// the given working bounds (which may be tighter than the
// subproblem's own, e.g. through branching).
func standardize(sub *gobnp.Subproblem, lower, upper []float64) (*stdForm, error) {
	n := sub.NVars()
	f := &stdForm{
		n:     n,
		split: make([]bool, n),
		neg:   make([]bool, n),
		off:   make([]float64, n),
		col:   make([]int, n),
	}

	for i := 0; i < n; i++ {
		lo, hi := lower[i], upper[i]
		if lo > hi+tol {
			return nil, errors.Errorf("variable %d has crossed working bounds", i)
		}
		f.col[i] = f.ncols
		switch {
		case math.IsInf(lo, -1) && math.IsInf(hi, 1):
			f.split[i] = true
			f.ncols += 2
		case math.IsInf(lo, -1):
			f.neg[i] = true
			f.off[i] = hi
			f.ncols++
		default:
			f.off[i] = lo
			f.ncols++
		}
	}

	var rows []row
	if sub.A != nil {
		for r := 0; r < len(sub.B); r++ {
			rows = append(rows, row{coefs: sub.A.RawRowView(r), rhs: sub.B[r], eq: true})
		}
	}
	if sub.G != nil {
		for r := 0; r < len(sub.H); r++ {
			rows = append(rows, row{coefs: sub.G.RawRowView(r), rhs: sub.H[r]})
		}
	}
	for _, bc := range sub.Extra {
		if !math.IsInf(bc.Upper, 1) {
			rows = append(rows, row{coefs: bc.Coefs, rhs: bc.Upper})
		}
		if !math.IsInf(bc.Lower, -1) {
			rows = append(rows, row{coefs: negated(bc.Coefs), rhs: -bc.Lower})
		}
	}
	// doubly-finite variables keep their upper bound as an explicit row
	for i := 0; i < n; i++ {
		if !f.split[i] && !f.neg[i] && !math.IsInf(upper[i], 1) {
			coefs := make([]float64, n)
			coefs[i] = 1
			rows = append(rows, row{coefs: coefs, rhs: upper[i]})
		}
	}

	for _, r := range rows {
		tr := f.transformRow(r)
		if tr.eq {
			f.eqRows = append(f.eqRows, tr)
		} else {
			f.leRows = append(f.leRows, tr)
		}
	}

	f.c = make([]float64, f.ncols)
	for i := 0; i < n; i++ {
		f.constant += sub.Obj[i] * f.off[i]
		switch {
		case f.split[i]:
			f.c[f.col[i]] = sub.Obj[i]
			f.c[f.col[i]+1] = -sub.Obj[i]
		case f.neg[i]:
			f.c[f.col[i]] = -sub.Obj[i]
		default:
			f.c[f.col[i]] = sub.Obj[i]
		}
	}

	return f, nil
}

// transformRow rewrites a constraint from original into transformed
// variable space, folding the affine offsets into the right-hand side.
func (f *stdForm) transformRow(r row) row {
	coefs := make([]float64, f.ncols)
	rhs := r.rhs
	for i, a := range r.coefs {
		if a == 0 {
			continue
		}
		rhs -= a * f.off[i]
		switch {
		case f.split[i]:
			coefs[f.col[i]] = a
			coefs[f.col[i]+1] = -a
		case f.neg[i]:
			coefs[f.col[i]] = -a
		default:
			coefs[f.col[i]] = a
		}
	}
	return row{coefs: coefs, rhs: rhs, eq: r.eq}
}

// recover maps a transformed solution vector back to original space.
func (f *stdForm) recover(y []float64) []float64 {
	x := make([]float64, f.n)
	for i := 0; i < f.n; i++ {
		switch {
		case f.split[i]:
			x[i] = y[f.col[i]] - y[f.col[i]+1]
		case f.neg[i]:
			x[i] = f.off[i] - y[f.col[i]]
		default:
			x[i] = f.off[i] + y[f.col[i]]
		}
	}
	return x
}

// solve runs the simplex on the standard form.
func (f *stdForm) solve() ([]float64, float64, relaxStatus, error) {
	nrows := len(f.eqRows) + len(f.leRows)
	if nrows == 0 {
		// pure box problem: any negative cost direction is unbounded
		for _, cj := range f.c {
			if cj < -tol {
				return nil, 0, relaxUnbounded, nil
			}
		}
		return f.recover(make([]float64, f.ncols)), f.constant, relaxOptimal, nil
	}

	ncols := f.ncols + len(f.leRows)
	a := mat.NewDense(nrows, ncols, nil)
	b := make([]float64, nrows)
	c := make([]float64, ncols)
	copy(c, f.c)

	for r, tr := range f.eqRows {
		for j, v := range tr.coefs {
			a.Set(r, j, v)
		}
		b[r] = tr.rhs
	}
	for k, tr := range f.leRows {
		r := len(f.eqRows) + k
		for j, v := range tr.coefs {
			a.Set(r, j, v)
		}
		a.Set(r, f.ncols+k, 1) // slack
		b[r] = tr.rhs
	}

	z, y, err := lp.Simplex(c, a, b, 0, nil)
	switch err {
	case nil:
		return f.recover(y[:f.ncols]), z + f.constant, relaxOptimal, nil
	case lp.ErrInfeasible:
		return nil, 0, relaxInfeasible, nil
	case lp.ErrUnbounded:
		return nil, 0, relaxUnbounded, nil
	default:
		return nil, 0, relaxOptimal, errors.Wrap(err, "simplex")
	}
}

// solveRelaxation is the one-call convenience used by the backends.
func solveRelaxation(sub *gobnp.Subproblem, lower, upper []float64) ([]float64, float64, relaxStatus, error) {
	f, err := standardize(sub, lower, upper)
	if err != nil {
		return nil, 0, relaxOptimal, err
	}
	return f.solve()
}

func negated(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = -x
	}
	return out
}
