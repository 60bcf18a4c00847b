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

	"github.com/costela/gobnp"
)

// coneProblem builds the recession-cone direction problem of sub: the
// same rows with zero right-hand sides, variables boxed to [-1, 1] but
// only open toward sides left free by infinite bounds, minimizing the
// current objective. A strictly negative optimum yields an improving
// ray.
func coneProblem(sub *gobnp.Subproblem) *gobnp.Subproblem {
	n := sub.NVars()
	cone := &gobnp.Subproblem{
		Block:    sub.Block,
		Obj:      sub.Obj,
		A:        sub.A,
		B:        make([]float64, len(sub.B)),
		G:        sub.G,
		H:        make([]float64, len(sub.H)),
		Lower:    make([]float64, n),
		Upper:    make([]float64, n),
		Integral: make([]bool, n),
	}
	for i := 0; i < n; i++ {
		if math.IsInf(sub.Lower[i], -1) {
			cone.Lower[i] = -1
		}
		if math.IsInf(sub.Upper[i], 1) {
			cone.Upper[i] = 1
		}
	}
	for _, bc := range sub.Extra {
		cbc := gobnp.BranchingConstraint{
			Name:  bc.Name,
			Coefs: bc.Coefs,
			Lower: math.Inf(-1),
			Upper: math.Inf(1),
		}
		if !math.IsInf(bc.Upper, 1) {
			cbc.Upper = 0
		}
		if !math.IsInf(bc.Lower, -1) {
			cbc.Lower = 0
		}
		cone.Extra = append(cone.Extra, cbc)
	}
	return cone
}

// recoverRay tries to extract an improving ray from an unbounded
// subproblem by solving its direction problem under the given working
// bounds. It reports false if no strictly improving direction exists
// (which can happen when bound preprocessing cut the cone; callers
// then retry with the raw bounds).
func recoverRay(sub *gobnp.Subproblem, lower, upper []float64) ([]float64, bool, error) {
	cone := coneProblem(sub)
	n := sub.NVars()
	for i := 0; i < n; i++ {
		// working bounds that became finite close the direction
		if !math.IsInf(lower[i], -1) {
			cone.Lower[i] = 0
		}
		if !math.IsInf(upper[i], 1) {
			cone.Upper[i] = 0
		}
	}

	d, z, st, err := solveRelaxation(cone, cone.Lower, cone.Upper)
	if err != nil {
		return nil, false, err
	}
	if st != relaxOptimal || z >= -tol {
		return nil, false, nil
	}
	return d, true, nil
}

// roundRay rounds the integer-constrained components of a ray away
// from zero, i.e. toward the objective-improving direction. The caller
// must re-validate the rounded ray before accepting it.
func roundRay(sub *gobnp.Subproblem, d []float64) []float64 {
	out := make([]float64, len(d))
	for i, v := range d {
		if sub.Integral[i] {
			if v > 0 {
				v = math.Ceil(v - tol)
			} else if v < 0 {
				v = math.Floor(v + tol)
			}
		}
		out[i] = v
	}
	return out
}
