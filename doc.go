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

/*

GoBNP implements the pricing core of a branch-and-price (column
generation) solver: given a Dantzig-Wolfe decomposition with N
independent pricing subproblems and an ordered set of pluggable
pricing solvers, it schedules which subproblems to solve, in which
order, with which solver and under which adaptive limits, and collects
the resulting columns into a deduplicating pool.

The master problem, its LP relaxation and the surrounding
branch-and-bound tree are external collaborators: the caller feeds
per-round objective vectors (dual values already folded in) and
convexity duals, and interprets the round result (columns found, or a
proof that no improving column exists).

A minimal pricing setup looks like this:

	package main

	import (
		"context"
		"fmt"

		"github.com/costela/gobnp"
		"github.com/costela/gobnp/solvers"
	)

	func main() {
		decomp := &gobnp.Decomposition{
			Subproblems: []*gobnp.Subproblem{sub0, sub1},
		}

		ctrl, _ := gobnp.NewController(decomp, []gobnp.Solver{
			solvers.NewKnapsack(100),
			solvers.NewMIP(50),
			solvers.NewLP(0),
		})

		ctx := context.Background()
		_ = ctrl.InitSolve(ctx)
		defer ctrl.ExitSolve()

		res, _ := ctrl.PerformPricing(ctx, gobnp.RoundInput{
			Type:       gobnp.RedcostPricing,
			Objectives: [][]float64{obj0, obj1},
			ConvDuals:  []float64{dual0, dual1},
		})

		fmt.Printf("found %d columns, proof: %t\n", res.NCols, res.OptimalityProof)
	}

Solvers are tried per subproblem in descending priority order,
heuristically first (under node/gap/solution limits that grow from
round to round) and exactly once the heuristic attempts are exhausted.
*/
package gobnp
