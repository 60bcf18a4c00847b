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

// Package solvers provides ready-to-use pricing backends for gobnp:
// a branch-and-bound MIP solver and a simplex LP solver built on
// gonum, and a dynamic-programming solver for knapsack-shaped
// subproblems. Backends are usually stacked by priority, e.g. the
// knapsack solver above the MIP solver above the LP solver, so that
// each subproblem is handled by the most specialized backend that
// applies to it.
package solvers
