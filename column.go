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
	"math"

	"github.com/pkg/errors"
)

// sparseEps is the magnitude below which solution components are not
// stored in a column.
const sparseEps = 1e-9

// feasEps is the tolerance used for feasibility checks on columns.
const feasEps = 1e-6

// ColumnEntry is one nonzero of a column, referencing a variable of
// the owning pricing subproblem by index.
type ColumnEntry struct {
	Var   int
	Value float64
}

// Column is a point or ray solution of one pricing subproblem,
// destined to become a candidate variable of the master problem.
type Column struct {
	Block   int
	Entries []ColumnEntry // sparse, ascending by Var
	Ray     bool
	RedCost float64
}

// NewColumn sparsifies a dense solution vector into a Column.
func NewColumn(block int, x []float64, ray bool, redCost float64) *Column {
	col := &Column{
		Block:   block,
		Ray:     ray,
		RedCost: redCost,
	}
	for i, v := range x {
		if math.Abs(v) > sparseEps {
			col.Entries = append(col.Entries, ColumnEntry{Var: i, Value: v})
		}
	}
	return col
}

// Dense expands the column back into a dense vector of length nvars.
func (c *Column) Dense(nvars int) []float64 {
	x := make([]float64, nvars)
	for _, e := range c.Entries {
		x[e.Var] = e.Value
	}
	return x
}

// Equal reports whether two columns represent the same candidate
// variable: same owning block, same ray flag and the same sparse
// variable/value set. The reduced cost is deliberately ignored, it
// changes with the duals while the column does not.
func (c *Column) Equal(o *Column) bool {
	if c.Block != o.Block || c.Ray != o.Ray || len(c.Entries) != len(o.Entries) {
		return false
	}
	for i, e := range c.Entries {
		if o.Entries[i].Var != e.Var || math.Abs(o.Entries[i].Value-e.Value) > sparseEps {
			return false
		}
	}
	return true
}

// Validate checks the column against its owning subproblem. Point
// columns must respect variable bounds and integrality; ray columns
// must lie in the recession cone: zero on all equality rows,
// non-positive on all inequality rows, and pointing only into
// directions left open by infinite bounds.
func (c *Column) Validate(sp *Subproblem) error {
	if c.Block != sp.Block {
		return errors.Errorf("column for block %d validated against block %d", c.Block, sp.Block)
	}
	n := sp.NVars()
	prev := -1
	for _, e := range c.Entries {
		if e.Var < 0 || e.Var >= n {
			return errors.Errorf("column references variable %d outside block %d", e.Var, sp.Block)
		}
		if e.Var <= prev {
			return errors.Errorf("column entries not strictly ascending at variable %d", e.Var)
		}
		prev = e.Var
	}

	x := c.Dense(n)
	if c.Ray {
		return c.validateRay(sp, x)
	}
	return c.validatePoint(sp, x)
}

func (c *Column) validatePoint(sp *Subproblem, x []float64) error {
	for i, v := range x {
		if v < sp.Lower[i]-feasEps || v > sp.Upper[i]+feasEps {
			return errors.Errorf("column value %g violates bounds of variable %d", v, i)
		}
		if sp.Integral[i] && math.Abs(v-math.Round(v)) > feasEps {
			return errors.Errorf("column value %g violates integrality of variable %d", v, i)
		}
	}
	return nil
}

func (c *Column) validateRay(sp *Subproblem, d []float64) error {
	for i, v := range d {
		if v > feasEps && !math.IsInf(sp.Upper[i], 1) {
			return errors.Errorf("ray points upward on variable %d with finite upper bound", i)
		}
		if v < -feasEps && !math.IsInf(sp.Lower[i], -1) {
			return errors.Errorf("ray points downward on variable %d with finite lower bound", i)
		}
	}
	if sp.A != nil {
		for r := 0; r < len(sp.B); r++ {
			if math.Abs(rowDot(sp.A.RawRowView(r), d)) > feasEps {
				return errors.Errorf("ray leaves equality row %d", r)
			}
		}
	}
	if sp.G != nil {
		for r := 0; r < len(sp.H); r++ {
			if rowDot(sp.G.RawRowView(r), d) > feasEps {
				return errors.Errorf("ray leaves inequality row %d", r)
			}
		}
	}
	for _, bc := range sp.Extra {
		act := rowDot(bc.Coefs, d)
		if !math.IsInf(bc.Upper, 1) && act > feasEps {
			return errors.Errorf("ray leaves branching constraint %q", bc.Name)
		}
		if !math.IsInf(bc.Lower, -1) && act < -feasEps {
			return errors.Errorf("ray leaves branching constraint %q", bc.Name)
		}
	}
	return nil
}

func rowDot(row, x []float64) float64 {
	var s float64
	for i, v := range row {
		s += v * x[i]
	}
	return s
}
