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
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

/* Types */

// Subproblem holds the static data of one pricing subproblem:
//
//	minimize  Obj·x
//	s.t.      A x  = B
//	          G x <= H
//	          row constraints from Extra (generic branching)
//	          Lower <= x <= Upper, x_i integral where Integral[i]
//
// Obj is the reduced-cost objective and is rewritten by the controller
// at the start of every round; everything else changes only through
// branching.
type Subproblem struct {
	Block    int
	Obj      []float64
	A        *mat.Dense // equality rows, may be nil
	B        []float64
	G        *mat.Dense // inequality rows, may be nil
	H        []float64
	Lower    []float64
	Upper    []float64
	Integral []bool
	Extra    []BranchingConstraint
}

// BranchingConstraint is one generic-branching row added to a single
// pricing subproblem along the current branch-and-bound path, together
// with the dual value of its master-side counterpart.
type BranchingConstraint struct {
	Name  string
	Coefs []float64
	Lower float64
	Upper float64
	Dual  float64
}

// BranchingSource is the query interface to the external branching
// infrastructure. ActiveConstraints returns all generic-branching
// constraints currently active for the given block, in the order they
// were added along the path.
type BranchingSource interface {
	ActiveConstraints(block int) []BranchingConstraint
}

// Decomposition is the static input produced by the (external)
// structure detection: one subproblem per block, plus symmetry
// information. Identical blocks share a representative; only
// representatives are ever dispatched, and their columns stand in for
// all copies.
type Decomposition struct {
	Subproblems []*Subproblem

	// Multiplicity[b] is the number of structurally identical copies
	// block b stands for. Empty means 1 for every block.
	Multiplicity []int

	// Representative[b] is the index of the canonical block for b; a
	// block is relevant iff it is its own representative. Empty means
	// every block represents itself.
	Representative []int
}

// RoundInput carries the per-round data handed over by the master
// pricing loop.
type RoundInput struct {
	Type PricingType

	// Objectives[b] is the new reduced-cost objective for block b; a
	// nil entry means the objective is unchanged since the last round.
	Objectives [][]float64

	// ConvDuals[b] is the dual value of block b's convexity constraint.
	ConvDuals []float64

	// BoundsChanged[b] signals that variable bounds of block b changed
	// since the last solve (e.g. through variable branching). Optional.
	BoundsChanged []bool
}

/* Subproblem */

// NVars returns the number of variables of the subproblem.
func (sp *Subproblem) NVars() int {
	return len(sp.Obj)
}

// Validate checks the dimensions of the subproblem data.
func (sp *Subproblem) Validate() error {
	n := sp.NVars()
	if n == 0 {
		return errors.New("subproblem has no variables")
	}
	if len(sp.Lower) != n || len(sp.Upper) != n {
		return errors.Errorf("block %d: bound vectors do not match %d variables", sp.Block, n)
	}
	if len(sp.Integral) != n {
		return errors.Errorf("block %d: integrality mask does not match %d variables", sp.Block, n)
	}
	if sp.A != nil {
		r, c := sp.A.Dims()
		if c != n || r != len(sp.B) {
			return errors.Errorf("block %d: equality system has inconsistent dimensions", sp.Block)
		}
	} else if len(sp.B) != 0 {
		return errors.Errorf("block %d: right-hand side without equality matrix", sp.Block)
	}
	if sp.G != nil {
		r, c := sp.G.Dims()
		if c != n || r != len(sp.H) {
			return errors.Errorf("block %d: inequality system has inconsistent dimensions", sp.Block)
		}
	} else if len(sp.H) != 0 {
		return errors.Errorf("block %d: right-hand side without inequality matrix", sp.Block)
	}
	for i := 0; i < n; i++ {
		if sp.Lower[i] > sp.Upper[i] {
			return errors.Errorf("block %d: variable %d has crossed bounds", sp.Block, i)
		}
	}
	for _, bc := range sp.Extra {
		if len(bc.Coefs) != n {
			return errors.Errorf("block %d: branching constraint %q does not match %d variables", sp.Block, bc.Name, n)
		}
	}
	return nil
}

/* Decomposition */

// NBlocks returns the number of blocks in the decomposition.
func (d *Decomposition) NBlocks() int {
	return len(d.Subproblems)
}

// BlockMultiplicity returns the number of identical copies block b
// stands for.
func (d *Decomposition) BlockMultiplicity(b int) int {
	if len(d.Multiplicity) == 0 {
		return 1
	}
	return d.Multiplicity[b]
}

// RepresentativeOf returns the canonical block index for b.
func (d *Decomposition) RepresentativeOf(b int) int {
	if len(d.Representative) == 0 {
		return b
	}
	return d.Representative[b]
}

// Relevant reports whether block b is actually scheduled for pricing,
// i.e. is not a symmetry duplicate of another block.
func (d *Decomposition) Relevant(b int) bool {
	return d.RepresentativeOf(b) == b
}

// Validate checks the decomposition for internal consistency.
func (d *Decomposition) Validate() error {
	if d.NBlocks() == 0 {
		return errors.New("decomposition has no blocks")
	}
	if len(d.Multiplicity) != 0 && len(d.Multiplicity) != d.NBlocks() {
		return errors.New("multiplicity vector does not match number of blocks")
	}
	if len(d.Representative) != 0 && len(d.Representative) != d.NBlocks() {
		return errors.New("representative vector does not match number of blocks")
	}
	for b, sp := range d.Subproblems {
		if sp == nil {
			return errors.Errorf("block %d has no subproblem data", b)
		}
		if sp.Block != b {
			return errors.Errorf("block %d carries mismatching index %d", b, sp.Block)
		}
		if err := sp.Validate(); err != nil {
			return err
		}
		rep := d.RepresentativeOf(b)
		if rep < 0 || rep >= d.NBlocks() {
			return errors.Errorf("block %d has out-of-range representative %d", b, rep)
		}
		if d.RepresentativeOf(rep) != rep {
			return errors.Errorf("representative %d of block %d is itself a duplicate", rep, b)
		}
		if m := d.BlockMultiplicity(b); m < 1 {
			return errors.Errorf("block %d has non-positive multiplicity %d", b, m)
		}
	}
	return nil
}

// validateRound checks a RoundInput against the decomposition.
func (d *Decomposition) validateRound(in RoundInput) error {
	if len(in.Objectives) != 0 && len(in.Objectives) != d.NBlocks() {
		return errors.New("objective vectors do not match number of blocks")
	}
	for b, obj := range in.Objectives {
		if obj != nil && len(obj) != d.Subproblems[b].NVars() {
			return errors.Errorf("objective for block %d does not match its variables", b)
		}
	}
	if len(in.ConvDuals) != 0 && len(in.ConvDuals) != d.NBlocks() {
		return errors.New("convexity duals do not match number of blocks")
	}
	if len(in.BoundsChanged) != 0 && len(in.BoundsChanged) != d.NBlocks() {
		return errors.New("bounds-changed flags do not match number of blocks")
	}
	return nil
}

// convDual returns the convexity dual for block b, defaulting to 0.
func (in RoundInput) convDual(b int) float64 {
	if len(in.ConvDuals) == 0 {
		return 0
	}
	return in.ConvDuals[b]
}
