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
	"sync"

	"github.com/mitchellh/hashstructure"
	"github.com/pkg/errors"
)

// ColumnSink receives columns emitted by pricing solvers. AddColumn
// reports whether the column was actually accepted; duplicates and
// columns beyond an active quota are silently filtered.
type ColumnSink interface {
	AddColumn(col *Column) (bool, error)
}

// PoolStats is a snapshot of the pool's counters.
type PoolStats struct {
	Accepted   int
	Duplicates int
	Dropped    int
}

// ColumnPool collects the columns of one pricing round. It is the one
// structure mutated concurrently by parallel pricing jobs, so all
// insertion is serialized behind a mutex; deduplication compares a new
// column against previously accepted ones via a hash index.
type ColumnPool struct {
	mu     sync.Mutex
	byHash map[uint64][]*Column
	cols   []*Column
	quota  int // 0 means unlimited
	stats  PoolStats
}

// NewColumnPool creates an empty pool. A quota of 0 disables the
// per-round insertion cap.
func NewColumnPool(quota int) *ColumnPool {
	return &ColumnPool{
		byHash: make(map[uint64][]*Column),
		quota:  quota,
	}
}

// columnKey is the hashed identity of a column; mirrors Column.Equal.
type columnKey struct {
	Block   int
	Ray     bool
	Entries []ColumnEntry
}

// AddColumn implements ColumnSink.
func (p *ColumnPool) AddColumn(col *Column) (bool, error) {
	h, err := hashstructure.Hash(columnKey{Block: col.Block, Ray: col.Ray, Entries: col.Entries}, nil)
	if err != nil {
		return false, errors.Wrap(err, "hashing column")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, other := range p.byHash[h] {
		if other.Equal(col) {
			p.stats.Duplicates++
			// keep the better reduced cost for the master
			if col.RedCost < other.RedCost {
				other.RedCost = col.RedCost
			}
			return false, nil
		}
	}
	if p.quota > 0 && len(p.cols) >= p.quota {
		p.stats.Dropped++
		return false, nil
	}

	p.byHash[h] = append(p.byHash[h], col)
	p.cols = append(p.cols, col)
	p.stats.Accepted++
	return true, nil
}

// Len returns the number of accepted columns.
func (p *ColumnPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cols)
}

// Stats returns a snapshot of the pool counters.
func (p *ColumnPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Flush hands out all accepted columns and empties the pool for the
// next round. The cumulative counters survive.
func (p *ColumnPool) Flush() []*Column {
	p.mu.Lock()
	defer p.mu.Unlock()

	cols := p.cols
	p.cols = nil
	p.byHash = make(map[uint64][]*Column)
	return cols
}

// SetQuota adjusts the per-round insertion cap; 0 disables it.
func (p *ColumnPool) SetQuota(quota int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quota = quota
}
