// This file is part of armjit.
//
// armjit is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// armjit is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with armjit.  If not, see <https://www.gnu.org/licenses/>.

package cache_test

import (
	"testing"

	"github.com/jetsetilly/armjit/curated"
	"github.com/jetsetilly/armjit/jit/cache"
	"github.com/jetsetilly/armjit/jit/ir"
	"github.com/jetsetilly/armjit/test"
)

type testBlock ir.BlockIndex

func (b testBlock) Index() ir.BlockIndex {
	return ir.BlockIndex(b)
}

func TestSize(t *testing.T) {
	_, err := cache.NewCache(0)
	test.ExpectSuccess(t, curated.Is(err, cache.BadSize))

	c, err := cache.NewCache(cache.DefaultSize)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, c.Size(), cache.DefaultSize)
	test.ExpectEquality(t, c.Len(), 0)
}

func TestLookup(t *testing.T) {
	c, err := cache.NewCache(4)
	test.DemandSuccess(t, err)

	_, ok := c.Lookup(0x100)
	test.ExpectFailure(t, ok)

	_, ok = c.Install(0x100, 8, 1, testBlock(1))
	test.ExpectFailure(t, ok)

	e, ok := c.Lookup(0x100)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, e.Address, 0x100)
	test.ExpectEquality(t, e.Index, 1)
	test.ExpectEquality(t, e.Block.Index(), 1)

	// exact match only
	_, ok = c.Lookup(0x104)
	test.ExpectFailure(t, ok)

	st := c.Stats()
	test.ExpectEquality(t, st.Hits, 1)
	test.ExpectEquality(t, st.Misses, 2)
	test.ExpectEquality(t, st.Installs, 1)
}

func TestSameAddress(t *testing.T) {
	c, err := cache.NewCache(4)
	test.DemandSuccess(t, err)

	c.Install(0x100, 8, 1, testBlock(1))
	old, ok := c.Install(0x100, 8, 2, testBlock(2))
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, old.Index, 1)

	// only one entry for the address
	test.ExpectEquality(t, c.Len(), 1)
	e, _ := c.Lookup(0x100)
	test.ExpectEquality(t, e.Index, 2)
	test.ExpectEquality(t, c.Stats().Evictions, 0)

	// reinstalling the same block index is not reported
	_, ok = c.Install(0x100, 8, 2, testBlock(2))
	test.ExpectFailure(t, ok)
}

func TestReplacement(t *testing.T) {
	c, err := cache.NewCache(3)
	test.DemandSuccess(t, err)

	c.Install(0x00, 4, 0, testBlock(0))
	c.Install(0x10, 4, 1, testBlock(1))
	c.Install(0x20, 4, 2, testBlock(2))

	// cache is full so the least recently installed entry is replaced
	old, ok := c.Install(0x30, 4, 3, testBlock(3))
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, old.Address, 0x00)
	_, ok = c.Lookup(0x00)
	test.ExpectFailure(t, ok)

	old, ok = c.Install(0x40, 4, 4, testBlock(4))
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, old.Address, 0x10)

	// invalidated entries are used before anything is replaced
	c.Invalidate(0x30)
	_, ok = c.Install(0x50, 4, 5, testBlock(5))
	test.ExpectFailure(t, ok)
	_, ok = c.Lookup(0x20)
	test.ExpectSuccess(t, ok)

	test.ExpectEquality(t, c.Stats().Evictions, 2)
}

func TestInvalidate(t *testing.T) {
	c, err := cache.NewCache(8)
	test.DemandSuccess(t, err)

	c.Install(0x100, 0x10, 0, testBlock(0))
	c.Install(0x110, 0x10, 1, testBlock(1))
	c.Install(0x120, 0x10, 2, testBlock(2))
	c.Install(0x200, 0, 3, testBlock(3))
	c.Install(0xfffffff0, 0x10, 4, testBlock(4))

	inv := c.Invalidate(0x110)
	test.ExpectEquality(t, len(inv), 1)
	test.ExpectEquality(t, inv[0].Index, 1)
	test.ExpectEquality(t, c.Len(), 4)

	// range overlapping the end of the first block and the start of the third
	inv = c.InvalidateRange(0x10f, 0x120)
	test.ExpectEquality(t, len(inv), 2)
	test.ExpectEquality(t, c.Len(), 2)

	// blocks with no span are matched on address only
	inv = c.InvalidateRange(0x1ff, 0x1ff)
	test.ExpectEquality(t, len(inv), 0)
	inv = c.InvalidateRange(0x200, 0x200)
	test.ExpectEquality(t, len(inv), 1)

	// block at the top of the address space
	inv = c.InvalidateRange(0xffffffff, 0xfffffffe)
	test.ExpectEquality(t, len(inv), 1)
	test.ExpectEquality(t, c.Len(), 0)

	c.Install(0x100, 4, 7, testBlock(7))
	c.Install(0x104, 4, 7, testBlock(7))
	c.Install(0x108, 4, 6, testBlock(6))
	inv = c.InvalidateBlock(7)
	test.ExpectEquality(t, len(inv), 2)
	test.ExpectEquality(t, c.Len(), 1)

	inv = c.Flush()
	test.ExpectEquality(t, len(inv), 1)
	test.ExpectEquality(t, c.Len(), 0)
	test.ExpectEquality(t, c.Stats().Invalidations, 8)
}

func TestPeek(t *testing.T) {
	c, err := cache.NewCache(2)
	test.DemandSuccess(t, err)

	c.Install(0x100, 4, 1, testBlock(1))
	e, ok := c.Peek(0x100)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, e.Index, 1)
	_, ok = c.Peek(0x200)
	test.ExpectFailure(t, ok)

	st := c.Stats()
	test.ExpectEquality(t, st.Hits, 0)
	test.ExpectEquality(t, st.Misses, 0)
}
