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

package cache

import (
	"github.com/jetsetilly/armjit/curated"
	"github.com/jetsetilly/armjit/jit/backend"
	"github.com/jetsetilly/armjit/jit/ir"
)

// DefaultSize is the number of entries in a cache if no other value is
// specified.
const DefaultSize = 128

// BadSize is the error pattern for caches with no entries.
const BadSize = "cache: size must be greater than zero (%d)"

// Entry in the cache. An entry associates a guest address with a compiled
// block.
type Entry struct {
	Address uint32

	// number of guest bytes covered by the block. used by InvalidateRange()
	Span uint32

	// the arena index of the ir.Block that was compiled
	Index ir.BlockIndex

	Block backend.Block
	Valid bool

	// value of the fill counter when the entry was installed
	filled uint64
}

// covers returns true if the entry covers any part of the range lo to hi
// inclusive.
func (e *Entry) covers(lo uint32, hi uint32) bool {
	if e.Span == 0 {
		return e.Address >= lo && e.Address <= hi
	}
	end := uint64(e.Address) + uint64(e.Span) - 1
	return e.Address <= hi && end >= uint64(lo)
}

// Stats records the activity of the cache.
type Stats struct {
	Hits          int
	Misses        int
	Installs      int
	Evictions     int
	Invalidations int
}

// Cache of compiled blocks keyed by guest address. There is never more than
// one valid entry for an address.
//
// Lookup is a linear search through all entries. When the cache is full the
// least recently installed entry is replaced.
type Cache struct {
	entries []Entry
	fill    uint64
	stats   Stats
}

// NewCache is the preferred method of initialisation for the Cache type.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		return nil, curated.Errorf(BadSize, size)
	}
	return &Cache{
		entries: make([]Entry, size),
	}, nil
}

// Size returns the number of entries in the cache, valid or not.
func (c *Cache) Size() int {
	return len(c.entries)
}

// Len returns the number of valid entries in the cache.
func (c *Cache) Len() int {
	n := 0
	for i := range c.entries {
		if c.entries[i].Valid {
			n++
		}
	}
	return n
}

// Stats returns a copy of the cache statistics.
func (c *Cache) Stats() Stats {
	return c.stats
}

// Lookup returns the valid entry for the guest address.
func (c *Cache) Lookup(address uint32) (*Entry, bool) {
	for i := range c.entries {
		e := &c.entries[i]
		if e.Valid && e.Address == address {
			c.stats.Hits++
			return e, true
		}
	}
	c.stats.Misses++
	return nil, false
}

// Peek is like Lookup but does not count towards the cache statistics.
func (c *Cache) Peek(address uint32) (*Entry, bool) {
	for i := range c.entries {
		e := &c.entries[i]
		if e.Valid && e.Address == address {
			return e, true
		}
	}
	return nil, false
}

// Install a compiled block for the guest address. If a valid entry for the
// address already exists it is replaced. Otherwise an empty entry is used or,
// if there are no empty entries, the least recently installed entry is
// replaced.
//
// If a valid entry for a different address was replaced it is returned so
// that the caller can release any resources associated with it.
func (c *Cache) Install(address uint32, span uint32, idx ir.BlockIndex, blk backend.Block) (evicted Entry, ok bool) {
	c.stats.Installs++
	c.fill++

	slot := -1
	for i := range c.entries {
		e := &c.entries[i]
		if e.Valid && e.Address == address {
			// replacing an entry for the same address is not an eviction but
			// the caller still needs to know if the old block differs
			evicted = *e
			ok = e.Index != idx
			slot = i
			break
		}
		if slot == -1 && !e.Valid {
			slot = i
		}
	}

	if slot == -1 {
		slot = 0
		for i := range c.entries {
			if c.entries[i].filled < c.entries[slot].filled {
				slot = i
			}
		}
		evicted = c.entries[slot]
		ok = true
		c.stats.Evictions++
	}

	c.entries[slot] = Entry{
		Address: address,
		Span:    span,
		Index:   idx,
		Block:   blk,
		Valid:   true,
		filled:  c.fill,
	}

	return evicted, ok
}

// invalidate entries for which the function returns true. returns the list
// of invalidated entries.
func (c *Cache) invalidate(f func(e *Entry) bool) []Entry {
	var inv []Entry
	for i := range c.entries {
		e := &c.entries[i]
		if e.Valid && f(e) {
			e.Valid = false
			c.stats.Invalidations++
			inv = append(inv, *e)
		}
	}
	return inv
}

// Invalidate the entry for the guest address.
func (c *Cache) Invalidate(address uint32) []Entry {
	return c.invalidate(func(e *Entry) bool {
		return e.Address == address
	})
}

// InvalidateRange invalidates all entries that cover any part of the range lo
// to hi inclusive.
func (c *Cache) InvalidateRange(lo uint32, hi uint32) []Entry {
	if hi < lo {
		lo, hi = hi, lo
	}
	return c.invalidate(func(e *Entry) bool {
		return e.covers(lo, hi)
	})
}

// InvalidateBlock invalidates any entry that refers to the arena index.
func (c *Cache) InvalidateBlock(idx ir.BlockIndex) []Entry {
	return c.invalidate(func(e *Entry) bool {
		return e.Index == idx
	})
}

// Flush invalidates every entry.
func (c *Cache) Flush() []Entry {
	return c.invalidate(func(_ *Entry) bool {
		return true
	})
}
