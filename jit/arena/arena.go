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

package arena

import (
	"github.com/jetsetilly/armjit/curated"
	"github.com/jetsetilly/armjit/jit/ir"
)

// DefaultSize is the number of blocks in an arena if no other value is
// specified.
const DefaultSize = 256

// Error patterns.
const (
	BadSize  = "arena: size must be a power of two (%d)"
	BadBlock = "arena: block index out of range (%d)"
)

// Arena is a fixed pool of IR blocks. Blocks are allocated in turn and the
// allocator wraps around when it reaches the end of the pool, so allocation
// never fails. A block that is still live when the allocator wraps around to
// it is reused. The owner of the arena is told about the reuse with the reuse
// hook so that any reference to the old contents of the block can be dropped.
type Arena struct {
	blocks []ir.Block
	mask   uint32
	next   uint32

	// blocks that are in use. ie. allocated and not released
	live []bool

	reuseHook func(idx ir.BlockIndex)
	reuses    int
}

// NewArena is the preferred method of initialisation for the Arena type.
// Size must be a power of two.
func NewArena(size int) (*Arena, error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, curated.Errorf(BadSize, size)
	}
	return &Arena{
		blocks: make([]ir.Block, size),
		mask:   uint32(size - 1),
		live:   make([]bool, size),
	}, nil
}

// Size returns the number of blocks in the arena.
func (a *Arena) Size() int {
	return len(a.blocks)
}

// SetReuseHook sets the function to be called when a live block is about to
// be reused by Allocate(). The hook is called before the block is reset.
func (a *Arena) SetReuseHook(f func(idx ir.BlockIndex)) {
	a.reuseHook = f
}

// Allocate the next block in the arena and reset it for the guest address.
func (a *Arena) Allocate(address uint32) ir.BlockIndex {
	idx := ir.BlockIndex(a.next & a.mask)
	a.next++

	if a.live[idx] {
		a.reuses++
		if a.reuseHook != nil {
			a.reuseHook(idx)
		}
	}

	a.live[idx] = true
	a.blocks[idx].Reset(address)
	return idx
}

// Release marks the block as no longer being in use.
func (a *Arena) Release(idx ir.BlockIndex) {
	if int(idx) < len(a.live) {
		a.live[idx] = false
	}
}

// Live returns true if the block has been allocated and not released.
func (a *Arena) Live(idx ir.BlockIndex) bool {
	return int(idx) < len(a.live) && a.live[idx]
}

// Block returns the block at idx.
func (a *Arena) Block(idx ir.BlockIndex) (*ir.Block, error) {
	if int(idx) >= len(a.blocks) {
		return nil, curated.Errorf(BadBlock, idx)
	}
	return &a.blocks[idx], nil
}

// Reuses returns the number of times a live block has been reallocated.
func (a *Arena) Reuses() int {
	return a.reuses
}

// Reset releases every block and restarts the allocator at the first block.
func (a *Arena) Reset() {
	clear(a.live)
	a.next = 0
}
