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

package ir

import (
	"fmt"

	"github.com/jetsetilly/armjit/curated"
)

// Validate checks the block for consistency. The instruction list must be
// acyclic and only link live instructions. Every operand must refer to an
// instruction that produces a value and that is executed earlier. The Tail
// must be the last instruction in the list and the guard of a conditional
// successor must refer to an instruction that produces a value.
func (blk *Block) Validate() error {
	if blk.Length < 0 || blk.Length > MaxInstructions {
		return curated.Errorf(InvalidBlock, blk.Address, fmt.Errorf("length %d", blk.Length))
	}

	// position of each instruction in the execution order. zero means the
	// instruction has not been seen yet
	var position [MaxInstructions]uint16

	last := InvalidIndex
	n := 0

	it := blk.Iterate()
	for it.Next() {
		idx := it.Index()
		ins := it.Instruction()
		n++

		if err := ins.Valid(); err != nil {
			return curated.Errorf(InvalidBlock, blk.Address, fmt.Errorf("%d: %w", idx, err))
		}

		for _, o := range ins.Operands() {
			if int(o) >= MaxInstructions || position[o] == 0 {
				return curated.Errorf(InvalidBlock, blk.Address, curated.Errorf(ForwardReference, ins.Kind, o))
			}
			if !blk.IR[o].HasResult() {
				return curated.Errorf(InvalidBlock, blk.Address, fmt.Errorf("%d: operand %d has no result", idx, o))
			}
		}

		position[idx] = uint16(n)
		last = idx
	}
	if err := it.Err(); err != nil {
		return curated.Errorf(InvalidBlock, blk.Address, err)
	}

	if last != blk.Tail {
		return curated.Errorf(InvalidBlock, blk.Address, fmt.Errorf("tail is %d but last instruction is %d", blk.Tail, last))
	}

	if n != blk.count {
		return curated.Errorf(InvalidBlock, blk.Address, fmt.Errorf("%d instructions reachable from head of %d", n, blk.count))
	}

	switch blk.Successor.Kind {
	case SuccessorNone:
		if blk.Successor.Cond != InvalidIndex {
			return curated.Errorf(InvalidBlock, blk.Address, fmt.Errorf("guard on a none successor"))
		}
	case SuccessorCall, SuccessorJump:
		c := blk.Successor.Cond
		if c != InvalidIndex {
			if int(c) >= MaxInstructions || position[c] == 0 || !blk.IR[c].HasResult() {
				return curated.Errorf(InvalidBlock, blk.Address, curated.Errorf(ForwardReference, "successor", c))
			}
		}
	default:
		return curated.Errorf(InvalidBlock, blk.Address, fmt.Errorf("unknown successor kind %d", blk.Successor.Kind))
	}

	return nil
}
