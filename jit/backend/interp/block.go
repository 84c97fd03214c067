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

package interp

import (
	"github.com/jetsetilly/armjit/jit/backend"
	"github.com/jetsetilly/armjit/jit/ir"
)

// blockState is the state of a block while it is running.
type blockState struct {
	// the result of instruction N is stored in values[N]
	values [ir.MaxInstructions]ir.Value

	// guest state for the duration of Backend.Run()
	state backend.State

	// copy of the successor taken at compile time and the resolved exit
	successor ir.Successor
	exit      backend.Exit
}

type handlerArg struct {
	index ir.Index
	ins   *ir.Instruction
	block *ir.Block
	st    *blockState
}

type handler func(arg *handlerArg) error

type thunk struct {
	fn  handler
	arg handlerArg
}

// Block is the interp backend's implementation of backend.Block.
type Block struct {
	backend *Backend
	index   ir.BlockIndex
	address uint32

	st blockState

	// one thunk per instruction plus the successor
	thunks [ir.MaxInstructions + 1]thunk
	len    int
}

// Index implements the backend.Block interface.
func (blk *Block) Index() ir.BlockIndex {
	return blk.index
}

// Value returns the most recent value produced by the instruction at idx.
func (blk *Block) Value(idx ir.Index) ir.Value {
	if int(idx) >= len(blk.st.values) {
		return 0
	}
	return blk.st.values[idx]
}

// Len returns the number of thunks in the block, including the successor.
func (blk *Block) Len() int {
	return blk.len
}

func (blk *Block) emit(fn handler, arg handlerArg) {
	// an ir.Block can never have more than MaxInstructions instructions so
	// this should never happen
	if blk.len >= len(blk.thunks) {
		panic("interp: too many thunks")
	}
	blk.thunks[blk.len] = thunk{fn: fn, arg: arg}
	blk.len++
}
