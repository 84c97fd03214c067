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
	"fmt"

	"github.com/jetsetilly/armjit/curated"
	"github.com/jetsetilly/armjit/jit/backend"
	"github.com/jetsetilly/armjit/jit/ir"
)

// ID of the interpreting backend.
const ID = "interp"

// NoState is the error returned when a block that accesses guest state is run
// without a backend.State.
const NoState = "interp: no guest state for %s instruction"

// Backend is an implementation of backend.Backend that interprets IR. Each
// instruction is lowered to a call to a handler function with a pre-computed
// argument.
type Backend struct {
	blocks []*Block
}

// NewBackend is the preferred method of initialisation for the Backend type.
// The numBlocks argument should be the same as the size of the arena from
// which ir.Blocks are allocated.
func NewBackend(numBlocks int) *Backend {
	return &Backend{
		blocks: make([]*Block, numBlocks),
	}
}

// ID implements the backend.Backend interface.
func (b *Backend) ID() string {
	return ID
}

// Compile implements the backend.Backend interface. The compiled block refers
// to the instructions in the ir.Block and is only valid for as long as the
// ir.Block is unchanged.
//
// Compiling to an index that has been used before reuses the storage of the
// previous block for that index.
func (b *Backend) Compile(idx ir.BlockIndex, blk *ir.Block) (backend.Block, error) {
	if int(idx) >= len(b.blocks) {
		return nil, curated.Errorf(backend.CompileFailed, ID, idx, fmt.Errorf("index out of range"))
	}

	// host blocks are allocated the first time an index is used
	host := b.blocks[idx]
	if host == nil {
		host = &Block{backend: b, index: idx}
		b.blocks[idx] = host
	}
	host.address = blk.Address
	host.len = 0
	host.st.successor = blk.Successor

	it := blk.Iterate()
	for it.Next() {
		arg := handlerArg{
			index: it.Index(),
			ins:   it.Instruction(),
			block: blk,
			st:    &host.st,
		}

		var fn handler
		switch arg.ins.Kind {
		case ir.LoadConstantKind:
			// constants are seeded into the values buffer now rather than when
			// the block is run
			host.st.values[arg.index] = arg.ins.Constant
			fn = handleLoadConstant
		case ir.LoadMemoryKind:
			fn = handleLoadMemory
		case ir.StoreMemoryKind:
			fn = handleStoreMemory
		case ir.LoadRegisterKind:
			fn = handleLoadRegister
		case ir.StoreRegisterKind:
			fn = handleStoreRegister
		case ir.UnaryKind:
			fn = handleUnary
		case ir.BinaryKind:
			fn = handleBinary
		default:
			host.len = 0
			return nil, curated.Errorf(backend.UnknownInstruction, ID, arg.ins.Kind, arg.index)
		}

		host.emit(fn, arg)
	}
	if err := it.Err(); err != nil {
		host.len = 0
		return nil, curated.Errorf(backend.CompileFailed, ID, idx, err)
	}

	// the successor is always the last thunk
	host.emit(handleSuccessor, handlerArg{
		index: ir.InvalidIndex,
		block: blk,
		st:    &host.st,
	})

	return host, nil
}

// Run implements the backend.Backend interface.
func (b *Backend) Run(blk backend.Block, state backend.State) (backend.Exit, error) {
	host, ok := blk.(*Block)
	if !ok || host.backend != b {
		return backend.Exit{}, curated.Errorf(backend.ForeignBlock, ID)
	}
	if host.len == 0 {
		return backend.Exit{}, curated.Errorf(backend.NotCompiled, ID, host.index)
	}

	host.st.state = state
	defer func() {
		host.st.state = nil
	}()

	for i := 0; i < host.len; i++ {
		t := &host.thunks[i]
		if err := t.fn(&t.arg); err != nil {
			return backend.Exit{}, curated.Errorf(backend.RunFailed, ID, host.index, host.address, err)
		}
	}

	return host.st.exit, nil
}
