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

package backend

import (
	"fmt"

	"github.com/jetsetilly/armjit/jit/ir"
)

// Error patterns shared by all backends.
const (
	UnknownInstruction = "backend: %s: unknown instruction kind (%v) at %d"
	ForeignBlock       = "backend: %s: block was not compiled by this backend"
	NotCompiled        = "backend: %s: block %d has not been compiled"
	CompileFailed      = "backend: %s: compile of block %d failed: %v"
	RunFailed          = "backend: %s: block %d at %#08x: %v"
)

// State is the guest state visible to IR instructions. It is implemented by
// the embedding emulator.
type State interface {
	// Register and SetRegister access the host register slots used by the
	// LoadRegister and StoreRegister instructions
	Register(reg ir.HostRegister) ir.Value
	SetRegister(reg ir.HostRegister, value ir.Value)

	// Read and Write access guest memory. Errors are returned for accesses
	// that cannot be satisfied and will abort the running block
	Read(width ir.Width, address ir.Value) (ir.Value, error)
	Write(width ir.Width, address ir.Value, value ir.Value) error
}

// Block is the compiled form of an ir.Block. The concrete type is private to
// the backend that created it.
type Block interface {
	Index() ir.BlockIndex
}

// Exit describes how a block finished running. The Kind is the kind of the
// successor of the block and Next is the resolved guest address.
type Exit struct {
	Kind ir.SuccessorKind
	Next uint32
}

func (e Exit) String() string {
	return fmt.Sprintf("%s %#08x", e.Kind, e.Next)
}

// Backend implementations turn an ir.Block into something that can be run.
//
// Compile must be deterministic. Compiling the same ir.Block twice produces
// two equivalent blocks. A backend may reuse storage associated with a block
// index, in which case the previously compiled block for that index is no
// longer valid.
//
// Backends are not safe for concurrent use.
type Backend interface {
	// short identifier for the backend. used by the "jit.backend" preference
	ID() string

	Compile(idx ir.BlockIndex, blk *ir.Block) (Block, error)
	Run(blk Block, state State) (Exit, error)
}
