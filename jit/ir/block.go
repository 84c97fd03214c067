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

// SuccessorKind describes what happens after the last instruction of a block
// has been executed.
type SuccessorKind uint8

// List of valid SuccessorKind values.
const (
	// return to the caller with nothing more to do
	SuccessorNone SuccessorKind = iota

	// return to the caller with the address of the next block. the caller
	// will probably execute the instruction at that address itself
	SuccessorCall

	// continue with the block at the next address without returning to the
	// caller
	SuccessorJump
)

func (k SuccessorKind) String() string {
	switch k {
	case SuccessorNone:
		return "none"
	case SuccessorCall:
		return "call"
	case SuccessorJump:
		return "jump"
	}
	return "successor?"
}

// Successor of a block. Successors are identified by guest address.
type Successor struct {
	Kind SuccessorKind

	// Cond is the index of the guard value or InvalidIndex if the successor
	// is unconditional
	Cond Index

	// Case0 is selected if the guard is zero or if there is no guard. Case1 is
	// selected if the guard is non-zero
	Case0 uint32
	Case1 uint32
}

// Unconditional returns a successor that always selects next.
func Unconditional(kind SuccessorKind, next uint32) Successor {
	return Successor{Kind: kind, Cond: InvalidIndex, Case0: next}
}

// Conditional returns a successor that selects between two addresses
// depending on the value produced by instruction cond.
func Conditional(kind SuccessorKind, cond Index, case0 uint32, case1 uint32) Successor {
	return Successor{Kind: kind, Cond: cond, Case0: case0, Case1: case1}
}

// Resolve returns the selected address for the guard value. The guard value
// is ignored for unconditional successors.
func (s Successor) Resolve(cond Value) uint32 {
	if s.Cond == InvalidIndex || cond == 0 {
		return s.Case0
	}
	return s.Case1
}

func (s Successor) String() string {
	if s.Kind == SuccessorNone {
		return "none"
	}
	if s.Cond == InvalidIndex {
		return fmt.Sprintf("%s %#08x", s.Kind, s.Case0)
	}
	return fmt.Sprintf("%s %%%d ? %#08x : %#08x", s.Kind, s.Cond, s.Case1, s.Case0)
}

// Block is a list of instructions translated from a contiguous run of guest
// code. Instructions are stored in a fixed array and are linked in execution
// order starting at Head.
//
// The zero value is not ready to use. Call Reset() or NewBlock() first.
type Block struct {
	// guest address of the first translated instruction
	Address uint32

	// number of guest bytes covered by the translation
	Span uint32

	// next free slot in the IR array. removed instructions are not reclaimed
	Length int

	Head Index
	Tail Index

	Successor Successor

	IR [MaxInstructions]Instruction

	// number of live instructions and the slots that have been removed
	count   int
	removed [MaxInstructions / 64]uint64
}

// NewBlock creates an empty block for the guest address.
func NewBlock(address uint32) *Block {
	blk := &Block{}
	blk.Reset(address)
	return blk
}

// Reset the block so that it is empty and begins at the guest address. The
// IR array is not cleared.
func (blk *Block) Reset(address uint32) {
	blk.Address = address
	blk.Span = 0
	blk.Length = 0
	blk.count = 0
	blk.Head = InvalidIndex
	blk.Tail = InvalidIndex
	blk.Successor = Unconditional(SuccessorNone, 0)
	clear(blk.removed[:])
}

// Len returns the number of live instructions in the block.
func (blk *Block) Len() int {
	return blk.count
}

// populated returns true if idx refers to a live instruction.
func (blk *Block) populated(idx Index) bool {
	return int(idx) < blk.Length && blk.removed[idx>>6]&(1<<(idx&63)) == 0
}

// Instruction returns a pointer to the instruction at idx. Returns an error
// if idx does not refer to a live instruction.
func (blk *Block) Instruction(idx Index) (*Instruction, error) {
	if !blk.populated(idx) {
		return nil, curated.Errorf(BadIndex, idx)
	}
	return &blk.IR[idx], nil
}

// checkOperands panics if any operand of ins is not a live instruction that
// produces a value and that precedes the position in the execution order.
// the position is the index of the instruction after which ins will be
// executed or InvalidIndex if ins will be the first instruction.
func (blk *Block) checkOperands(ins *Instruction, after Index) {
	if err := ins.Valid(); err != nil {
		panic(curated.Errorf(MalformedInstruction, err))
	}

	ops := ins.Operands()
	if len(ops) == 0 {
		return
	}

	// appending to the end of the list means every live instruction precedes
	// the new instruction
	if after == blk.Tail {
		for _, o := range ops {
			if !blk.populated(o) || !blk.IR[o].HasResult() {
				panic(curated.Errorf(ForwardReference, ins.Kind, o))
			}
		}
		return
	}

	var preceding [MaxInstructions / 64]uint64
	if after != InvalidIndex {
		it := blk.Iterate()
		for it.Next() {
			idx := it.Index()
			preceding[idx>>6] |= 1 << (idx & 63)
			if idx == after {
				break
			}
		}
	}

	for _, o := range ops {
		if !blk.populated(o) || !blk.IR[o].HasResult() || preceding[o>>6]&(1<<(o&63)) == 0 {
			panic(curated.Errorf(ForwardReference, ins.Kind, o))
		}
	}
}

// allocate the next free slot. panics if the block is full.
func (blk *Block) allocate(ins Instruction) Index {
	if blk.Length >= MaxInstructions {
		panic(curated.Errorf(CapacityExceeded, MaxInstructions))
	}
	idx := Index(blk.Length)
	blk.IR[idx] = ins
	blk.IR[idx].Next = InvalidIndex
	blk.Length++
	blk.count++
	return idx
}

// Append instruction to the end of the block. Returns the index of the new
// instruction, which is also the SSA name of its result.
//
// Panics if the block is full or if an operand does not refer to an earlier
// instruction that produces a value.
func (blk *Block) Append(ins Instruction) Index {
	blk.checkOperands(&ins, blk.Tail)

	idx := blk.allocate(ins)
	if blk.Tail == InvalidIndex {
		blk.Head = idx
	} else {
		blk.IR[blk.Tail].Next = idx
	}
	blk.Tail = idx

	return idx
}

// InsertAfter inserts the instruction so that it is executed immediately after
// the instruction at idx. The new instruction is stored in the next free slot
// so storage order and execution order will differ.
//
// Panics under the same conditions as Append() or if idx is not a live
// instruction.
func (blk *Block) InsertAfter(at Index, ins Instruction) Index {
	if !blk.populated(at) {
		panic(curated.Errorf(BadIndex, at))
	}
	blk.checkOperands(&ins, at)

	idx := blk.allocate(ins)
	blk.IR[idx].Next = blk.IR[at].Next
	blk.IR[at].Next = idx
	if blk.Tail == at {
		blk.Tail = idx
	}

	return idx
}

// Replace the instruction at idx. The position in the execution order is
// unchanged. The operands of the new instruction must precede idx.
func (blk *Block) Replace(at Index, ins Instruction) {
	if !blk.populated(at) {
		panic(curated.Errorf(BadIndex, at))
	}

	// the operands must precede the instruction being replaced
	prev := blk.predecessor(at)
	blk.checkOperands(&ins, prev)

	if !ins.HasResult() {
		if user, ok := blk.user(at); ok {
			panic(curated.Errorf(InstructionInUse, at, user))
		}
	}

	next := blk.IR[at].Next
	blk.IR[at] = ins
	blk.IR[at].Next = next
}

// predecessor returns the instruction executed immediately before idx or
// InvalidIndex if idx is the head of the list. O(n).
func (blk *Block) predecessor(idx Index) Index {
	prev := InvalidIndex
	it := blk.Iterate()
	for it.Next() {
		if it.Index() == idx {
			return prev
		}
		prev = it.Index()
	}
	return InvalidIndex
}

// user returns the first instruction that references the result of the
// instruction at idx. the user is InvalidIndex if the reference is the guard
// of the successor.
func (blk *Block) user(idx Index) (Index, bool) {
	if blk.Successor.Cond == idx {
		return InvalidIndex, true
	}
	it := blk.Iterate()
	for it.Next() {
		for _, o := range blk.IR[it.Index()].Operands() {
			if o == idx {
				return it.Index(), true
			}
		}
	}
	return InvalidIndex, false
}

// Remove the instruction at idx from the execution order. The slot is not
// reused. Panics if the result of the instruction is still referenced.
func (blk *Block) Remove(at Index) {
	if !blk.populated(at) {
		panic(curated.Errorf(BadIndex, at))
	}

	if user, ok := blk.user(at); ok {
		panic(curated.Errorf(InstructionInUse, at, user))
	}

	prev := blk.predecessor(at)
	next := blk.IR[at].Next
	if prev == InvalidIndex {
		blk.Head = next
	} else {
		blk.IR[prev].Next = next
	}
	if blk.Tail == at {
		blk.Tail = prev
	}

	blk.IR[at].Next = InvalidIndex
	blk.removed[at>>6] |= 1 << (at & 63)
	blk.count--
}

// SetSuccessor sets the successor of the block. Panics if the guard of a
// conditional successor does not refer to an instruction that produces a
// value.
func (blk *Block) SetSuccessor(s Successor) {
	if s.Cond != InvalidIndex {
		if !blk.populated(s.Cond) || !blk.IR[s.Cond].HasResult() {
			panic(curated.Errorf(ForwardReference, "successor", s.Cond))
		}
	}
	blk.Successor = s
}
