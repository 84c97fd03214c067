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

package irfile

import (
	"fmt"
	"io"

	"github.com/jetsetilly/armjit/curated"
	"github.com/jetsetilly/armjit/jit/ir"
	"github.com/vmihailenco/msgpack/v5"
)

// Version of the snapshot file format. Files with a different version are
// rejected by Load().
const Version = 1

// Sentinal errors.
const (
	BadSnapshot = "irfile: bad snapshot of block %#08x: %v"
	BadFile     = "irfile: %v"
)

// Instruction is the serialisable form of an ir.Instruction.
type Instruction struct {
	// index of the instruction in the original block. only used for display
	Index uint16 `msgpack:"index"`

	Kind     uint8  `msgpack:"kind"`
	Constant uint64 `msgpack:"constant,omitempty"`
	Op       uint8  `msgpack:"op,omitempty"`
	Register uint8  `msgpack:"register,omitempty"`
	Width    uint8  `msgpack:"width,omitempty"`

	// operands are positions in the execution order of the snapshot and not
	// indexes in the original block
	Operands []int `msgpack:"operands,omitempty"`

	Text string `msgpack:"text"`
}

// Block is the serialisable form of an ir.Block. The instructions are stored
// in execution order.
type Block struct {
	Address uint32 `msgpack:"address"`
	Span    uint32 `msgpack:"span"`

	Instructions []Instruction `msgpack:"instructions"`

	SuccessorKind uint8 `msgpack:"successor"`

	// position of the guard instruction in the execution order. negative if
	// the successor is unconditional
	Cond  int    `msgpack:"cond"`
	Case0 uint32 `msgpack:"case0"`
	Case1 uint32 `msgpack:"case1"`
}

type file struct {
	Version int     `msgpack:"version"`
	Blocks  []Block `msgpack:"blocks"`
}

// Snapshot converts the block into its serialisable form.
func Snapshot(blk *ir.Block) (Block, error) {
	snap := Block{
		Address:       blk.Address,
		Span:          blk.Span,
		SuccessorKind: uint8(blk.Successor.Kind),
		Cond:          -1,
		Case0:         blk.Successor.Case0,
		Case1:         blk.Successor.Case1,
	}

	// position of each instruction index in the execution order
	position := make(map[ir.Index]int)

	it := blk.Iterate()
	for it.Next() {
		ins := it.Instruction()

		s := Instruction{
			Index:    uint16(it.Index()),
			Kind:     uint8(ins.Kind),
			Register: uint8(ins.Register),
			Width:    uint8(ins.Width),
			Text:     ins.String(),
		}

		switch ins.Kind {
		case ir.LoadConstantKind:
			s.Constant = uint64(ins.Constant)
		case ir.UnaryKind:
			s.Op = uint8(ins.Unary)
		case ir.BinaryKind:
			s.Op = uint8(ins.Binary)
		}

		for _, o := range ins.Operands() {
			p, ok := position[o]
			if !ok {
				return Block{}, curated.Errorf(BadSnapshot, blk.Address, curated.Errorf(ir.ForwardReference, ins.Kind, o))
			}
			s.Operands = append(s.Operands, p)
		}

		position[it.Index()] = len(snap.Instructions)
		snap.Instructions = append(snap.Instructions, s)
	}
	if err := it.Err(); err != nil {
		return Block{}, curated.Errorf(BadSnapshot, blk.Address, err)
	}

	if blk.Successor.Cond != ir.InvalidIndex {
		p, ok := position[blk.Successor.Cond]
		if !ok {
			return Block{}, curated.Errorf(BadSnapshot, blk.Address, fmt.Errorf("successor guard %d is not in the block", blk.Successor.Cond))
		}
		snap.Cond = p
	}

	return snap, nil
}

// Restore creates a new ir.Block from the snapshot. The instructions of the
// new block are stored in execution order so the indexes may differ from the
// original block.
func (snap Block) Restore() (*ir.Block, error) {
	if len(snap.Instructions) > ir.MaxInstructions {
		return nil, curated.Errorf(BadSnapshot, snap.Address, fmt.Errorf("too many instructions (%d)", len(snap.Instructions)))
	}

	blk := ir.NewBlock(snap.Address)
	blk.Span = snap.Span

	index := make([]ir.Index, 0, len(snap.Instructions))
	operand := func(pos int) (ir.Index, error) {
		if pos < 0 || pos >= len(index) {
			return ir.InvalidIndex, fmt.Errorf("operand %d is not available at position %d", pos, len(index))
		}
		return index[pos], nil
	}

	for _, s := range snap.Instructions {
		var ops [2]ir.Index
		for i := range ops {
			ops[i] = ir.InvalidIndex
		}
		if len(s.Operands) > len(ops) {
			return nil, curated.Errorf(BadSnapshot, snap.Address, fmt.Errorf("too many operands at position %d", len(index)))
		}
		for i, p := range s.Operands {
			o, err := operand(p)
			if err != nil {
				return nil, curated.Errorf(BadSnapshot, snap.Address, err)
			}
			ops[i] = o
		}

		var ins ir.Instruction
		switch ir.Kind(s.Kind) {
		case ir.LoadConstantKind:
			ins = ir.LoadConstant(ir.Value(s.Constant))
		case ir.LoadMemoryKind:
			ins = ir.LoadMemory(ir.Width(s.Width), ops[0])
		case ir.StoreMemoryKind:
			ins = ir.StoreMemory(ir.Width(s.Width), ops[0], ops[1])
		case ir.LoadRegisterKind:
			ins = ir.LoadRegister(ir.HostRegister(s.Register))
		case ir.StoreRegisterKind:
			ins = ir.StoreRegister(ir.HostRegister(s.Register), ops[0])
		case ir.UnaryKind:
			ins = ir.Unary(ir.UnaryOp(s.Op), ops[0])
		case ir.BinaryKind:
			ins = ir.Binary(ir.BinaryOp(s.Op), ops[0], ops[1])
		default:
			return nil, curated.Errorf(BadSnapshot, snap.Address, fmt.Errorf("unknown instruction kind (%d)", s.Kind))
		}

		if len(s.Operands) != len(ins.Operands()) {
			return nil, curated.Errorf(BadSnapshot, snap.Address, fmt.Errorf("%s needs %d operands but has %d", ins.Kind, len(ins.Operands()), len(s.Operands)))
		}

		// a malformed instruction or an operand that refers to an instruction
		// without a result will cause Append() to panic
		if err := ins.Valid(); err != nil {
			return nil, curated.Errorf(BadSnapshot, snap.Address, err)
		}
		for _, o := range ins.Operands() {
			if !blk.IR[o].HasResult() {
				return nil, curated.Errorf(BadSnapshot, snap.Address, fmt.Errorf("operand of %s has no value", ins))
			}
		}

		index = append(index, blk.Append(ins))
	}

	if snap.Cond >= 0 {
		cond, err := operand(snap.Cond)
		if err != nil {
			return nil, curated.Errorf(BadSnapshot, snap.Address, err)
		}
		blk.SetSuccessor(ir.Conditional(ir.SuccessorKind(snap.SuccessorKind), cond, snap.Case0, snap.Case1))
	} else {
		blk.SetSuccessor(ir.Unconditional(ir.SuccessorKind(snap.SuccessorKind), snap.Case0))
	}

	if err := blk.Validate(); err != nil {
		return nil, curated.Errorf(BadSnapshot, snap.Address, err)
	}

	return blk, nil
}

// Save snapshots to the writer.
func Save(w io.Writer, snaps []Block) error {
	err := msgpack.NewEncoder(w).Encode(file{
		Version: Version,
		Blocks:  snaps,
	})
	if err != nil {
		return curated.Errorf(BadFile, err)
	}
	return nil
}

// Load snapshots from the reader.
func Load(r io.Reader) ([]Block, error) {
	var f file
	if err := msgpack.NewDecoder(r).Decode(&f); err != nil {
		return nil, curated.Errorf(BadFile, err)
	}
	if f.Version != Version {
		return nil, curated.Errorf(BadFile, fmt.Errorf("unsupported version (%d)", f.Version))
	}
	return f.Blocks, nil
}
