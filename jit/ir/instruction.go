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
	"strings"
)

// Instruction is a single IR instruction. The fields used depend on the Kind.
// Instructions should be created with the constructor functions: LoadConstant,
// LoadMemory, StoreMemory, LoadRegister, StoreRegister, Unary and Binary.
type Instruction struct {
	Kind Kind

	// the next instruction in execution order. execution order is not
	// necessarily the same as storage order
	Next Index

	Constant Value
	Unary    UnaryOp
	Binary   BinaryOp
	Register HostRegister
	Width    Width

	// value references. unused operands are InvalidIndex
	//
	//	LoadMemory:    Operand[0] is the address
	//	StoreMemory:   Operand[0] is the address, Operand[1] the value
	//	StoreRegister: Operand[0] is the value
	//	Unary:         Operand[0] is the source
	//	Binary:        Operand[0] is lhs, Operand[1] is rhs
	Operand [2]Index
}

var noOperands = [2]Index{InvalidIndex, InvalidIndex}

// LoadConstant creates an instruction that produces the value v.
func LoadConstant(v Value) Instruction {
	return Instruction{Kind: LoadConstantKind, Next: InvalidIndex, Constant: v, Operand: noOperands}
}

// LoadMemory creates an instruction that reads guest memory at the address
// produced by instruction addr.
func LoadMemory(width Width, addr Index) Instruction {
	return Instruction{Kind: LoadMemoryKind, Next: InvalidIndex, Width: width, Operand: [2]Index{addr, InvalidIndex}}
}

// StoreMemory creates an instruction that writes the value produced by
// instruction val to guest memory at the address produced by instruction
// addr.
func StoreMemory(width Width, addr Index, val Index) Instruction {
	return Instruction{Kind: StoreMemoryKind, Next: InvalidIndex, Width: width, Operand: [2]Index{addr, val}}
}

// LoadRegister creates an instruction that reads a host register.
func LoadRegister(reg HostRegister) Instruction {
	return Instruction{Kind: LoadRegisterKind, Next: InvalidIndex, Register: reg, Operand: noOperands}
}

// StoreRegister creates an instruction that writes the value produced by
// instruction val to a host register.
func StoreRegister(reg HostRegister, val Index) Instruction {
	return Instruction{Kind: StoreRegisterKind, Next: InvalidIndex, Register: reg, Operand: [2]Index{val, InvalidIndex}}
}

// Unary creates an instruction that applies op to the value produced by
// instruction src.
func Unary(op UnaryOp, src Index) Instruction {
	return Instruction{Kind: UnaryKind, Next: InvalidIndex, Unary: op, Operand: [2]Index{src, InvalidIndex}}
}

// Binary creates an instruction that applies op to the values produced by
// instructions lhs and rhs.
func Binary(op BinaryOp, lhs Index, rhs Index) Instruction {
	return Instruction{Kind: BinaryKind, Next: InvalidIndex, Binary: op, Operand: [2]Index{lhs, rhs}}
}

// Operands returns the value references used by the instruction. The returned
// slice shares no memory with the instruction.
func (ins *Instruction) Operands() []Index {
	switch ins.Kind {
	case LoadMemoryKind, StoreRegisterKind, UnaryKind:
		return []Index{ins.Operand[0]}
	case StoreMemoryKind, BinaryKind:
		return []Index{ins.Operand[0], ins.Operand[1]}
	}
	return nil
}

// HasResult returns true if the instruction produces a value that can be
// referenced by other instructions.
func (ins *Instruction) HasResult() bool {
	switch ins.Kind {
	case LoadConstantKind, LoadMemoryKind, LoadRegisterKind, UnaryKind, BinaryKind:
		return true
	}
	return false
}

// HasSideEffects returns true if the instruction changes guest state or might
// fail at run time. Instructions without side effects can be removed if their
// result is unused.
func (ins *Instruction) HasSideEffects() bool {
	switch ins.Kind {
	case LoadMemoryKind, StoreMemoryKind, StoreRegisterKind:
		return true
	}
	return false
}

// Valid returns an error if the fields of the instruction are not valid for
// its kind. Missing operands are reported but operand references are not
// checked against any block.
func (ins *Instruction) Valid() error {
	if ins.Kind >= numKinds {
		return fmt.Errorf("unknown kind %d", ins.Kind)
	}
	switch ins.Kind {
	case LoadRegisterKind, StoreRegisterKind:
		if ins.Register >= NumHostRegisters {
			return fmt.Errorf("host register %d out of range", ins.Register)
		}
	case LoadMemoryKind, StoreMemoryKind:
		if ins.Width > Byte {
			return fmt.Errorf("unknown width %d", ins.Width)
		}
	case UnaryKind:
		if ins.Unary >= numUnaryOps {
			return fmt.Errorf("unknown unary op %d", ins.Unary)
		}
	case BinaryKind:
		if ins.Binary >= numBinaryOps {
			return fmt.Errorf("unknown binary op %d", ins.Binary)
		}
	}
	for _, o := range ins.Operands() {
		if o == InvalidIndex {
			return fmt.Errorf("missing operand for %s", ins.Kind)
		}
	}
	return nil
}

func (ins Instruction) String() string {
	var s strings.Builder
	switch ins.Kind {
	case LoadConstantKind:
		s.WriteString(fmt.Sprintf("const %#x", uint64(ins.Constant)))
	case LoadMemoryKind:
		s.WriteString(fmt.Sprintf("load.%s [%%%d]", ins.Width, ins.Operand[0]))
	case StoreMemoryKind:
		s.WriteString(fmt.Sprintf("store.%s [%%%d] %%%d", ins.Width, ins.Operand[0], ins.Operand[1]))
	case LoadRegisterKind:
		s.WriteString(fmt.Sprintf("getreg %s", ins.Register))
	case StoreRegisterKind:
		s.WriteString(fmt.Sprintf("setreg %s %%%d", ins.Register, ins.Operand[0]))
	case UnaryKind:
		s.WriteString(fmt.Sprintf("%s %%%d", ins.Unary, ins.Operand[0]))
	case BinaryKind:
		s.WriteString(fmt.Sprintf("%s %%%d %%%d", ins.Binary, ins.Operand[0], ins.Operand[1]))
	default:
		s.WriteString(ins.Kind.String())
	}
	return s.String()
}
