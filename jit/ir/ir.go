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

import "fmt"

// Value is the type of every value computed by the IR. Arithmetic wraps on 64
// bits. Narrower guest widths are the responsibility of the frontend.
type Value uint64

// Index identifies an instruction within a Block. It is also the SSA name of
// the instruction's result.
type Index uint16

// InvalidIndex terminates the instruction list and marks an absent operand.
const InvalidIndex Index = 0xffff

// BlockIndex identifies a Block within the arena.
type BlockIndex uint32

// MaxInstructions is the capacity of a Block.
const MaxInstructions = 512

// MaxInstructions must be a power of two and must leave room for InvalidIndex.
var (
	_ [0]struct{} = [MaxInstructions & (MaxInstructions - 1)]struct{}{}
	_ [InvalidIndex - MaxInstructions]struct{}
)

// HostRegister is one of the register slots available to LoadRegister and
// StoreRegister instructions.
type HostRegister uint8

// List of valid HostRegister values.
const (
	R0 HostRegister = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
	NumHostRegisters
)

func (r HostRegister) String() string {
	if r >= NumHostRegisters {
		return fmt.Sprintf("r?%d", uint8(r))
	}
	return fmt.Sprintf("r%d", uint8(r))
}

// Width of a memory access. The zero value is a 32 bit word.
type Width uint8

// List of valid Width values.
const (
	Word Width = iota
	Half
	Byte
)

func (w Width) String() string {
	switch w {
	case Word:
		return "word"
	case Half:
		return "half"
	case Byte:
		return "byte"
	}
	return "width?"
}

// Bytes returns the number of bytes accessed by the width.
func (w Width) Bytes() int {
	switch w {
	case Half:
		return 2
	case Byte:
		return 1
	}
	return 4
}

// Kind of instruction.
type Kind uint8

// List of valid Kind values.
const (
	LoadConstantKind Kind = iota
	LoadMemoryKind
	StoreMemoryKind
	LoadRegisterKind
	StoreRegisterKind
	UnaryKind
	BinaryKind
	numKinds
)

func (k Kind) String() string {
	switch k {
	case LoadConstantKind:
		return "const"
	case LoadMemoryKind:
		return "load"
	case StoreMemoryKind:
		return "store"
	case LoadRegisterKind:
		return "getreg"
	case StoreRegisterKind:
		return "setreg"
	case UnaryKind:
		return "unary"
	case BinaryKind:
		return "binary"
	}
	return "kind?"
}

// UnaryOp is the operation performed by a Unary instruction.
type UnaryOp uint8

// List of valid UnaryOp values.
const (
	Not UnaryOp = iota
	numUnaryOps
)

func (op UnaryOp) String() string {
	switch op {
	case Not:
		return "not"
	}
	return "unary?"
}

// Eval applies the operation to the source value.
func (op UnaryOp) Eval(src Value) Value {
	switch op {
	case Not:
		return ^src
	}
	panic(fmt.Sprintf("ir: unknown unary op %d", op))
}

// BinaryOp is the operation performed by a Binary instruction.
type BinaryOp uint8

// List of valid BinaryOp values.
const (
	Add BinaryOp = iota
	Sub
	Mul
	And
	Or
	Xor
	numBinaryOps
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "add"
	case Sub:
		return "sub"
	case Mul:
		return "mul"
	case And:
		return "and"
	case Or:
		return "or"
	case Xor:
		return "xor"
	}
	return "binary?"
}

// Eval applies the operation to the two values. All operations wrap.
func (op BinaryOp) Eval(lhs, rhs Value) Value {
	switch op {
	case Add:
		return lhs + rhs
	case Sub:
		return lhs - rhs
	case Mul:
		return lhs * rhs
	case And:
		return lhs & rhs
	case Or:
		return lhs | rhs
	case Xor:
		return lhs ^ rhs
	}
	panic(fmt.Sprintf("ir: unknown binary op %d", op))
}
