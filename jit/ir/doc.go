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

// Package ir defines the intermediate representation produced by a frontend
// and consumed by a backend.
//
// A Block holds up to MaxInstructions instructions in a fixed array. The
// instructions form a singly linked list, starting at Block.Head and
// following Instruction.Next, which defines the execution order. Storage
// order is the order in which instructions were added and is unrelated to
// execution order once InsertAfter() has been used.
//
// The index of an instruction is also the name of its result. Operands refer
// to the results of earlier instructions by index. Every operand must have
// been added to the block, and must precede the referencing instruction in
// execution order, at the time the referencing instruction is added. Failing
// this is a programming error and causes a panic, as does adding more than
// MaxInstructions instructions to a block.
//
// A block ends with a Successor, which says where execution goes next.
package ir
