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

// Package frontend translates 32 bit ARM code into IR blocks. It implements
// the jit.Frontend interface and is intended as a reference for frontends
// written for other guest CPUs.
//
// Only a small subset of the ARM instruction set is supported. Data
// processing instructions with an immediate, register or left shifted
// register operand, MUL, word and byte loads and stores with an immediate
// offset, and the B, BL, BEQ and BNE branches. BEQ and BNE are only supported
// when the flags have been set by an earlier instruction in the same block.
//
// A block ends at the first branch. It also ends at the first instruction
// that cannot be translated, with a SuccessorCall to the address of that
// instruction. The caller of the JIT engine is expected to execute that
// instruction with an interpreter before calling the engine again.
//
// Guest registers are cached for the duration of a block and are written
// back to the guest state before the successor is taken. The CPSR is not
// modelled so flags do not survive the end of a block.
package frontend
