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

// Package interp is a backend that interprets IR blocks.
//
// Compiling a block walks the instruction list in execution order and records
// a thunk for each instruction. A thunk is a handler function and the
// argument it will be called with. The argument identifies the instruction
// and the values buffer of the block, in which the result of instruction N is
// stored at position N. Running a block calls each thunk in turn, the last
// thunk resolving the successor of the block.
//
// Results of LoadConstant instructions are written to the values buffer when
// the block is compiled and so their handler does nothing.
//
// The backend is not safe for concurrent use and a block must not be run
// while it is already running.
package interp
