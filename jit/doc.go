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

// Package jit is the JIT engine for the ARM CPU emulation. It ties together a
// frontend, which translates guest code into IR blocks, and a backend, which
// compiles and runs the blocks.
//
// The Engine allocates blocks from an arena, asks the frontend to fill them,
// optionally runs the IR passes, validates the result and compiles it with the
// backend. The compiled block is installed in a cache keyed by guest address.
//
// Engine.Run() is the dispatch loop. A block ending with a jump successor is
// followed immediately by the block at the next address, without returning
// to the caller. The length of such a chain is limited so that the embedding
// emulator regains control regularly. All other successors return to the
// caller. A call successor means that the caller should execute the
// instruction at the next address itself.
//
// Translations are invalidated explicitly with Invalidate(), InvalidateRange()
// or Flush(). If the guest state supports it, writes to guest memory
// automatically invalidate any translation covering the written address.
package jit
