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

package jit

// Error patterns.
const (
	DispatchMiss    = "jit: dispatch miss at %#08x after compilation"
	TranslateFailed = "jit: translation of %#08x failed: %v"
	CompileFailed   = "jit: compilation of %#08x failed: %v"
	UnknownBackend  = "jit: unknown backend (%s)"
	BadConfig       = "jit: %v"
)
