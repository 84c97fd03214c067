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

// Error patterns. Capacity and forward reference errors are programming
// errors in the frontend or in a pass and are raised with panic(). Iteration
// and validation errors are returned.
const (
	CapacityExceeded     = "ir: block capacity exceeded (%d instructions)"
	ForwardReference     = "ir: %s: operand %d is not available at this point"
	MalformedInstruction = "ir: malformed instruction: %v"
	InstructionInUse     = "ir: instruction %d is still referenced by instruction %d"
	BadIndex             = "ir: instruction %d does not exist"
	BadLink              = "ir: bad link from %d to %d"
	CycleDetected        = "ir: cycle detected in instruction list at %d"
	InvalidBlock         = "ir: invalid block at %#08x: %v"
)
