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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. This is similar to
// the Errorf() function in the fmt package. It takes a formatting pattern,
// placeholder values and returns an error. The pattern is retained and is
// used to identify the error later on.
//
// Packages in armjit export the patterns they use as string constants. For
// example, the ir package panics with a curated error when a block is full:
//
//	if curated.Is(err, ir.CapacityExceeded) {
//		...
//	}
//
// The Has() function is similar but checks if a pattern occurs somewhere in
// the error chain.
//
//	e := curated.Errorf(ir.CapacityExceeded, ir.MaxInstructions)
//	f := curated.Errorf(jit.TranslationError, 0x8000, e)
//
//	curated.Is(f, ir.CapacityExceeded)  // false
//	curated.Has(f, ir.CapacityExceeded) // true
//
// The IsAny() function answers whether the error was created by
// curated.Errorf(). We can think of the difference between curated and
// uncurated errors as being 'expected' and 'unexpected'.
//
// The Error() function normalises the error chain so that it does not contain
// duplicate adjacent parts. This means that wrapping an error with a pattern
// that begins with the same prefix does not result in a stuttering message.
//
// Curated errors implement Unwrap() so the standard library's errors.Is() and
// errors.As() functions can see any error values given to Errorf().
package curated
