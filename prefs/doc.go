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

// Package prefs implements the preference value types and the way they are
// stored on disk.
//
// Preference values are instances of Bool, Int or String. Each value is added
// to a Disk under a dotted key and the Disk is saved or loaded as a TOML
// file. The part of the key before the final dot names the TOML table:
//
//	# armjit preferences file. edit with care
//
//	[jit]
//	  arenaBlocks = 256
//	  backend = "interp"
//
// The command line stack allows preferences to be overridden for a single
// session. A group of "key::value" pairs is pushed with
// PushCommandLineStack() and consumed by the next call to Disk.Load().
package prefs
