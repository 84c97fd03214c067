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

// Package irfile saves and loads snapshots of IR blocks. Snapshots are
// encoded with msgpack.
//
// A snapshot records the instructions of a block in execution order, along
// with the successor. Restoring a snapshot creates a new block with the same
// behaviour as the original but with the instructions stored in execution
// order.
package irfile
