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

// Package cache maps guest addresses to compiled blocks.
//
// The cache is small and lookup is a linear scan. Replacement is
// deterministic: an empty entry is preferred and otherwise the entry that was
// installed least recently is replaced. Entries can be invalidated by
// address, by address range or by the arena index of the block they refer
// to.
package cache
