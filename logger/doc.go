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

// Package logger is the central logging facility for armjit. There is only
// one log and it is shared by every engine instance.
//
// Entries are added with Log() and Logf(). The first argument is a
// Permission, usually an instance of environment.Environment. The tag
// argument groups entries by subsystem. The JIT engine uses the tags "JIT",
// "JIT/arena" and "JIT/frontend".
//
// Consecutive entries with the same tag and detail are collapsed into one
// entry with a repeat count. The log is capped at a maximum number of
// entries, older entries being dropped.
package logger
