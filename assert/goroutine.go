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

package assert

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
)

// GetGoRoutineID returns the ID of the calling goroutine. It is slow and
// should only be used for debugging assertions.
func GetGoRoutineID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	b = b[:bytes.IndexByte(b, ' ')]
	n, _ := strconv.ParseUint(string(b), 10, 64)
	return n
}

// SingleGoroutine asserts that it is only ever used from one goroutine. The
// goroutine is fixed on the first call to Check(). The zero value is ready
// to use.
type SingleGoroutine struct {
	id uint64
}

// Check panics if it is called from a goroutine different to the one that
// first called it.
func (s *SingleGoroutine) Check(context string) {
	id := GetGoRoutineID()
	if s.id == 0 {
		s.id = id
		return
	}
	if s.id != id {
		panic(fmt.Sprintf("%s: used from goroutine %d but owned by goroutine %d", context, id, s.id))
	}
}

// Reset forgets the owning goroutine.
func (s *SingleGoroutine) Reset() {
	s.id = 0
}
