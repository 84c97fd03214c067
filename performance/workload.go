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

package performance

import (
	"encoding/binary"
	"os"

	"github.com/jetsetilly/armjit/curated"
	"github.com/jetsetilly/armjit/jit/guest"
)

// BadWorkload is the error pattern for workloads that cannot be loaded.
const BadWorkload = "performance: workload: %v"

// minimum amount of guest memory for a workload loaded from a file
const minMemorySize = 0x10000

// Workload is a guest program used to measure the JIT engine.
type Workload struct {
	Name string

	// program is loaded at the origin address and execution starts at the
	// entry address
	Origin uint32
	Entry  uint32
	Code   []uint32

	// size of guest memory, starting at the origin address
	MemorySize int
}

// DefaultWorkload is a small loop that exercises arithmetic, memory access
// and conditional branching.
func DefaultWorkload() Workload {
	return Workload{
		Name:   "default",
		Origin: 0,
		Entry:  0,
		Code: []uint32{
			0xe3a00c01, // mov r0, #0x100
			0xe3a01000, // mov r1, #0
			0xe3a02c02, // mov r2, #0x200
			0xe0811000, // loop: add r1, r1, r0
			0xe5821000, // str r1, [r2]
			0xe5923000, // ldr r3, [r2]
			0xe0211083, // eor r1, r1, r3, lsl #1
			0xe2500001, // subs r0, r0, #1
			0x1afffff9, // bne loop
			0xe12fff1e, // bx lr
		},
		MemorySize: 0x400,
	}
}

// LoadWorkload reads a raw little-endian ARM binary. The binary is loaded at
// address zero and execution begins at the first instruction.
func LoadWorkload(filename string) (Workload, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Workload{}, curated.Errorf(BadWorkload, err)
	}
	if len(data) == 0 {
		return Workload{}, curated.Errorf(BadWorkload, "empty file")
	}

	// pad to a whole number of words
	for len(data)%4 != 0 {
		data = append(data, 0)
	}

	wl := Workload{
		Name:       filename,
		Code:       make([]uint32, len(data)/4),
		MemorySize: max(len(data), minMemorySize),
	}
	for i := range wl.Code {
		wl.Code[i] = binary.LittleEndian.Uint32(data[i*4:])
	}

	return wl, nil
}

// Memory creates guest memory with the workload loaded into it.
func (wl Workload) Memory() (*guest.RAM, error) {
	ram := guest.NewRAM(wl.Origin, wl.MemorySize)
	if err := ram.LoadWords(wl.Origin, wl.Code...); err != nil {
		return nil, curated.Errorf(BadWorkload, err)
	}
	return ram, nil
}
