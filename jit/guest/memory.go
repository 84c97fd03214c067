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

package guest

import (
	"encoding/binary"
	"fmt"

	"github.com/jetsetilly/armjit/curated"
	"github.com/jetsetilly/armjit/jit/ir"
)

// MemoryFault is the error pattern for guest memory accesses that cannot be
// satisfied.
const MemoryFault = "guest: memory fault: %s %s at %#08x"

// Memory is the guest memory as seen by the JIT engine. It has the same shape
// as the memory interface of the plain ARM interpreter.
type Memory interface {
	// MapAddress returns the memory block containing addr and the offset of
	// addr within that block. Memory blocks may be different for read and
	// write operations. A nil block indicates that the address is not mapped.
	MapAddress(addr uint32, write bool) (*[]byte, uint32)
}

// RAM is a flat block of guest memory starting at an origin address.
type RAM struct {
	Origin uint32
	Data   []byte
}

// NewRAM is the preferred method of initialisation for the RAM type.
func NewRAM(origin uint32, size int) *RAM {
	return &RAM{
		Origin: origin,
		Data:   make([]byte, size),
	}
}

// MapAddress implements the Memory interface.
func (ram *RAM) MapAddress(addr uint32, _ bool) (*[]byte, uint32) {
	if addr < ram.Origin || uint64(addr-ram.Origin) >= uint64(len(ram.Data)) {
		return nil, 0
	}
	return &ram.Data, addr - ram.Origin
}

// LoadWords copies 32 bit words into memory starting at addr.
func (ram *RAM) LoadWords(addr uint32, words ...uint32) error {
	for i, w := range words {
		if err := Write(ram, ir.Word, addr+uint32(i*4), w); err != nil {
			return err
		}
	}
	return nil
}

// Read a value of the given width from memory. Values are little-endian.
func Read(mem Memory, width ir.Width, addr uint32) (uint32, error) {
	blk, offset := mem.MapAddress(addr, false)
	if blk == nil || uint64(offset)+uint64(width.Bytes()) > uint64(len(*blk)) {
		return 0, curated.Errorf(MemoryFault, "read", width, addr)
	}
	switch width {
	case ir.Byte:
		return uint32((*blk)[offset]), nil
	case ir.Half:
		return uint32(binary.LittleEndian.Uint16((*blk)[offset:])), nil
	case ir.Word:
		return binary.LittleEndian.Uint32((*blk)[offset:]), nil
	}
	return 0, curated.Errorf(MemoryFault, "read", fmt.Sprintf("width %d", width), addr)
}

// Write a value of the given width to memory. Values are little-endian and
// are truncated to the width.
func Write(mem Memory, width ir.Width, addr uint32, value uint32) error {
	blk, offset := mem.MapAddress(addr, true)
	if blk == nil || uint64(offset)+uint64(width.Bytes()) > uint64(len(*blk)) {
		return curated.Errorf(MemoryFault, "write", width, addr)
	}
	switch width {
	case ir.Byte:
		(*blk)[offset] = uint8(value)
	case ir.Half:
		binary.LittleEndian.PutUint16((*blk)[offset:], uint16(value))
	case ir.Word:
		binary.LittleEndian.PutUint32((*blk)[offset:], value)
	default:
		return curated.Errorf(MemoryFault, "write", fmt.Sprintf("width %d", width), addr)
	}
	return nil
}
