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

package guest_test

import (
	"testing"

	"github.com/jetsetilly/armjit/curated"
	"github.com/jetsetilly/armjit/jit/guest"
	"github.com/jetsetilly/armjit/jit/ir"
	"github.com/jetsetilly/armjit/test"
)

func TestRAM(t *testing.T) {
	ram := guest.NewRAM(0x1000, 16)

	blk, offset := ram.MapAddress(0x1004, false)
	test.ExpectSuccess(t, blk != nil)
	test.ExpectEquality(t, offset, 4)

	blk, _ = ram.MapAddress(0x0fff, false)
	test.ExpectSuccess(t, blk == nil)
	blk, _ = ram.MapAddress(0x1010, false)
	test.ExpectSuccess(t, blk == nil)

	test.ExpectSuccess(t, ram.LoadWords(0x1000, 0x04030201, 0xe3a00005))
	test.ExpectEquality(t, ram.Data[0], 0x01)
	test.ExpectEquality(t, ram.Data[3], 0x04)

	v, err := guest.Read(ram, ir.Word, 0x1004)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0xe3a00005)

	v, err = guest.Read(ram, ir.Half, 0x1001)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0x0302)

	v, err = guest.Read(ram, ir.Byte, 0x1003)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0x04)

	// word access straddling the end of memory
	_, err = guest.Read(ram, ir.Word, 0x100e)
	test.ExpectSuccess(t, curated.Is(err, guest.MemoryFault))
	test.ExpectFailure(t, ram.LoadWords(0x100c, 1, 2))
}

func TestState(t *testing.T) {
	ram := guest.NewRAM(0, 64)
	st := guest.NewState(ram)

	var hooked []uint32
	st.SetWriteHook(func(addr uint32, w ir.Width) {
		hooked = append(hooked, addr)
	})

	st.SetRegister(ir.R3, 0x1_0000_0005)
	test.ExpectEquality(t, st.Register(ir.R3), 5)

	test.ExpectSuccess(t, st.Write(ir.Byte, 8, 0x1ff))
	v, err := st.Read(ir.Word, 8)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0xff)
	test.ExpectEquality(t, len(hooked), 1)
	test.ExpectEquality(t, hooked[0], 8)

	// faults do not call the hook
	err = st.Write(ir.Word, 64, 1)
	test.ExpectSuccess(t, curated.Is(err, guest.MemoryFault))
	test.ExpectEquality(t, len(hooked), 1)

	// addresses must fit in 32 bits
	_, err = st.Read(ir.Word, 0x1_0000_0000)
	test.ExpectSuccess(t, curated.Is(err, guest.AddressRange))
	err = st.Write(ir.Word, 0x1_0000_0000, 0)
	test.ExpectSuccess(t, curated.Is(err, guest.AddressRange))

	r, w := st.Accesses()
	test.ExpectEquality(t, r, 1)
	test.ExpectEquality(t, w, 2)
}
