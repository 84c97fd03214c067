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
	"fortio.org/safecast"

	"github.com/jetsetilly/armjit/curated"
	"github.com/jetsetilly/armjit/jit/ir"
)

// AddressRange is the error pattern for addresses that do not fit in 32 bits.
const AddressRange = "guest: address out of range (%#x)"

// State is the guest register file and memory. It implements the
// backend.State interface.
//
// Register N of the guest is held in host register slot N. Register values
// are stored as ir.Values but only the lower 32 bits are significant.
type State struct {
	Registers [ir.NumHostRegisters]ir.Value
	Mem       Memory

	// called after every successful write to memory
	writeHook func(addr uint32, width ir.Width)

	reads  int
	writes int
}

// NewState is the preferred method of initialisation for the State type.
func NewState(mem Memory) *State {
	return &State{Mem: mem}
}

// SetWriteHook sets the function to be called after every successful write to
// memory. Used to invalidate translations of code that has been overwritten.
func (st *State) SetWriteHook(f func(addr uint32, width ir.Width)) {
	st.writeHook = f
}

// Register implements the backend.State interface.
func (st *State) Register(reg ir.HostRegister) ir.Value {
	return st.Registers[reg&0x0f]
}

// SetRegister implements the backend.State interface.
func (st *State) SetRegister(reg ir.HostRegister, value ir.Value) {
	st.Registers[reg&0x0f] = value & 0xffffffff
}

// Read implements the backend.State interface.
func (st *State) Read(width ir.Width, address ir.Value) (ir.Value, error) {
	addr, err := safecast.Conv[uint32](address)
	if err != nil {
		return 0, curated.Errorf(AddressRange, uint64(address))
	}
	st.reads++
	v, err := Read(st.Mem, width, addr)
	return ir.Value(v), err
}

// Write implements the backend.State interface.
func (st *State) Write(width ir.Width, address ir.Value, value ir.Value) error {
	addr, err := safecast.Conv[uint32](address)
	if err != nil {
		return curated.Errorf(AddressRange, uint64(address))
	}
	st.writes++
	if err := Write(st.Mem, width, addr, uint32(value)); err != nil {
		return err
	}
	if st.writeHook != nil {
		st.writeHook(addr, width)
	}
	return nil
}

// Accesses returns the number of memory reads and writes made through the
// State.
func (st *State) Accesses() (reads int, writes int) {
	return st.reads, st.writes
}
