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

package frontend

import (
	"fmt"

	"github.com/jetsetilly/armjit/curated"
	"github.com/jetsetilly/armjit/jit/guest"
	"github.com/jetsetilly/armjit/jit/ir"
	"golang.org/x/arch/arm/armasm"
)

// Entry is a single disassembled instruction.
type Entry struct {
	Address uint32
	Opcode  uint32
	Text    string

	// whether the instruction can be translated into IR. conditional
	// branches are never marked as supported because support depends on
	// the preceding instructions
	Supported bool
}

func (e Entry) String() string {
	if e.Supported {
		return fmt.Sprintf("%08x %08x   %s", e.Address, e.Opcode, e.Text)
	}
	return fmt.Sprintf("%08x %08x * %s", e.Address, e.Opcode, e.Text)
}

// Disassemble count instructions starting at address. Instructions that can
// not be decoded are included with a Text field of "???". Disassembly stops
// at the first address that is not mapped.
func (tr *Translator) Disassemble(address uint32, count int) ([]Entry, error) {
	if tr.scratch == nil {
		tr.scratch = ir.NewBlock(address)
	}

	entries := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		addr := address + uint32(i*4)

		opcode, inst, err := tr.fetch(addr)
		if err != nil {
			if curated.Has(err, guest.MemoryFault) {
				if len(entries) == 0 {
					return nil, curated.Errorf(FetchFailed, addr, err)
				}
				break
			}
			entries = append(entries, Entry{Address: addr, Opcode: opcode, Text: "???"})
			continue
		}

		tr.scratch.Reset(addr)
		tr.begin(tr.scratch, addr)
		_, ok := tr.instruction(opcode, inst)

		entries = append(entries, Entry{
			Address:   addr,
			Opcode:    opcode,
			Text:      armasm.GNUSyntax(inst),
			Supported: ok,
		})
	}

	return entries, nil
}
