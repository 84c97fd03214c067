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
	"encoding/binary"
	"strings"

	"github.com/jetsetilly/armjit/curated"
	"github.com/jetsetilly/armjit/environment"
	"github.com/jetsetilly/armjit/jit/guest"
	"github.com/jetsetilly/armjit/jit/ir"
	"github.com/jetsetilly/armjit/logger"
	"golang.org/x/arch/arm/armasm"
)

// FetchFailed is returned by Translate() when the first instruction of a
// block cannot be read from guest memory.
const FetchFailed = "frontend: fetch at %#08x: %v"

// the largest number of IR instructions a single guest instruction can
// translate to, including any constants it needs
const maxPerInstruction = 12

// condition field of an ARM instruction
const (
	condEQ     = 0x0
	condNE     = 0x1
	condAlways = 0xe
)

// the program counter reads as the address of the instruction plus eight
const pcAhead = 8

const mask32 = 0xffffffff

// Translator converts ARM code into IR. It implements the jit.Frontend
// interface.
type Translator struct {
	env *environment.Environment
	mem guest.Memory

	// per block translation state
	blk   *ir.Block
	pc    uint32
	regs  [ir.NumHostRegisters]ir.Index
	dirty [ir.NumHostRegisters]bool
	flags ir.Index
	consts map[uint32]ir.Index

	// the block used by Disassemble() to test whether an instruction can be
	// translated
	scratch *ir.Block
}

// NewTranslator is the preferred method of initialisation for the Translator
// type.
func NewTranslator(env *environment.Environment, mem guest.Memory) *Translator {
	return &Translator{
		env:    env,
		mem:    mem,
		consts: make(map[uint32]ir.Index),
	}
}

// begin a new translation into blk
func (tr *Translator) begin(blk *ir.Block, pc uint32) {
	tr.blk = blk
	tr.pc = pc
	for i := range tr.regs {
		tr.regs[i] = ir.InvalidIndex
		tr.dirty[i] = false
	}
	tr.flags = ir.InvalidIndex
	clear(tr.consts)
}

// fetch and decode the instruction at addr.
func (tr *Translator) fetch(addr uint32) (uint32, armasm.Inst, error) {
	opcode, err := guest.Read(tr.mem, ir.Word, addr)
	if err != nil {
		return 0, armasm.Inst{}, err
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], opcode)
	inst, err := armasm.Decode(b[:], armasm.ModeARM)
	return opcode, inst, err
}

// Translate implements the jit.Frontend interface.
func (tr *Translator) Translate(blk *ir.Block) error {
	tr.begin(blk, blk.Address)

	limit := tr.env.Prefs.MaxGuestInstructions.Get().(int)

	for n := 0; ; n++ {
		// long runs of code and blocks that are close to the IR capacity end
		// with a jump to the next instruction
		if n >= limit || blk.Length+maxPerInstruction+int(ir.NumHostRegisters) > ir.MaxInstructions {
			tr.end(ir.Unconditional(ir.SuccessorJump, tr.pc))
			return nil
		}

		opcode, inst, err := tr.fetch(tr.pc)
		if err != nil {
			if curated.Has(err, guest.MemoryFault) {
				if n == 0 {
					return curated.Errorf(FetchFailed, tr.pc, err)
				}
			} else {
				logger.Logf(tr.env, "JIT/frontend", "cannot decode %08x at %#08x", opcode, tr.pc)
			}

			// the fault or the undecodable instruction is left to the
			// interpreter
			tr.end(ir.Unconditional(ir.SuccessorCall, tr.pc))
			return nil
		}

		done, ok := tr.instruction(opcode, inst)
		if !ok {
			logger.Logf(tr.env, "JIT/frontend", "unsupported instruction at %#08x: %s", tr.pc, armasm.GNUSyntax(inst))
			tr.end(ir.Unconditional(ir.SuccessorCall, tr.pc))
			return nil
		}
		if done {
			return nil
		}
		tr.pc += 4
	}
}

// end the block with the successor. dirty registers are written back first.
func (tr *Translator) end(succ ir.Successor) {
	for r := range tr.regs {
		if tr.dirty[r] {
			tr.blk.Append(ir.StoreRegister(ir.HostRegister(r), tr.regs[r]))
		}
	}
	tr.blk.Span = tr.pc - tr.blk.Address
	tr.blk.SetSuccessor(succ)
}

func (tr *Translator) constant(v uint32) ir.Index {
	if idx, ok := tr.consts[v]; ok {
		return idx
	}
	idx := tr.blk.Append(ir.LoadConstant(ir.Value(v)))
	tr.consts[v] = idx
	return idx
}

func (tr *Translator) reg(r armasm.Reg) ir.Index {
	if r == armasm.PC {
		return tr.constant(tr.pc + pcAhead)
	}
	if tr.regs[r] == ir.InvalidIndex {
		tr.regs[r] = tr.blk.Append(ir.LoadRegister(ir.HostRegister(r)))
	}
	return tr.regs[r]
}

func (tr *Translator) setReg(r armasm.Reg, v ir.Index) {
	tr.regs[r] = v
	tr.dirty[r] = true
}

// masked limits the result of an arithmetic instruction to 32 bits.
func (tr *Translator) masked(v ir.Index) ir.Index {
	return tr.blk.Append(ir.Binary(ir.And, v, tr.constant(mask32)))
}

// mnemonic splits the string form of the op into the base mnemonic and
// whether the S suffix is present.
func mnemonic(op armasm.Op) (string, bool) {
	parts := strings.Split(op.String(), ".")
	for _, p := range parts[1:] {
		if p == "S" {
			return parts[0], true
		}
	}
	return parts[0], false
}

// instruction translates a single instruction. The done result is true if
// the instruction ended the block. The ok result is false if the instruction
// cannot be translated, in which case nothing has been added to the block.
func (tr *Translator) instruction(opcode uint32, inst armasm.Inst) (done bool, ok bool) {
	name, setFlags := mnemonic(inst.Op)
	cond := opcode >> 28

	if name == "B" {
		return tr.branch(opcode, cond, inst)
	}
	if cond != condAlways {
		return false, false
	}

	switch name {
	case "BL":
		return tr.branch(opcode, cond, inst)
	case "AND", "EOR", "SUB", "RSB", "ADD", "ORR", "BIC":
		return false, tr.dataProcessing(name, setFlags, inst)
	case "MOV", "MVN":
		return false, tr.move(name, setFlags, inst)
	case "CMP", "CMN", "TST", "TEQ":
		return false, tr.compare(name, inst)
	case "MUL":
		return false, tr.multiply(setFlags, inst)
	case "LDR", "LDRB", "STR", "STRB":
		return false, tr.transfer(name, inst)
	}

	return false, false
}

// operand returns the IR value for the flexible second operand. Only
// immediates, registers and registers shifted left by a constant amount are
// supported.
func (tr *Translator) operand(arg armasm.Arg) (ir.Index, bool) {
	switch a := arg.(type) {
	case armasm.Imm:
		return tr.constant(uint32(a)), true
	case armasm.ImmAlt:
		return tr.constant(uint32(a.Imm())), true
	case armasm.Reg:
		return tr.reg(a), true
	case armasm.RegShift:
		if a.Shift != armasm.ShiftLeft {
			return 0, false
		}
		v := tr.blk.Append(ir.Binary(ir.Mul, tr.reg(a.Reg), tr.constant(1<<a.Count)))
		return tr.masked(v), true
	}
	return 0, false
}

// supportedOperand is true if operand() will accept the argument. It must be
// checked before anything is emitted for an instruction.
func supportedOperand(arg armasm.Arg) bool {
	switch a := arg.(type) {
	case armasm.Imm, armasm.ImmAlt, armasm.Reg:
		return true
	case armasm.RegShift:
		return a.Shift == armasm.ShiftLeft
	}
	return false
}

func destination(arg armasm.Arg) (armasm.Reg, bool) {
	r, ok := arg.(armasm.Reg)
	if !ok || r == armasm.PC {
		return 0, false
	}
	return r, true
}

func (tr *Translator) dataProcessing(name string, setFlags bool, inst armasm.Inst) bool {
	rd, ok := destination(inst.Args[0])
	if !ok {
		return false
	}
	rn, ok := inst.Args[1].(armasm.Reg)
	if !ok || !supportedOperand(inst.Args[2]) {
		return false
	}

	lhs := tr.reg(rn)
	rhs, _ := tr.operand(inst.Args[2])

	var v ir.Index
	switch name {
	case "AND":
		v = tr.blk.Append(ir.Binary(ir.And, lhs, rhs))
	case "EOR":
		v = tr.blk.Append(ir.Binary(ir.Xor, lhs, rhs))
	case "ORR":
		v = tr.blk.Append(ir.Binary(ir.Or, lhs, rhs))
	case "BIC":
		n := tr.blk.Append(ir.Unary(ir.Not, rhs))
		v = tr.blk.Append(ir.Binary(ir.And, lhs, n))
	case "ADD":
		v = tr.masked(tr.blk.Append(ir.Binary(ir.Add, lhs, rhs)))
	case "SUB":
		v = tr.masked(tr.blk.Append(ir.Binary(ir.Sub, lhs, rhs)))
	case "RSB":
		v = tr.masked(tr.blk.Append(ir.Binary(ir.Sub, rhs, lhs)))
	}

	tr.setReg(rd, v)
	if setFlags {
		tr.flags = v
	}
	return true
}

func (tr *Translator) move(name string, setFlags bool, inst armasm.Inst) bool {
	rd, ok := destination(inst.Args[0])
	if !ok || !supportedOperand(inst.Args[1]) {
		return false
	}

	v, _ := tr.operand(inst.Args[1])
	if name == "MVN" {
		v = tr.masked(tr.blk.Append(ir.Unary(ir.Not, v)))
	}

	tr.setReg(rd, v)
	if setFlags {
		tr.flags = v
	}
	return true
}

func (tr *Translator) compare(name string, inst armasm.Inst) bool {
	rn, ok := inst.Args[0].(armasm.Reg)
	if !ok || !supportedOperand(inst.Args[1]) {
		return false
	}

	lhs := tr.reg(rn)
	rhs, _ := tr.operand(inst.Args[1])

	switch name {
	case "CMP":
		tr.flags = tr.masked(tr.blk.Append(ir.Binary(ir.Sub, lhs, rhs)))
	case "CMN":
		tr.flags = tr.masked(tr.blk.Append(ir.Binary(ir.Add, lhs, rhs)))
	case "TST":
		tr.flags = tr.blk.Append(ir.Binary(ir.And, lhs, rhs))
	case "TEQ":
		tr.flags = tr.blk.Append(ir.Binary(ir.Xor, lhs, rhs))
	}
	return true
}

func (tr *Translator) multiply(setFlags bool, inst armasm.Inst) bool {
	rd, ok := destination(inst.Args[0])
	if !ok {
		return false
	}
	rn, ok := inst.Args[1].(armasm.Reg)
	if !ok || rn == armasm.PC {
		return false
	}
	rm, ok := inst.Args[2].(armasm.Reg)
	if !ok || rm == armasm.PC {
		return false
	}

	v := tr.masked(tr.blk.Append(ir.Binary(ir.Mul, tr.reg(rn), tr.reg(rm))))
	tr.setReg(rd, v)
	if setFlags {
		tr.flags = v
	}
	return true
}

func (tr *Translator) transfer(name string, inst armasm.Inst) bool {
	rt, ok := destination(inst.Args[0])
	if !ok {
		return false
	}
	mem, ok := inst.Args[1].(armasm.Mem)
	if !ok || mem.Mode != armasm.AddrOffset || mem.Sign != 0 {
		return false
	}

	width := ir.Word
	if strings.HasSuffix(name, "B") {
		width = ir.Byte
	}

	var addr ir.Index
	if mem.Base == armasm.PC {
		// literal addresses are known at translation time
		addr = tr.constant(tr.pc + pcAhead + uint32(int32(mem.Offset)))
	} else if mem.Offset == 0 {
		addr = tr.reg(mem.Base)
	} else {
		off := tr.constant(uint32(int32(mem.Offset)))
		addr = tr.masked(tr.blk.Append(ir.Binary(ir.Add, tr.reg(mem.Base), off)))
	}

	if strings.HasPrefix(name, "LDR") {
		tr.setReg(rt, tr.blk.Append(ir.LoadMemory(width, addr)))
	} else {
		tr.blk.Append(ir.StoreMemory(width, addr, tr.reg(rt)))
	}
	return true
}

// branch ends the block. B and BL are unconditional jumps. BEQ and BNE are
// supported if a flag setting instruction has been translated earlier in
// the same block.
func (tr *Translator) branch(opcode uint32, cond uint32, inst armasm.Inst) (bool, bool) {
	rel, ok := inst.Args[0].(armasm.PCRel)
	if !ok {
		return false, false
	}
	target := tr.pc + pcAhead + uint32(int32(rel))
	next := tr.pc + 4

	var succ ir.Successor
	switch cond {
	case condAlways:
		succ = ir.Unconditional(ir.SuccessorJump, target)
	case condEQ:
		if tr.flags == ir.InvalidIndex {
			return false, false
		}
		succ = ir.Conditional(ir.SuccessorJump, tr.flags, target, next)
	case condNE:
		if tr.flags == ir.InvalidIndex {
			return false, false
		}
		succ = ir.Conditional(ir.SuccessorJump, tr.flags, next, target)
	default:
		return false, false
	}

	// link register for BL
	if opcode&(1<<24) != 0 {
		tr.setReg(armasm.LR, tr.constant(next))
	}

	tr.pc = next
	tr.end(succ)
	return true, true
}
