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

package ir_test

import (
	"math"
	"testing"

	"github.com/jetsetilly/armjit/jit/ir"
	"github.com/jetsetilly/armjit/test"
)

func TestWraparound(t *testing.T) {
	test.ExpectEquality(t, ir.Add.Eval(math.MaxUint64, 1), 0)
	test.ExpectEquality(t, ir.Sub.Eval(0, 1), math.MaxUint64)
	test.ExpectEquality(t, ir.Mul.Eval(1<<63, 2), 0)
	test.ExpectEquality(t, ir.Not.Eval(0), 0xffffffffffffffff)
}

func TestBinaryOps(t *testing.T) {
	test.ExpectEquality(t, ir.Add.Eval(5, 3), 8)
	test.ExpectEquality(t, ir.Sub.Eval(5, 3), 2)
	test.ExpectEquality(t, ir.Mul.Eval(5, 3), 15)
	test.ExpectEquality(t, ir.And.Eval(0b1100, 0b1010), 0b1000)
	test.ExpectEquality(t, ir.Or.Eval(0b1100, 0b1010), 0b1110)
	test.ExpectEquality(t, ir.Xor.Eval(0b1100, 0b1010), 0b0110)
}

func TestInstructionClassification(t *testing.T) {
	c := ir.LoadConstant(1)
	test.ExpectSuccess(t, c.HasResult())
	test.ExpectFailure(t, c.HasSideEffects())
	test.ExpectEquality(t, len(c.Operands()), 0)

	s := ir.StoreMemory(ir.Byte, 1, 2)
	test.ExpectFailure(t, s.HasResult())
	test.ExpectSuccess(t, s.HasSideEffects())
	test.ExpectEquality(t, len(s.Operands()), 2)

	l := ir.LoadMemory(ir.Word, 1)
	test.ExpectSuccess(t, l.HasResult())
	test.ExpectSuccess(t, l.HasSideEffects())

	r := ir.StoreRegister(ir.R3, 0)
	test.ExpectFailure(t, r.HasResult())
	test.ExpectEquality(t, r.String(), "setreg r3 %0")

	b := ir.Binary(ir.Xor, 4, 5)
	test.ExpectEquality(t, b.String(), "xor %4 %5")
	test.ExpectEquality(t, ir.Unary(ir.Not, 2).String(), "not %2")
	test.ExpectEquality(t, ir.LoadConstant(255).String(), "const 0xff")
	test.ExpectEquality(t, ir.LoadMemory(ir.Half, 7).String(), "load.half [%7]")
}

func TestSuccessor(t *testing.T) {
	s := ir.Unconditional(ir.SuccessorJump, 0x100)
	test.ExpectEquality(t, s.Resolve(0), 0x100)
	test.ExpectEquality(t, s.Resolve(1), 0x100)
	test.ExpectEquality(t, s.String(), "jump 0x00000100")

	s = ir.Conditional(ir.SuccessorCall, 3, 0x100, 0x200)
	test.ExpectEquality(t, s.Resolve(0), 0x100)
	test.ExpectEquality(t, s.Resolve(1), 0x200)
	test.ExpectEquality(t, s.Resolve(0xffffffff00000000), 0x200)
}
