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

package frontend_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/jetsetilly/armjit/curated"
	"github.com/jetsetilly/armjit/environment"
	"github.com/jetsetilly/armjit/jit"
	"github.com/jetsetilly/armjit/jit/frontend"
	"github.com/jetsetilly/armjit/jit/guest"
	"github.com/jetsetilly/armjit/jit/ir"
	"github.com/jetsetilly/armjit/preferences"
	"github.com/jetsetilly/armjit/test"
	"github.com/stretchr/testify/require"
)

func newEnvironment(t *testing.T) *environment.Environment {
	t.Helper()
	p, err := preferences.NewPreferencesFromFile(filepath.Join(t.TempDir(), "prefs.toml"))
	require.NoError(t, err)
	env, err := environment.NewEnvironment("test", p)
	require.NoError(t, err)
	return env
}

// newEngine loads the program at address zero and returns an engine using the
// reference frontend and the default backend.
func newEngine(t *testing.T, env *environment.Environment, program ...uint32) (*jit.Engine, *guest.State, *guest.RAM) {
	t.Helper()
	ram := guest.NewRAM(0, 0x200)
	require.NoError(t, ram.LoadWords(0, program...))
	st := guest.NewState(ram)
	eng, err := jit.NewEngine(env, frontend.NewTranslator(env, ram), st, nil)
	require.NoError(t, err)
	return eng, st, ram
}

func TestArithmetic(t *testing.T) {
	env := newEnvironment(t)
	eng, st, ram := newEngine(t, env,
		0xe3a00005, // mov r0, #5
		0xe3a01003, // mov r1, #3
		0xe0802001, // add r2, r0, r1
		0xe2423001, // sub r3, r2, #1
		0xe3e04000, // mvn r4, #0
		0xe3a05c01, // mov r5, #0x100
		0xe5852000, // str r2, [r5]
		0xe5956000, // ldr r6, [r5]
		0xe0070190, // mul r7, r0, r1
		0xe12fff1e, // bx lr
	)

	exit, err := eng.Run(0)
	require.NoError(t, err)
	test.ExpectEquality(t, exit.Kind, ir.SuccessorCall)
	test.ExpectEquality(t, exit.Next, uint32(0x24))

	expected := []ir.Value{5, 3, 8, 7, 0xffffffff, 0x100, 8, 15}
	for r, v := range expected {
		require.Equal(t, v, st.Register(ir.HostRegister(r)), "r%d", r)
	}

	v, err := guest.Read(ram, ir.Word, 0x100)
	require.NoError(t, err)
	test.ExpectEquality(t, v, uint32(8))
}

func TestLoop(t *testing.T) {
	env := newEnvironment(t)
	eng, st, _ := newEngine(t, env,
		0xe3a00003, // mov r0, #3
		0xe3a01000, // mov r1, #0
		0xe2811002, // loop: add r1, r1, #2
		0xe2500001, // subs r0, r0, #1
		0x1afffffc, // bne loop
		0xe12fff1e, // bx lr
	)

	exit, err := eng.Run(0)
	require.NoError(t, err)
	test.ExpectEquality(t, exit.Kind, ir.SuccessorCall)
	test.ExpectEquality(t, exit.Next, uint32(0x14))
	test.ExpectEquality(t, st.Register(ir.R0), ir.Value(0))
	test.ExpectEquality(t, st.Register(ir.R1), ir.Value(6))

	// blocks at the start of the program, at the loop and at the return
	stats := eng.Stats()
	test.ExpectEquality(t, stats.Compiles, 3)
	test.ExpectEquality(t, stats.Chained, 3)
}

func TestBranchAndLink(t *testing.T) {
	env := newEnvironment(t)
	eng, st, _ := newEngine(t, env,
		0xeb000001, // bl 0x0c
		0xe3a00001, // mov r0, #1
		0xe3a00002, // mov r0, #2
		0xe12fff1e, // bx lr
	)

	exit, err := eng.Run(0)
	require.NoError(t, err)
	test.ExpectEquality(t, exit.Kind, ir.SuccessorCall)
	test.ExpectEquality(t, exit.Next, uint32(0x0c))
	test.ExpectEquality(t, st.Register(ir.R14), ir.Value(4))
	test.ExpectEquality(t, st.Register(ir.R0), ir.Value(0))
}

func TestBlockShape(t *testing.T) {
	env := newEnvironment(t)
	ram := guest.NewRAM(0, 0x100)
	require.NoError(t, ram.LoadWords(0,
		0xe3a00001, // mov r0, #1
		0xe3a01002, // mov r1, #2
		0xe3a02003, // mov r2, #3
		0xe12fff1e, // bx lr
	))
	tr := frontend.NewTranslator(env, ram)

	// unsupported instruction at the start of a block
	blk := ir.NewBlock(0x0c)
	require.NoError(t, tr.Translate(blk))
	test.ExpectEquality(t, blk.Len(), 0)
	test.ExpectEquality(t, blk.Span, uint32(0))
	test.ExpectEquality(t, blk.Successor, ir.Unconditional(ir.SuccessorCall, 0x0c))
	require.NoError(t, blk.Validate())

	// unsupported instruction ends the block
	blk.Reset(0)
	require.NoError(t, tr.Translate(blk))
	test.ExpectEquality(t, blk.Span, uint32(0x0c))
	test.ExpectEquality(t, blk.Successor, ir.Unconditional(ir.SuccessorCall, 0x0c))
	require.NoError(t, blk.Validate())

	// long runs end with a jump
	env.Prefs.MaxGuestInstructions.Set(2)
	blk.Reset(0)
	require.NoError(t, tr.Translate(blk))
	test.ExpectEquality(t, blk.Span, uint32(0x08))
	test.ExpectEquality(t, blk.Successor, ir.Unconditional(ir.SuccessorJump, 0x08))
	require.NoError(t, blk.Validate())
}

func TestConditionWithoutFlags(t *testing.T) {
	env := newEnvironment(t)
	ram := guest.NewRAM(0, 0x100)
	require.NoError(t, ram.LoadWords(0,
		0xe3a00001, // mov r0, #1
		0x1afffffd, // bne 0x00
	))
	tr := frontend.NewTranslator(env, ram)

	// the flags were not set in this block so the branch cannot be resolved
	blk := ir.NewBlock(0)
	require.NoError(t, tr.Translate(blk))
	test.ExpectEquality(t, blk.Span, uint32(4))
	test.ExpectEquality(t, blk.Successor, ir.Unconditional(ir.SuccessorCall, 4))
}

func TestFetchFault(t *testing.T) {
	env := newEnvironment(t)
	ram := guest.NewRAM(0, 0x10)
	tr := frontend.NewTranslator(env, ram)

	blk := ir.NewBlock(0x1000)
	err := tr.Translate(blk)
	require.Error(t, err)
	test.ExpectSuccess(t, curated.Is(err, frontend.FetchFailed))
	test.ExpectSuccess(t, curated.Has(err, guest.MemoryFault))

	// running off the end of memory part way through a block
	require.NoError(t, ram.LoadWords(0, 0xe3a00001, 0xe3a00001, 0xe3a00001, 0xe3a00001))
	blk.Reset(0)
	require.NoError(t, tr.Translate(blk))
	test.ExpectEquality(t, blk.Successor, ir.Unconditional(ir.SuccessorCall, 0x10))
}

func TestDisassemble(t *testing.T) {
	env := newEnvironment(t)
	ram := guest.NewRAM(0, 0x10)
	require.NoError(t, ram.LoadWords(0,
		0xe3a00003, // mov r0, #3
		0xe2500001, // subs r0, r0, #1
		0x1afffffd, // bne 0x00
		0xe12fff1e, // bx lr
	))
	tr := frontend.NewTranslator(env, ram)

	// disassembly stops at the end of memory
	entries, err := tr.Disassemble(0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	supported := []bool{true, true, false, false}
	for i, e := range entries {
		test.ExpectEquality(t, e.Address, uint32(i*4))
		test.ExpectEquality(t, e.Supported, supported[i])
	}
	test.ExpectSuccess(t, strings.HasPrefix(entries[0].Text, "mov"))
	test.ExpectSuccess(t, strings.HasPrefix(entries[1].Text, "subs"))
	test.ExpectSuccess(t, strings.HasPrefix(entries[3].Text, "bx"))
	test.ExpectSuccess(t, strings.Contains(entries[3].String(), "*"))

	_, err = tr.Disassemble(0x100, 1)
	test.ExpectSuccess(t, curated.Is(err, frontend.FetchFailed))
}
