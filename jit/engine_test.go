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

package jit_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/armjit/curated"
	"github.com/jetsetilly/armjit/environment"
	"github.com/jetsetilly/armjit/jit"
	"github.com/jetsetilly/armjit/jit/backend"
	"github.com/jetsetilly/armjit/jit/backend/interp"
	"github.com/jetsetilly/armjit/jit/guest"
	"github.com/jetsetilly/armjit/jit/ir"
	"github.com/jetsetilly/armjit/preferences"
	"github.com/jetsetilly/armjit/test"
)

func newEnvironment(t *testing.T) *environment.Environment {
	t.Helper()
	p, err := preferences.NewPreferencesFromFile(filepath.Join(t.TempDir(), "prefs.toml"))
	test.DemandSuccess(t, err)
	env, err := environment.NewEnvironment("test", p)
	test.DemandSuccess(t, err)
	return env
}

// frontendFunc allows a function to be used as a jit.Frontend.
type frontendFunc func(blk *ir.Block) error

func (f frontendFunc) Translate(blk *ir.Block) error {
	return f(blk)
}

// counting wraps a backend and counts the calls to Compile() and Run().
type counting struct {
	backend.Backend
	compiles int
	runs     int
}

func (c *counting) Compile(idx ir.BlockIndex, blk *ir.Block) (backend.Block, error) {
	c.compiles++
	return c.Backend.Compile(idx, blk)
}

func (c *counting) Run(blk backend.Block, state backend.State) (backend.Exit, error) {
	c.runs++
	return c.Backend.Run(blk, state)
}

// addFrontend translates every address into "r0 = r0 + 1" with a call
// successor to the following address.
func addFrontend(translations *int) jit.Frontend {
	return frontendFunc(func(blk *ir.Block) error {
		if translations != nil {
			*translations++
		}
		r := blk.Append(ir.LoadRegister(ir.R0))
		one := blk.Append(ir.LoadConstant(1))
		sum := blk.Append(ir.Binary(ir.Add, r, one))
		blk.Append(ir.StoreRegister(ir.R0, sum))
		blk.Span = 4
		blk.SetSuccessor(ir.Unconditional(ir.SuccessorCall, blk.Address+4))
		return nil
	})
}

func TestCacheIdempotence(t *testing.T) {
	env := newEnvironment(t)
	st := guest.NewState(guest.NewRAM(0, 16))
	be := &counting{Backend: interp.NewBackend(env.Prefs.ArenaBlocks.Get().(int))}

	var translations int
	eng, err := jit.NewEngine(env, addFrontend(&translations), st, be)
	test.DemandSuccess(t, err)

	const N = 10
	for i := 0; i < N; i++ {
		exit, err := eng.Run(0x100)
		test.ExpectSuccess(t, err)
		test.ExpectEquality(t, exit, backend.Exit{Kind: ir.SuccessorCall, Next: 0x104})
	}

	test.ExpectEquality(t, translations, 1)
	test.ExpectEquality(t, be.compiles, 1)
	test.ExpectEquality(t, be.runs, N)
	test.ExpectEquality(t, st.Register(ir.R0), N)

	stats := eng.Stats()
	test.ExpectEquality(t, stats.Compiles, 1)
	test.ExpectEquality(t, stats.Runs, N)
	test.ExpectEquality(t, stats.Misses, 1)
	test.ExpectEquality(t, stats.Hits, N)
}

func TestDefaultBackend(t *testing.T) {
	env := newEnvironment(t)
	eng, err := jit.NewEngine(env, addFrontend(nil), guest.NewState(nil), nil)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, eng.Backend().ID(), interp.ID)

	test.ExpectSuccess(t, env.Prefs.Backend.Set("native"))
	_, err = jit.NewEngine(env, addFrontend(nil), guest.NewState(nil), nil)
	test.ExpectSuccess(t, curated.Is(err, jit.UnknownBackend))
}

func TestEndToEnd(t *testing.T) {
	env := newEnvironment(t)
	test.ExpectSuccess(t, env.Prefs.ConstantPropagation.Set(false))
	test.ExpectSuccess(t, env.Prefs.DeadCodeElimination.Set(false))

	be := interp.NewBackend(env.Prefs.ArenaBlocks.Get().(int))

	var blk *ir.Block
	fe := frontendFunc(func(b *ir.Block) error {
		blk = b
		x := b.Append(ir.LoadConstant(5))
		y := b.Append(ir.LoadConstant(3))
		b.Append(ir.Binary(ir.Add, x, y))
		return nil
	})

	eng, err := jit.NewEngine(env, fe, nil, be)
	test.DemandSuccess(t, err)

	exit, err := eng.Run(0)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, exit.Kind, ir.SuccessorNone)

	test.DemandSuccess(t, blk != nil)
	cmp, err := be.Compile(0, blk)
	test.DemandSuccess(t, err)
	_, err = be.Run(cmp, nil)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, cmp.(*interp.Block).Value(2), 8)
}

func TestTrampoline(t *testing.T) {
	env := newEnvironment(t)
	test.ExpectSuccess(t, env.Prefs.MaxChain.Set(3))

	st := guest.NewState(nil)

	// every block increments r0 and jumps to the next address
	fe := frontendFunc(func(blk *ir.Block) error {
		r := blk.Append(ir.LoadRegister(ir.R0))
		one := blk.Append(ir.LoadConstant(1))
		blk.Append(ir.StoreRegister(ir.R0, blk.Append(ir.Binary(ir.Add, r, one))))
		blk.Span = 4
		blk.SetSuccessor(ir.Unconditional(ir.SuccessorJump, blk.Address+4))
		return nil
	})

	eng, err := jit.NewEngine(env, fe, st, nil)
	test.DemandSuccess(t, err)

	exit, err := eng.Run(0)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, exit, backend.Exit{Kind: ir.SuccessorJump, Next: 12})
	test.ExpectEquality(t, st.Register(ir.R0), 3)
	test.ExpectEquality(t, eng.Stats().Chained, 2)
	test.ExpectEquality(t, eng.Stats().Runs, 3)

	// the caller continues from the exit
	exit, err = eng.Run(exit.Next)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, exit.Next, 24)
	test.ExpectEquality(t, st.Register(ir.R0), 6)
}

func TestConditionalLoop(t *testing.T) {
	env := newEnvironment(t)
	test.ExpectSuccess(t, env.Prefs.MaxChain.Set(1000))

	st := guest.NewState(nil)
	st.SetRegister(ir.R0, 10)

	// 0x00: r0 = r0 - 1; r1 = r1 + 2; if r0 != 0 jump 0x00 else jump 0x08
	// 0x08: return to caller
	fe := frontendFunc(func(blk *ir.Block) error {
		if blk.Address == 0x08 {
			return nil
		}
		r0 := blk.Append(ir.LoadRegister(ir.R0))
		r1 := blk.Append(ir.LoadRegister(ir.R1))
		one := blk.Append(ir.LoadConstant(1))
		two := blk.Append(ir.LoadConstant(2))
		d := blk.Append(ir.Binary(ir.Sub, r0, one))
		s := blk.Append(ir.Binary(ir.Add, r1, two))
		blk.Append(ir.StoreRegister(ir.R0, d))
		blk.Append(ir.StoreRegister(ir.R1, s))
		blk.Span = 8
		blk.SetSuccessor(ir.Conditional(ir.SuccessorJump, d, 0x08, 0x00))
		return nil
	})

	eng, err := jit.NewEngine(env, fe, st, nil)
	test.DemandSuccess(t, err)

	exit, err := eng.Run(0)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, exit, backend.Exit{Kind: ir.SuccessorNone})
	test.ExpectEquality(t, st.Register(ir.R0), 0)
	test.ExpectEquality(t, st.Register(ir.R1), 20)

	stats := eng.Stats()
	test.ExpectEquality(t, stats.Compiles, 2)
	test.ExpectEquality(t, stats.Runs, 11)
	test.ExpectEquality(t, stats.Chained, 10)
}

func TestInvalidate(t *testing.T) {
	env := newEnvironment(t)
	st := guest.NewState(nil)

	var translations int
	eng, err := jit.NewEngine(env, addFrontend(&translations), st, nil)
	test.DemandSuccess(t, err)

	_, err = eng.Run(0x100)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, eng.Translate(0x104))
	test.ExpectSuccess(t, eng.Translate(0x108))
	test.ExpectEquality(t, translations, 3)

	// translated already
	test.ExpectSuccess(t, eng.Translate(0x108))
	test.ExpectEquality(t, translations, 3)
	test.ExpectEquality(t, st.Register(ir.R0), 1)

	test.ExpectEquality(t, eng.Invalidate(0x100), 1)
	test.ExpectEquality(t, eng.Invalidate(0x100), 0)
	_, err = eng.Run(0x100)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, translations, 4)

	test.ExpectEquality(t, eng.InvalidateRange(0x104, 0x10b), 2)
	test.ExpectEquality(t, len(eng.CachedBlocks()), 1)

	test.ExpectEquality(t, eng.Flush(), 1)
	test.ExpectEquality(t, len(eng.CachedBlocks()), 0)
	_, err = eng.Run(0x100)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, translations, 5)
}

func TestInvalidateOnWrite(t *testing.T) {
	env := newEnvironment(t)
	ram := guest.NewRAM(0, 0x200)
	st := guest.NewState(ram)

	// the block at 0x100 writes to 0x104, the block at 0x104 does nothing
	fe := frontendFunc(func(blk *ir.Block) error {
		if blk.Address == 0x100 {
			a := blk.Append(ir.LoadConstant(0x104))
			v := blk.Append(ir.LoadConstant(0xff))
			blk.Append(ir.StoreMemory(ir.Byte, a, v))
		}
		blk.Span = 4
		blk.SetSuccessor(ir.Unconditional(ir.SuccessorCall, blk.Address+4))
		return nil
	})

	eng, err := jit.NewEngine(env, fe, st, nil)
	test.DemandSuccess(t, err)

	test.ExpectSuccess(t, eng.Translate(0x104))
	test.ExpectEquality(t, len(eng.CachedBlocks()), 1)

	_, err = eng.Run(0x100)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, ram.Data[0x104], 0xff)

	// the translation of 0x104 has been invalidated by the write
	test.ExpectEquality(t, len(eng.CachedBlocks()), 1)
	test.ExpectEquality(t, eng.CachedBlocks()[0].Address, 0x100)
	test.ExpectEquality(t, eng.Stats().Invalidations, 1)
}

// topMemory maps the last two bytes of the address space onto the start of an
// eight byte buffer so that writes can run past the top of the address space.
type topMemory struct {
	data []byte
}

func (m *topMemory) MapAddress(addr uint32, _ bool) (*[]byte, uint32) {
	if addr < 0xfffffffe {
		return nil, 0
	}
	return &m.data, addr - 0xfffffffe
}

func TestInvalidateOnWriteTopOfMemory(t *testing.T) {
	env := newEnvironment(t)
	st := guest.NewState(&topMemory{data: make([]byte, 8)})

	fe := frontendFunc(func(blk *ir.Block) error {
		blk.Span = 4
		blk.SetSuccessor(ir.Unconditional(ir.SuccessorCall, blk.Address+4))
		return nil
	})

	eng, err := jit.NewEngine(env, fe, st, nil)
	test.DemandSuccess(t, err)

	test.ExpectSuccess(t, eng.Translate(0x0))
	test.ExpectSuccess(t, eng.Translate(0x100))
	test.ExpectSuccess(t, eng.Translate(0xfffffffc))

	// a word written at 0xfffffffe ends beyond the top of the address space.
	// only the translation at the top of memory is affected
	test.ExpectSuccess(t, st.Write(ir.Word, 0xfffffffe, 0x12345678))
	test.ExpectEquality(t, eng.Stats().Invalidations, 1)
	test.ExpectEquality(t, len(eng.CachedBlocks()), 2)
}

func TestArenaReuse(t *testing.T) {
	env := newEnvironment(t)
	test.ExpectSuccess(t, env.Prefs.ArenaBlocks.Set(2))
	test.ExpectSuccess(t, env.Prefs.CacheEntries.Set(4))

	var translations int
	eng, err := jit.NewEngine(env, addFrontend(&translations), guest.NewState(nil), nil)
	test.DemandSuccess(t, err)

	for _, a := range []uint32{0x00, 0x04, 0x08} {
		_, err = eng.Run(a)
		test.ExpectSuccess(t, err)
	}

	// the third translation reused the block of the first
	test.ExpectEquality(t, eng.Stats().ArenaReuses, 1)
	test.ExpectEquality(t, len(eng.CachedBlocks()), 2)

	// so the first address must be translated again
	_, err = eng.Run(0x00)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, translations, 4)

	// 0x08 is still cached but the translation of 0x04 was displaced by the
	// new translation of 0x00
	_, err = eng.Run(0x08)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, translations, 4)
	_, err = eng.Run(0x04)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, translations, 5)
}

func TestCacheEviction(t *testing.T) {
	env := newEnvironment(t)
	test.ExpectSuccess(t, env.Prefs.ArenaBlocks.Set(8))
	test.ExpectSuccess(t, env.Prefs.CacheEntries.Set(2))

	eng, err := jit.NewEngine(env, addFrontend(nil), guest.NewState(nil), nil)
	test.DemandSuccess(t, err)

	for _, a := range []uint32{0x00, 0x04, 0x08} {
		_, err = eng.Run(a)
		test.ExpectSuccess(t, err)
	}
	test.ExpectEquality(t, eng.Stats().Evictions, 1)
	test.ExpectEquality(t, len(eng.CachedBlocks()), 2)
	test.ExpectEquality(t, eng.Stats().ArenaReuses, 0)
}

func TestErrors(t *testing.T) {
	env := newEnvironment(t)
	errTranslate := errors.New("cannot translate")

	fe := frontendFunc(func(blk *ir.Block) error {
		switch blk.Address {
		case 0x00:
			return errTranslate
		case 0x04:
			// frontend moves the block to a different address
			blk.Address = 0x400
		case 0x08:
			// memory fault when run
			a := blk.Append(ir.LoadConstant(0x10000))
			blk.Append(ir.LoadMemory(ir.Word, a))
		case 0x0c:
			// broken instruction list
			blk.Append(ir.LoadConstant(1))
			blk.IR[0].Next = 7
		}
		return nil
	})

	eng, err := jit.NewEngine(env, fe, guest.NewState(guest.NewRAM(0, 16)), nil)
	test.DemandSuccess(t, err)

	_, err = eng.Run(0x00)
	test.ExpectSuccess(t, curated.Is(err, jit.TranslateFailed))
	test.ExpectSuccess(t, errors.Is(err, errTranslate))

	_, err = eng.Run(0x04)
	test.ExpectSuccess(t, curated.Is(err, jit.DispatchMiss))

	_, err = eng.Run(0x08)
	test.ExpectSuccess(t, curated.Is(err, backend.RunFailed))
	test.ExpectSuccess(t, curated.Has(err, guest.MemoryFault))

	_, err = eng.Run(0x0c)
	test.ExpectSuccess(t, curated.Is(err, jit.CompileFailed))
	test.ExpectSuccess(t, curated.Has(err, ir.BadLink))

	// the engine is still usable after the errors
	test.ExpectEquality(t, len(eng.CachedBlocks()), 2)
}

func TestCheckGoroutine(t *testing.T) {
	env := newEnvironment(t)
	test.ExpectSuccess(t, env.Prefs.CheckGoroutine.Set(true))

	eng, err := jit.NewEngine(env, addFrontend(nil), guest.NewState(nil), nil)
	test.DemandSuccess(t, err)

	_, err = eng.Run(0)
	test.ExpectSuccess(t, err)

	done := make(chan any)
	go func() {
		defer func() {
			done <- recover()
		}()
		eng.Run(0)
	}()
	test.ExpectInequality(t, <-done, nil)
}
