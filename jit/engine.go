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

package jit

import (
	"math"

	"github.com/jetsetilly/armjit/assert"
	"github.com/jetsetilly/armjit/curated"
	"github.com/jetsetilly/armjit/environment"
	"github.com/jetsetilly/armjit/jit/arena"
	"github.com/jetsetilly/armjit/jit/backend"
	"github.com/jetsetilly/armjit/jit/backend/interp"
	"github.com/jetsetilly/armjit/jit/cache"
	"github.com/jetsetilly/armjit/jit/ir"
	"github.com/jetsetilly/armjit/jit/passes"
	"github.com/jetsetilly/armjit/logger"
)

// Frontend implementations translate guest code into IR.
type Frontend interface {
	// Translate guest code starting at blk.Address into the block. The block
	// is empty when Translate() is called. The frontend should set the Span
	// and the Successor of the block.
	Translate(blk *ir.Block) error
}

// Stats records the activity of an Engine.
type Stats struct {
	// number of blocks compiled and run
	Compiles int
	Runs     int

	// number of jump successors followed without returning to the caller
	Chained int

	// from the dispatch cache
	Hits          int
	Misses        int
	Evictions     int
	Invalidations int

	// number of times a live block in the arena was reused
	ArenaReuses int

	// results of the IR passes
	Folded  int
	Removed int
}

// Engine is a JIT engine for one guest CPU. All the state of the JIT is held
// in the Engine, there is no global state, so more than one engine can exist
// at once. An Engine is not safe for concurrent use.
type Engine struct {
	env      *environment.Environment
	frontend Frontend
	state    backend.State
	backend  backend.Backend

	arena *arena.Arena
	cache *cache.Cache

	// panics if the engine is used from more than one goroutine
	goroutine assert.SingleGoroutine

	stats Stats
}

// writeHooker is implemented by guest states that can report writes to
// memory.
type writeHooker interface {
	SetWriteHook(func(addr uint32, width ir.Width))
}

// NewEngine is the preferred method of initialisation for the Engine type.
//
// If the backend argument is nil then the backend is chosen by the
// "jit.backend" preference.
func NewEngine(env *environment.Environment, fe Frontend, state backend.State, be backend.Backend) (*Engine, error) {
	e := &Engine{
		env:      env,
		frontend: fe,
		state:    state,
		backend:  be,
	}

	var err error

	e.arena, err = arena.NewArena(env.Prefs.ArenaBlocks.Get().(int))
	if err != nil {
		return nil, curated.Errorf(BadConfig, err)
	}
	e.arena.SetReuseHook(e.reuse)

	e.cache, err = cache.NewCache(env.Prefs.CacheEntries.Get().(int))
	if err != nil {
		return nil, curated.Errorf(BadConfig, err)
	}

	if e.backend == nil {
		switch id := env.Prefs.Backend.String(); id {
		case interp.ID:
			e.backend = interp.NewBackend(e.arena.Size())
		default:
			return nil, curated.Errorf(UnknownBackend, id)
		}
	}

	if env.Prefs.InvalidateOnWrite.Get().(bool) {
		if wh, ok := state.(writeHooker); ok {
			wh.SetWriteHook(e.written)
		}
	}

	logger.Logf(env, "JIT", "engine using %s backend (%d blocks, %d cache entries)",
		e.backend.ID(), e.arena.Size(), e.cache.Size())

	return e, nil
}

// Backend returns the backend being used by the engine.
func (e *Engine) Backend() backend.Backend {
	return e.backend
}

func (e *Engine) checkGoroutine() {
	if e.env.Prefs.CheckGoroutine.Get().(bool) {
		e.goroutine.Check("jit")
	}
}

// Run the translated code at the guest address, translating it first if
// necessary.
//
// Blocks that end with a jump successor are followed without returning, up to
// the number of blocks in the "jit.maxChain" preference. The Exit of the last
// block run is returned to the caller.
func (e *Engine) Run(address uint32) (backend.Exit, error) {
	e.checkGoroutine()

	maxChain := e.env.Prefs.MaxChain.Get().(int)

	var chain int
	for {
		entry, err := e.dispatch(address)
		if err != nil {
			return backend.Exit{}, err
		}

		exit, err := e.backend.Run(entry.Block, e.state)
		e.stats.Runs++
		if err != nil {
			return backend.Exit{}, err
		}

		chain++
		if exit.Kind != ir.SuccessorJump || chain >= maxChain {
			return exit, nil
		}

		e.stats.Chained++
		address = exit.Next
	}
}

// dispatch returns the cache entry for the address, compiling the code at the
// address if necessary.
func (e *Engine) dispatch(address uint32) (*cache.Entry, error) {
	if entry, ok := e.cache.Lookup(address); ok {
		return entry, nil
	}

	if err := e.compile(address); err != nil {
		return nil, err
	}

	// the block has just been installed so the lookup must succeed
	entry, ok := e.cache.Lookup(address)
	if !ok {
		return nil, curated.Errorf(DispatchMiss, address)
	}
	return entry, nil
}

// Translate the code at the guest address without running it. Does nothing
// if the address has already been translated.
func (e *Engine) Translate(address uint32) error {
	e.checkGoroutine()
	_, err := e.dispatch(address)
	return err
}

func (e *Engine) compile(address uint32) error {
	idx := e.arena.Allocate(address)
	blk, err := e.arena.Block(idx)
	if err != nil {
		return curated.Errorf(CompileFailed, address, err)
	}

	if err := e.frontend.Translate(blk); err != nil {
		e.arena.Release(idx)
		return curated.Errorf(TranslateFailed, address, err)
	}

	res, err := passes.Run(blk, passes.Options{
		ConstantPropagation: e.env.Prefs.ConstantPropagation.Get().(bool),
		DeadCodeElimination: e.env.Prefs.DeadCodeElimination.Get().(bool),
	})
	if err != nil {
		e.arena.Release(idx)
		return curated.Errorf(CompileFailed, address, err)
	}
	e.stats.Folded += res.Folded
	e.stats.Removed += res.Removed

	if err := blk.Validate(); err != nil {
		e.arena.Release(idx)
		return curated.Errorf(CompileFailed, address, err)
	}

	cmp, err := e.backend.Compile(idx, blk)
	if err != nil {
		e.arena.Release(idx)
		return curated.Errorf(CompileFailed, address, err)
	}
	e.stats.Compiles++

	// the block is installed under the address recorded in the block.
	// frontends should not change the address but if they do the dispatch
	// will fail
	if evicted, ok := e.cache.Install(blk.Address, blk.Span, idx, cmp); ok {
		e.arena.Release(evicted.Index)
	}

	logger.Logf(e.env, "JIT", "compiled %#08x to block %d (%d instructions, %s)", address, idx, blk.Len(), blk.Successor)

	return nil
}

// reuse is the arena's reuse hook. the cache must not refer to a block that
// is about to be reset.
func (e *Engine) reuse(idx ir.BlockIndex) {
	inv := e.cache.InvalidateBlock(idx)
	if len(inv) > 0 {
		logger.Logf(e.env, "JIT/arena", "block %d reused (was %#08x)", idx, inv[0].Address)
	}
}

func (e *Engine) release(inv []cache.Entry) int {
	for _, entry := range inv {
		e.arena.Release(entry.Index)
	}
	return len(inv)
}

// Invalidate the translation of the code at the guest address. Returns the
// number of translations invalidated.
func (e *Engine) Invalidate(address uint32) int {
	return e.release(e.cache.Invalidate(address))
}

// written invalidates any translation covering the bytes of a guest write. the
// end of the range stops at the top of the address space.
func (e *Engine) written(addr uint32, width ir.Width) {
	hi := min(uint64(addr)+uint64(width.Bytes())-1, math.MaxUint32)
	e.InvalidateRange(addr, uint32(hi))
}

// InvalidateRange invalidates the translation of any code that covers the
// range of guest addresses lo to hi inclusive. Returns the number of
// translations invalidated.
func (e *Engine) InvalidateRange(lo uint32, hi uint32) int {
	return e.release(e.cache.InvalidateRange(lo, hi))
}

// Flush invalidates all translations.
func (e *Engine) Flush() int {
	n := e.release(e.cache.Flush())
	e.arena.Reset()
	return n
}

// Stats returns a snapshot of the engine statistics.
func (e *Engine) Stats() Stats {
	st := e.stats
	cs := e.cache.Stats()
	st.Hits = cs.Hits
	st.Misses = cs.Misses
	st.Evictions = cs.Evictions
	st.Invalidations = cs.Invalidations
	st.ArenaReuses = e.arena.Reuses()
	return st
}

// CachedBlocks returns the IR blocks that are currently in the dispatch
// cache. The blocks must not be modified.
func (e *Engine) CachedBlocks() []*ir.Block {
	var blks []*ir.Block
	for idx := 0; idx < e.arena.Size(); idx++ {
		if !e.arena.Live(ir.BlockIndex(idx)) {
			continue
		}
		blk, err := e.arena.Block(ir.BlockIndex(idx))
		if err != nil {
			continue
		}
		if entry, ok := e.cache.Peek(blk.Address); ok && entry.Index == ir.BlockIndex(idx) {
			blks = append(blks, blk)
		}
	}
	return blks
}
