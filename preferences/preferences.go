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

package preferences

import (
	"fmt"

	"github.com/jetsetilly/armjit/prefs"
	"github.com/jetsetilly/armjit/resources"
)

// DefaultPrefsFile is the name of the preferences file in the resources
// directory.
const DefaultPrefsFile = "preferences.toml"

// Preferences defines and collates all the preference values used by a JIT
// engine.
type Preferences struct {
	dsk *prefs.Disk

	// the backend used to compile blocks of IR. currently only "interp" is
	// available
	Backend prefs.String

	// number of blocks in the arena. must be a power of two
	ArenaBlocks prefs.Int

	// number of entries in the dispatch cache
	CacheEntries prefs.Int

	// maximum number of blocks that will be run by a single call to
	// Engine.Run() when blocks end with a jump successor. the embedding
	// emulator regains control after this number of blocks in order to
	// service interrupts
	MaxChain prefs.Int

	// maximum number of guest instructions translated into a single block
	MaxGuestInstructions prefs.Int

	// optional IR passes
	ConstantPropagation prefs.Bool
	DeadCodeElimination prefs.Bool

	// invalidate translated blocks when the guest writes to memory covered by
	// the block
	InvalidateOnWrite prefs.Bool

	// panic if the engine is used by more than one goroutine
	CheckGoroutine prefs.Bool
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type. The preferences file is in the resources directory.
func NewPreferences() (*Preferences, error) {
	pth, err := resources.JoinPath(DefaultPrefsFile)
	if err != nil {
		return nil, err
	}
	return NewPreferencesFromFile(pth)
}

// NewPreferencesFromFile is like NewPreferences() but with an explicit path
// to the preferences file. The file does not need to exist.
func NewPreferencesFromFile(pth string) (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	p.ArenaBlocks.SetHookPre(func(v prefs.Value) error {
		n := v.(int)
		if n <= 0 || n&(n-1) != 0 {
			return fmt.Errorf("jit.arenaBlocks must be a power of two (%d)", n)
		}
		return nil
	})

	positive := func(key string) func(prefs.Value) error {
		return func(v prefs.Value) error {
			if v.(int) <= 0 {
				return fmt.Errorf("%s must be greater than zero (%d)", key, v.(int))
			}
			return nil
		}
	}
	p.CacheEntries.SetHookPre(positive("jit.cacheEntries"))
	p.MaxChain.SetHookPre(positive("jit.maxChain"))
	p.MaxGuestInstructions.SetHookPre(positive("jit.maxGuestInstructions"))

	var err error
	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}

	for _, e := range []struct {
		key string
		p   interface {
			Set(prefs.Value) error
			Get() prefs.Value
			Reset() error
			String() string
		}
	}{
		{"jit.backend", &p.Backend},
		{"jit.arenaBlocks", &p.ArenaBlocks},
		{"jit.cacheEntries", &p.CacheEntries},
		{"jit.maxChain", &p.MaxChain},
		{"jit.maxGuestInstructions", &p.MaxGuestInstructions},
		{"jit.constantPropagation", &p.ConstantPropagation},
		{"jit.deadCodeElimination", &p.DeadCodeElimination},
		{"jit.invalidateOnWrite", &p.InvalidateOnWrite},
		{"jit.checkGoroutine", &p.CheckGoroutine},
	} {
		err = p.dsk.Add(e.key, e.p)
		if err != nil {
			return nil, err
		}
	}

	err = p.dsk.Load()
	if err != nil {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all settings to default values.
func (p *Preferences) SetDefaults() {
	p.Backend.Set("interp")
	p.ArenaBlocks.Set(256)
	p.CacheEntries.Set(128)
	p.MaxChain.Set(64)
	p.MaxGuestInstructions.Set(32)
	p.ConstantPropagation.Set(true)
	p.DeadCodeElimination.Set(true)
	p.InvalidateOnWrite.Set(true)
	p.CheckGoroutine.Set(false)
}

// Load current preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load()
}

// Save current preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}
