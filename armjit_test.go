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

package main

import (
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/jetsetilly/armjit/jit/irfile"
	"github.com/jetsetilly/armjit/test"
)

func init() {
	color.NoColor = true
}

func TestRunMode(t *testing.T) {
	t.Chdir(t.TempDir())

	tw := &test.CompareWriter{}
	test.ExpectEquality(t, launch(tw, []string{"run", "-tree"}), 0)
	test.ExpectSuccess(t, tw.Contains("stopped: call 0x00000024"))
	test.ExpectSuccess(t, tw.Contains("r0  00000000"))
	test.ExpectSuccess(t, tw.Contains("block 0x00000000"))
}

func TestDisasmMode(t *testing.T) {
	t.Chdir(t.TempDir())

	tw := &test.CompareWriter{}
	test.ExpectEquality(t, launch(tw, []string{"disasm", "-count", "3", "-ir", "-save", "block.irpack"}), 0)
	test.ExpectSuccess(t, tw.Contains("00000000 e3a00c01"))
	test.ExpectSuccess(t, tw.Contains("jump %"))

	f, err := os.Open("block.irpack")
	test.DemandSuccess(t, err)
	defer f.Close()

	snaps, err := irfile.Load(f)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(snaps), 1)
	test.ExpectEquality(t, snaps[0].Address, uint32(0))
}

func TestCommandLinePrefs(t *testing.T) {
	t.Chdir(t.TempDir())

	tw := &test.CompareWriter{}
	test.ExpectEquality(t, launch(tw, []string{"-prefs", "jit.maxChain::2; unknown::1", "run", "-max", "1"}), 0)
	test.ExpectSuccess(t, tw.Contains("unused preferences: unknown::1"))
}

func TestBadArguments(t *testing.T) {
	t.Chdir(t.TempDir())

	tw := &test.CompareWriter{}
	test.ExpectEquality(t, launch(tw, []string{"-nosuchflag"}), 10)

	tw.Clear()
	test.ExpectEquality(t, launch(tw, []string{"run", "a.bin", "b.bin"}), 20)
	test.ExpectSuccess(t, tw.Contains("too many arguments"))
}

func TestVersionMode(t *testing.T) {
	tw := &test.CompareWriter{}
	test.ExpectEquality(t, launch(tw, []string{"version"}), 0)
	test.ExpectSuccess(t, tw.Contains("armjit "))
}
