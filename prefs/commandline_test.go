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

package prefs_test

import (
	"testing"

	"github.com/jetsetilly/armjit/prefs"
	"github.com/jetsetilly/armjit/test"
)

func TestCommandLineStackValues(t *testing.T) {
	// empty on start
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "")

	prefs.PushCommandLineStack("jit.backend::interp")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "jit.backend::interp")

	// additional space is trimmed
	prefs.PushCommandLineStack("   jit.backend:: interp ")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "jit.backend::interp")

	// remaining string is sorted
	prefs.PushCommandLineStack("jit.maxChain::10; jit.arenaBlocks::64")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "jit.arenaBlocks::64; jit.maxChain::10")

	// invalid prefs string
	prefs.PushCommandLineStack("jit.maxChain_10")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "")

	// partially invalid prefs string
	prefs.PushCommandLineStack("jit.maxChain_10;jit.arenaBlocks::64")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "jit.arenaBlocks::64")

	// value that does not exist
	prefs.PushCommandLineStack("jit.arenaBlocks::64;jit.maxChain_10")
	ok, _ := prefs.GetCommandLinePref("jit.maxChain")
	test.ExpectFailure(t, ok)

	// value that does exist is consumed
	ok, v := prefs.GetCommandLinePref("jit.arenaBlocks")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, v.(string), "64")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "")
}

func TestCommandLineStack(t *testing.T) {
	test.ExpectEquality(t, prefs.SizeCommandLineStack(), 0)

	prefs.PushCommandLineStack("foo::bar")
	prefs.PushCommandLineStack("baz::qux")
	test.ExpectEquality(t, prefs.SizeCommandLineStack(), 2)
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "baz::qux")

	// first group still exists
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "foo::bar")
	test.ExpectEquality(t, prefs.SizeCommandLineStack(), 0)
}
