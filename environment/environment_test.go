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

package environment_test

import (
	"path/filepath"
	"testing"

	"github.com/jetsetilly/armjit/environment"
	"github.com/jetsetilly/armjit/logger"
	"github.com/jetsetilly/armjit/preferences"
	"github.com/jetsetilly/armjit/test"
)

func TestPermission(t *testing.T) {
	p, err := preferences.NewPreferencesFromFile(filepath.Join(t.TempDir(), "prefs.toml"))
	test.DemandSuccess(t, err)

	main, err := environment.NewEnvironment(environment.MainEngine, p)
	test.DemandSuccess(t, err)
	bench, err := environment.NewEnvironment("bench", p)
	test.DemandSuccess(t, err)

	test.ExpectSuccess(t, main.IsMainEngine())
	test.ExpectFailure(t, bench.IsMainEngine())
	test.ExpectSuccess(t, bench.IsEngine("bench"))

	// preferences are shared
	test.ExpectSuccess(t, main.Prefs == bench.Prefs)

	logger.Clear()
	tw := &test.CompareWriter{}
	logger.Log(bench, "JIT", "not logged")
	logger.Log(main, "JIT", "logged")
	logger.Write(tw)
	test.ExpectEquality(t, tw.String(), "JIT: logged\n")

	test.ExpectSuccess(t, p.MaxChain.Set(1))
	main.Normalise()
	test.ExpectEquality(t, p.MaxChain.Get().(int), 64)
}
