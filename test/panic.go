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

package test

import "testing"

// ExpectPanic runs the function and expects it to panic. The value passed to
// panic() is returned so that it can be inspected further. If the function
// does not panic then a test error is logged and the return value is nil.
func ExpectPanic(t *testing.T, f func(), tags ...any) (recovered any) {
	t.Helper()

	defer func() {
		recovered = recover()
		if recovered == nil {
			t.Errorf("%sa panic was expected", id(tags...))
		}
	}()

	f()

	return nil
}

// ExpectNoPanic runs the function and logs a test error if it panics.
func ExpectNoPanic(t *testing.T, f func(), tags ...any) bool {
	t.Helper()

	ok := true
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("%sunexpected panic: %v", id(tags...), r)
				ok = false
			}
		}()
		f()
	}()

	return ok
}
