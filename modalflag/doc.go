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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It handles program modes (and sub-modes) and allows different
// flags for each mode.
//
// Arguments are given with NewArgs() and then parsed with Parse(). Sub-modes
// are added with AddSubModes() and the first non-flag argument is compared
// against them, case insensitively. If no sub-mode matches then the first
// sub-mode is selected and the argument is left for that mode to process.
//
//	md := modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("RUN", "DISASM", "PERFORMANCE")
//	p, err := md.Parse()
//	switch p {
//	case modalflag.ParseHelp:
//		return nil
//	case modalflag.ParseError:
//		return err
//	}
//
//	switch md.Mode() {
//	case "DISASM":
//		md.NewMode()
//		addr := md.AddAddress("addr", 0, "address to start disassembly")
//		_, _ = md.Parse()
//		disasm(*addr, md.RemainingArgs())
//	}
//
// Calling NewMode() begins a new set of flags and sub-modes. The Path()
// function returns every mode that has been selected so far, separated by a
// forward slash.
package modalflag
