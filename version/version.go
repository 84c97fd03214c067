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

// Package version reports the version of the application from the build
// information embedded by the Go toolchain.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// ApplicationName is the name of the application.
const ApplicationName = "armjit"

// number is set by the linker for release builds:
//
//	go build -ldflags "-X github.com/jetsetilly/armjit/version.number=v0.1.0"
var number string

// Info is the version information for the running binary.
type Info struct {
	Version  string
	Revision string
	Release  bool

	// version of the Go toolchain used to build the binary
	GoVersion string

	// module dependencies as "path version" strings
	Dependencies []string
}

func (inf Info) String() string {
	s := strings.Builder{}
	fmt.Fprintf(&s, "%s %s\n", ApplicationName, inf.Version)
	fmt.Fprintf(&s, "revision: %s\n", inf.Revision)
	fmt.Fprintf(&s, "go: %s\n", inf.GoVersion)
	for _, d := range inf.Dependencies {
		fmt.Fprintf(&s, "  %s\n", d)
	}
	return s.String()
}

// Version returns the version information for the running binary.
func Version() Info {
	info, ok := debug.ReadBuildInfo()
	return fromBuildInfo(info, ok, number)
}

func fromBuildInfo(info *debug.BuildInfo, ok bool, number string) Info {
	var inf Info

	var vcs bool
	var vcsRevision string
	var vcsModified bool

	if ok {
		inf.GoVersion = info.GoVersion
		for _, v := range info.Settings {
			switch v.Key {
			case "vcs":
				vcs = true
			case "vcs.revision":
				vcsRevision = v.Value
			case "vcs.modified":
				vcsModified = v.Value == "true"
			}
		}
		for _, d := range info.Deps {
			inf.Dependencies = append(inf.Dependencies, fmt.Sprintf("%s %s", d.Path, d.Version))
		}
	}

	if vcsRevision == "" {
		inf.Revision = "no revision information"
	} else {
		inf.Revision = vcsRevision
		if vcsModified {
			inf.Revision = fmt.Sprintf("%s+dirty", inf.Revision)
		}
	}

	switch {
	case number != "":
		inf.Version = number
		inf.Release = !vcsModified
	case vcs:
		inf.Version = "unreleased"
	default:
		inf.Version = "local"
	}

	return inf
}
