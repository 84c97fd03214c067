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

package logger

import (
	"io"
	"strings"

	"github.com/fatih/color"
)

// Colorizer is an io.Writer that writes the first line of each write
// normally and any following lines in a dim red colour. Useful for echoing
// the log to a terminal where errors are often wrapped over several lines.
type Colorizer struct {
	out  io.Writer
	tail *color.Color
}

// NewColorizer is the preferred method of initialisation for the Colorizer
// type.
func NewColorizer(out io.Writer) Colorizer {
	return Colorizer{
		out:  out,
		tail: color.New(color.FgRed, color.Faint),
	}
}

func (c Colorizer) Write(p []byte) (n int, err error) {
	l := strings.Split(strings.TrimSpace(string(p)), "\n")
	if len(l) == 0 {
		return 0, nil
	}

	m, err := c.out.Write([]byte(l[0] + "\n"))
	n += m
	if err != nil {
		return n, err
	}

	for _, s := range l[1:] {
		m, err = c.tail.Fprintln(c.out, s)
		n += m
		if err != nil {
			return n, err
		}
	}

	// return the length of the original slice so that callers like
	// io.WriteString() don't consider the write to be short
	return len(p), nil
}
