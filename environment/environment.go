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

package environment

import (
	"github.com/jetsetilly/armjit/preferences"
)

// Label is used to name the environment.
type Label string

// MainEngine is the label of the environment of the main engine. Any other
// label indicates a secondary engine, for example the engines run by the
// PERFORMANCE mode.
const MainEngine = Label("")

// Environment is used to provide context for a JIT engine. Particularly useful
// when using multiple engines.
type Environment struct {
	Label Label

	// the engine preferences
	Prefs *preferences.Preferences
}

// NewEnvironment is the preferred method of initialisation for the
// Environment type.
//
// The prefs argument can be nil, in which case a new Preferences instance will
// be created from the preferences file. Providing a non-nil value allows the
// preferences of more than one engine to be shared.
func NewEnvironment(label Label, prefs *preferences.Preferences) (*Environment, error) {
	env := &Environment{
		Label: label,
	}

	var err error

	if prefs == nil {
		prefs, err = preferences.NewPreferences()
		if err != nil {
			return nil, err
		}
	}

	env.Prefs = prefs

	return env, nil
}

// Normalise ensures the environment is in a known default state. Useful for
// testing where the initial state must be the same for every run.
func (env *Environment) Normalise() {
	env.Prefs.SetDefaults()
}

// IsMainEngine returns true if the environment is intended for the main
// engine in the system.
func (env *Environment) IsMainEngine() bool {
	return env.Label == MainEngine
}

// IsEngine checks the environment label and returns true if it matches.
func (env *Environment) IsEngine(label Label) bool {
	return env.Label == label
}

// AllowLogging implements the logger.Permission interface. Only the main
// engine is allowed to add entries to the log.
func (env *Environment) AllowLogging() bool {
	return env.IsMainEngine()
}
