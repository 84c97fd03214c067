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

package prefs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// WarningBoilerPlate is written to the head of every preferences file.
const WarningBoilerPlate = "# armjit preferences file. edit with care"

// Disk represents preference values as stored on disk. Keys are dotted
// strings, for example "jit.arenaBlocks". Each part of the key before the
// final part becomes a TOML table.
type Disk struct {
	path    string
	entries map[string]pref
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(path string) (*Disk, error) {
	if path == "" {
		return nil, fmt.Errorf("prefs: no path for disk")
	}
	return &Disk{
		path:    path,
		entries: make(map[string]pref),
	}, nil
}

// Add preference value to list of values to store/load from Disk. The key
// value is used to identify the value in the preferences file.
func (dsk *Disk) Add(key string, p pref) error {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") {
		return fmt.Errorf("prefs: illegal key %q", key)
	}
	if _, ok := dsk.entries[key]; ok {
		return fmt.Errorf("prefs: key %q already added", key)
	}
	dsk.entries[key] = p
	return nil
}

// Keys returns the list of keys added to the Disk in sorted order.
func (dsk *Disk) Keys() []string {
	keys := make([]string, 0, len(dsk.entries))
	for k := range dsk.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// read the preferences file and flatten it into dotted keys. a missing file
// is not an error and results in an empty map.
func (dsk *Disk) read() (map[string]Value, error) {
	flat := make(map[string]Value)

	var data map[string]interface{}
	_, err := toml.DecodeFile(dsk.path, &data)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return flat, nil
		}
		return nil, fmt.Errorf("prefs: %w", err)
	}

	flatten(flat, "", data)
	return flat, nil
}

func flatten(flat map[string]Value, prefix string, data map[string]interface{}) {
	for k, v := range data {
		if prefix != "" {
			k = prefix + "." + k
		}
		if t, ok := v.(map[string]interface{}); ok {
			flatten(flat, k, t)
		} else {
			flat[k] = v
		}
	}
}

// nest is the inverse of flatten.
func nest(flat map[string]Value) (map[string]interface{}, error) {
	data := make(map[string]interface{})
	for key, v := range flat {
		parts := strings.Split(key, ".")
		t := data
		for _, p := range parts[:len(parts)-1] {
			switch n := t[p].(type) {
			case nil:
				m := make(map[string]interface{})
				t[p] = m
				t = m
			case map[string]interface{}:
				t = n
			default:
				return nil, fmt.Errorf("prefs: key %q conflicts with a value", key)
			}
		}
		if _, ok := t[parts[len(parts)-1]].(map[string]interface{}); ok {
			return nil, fmt.Errorf("prefs: key %q conflicts with a table", key)
		}
		t[parts[len(parts)-1]] = v
	}
	return data, nil
}

// Save current preference values to disk. Values in the file that this Disk
// instance does not know about are preserved.
func (dsk *Disk) Save() error {
	flat, err := dsk.read()
	if err != nil {
		return err
	}

	for k, p := range dsk.entries {
		flat[k] = p.Get()
	}

	data, err := nest(flat)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(WarningBoilerPlate)
	buf.WriteString("\n\n")
	if err := toml.NewEncoder(&buf).Encode(data); err != nil {
		return fmt.Errorf("prefs: %w", err)
	}

	if err := os.WriteFile(dsk.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("prefs: %w", err)
	}
	return nil
}

// Load preference values from disk. Values on the command line stack (see
// PushCommandLineStack()) take priority over values in the file.
func (dsk *Disk) Load() error {
	flat, err := dsk.read()
	if err != nil {
		return err
	}

	for _, k := range dsk.Keys() {
		p := dsk.entries[k]
		if v, ok := flat[k]; ok {
			if err := p.Set(v); err != nil {
				return fmt.Errorf("prefs: %s: %w", k, err)
			}
		}
		if ok, v := GetCommandLinePref(k); ok {
			if err := p.Set(v); err != nil {
				return fmt.Errorf("prefs: %s: %w", k, err)
			}
		}
	}

	return nil
}

// Reset all preference values known to the Disk to their zero values. Default
// values are the responsibility of the owner of the values.
func (dsk *Disk) Reset() error {
	for _, k := range dsk.Keys() {
		if err := dsk.entries[k].Reset(); err != nil {
			return fmt.Errorf("prefs: %s: %w", k, err)
		}
	}
	return nil
}

func (dsk *Disk) String() string {
	var s strings.Builder
	for _, k := range dsk.Keys() {
		s.WriteString(fmt.Sprintf("%s :: %s\n", k, dsk.entries[k]))
	}
	return s.String()
}
