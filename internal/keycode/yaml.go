// Copyright 2026 The Keyplex Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package keycode

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

var byName map[string]KeyCode

func init() {
	byName = make(map[string]KeyCode, len(names))
	for kc, name := range names {
		byName[name] = kc
	}
}

// Parse looks up a KeyCode by its String() name (case-sensitive, e.g.
// "LShift", "F11"). It is the inverse of String, used when reading
// keycodes out of the on-disk configuration.
func Parse(name string) (KeyCode, bool) {
	kc, ok := byName[name]
	return kc, ok
}

// MarshalYAML renders k using its QMK-ish name so configuration files
// read as "LShift" rather than a bare integer.
func (k KeyCode) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// UnmarshalYAML parses a keycode name out of a YAML scalar.
func (k *KeyCode) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	kc, ok := Parse(name)
	if !ok {
		return fmt.Errorf("keycode: unknown key name %q", name)
	}
	*k = kc
	return nil
}
