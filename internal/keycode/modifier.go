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

import "strings"

// ModifierMask tracks which of the eight modifier keys are currently
// held. At most 8 distinct modifiers are representable, matching the
// data-model invariant: one bit per modifier.
type ModifierMask uint8

const (
	ModLCtrl ModifierMask = 1 << iota
	ModLShift
	ModLAlt
	ModLGUI
	ModRCtrl
	ModRShift
	ModRAlt
	ModRGUI

	ModNone ModifierMask = 0
)

// Set returns a mask with m added.
func (mm ModifierMask) Set(m ModifierMask) ModifierMask { return mm | m }

// Clear returns a mask with m removed.
func (mm ModifierMask) Clear(m ModifierMask) ModifierMask { return mm &^ m }

// Has reports whether every bit in m is present in mm.
func (mm ModifierMask) Has(m ModifierMask) bool { return mm&m == m }

// Empty reports whether no modifiers are held.
func (mm ModifierMask) Empty() bool { return mm == ModNone }

// String renders the mask as a "+"-joined list, e.g. "LCtrl+LShift".
func (mm ModifierMask) String() string {
	if mm == ModNone {
		return "none"
	}
	var parts []string
	for _, m := range []struct {
		mask ModifierMask
		name string
	}{
		{ModLCtrl, "LCtrl"}, {ModLShift, "LShift"}, {ModLAlt, "LAlt"}, {ModLGUI, "LGUI"},
		{ModRCtrl, "RCtrl"}, {ModRShift, "RShift"}, {ModRAlt, "RAlt"}, {ModRGUI, "RGUI"},
	} {
		if mm.Has(m.mask) {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(parts, "+")
}
