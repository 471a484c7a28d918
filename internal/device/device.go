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

// Package device discovers physical keyboards and reads their raw
// input events through a pluggable Source interface: production code
// reads /dev/input/eventN, tests inject synthetic events through a
// Fake.
package device

import (
	"time"

	"github.com/keyplex/keyplex/internal/keycode"
)

// Value is the raw event value evdev reports: 0 release, 1 press, 2
// (auto-)repeat.
type Value int32

const (
	ValueRelease Value = 0
	ValuePress   Value = 1
	ValueRepeat  Value = 2
)

// RawEvent is a physical scancode transition with a monotonic kernel
// timestamp.
type RawEvent struct {
	Scancode  uint16
	Value     Value
	Timestamp time.Time
}

// Source is the pluggable backend a Keyboard reads raw events from.
type Source interface {
	// Events returns the channel of raw events read from the device.
	// It is closed when the source is closed or the device disappears.
	Events() <-chan RawEvent
	// Close releases the underlying device handle (ungrabs if grabbed).
	Close() error
}

// Keyboard pairs a stable identifier with its device node path. The
// identifier is what internal/config's per-keyboard overrides and
// internal/ipc's enable/disable requests address; Source is populated
// by whoever opens the device (Enumerate only discovers candidates).
type Keyboard struct {
	ID     string
	Name   string
	Path   string
	Source Source
}

// ScancodeToKeyCode resolves a raw Linux evdev scancode to a logical
// KeyCode. It is the evdev-side mirror of internal/emitter's
// FromLinux, kept as a thin wrapper here so internal/device does not
// need to import internal/emitter's unexported tables directly.
func ScancodeToKeyCode(scancode uint16, resolve func(uint16) (keycode.KeyCode, bool)) (keycode.KeyCode, bool) {
	return resolve(scancode)
}
