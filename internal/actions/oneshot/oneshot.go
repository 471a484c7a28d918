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

// Package oneshot implements the one-shot-modifier sub-processor: a tap
// arms a modifier that applies to exactly the next non-modifier key,
// then automatically releases.
package oneshot

import (
	"time"

	"github.com/keyplex/keyplex/internal/keycode"
)

// DefaultTimeout bounds how long an armed one-shot modifier waits for a
// consuming key before it silently expires.
const DefaultTimeout = 1000 * time.Millisecond

// Emit is one half of a synthesized key event.
type Emit struct {
	KC  keycode.KeyCode
	Dir keycode.Direction
}

func down(kc keycode.KeyCode) Emit { return Emit{KC: kc, Dir: keycode.Press} }
func up(kc keycode.KeyCode) Emit   { return Emit{KC: kc, Dir: keycode.Release} }

type armedMod struct {
	mod     keycode.KeyCode
	armedAt time.Time
}

// Processor tracks the set of currently armed one-shot modifiers for
// one keyboard, and which in-flight keys are currently wrapped by a
// consumed arming. Multiple modifiers may be armed simultaneously:
// tapping a second OSM before the first is consumed accumulates both.
type Processor struct {
	timeout time.Duration
	armed   []armedMod
	wrapped map[keycode.KeyCode][]keycode.KeyCode
}

// NewProcessor returns a Processor using the given expiry timeout.
func NewProcessor(timeout time.Duration) *Processor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Processor{timeout: timeout, wrapped: make(map[keycode.KeyCode][]keycode.KeyCode)}
}

// Arm records a tap of a one-shot modifier key, arming mod.
func (p *Processor) Arm(now time.Time, mod keycode.KeyCode) {
	p.armed = append(p.armed, armedMod{mod: mod, armedAt: now})
}

// ArmedCount reports how many modifiers are currently armed.
func (p *Processor) ArmedCount() int { return len(p.armed) }

// Consume offers a non-modifier key-down. If any modifiers are armed,
// it consumes all of them, returning each modifier's down (in arming
// order) followed by the target key's own down. It returns nil if
// nothing is armed, in which case the caller should pass kc through
// unmodified.
func (p *Processor) Consume(kc keycode.KeyCode) []Emit {
	if len(p.armed) == 0 {
		return nil
	}
	mods := make([]keycode.KeyCode, len(p.armed))
	for i, a := range p.armed {
		mods[i] = a.mod
	}
	p.armed = nil

	emits := make([]Emit, 0, len(mods)+1)
	for _, m := range mods {
		emits = append(emits, down(m))
	}
	emits = append(emits, down(kc))

	p.wrapped[kc] = mods
	return emits
}

// ConsumeRelease offers the release of a key previously passed to
// Consume. If kc was in fact wrapped, it returns the target's up
// followed by every consumed modifier's up, in reverse arming order,
// and wasWrapped reports true. If kc was never wrapped, wasWrapped is false
// and the caller should pass the release through unmodified.
func (p *Processor) ConsumeRelease(kc keycode.KeyCode) (emits []Emit, wasWrapped bool) {
	mods, ok := p.wrapped[kc]
	if !ok {
		return nil, false
	}
	delete(p.wrapped, kc)

	emits = append(emits, up(kc))
	for i := len(mods) - 1; i >= 0; i-- {
		emits = append(emits, up(mods[i]))
	}
	return emits, true
}

// CheckTimeouts expires any armed modifier that has waited longer than
// the configured timeout without being consumed. Expiry is silent: no
// emits are produced, since the modifier was never pressed as far as
// the emitted stream is concerned.
func (p *Processor) CheckTimeouts(now time.Time) {
	live := p.armed[:0]
	for _, a := range p.armed {
		if now.Sub(a.armedAt) <= p.timeout {
			live = append(live, a)
		}
	}
	p.armed = live
}

// DrainExpire clears all armed modifiers unconditionally, used on
// worker shutdown.
func (p *Processor) DrainExpire() {
	p.armed = nil
}
