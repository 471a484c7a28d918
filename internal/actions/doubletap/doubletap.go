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

// Package doubletap implements the double-tap sub-processor: a key that
// emits one output on a single tap and a different output when tapped
// twice within a configurable window. Ported from the FirstPress /
// WaitingSecondTap / DoubleTapDetected state machine of the original
// Rust implementation's double-tap action.
package doubletap

import (
	"time"

	"github.com/keyplex/keyplex/internal/keycode"
)

// State is where a tracked key sits in the double-tap state machine.
type State uint8

const (
	FirstPress State = iota
	WaitingSecondTap
	DoubleTapDetected
)

func (s State) String() string {
	switch s {
	case FirstPress:
		return "first-press"
	case WaitingSecondTap:
		return "waiting-second-tap"
	case DoubleTapDetected:
		return "double-tap-detected"
	default:
		return "unknown"
	}
}

// DefaultWindow is the double_tap_window_ms default from the
// configuration view.
const DefaultWindow = 250 * time.Millisecond

// Config tunes the double-tap window.
type Config struct {
	Window time.Duration
}

// DefaultConfig returns the spec default.
func DefaultConfig() Config {
	return Config{Window: DefaultWindow}
}

// Emit is one half of a synthesized key event.
type Emit struct {
	KC  keycode.KeyCode
	Dir keycode.Direction
}

func down(kc keycode.KeyCode) Emit { return Emit{KC: kc, Dir: keycode.Press} }
func up(kc keycode.KeyCode) Emit   { return Emit{KC: kc, Dir: keycode.Release} }

// key tracks one physical key through the double-tap state machine.
type key struct {
	physical keycode.KeyCode
	tapKC    keycode.KeyCode
	doubleKC keycode.KeyCode

	state          State
	firstPressAt   time.Time
	firstReleaseAt time.Time
}

// Processor tracks every physical key configured as a double-tap action
// for one keyboard.
type Processor struct {
	cfg  Config
	keys map[keycode.KeyCode]*key
}

// NewProcessor returns a Processor using cfg's window.
func NewProcessor(cfg Config) *Processor {
	return &Processor{cfg: cfg, keys: make(map[keycode.KeyCode]*key)}
}

// TrackedCount reports how many keys currently have in-flight state,
// used by the dispatcher to know whether it must keep polling Tick.
func (p *Processor) TrackedCount() int { return len(p.keys) }

// Press records a physical press of kc, configured with the given
// tap/double keycodes. now is the press's monotonic timestamp.
//
// A second press is only a double tap if it arrives within the window
// after the *first release*, not the first press. A first press held
// past the window resolves as a single tap on its release (see
// Release), so a press after that starts a new cycle.
//
// The returned emits are only non-empty when a double tap is detected
// immediately; otherwise resolution is deferred to Release or a later
// Tick.
func (p *Processor) Press(now time.Time, physical, tap, double keycode.KeyCode) []Emit {
	k, tracked := p.keys[physical]
	if !tracked {
		p.keys[physical] = &key{
			physical:     physical,
			tapKC:        tap,
			doubleKC:     double,
			state:        FirstPress,
			firstPressAt: now,
		}
		return nil
	}

	if k.state == WaitingSecondTap && now.Sub(k.firstReleaseAt) <= p.cfg.Window {
		k.state = DoubleTapDetected
		return []Emit{down(k.doubleKC)}
	}

	// A press arriving in any other state (e.g. a rapid third press, or
	// a stale FirstPress that never released) restarts tracking.
	delete(p.keys, physical)
	p.keys[physical] = &key{
		physical:     physical,
		tapKC:        tap,
		doubleKC:     double,
		state:        FirstPress,
		firstPressAt: now,
	}
	return nil
}

// Release records a physical release of kc. It returns the emits this
// release causes, which may be empty if resolution is still pending a
// timeout or a second tap.
func (p *Processor) Release(now time.Time, physical keycode.KeyCode) []Emit {
	k, tracked := p.keys[physical]
	if !tracked {
		return nil
	}

	switch k.state {
	case FirstPress:
		if now.Sub(k.firstPressAt) > p.cfg.Window {
			// Held past the window before ever releasing: nothing was
			// emitted while the key was held, so the single tap is
			// emitted now as a down+up pair and tracking stops.
			delete(p.keys, physical)
			return []Emit{down(k.tapKC), up(k.tapKC)}
		}
		k.state = WaitingSecondTap
		k.firstReleaseAt = now
		return nil

	case DoubleTapDetected:
		delete(p.keys, physical)
		return []Emit{up(k.doubleKC)}

	case WaitingSecondTap:
		// A release while already waiting (shouldn't normally happen
		// since the key was released once already) is ignored.
		return nil
	}
	return nil
}

// CheckTimeouts resolves any key whose double-tap window, measured
// from its first release, has elapsed without a second tap, emitting
// the single-tap output. Call on every dispatcher tick.
func (p *Processor) CheckTimeouts(now time.Time) []Emit {
	var emits []Emit
	for physical, k := range p.keys {
		if k.state != WaitingSecondTap {
			continue
		}
		if now.Sub(k.firstReleaseAt) <= p.cfg.Window {
			continue
		}
		emits = append(emits, down(k.tapKC), up(k.tapKC))
		delete(p.keys, physical)
	}
	return emits
}

// Tracking reports whether physical currently has in-flight state.
func (p *Processor) Tracking(physical keycode.KeyCode) bool {
	_, ok := p.keys[physical]
	return ok
}

// DrainAsTap force-resolves every tracked key as a single tap and clears
// all in-flight state, used when the worker is shutting down.
func (p *Processor) DrainAsTap() []Emit {
	var emits []Emit
	for physical, k := range p.keys {
		switch k.state {
		case FirstPress, WaitingSecondTap:
			emits = append(emits, down(k.tapKC), up(k.tapKC))
		case DoubleTapDetected:
			emits = append(emits, up(k.doubleKC))
		}
		delete(p.keys, physical)
	}
	return emits
}
