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

// Package modtap implements the mod-tap sub-processor: dual-role keys
// that resolve to a tap action on quick release and a hold action
// (typically a modifier) when held past a tapping term or, for the
// home-row variant only, interrupted by another key (a bare press, or a
// full press-release cycle while typing is fast). Both the home-row
// (permissive-hold) and overload (no permissive-hold) variants share
// this one state machine, distinguished by the Permissive flag.
//
// This package owns only the MT key's own state. Buffering and replay
// of the *other* keys that arrive while an MT key is Pending is a
// Dispatcher-level concern: the dispatcher holds those raw events and
// replays them, in arrival order, around whatever this package returns
// from Release/CheckTimeouts/ResolveInterrupt.
package modtap

import (
	"time"

	"github.com/keyplex/keyplex/internal/keycode"
)

// State is where a tracked key sits in the mod-tap state machine.
type State uint8

const (
	Pending State = iota
	ResolvedTap
	ResolvedHold
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case ResolvedTap:
		return "resolved-tap"
	case ResolvedHold:
		return "resolved-hold"
	default:
		return "unknown"
	}
}

// DefaultTappingTerm is the tapping_term_ms default from the
// configuration view.
const DefaultTappingTerm = 200 * time.Millisecond

// Config tunes one mod-tap key.
type Config struct {
	TappingTerm time.Duration
	// Permissive selects HR semantics (true, permissive hold) versus
	// Overload semantics (false): only a timeout promotes to hold, an
	// interrupting key's full press-release cycle never does.
	Permissive bool
}

// DefaultConfig returns the spec default tapping term with permissive
// hold enabled (HR).
func DefaultConfig() Config {
	return Config{TappingTerm: DefaultTappingTerm, Permissive: true}
}

// Emit is one half of a synthesized key event.
type Emit struct {
	KC  keycode.KeyCode
	Dir keycode.Direction
}

func down(kc keycode.KeyCode) Emit { return Emit{KC: kc, Dir: keycode.Press} }
func up(kc keycode.KeyCode) Emit   { return Emit{KC: kc, Dir: keycode.Release} }

// ringSize is the sample count for the rolling typing-speed mean.
const ringSize = 16

// speedRing is a fixed-size ring buffer of the intervals between
// successive mod-tap key presses (Press is its only sampler; presses of
// keys that are not mod-tap keys are not recorded), used to adapt the permissive-hold promotion threshold: the faster the
// recent typing, the stricter (less eager) promotion must be to avoid
// firing a modifier from ordinary fast rolling presses.
type speedRing struct {
	samples [ringSize]time.Duration
	count   int
	next    int
	lastAt  time.Time
	hasLast bool
}

func (r *speedRing) record(now time.Time) {
	if r.hasLast {
		r.samples[r.next] = now.Sub(r.lastAt)
		r.next = (r.next + 1) % ringSize
		if r.count < ringSize {
			r.count++
		}
	}
	r.lastAt = now
	r.hasLast = true
}

// mean returns the arithmetic mean inter-keystroke interval, or zero if
// no keystrokes have been recorded yet.
func (r *speedRing) mean() time.Duration {
	if r.count == 0 {
		return 0
	}
	var total time.Duration
	for i := 0; i < r.count; i++ {
		total += r.samples[i]
	}
	return total / time.Duration(r.count)
}

// fastTypingThreshold is the mean interval below which typing is
// considered "fast" and permissive-hold promotion is tightened: the
// interrupting key must also have released, not merely been pressed,
// before the MT key's own tapping term elapses.
const fastTypingThreshold = 120 * time.Millisecond

// key tracks one physical mod-tap key.
type key struct {
	cfg Config

	tapKC  keycode.KeyCode
	holdKC keycode.KeyCode

	state        State
	pressedAt    time.Time
	sawInterrupt bool
}

// Processor tracks every physical key configured as a mod-tap action
// for one keyboard, plus the shared typing-speed ring used to adapt
// promotion strictness.
type Processor struct {
	keys  map[keycode.KeyCode]*key
	speed speedRing
}

// NewProcessor returns an empty Processor.
func NewProcessor() *Processor {
	return &Processor{keys: make(map[keycode.KeyCode]*key)}
}

// TrackedCount reports how many keys have in-flight state.
func (p *Processor) TrackedCount() int { return len(p.keys) }

// Tracking reports whether physical currently has in-flight state.
func (p *Processor) Tracking(physical keycode.KeyCode) bool {
	_, ok := p.keys[physical]
	return ok
}

// State reports the current state of a tracked key. ok is false if
// physical has no in-flight state (never pressed, or already released
// and cleaned up).
func (p *Processor) State(physical keycode.KeyCode) (state State, ok bool) {
	k, tracked := p.keys[physical]
	if !tracked {
		return 0, false
	}
	return k.state, true
}

// permissiveRequiresRelease reports whether, given the current rolling
// typing speed, a permissive-hold promotion requires the interrupting
// key to have also been released before a bare key-down is no longer
// sufficient on its own.
func (p *Processor) permissiveRequiresRelease() bool {
	m := p.speed.mean()
	return m != 0 && m < fastTypingThreshold
}

// Press starts tracking a physical press of a mod-tap key. It never
// resolves immediately: resolution happens on the MT key's own Release,
// on ResolveInterrupt, or on a Tick timeout.
func (p *Processor) Press(now time.Time, cfg Config, physical, tap, hold keycode.KeyCode) {
	p.speed.record(now)
	p.keys[physical] = &key{cfg: cfg, tapKC: tap, holdKC: hold, state: Pending, pressedAt: now}
}

// NotifyInterruptPress tells the processor that some other key was
// pressed while physical is Pending, and offers it the chance to
// promote on that bare press alone.
//
// For a non-permissive (Overload) key, a bare interrupting press never
// promotes: resolution stays deferred to Release or a Tick timeout.
// For a permissive (HR) key, a bare press is enough on its own when
// recent typing is not fast (permissiveRequiresRelease reports false);
// the returned emit is the hold-down, and the dispatcher replays the
// interrupting key's buffered press around it. When typing is fast,
// promotion is held back until the interrupting key also releases, to
// avoid firing a modifier off an ordinary fast rolling press; see
// ResolveInterruptRelease for that path.
func (p *Processor) NotifyInterruptPress(now time.Time, physical keycode.KeyCode) []Emit {
	k, ok := p.keys[physical]
	if !ok || k.state != Pending {
		return nil
	}
	k.sawInterrupt = true

	if !k.cfg.Permissive || p.permissiveRequiresRelease() {
		return nil
	}
	if now.Sub(k.pressedAt) > k.cfg.TappingTerm {
		return nil
	}

	k.state = ResolvedHold
	return []Emit{down(k.holdKC)}
}

// ResolveInterruptRelease offers the release of the interrupting key
// noted by NotifyInterruptPress, for the case NotifyInterruptPress
// itself held back: a permissive key during fast typing. If the MT
// key's own tapping term has not yet elapsed, this triggers
// permissive-hold resolution: the returned emit is the hold-down. The
// dispatcher must then replay the interrupting key's buffered
// down+up, followed eventually by the hold-up once the MT key itself
// releases.
//
// For non-permissive keys, a key already promoted by
// NotifyInterruptPress, or once the tapping term has already elapsed,
// this returns nil: resolution stays deferred to Release or a prior
// Tick promotion.
func (p *Processor) ResolveInterruptRelease(now time.Time, physical keycode.KeyCode) []Emit {
	k, ok := p.keys[physical]
	if !ok || k.state != Pending || !k.sawInterrupt {
		return nil
	}

	if !k.cfg.Permissive {
		return nil
	}
	if now.Sub(k.pressedAt) > k.cfg.TappingTerm {
		return nil
	}

	k.state = ResolvedHold
	return []Emit{down(k.holdKC)}
}

// Release resolves a physical release of a mod-tap key.
//
//   - If the key already resolved to hold (via ResolveInterruptRelease
//     or CheckTimeouts), this emits the matching hold-up.
//   - If still Pending within the tapping term, this emits a tap
//     (down+up); the dispatcher replays any buffered interrupting key
//     between the two emits of this pair, so the interrupting key's own
//     down/up stays nested inside the tap's down/up.
//   - If still Pending past the tapping term (Tick never ran), this
//     emits a hold (down+up) instead.
func (p *Processor) Release(now time.Time, physical keycode.KeyCode) []Emit {
	k, ok := p.keys[physical]
	if !ok {
		return nil
	}
	defer delete(p.keys, physical)

	switch k.state {
	case ResolvedHold:
		return []Emit{up(k.holdKC)}
	case Pending:
		if now.Sub(k.pressedAt) > k.cfg.TappingTerm {
			return []Emit{down(k.holdKC), up(k.holdKC)}
		}
		return []Emit{down(k.tapKC), up(k.tapKC)}
	default:
		return nil
	}
}

// CheckTimeouts promotes any Pending key whose tapping term has elapsed
// to ResolvedHold, emitting the hold-down. The matching hold-up is
// emitted later, from Release.
func (p *Processor) CheckTimeouts(now time.Time) []Emit {
	var emits []Emit
	for _, k := range p.keys {
		if k.state != Pending {
			continue
		}
		if now.Sub(k.pressedAt) <= k.cfg.TappingTerm {
			continue
		}
		k.state = ResolvedHold
		emits = append(emits, down(k.holdKC))
	}
	return emits
}

// DrainAsTap force-resolves every Pending key as a tap and clears any
// already-resolved hold by emitting its hold-up, used when the worker
// is shutting down and must not leave dangling modifier state.
func (p *Processor) DrainAsTap() []Emit {
	var emits []Emit
	for physical, k := range p.keys {
		switch k.state {
		case Pending:
			emits = append(emits, down(k.tapKC), up(k.tapKC))
		case ResolvedHold:
			emits = append(emits, up(k.holdKC))
		}
		delete(p.keys, physical)
	}
	return emits
}
