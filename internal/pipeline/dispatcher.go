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

// Package pipeline implements the per-keyboard event-processing
// dispatcher: the component that turns a stream of raw physical events
// into synthesized output events by routing each one through the
// action sub-processors (internal/actions/{modtap,doubletap,oneshot}),
// internal/socd and internal/layerstack, in the fixed order OSM → MT →
// DT → SOCD → fallback.
package pipeline

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/keyplex/keyplex/internal/actions/doubletap"
	"github.com/keyplex/keyplex/internal/actions/modtap"
	"github.com/keyplex/keyplex/internal/actions/oneshot"
	"github.com/keyplex/keyplex/internal/config"
	"github.com/keyplex/keyplex/internal/device"
	"github.com/keyplex/keyplex/internal/emitter"
	"github.com/keyplex/keyplex/internal/keycode"
	"github.com/keyplex/keyplex/internal/layerstack"
	"github.com/keyplex/keyplex/internal/socd"
)

// ResolveFunc maps a raw evdev scancode to a logical KeyCode, the same
// contract internal/emitter.FromLinux implements.
type ResolveFunc func(scancode uint16) (keycode.KeyCode, bool)

// PasswordLookup returns the stored password for id, mirroring
// internal/config.PasswordStore.Load without binding the dispatcher to
// that package's file I/O directly.
type PasswordLookup func(id string) (string, bool)

// pendingInterrupt tracks the one mod-tap key currently Pending, and
// buffers the raw events of any other key that arrives while it is —
// the Dispatcher-level half of the contract internal/actions/modtap
// documents on Release/ResolveInterruptRelease.
type pendingInterrupt struct {
	physical keycode.KeyCode
	buffer   []device.RawEvent
}

// pendingOSMHold tracks a one-shot-modifier key's own press while its
// tap/hold boundary is still undecided.
type pendingOSMHold struct {
	pressedAt time.Time
}

// Dispatcher is the per-keyboard pipeline: one instance owns one
// physical keyboard's worth of sub-processor state and a handle on the
// shared emitter. It is not safe for concurrent use: exactly one
// worker goroutine must own a given Dispatcher, feeding it events and
// ticks serially.
type Dispatcher struct {
	stack *layerstack.Stack
	cfg   *config.EffectiveConfig

	// gameMode is read with relaxed ordering from an external prober
	// goroutine; a stale read for one event is acceptable.
	gameMode *atomic.Bool

	resolve        ResolveFunc
	lookupPassword PasswordLookup
	emit           emitter.Emitter

	mt  *modtap.Processor
	dt  *doubletap.Processor
	osm *oneshot.Processor

	socdPairs map[socdKey]*socd.Pair

	pending       *pendingInterrupt
	layerPushedBy map[keycode.KeyCode]layerstack.Layer
	osmHolding    map[keycode.KeyCode]pendingOSMHold
	osmHeld       map[keycode.KeyCode]bool
}

type socdKey struct{ a, b keycode.KeyCode }

func newSocdKey(a, b keycode.KeyCode) socdKey {
	if a > b {
		a, b = b, a
	}
	return socdKey{a, b}
}

// New returns a Dispatcher for one keyboard. gameMode may be nil, in
// which case game mode is always treated as inactive.
func New(cfg *config.EffectiveConfig, emit emitter.Emitter, resolve ResolveFunc, lookupPassword PasswordLookup, gameMode *atomic.Bool) *Dispatcher {
	if gameMode == nil {
		gameMode = &atomic.Bool{}
	}
	return &Dispatcher{
		stack:          layerstack.New(),
		cfg:            cfg,
		gameMode:       gameMode,
		resolve:        resolve,
		lookupPassword: lookupPassword,
		emit:           emit,
		mt:             modtap.NewProcessor(),
		dt:             doubletap.NewProcessor(doubletap.Config{Window: cfg.DoubleTapWindow}),
		osm:            oneshot.NewProcessor(cfg.TappingTerm),
		socdPairs:      make(map[socdKey]*socd.Pair),
		layerPushedBy:  make(map[keycode.KeyCode]layerstack.Layer),
		osmHolding:     make(map[keycode.KeyCode]pendingOSMHold),
		osmHeld:        make(map[keycode.KeyCode]bool),
	}
}

// SetConfig swaps in a freshly rebuilt EffectiveConfig. Sub-processor
// in-flight state is left untouched; only future lookups and timing
// constants observe the change, so an already-pending key resolves
// under the tapping term it started with.
func (d *Dispatcher) SetConfig(cfg *config.EffectiveConfig) {
	d.cfg = cfg
}

// Feed ingests one raw physical event. Repeats are discarded here: the
// kernel's own autorepeat stream carries no information this pipeline
// acts on. The event's own kernel timestamp, not wall-clock-at-
// processing-time, drives every timing decision.
func (d *Dispatcher) Feed(ev device.RawEvent) error {
	if ev.Value == device.ValueRepeat {
		return nil
	}
	if d.cfg == nil {
		glog.Warningf("pipeline: %v", ErrConfigStale)
		return nil
	}

	kc, ok := d.resolve(ev.Scancode)
	if !ok {
		glog.V(1).Infof("pipeline: %v: scancode %d", ErrUnknownScancode, ev.Scancode)
		return nil
	}
	dir := keycode.Release
	if ev.Value == device.ValuePress {
		dir = keycode.Press
	}
	t := ev.Timestamp

	if d.pending != nil {
		if kc == d.pending.physical {
			return d.handleMTOwnEvent(t, dir)
		}
		return d.handleInterruptEvent(ev, kc, t, dir)
	}

	action, found := d.cfg.Lookup(d.stack, d.gameMode.Load(), kc)
	if !found {
		action = config.Action{Kind: config.ActionKey, Key: kc}
	}

	switch action.Kind {
	case config.ActionOneShot:
		return d.handleOneShot(t, kc, action, dir)
	case config.ActionHR, config.ActionOverload:
		return d.handleModTap(t, kc, action, dir)
	case config.ActionDoubleTap:
		return d.handleDoubleTap(t, kc, action, dir)
	case config.ActionSocd:
		return d.handleSocd(kc, action, dir)
	case config.ActionTapTo:
		return d.handleTapTo(kc, action, dir)
	case config.ActionPassword:
		return d.handlePassword(action, dir)
	case config.ActionKey:
		return d.handleSimpleKey(action.Key, dir)
	default:
		return d.handleSimpleKey(kc, dir)
	}
}

// --- Mod-Tap -----------------------------------------------------------

func (d *Dispatcher) handleModTap(t time.Time, kc keycode.KeyCode, action config.Action, dir keycode.Direction) error {
	if dir == keycode.Release {
		// A release for an MT key not currently Pending (e.g. the
		// processor already lost track of it) is handled generically.
		return d.pushAllMT(d.mt.Release(t, kc))
	}

	cfg := modtap.Config{TappingTerm: d.cfg.TappingTerm, Permissive: action.Kind == config.ActionHR}
	d.mt.Press(t, cfg, kc, action.Tap, action.Hold)
	d.pending = &pendingInterrupt{physical: kc}
	return nil
}

// handleMTOwnEvent processes press/release of the physical key that is
// the currently Pending mod-tap key.
func (d *Dispatcher) handleMTOwnEvent(t time.Time, dir keycode.Direction) error {
	if dir == keycode.Press {
		// A press can't recur while the key is physically held; ignore
		// any spurious duplicate.
		return nil
	}
	physical := d.pending.physical
	emits := d.mt.Release(t, physical)
	if len(emits) == 2 {
		if err := d.push(emits[0].KC, emits[0].Dir); err != nil {
			return err
		}
		if err := d.flushPending(); err != nil {
			return err
		}
		if err := d.push(emits[1].KC, emits[1].Dir); err != nil {
			return err
		}
	} else if err := d.pushAllMT(emits); err != nil {
		return err
	}
	d.pending = nil
	return nil
}

// handleInterruptEvent buffers a non-MT key's event that arrived while
// an MT key is Pending, and asks modtap whether it changes the MT
// key's resolution: a press may promote it immediately under
// permissive-hold, a release may promote it if the press alone did
// not.
func (d *Dispatcher) handleInterruptEvent(ev device.RawEvent, kc keycode.KeyCode, t time.Time, dir keycode.Direction) error {
	d.pending.buffer = append(d.pending.buffer, ev)

	var resolved []modtap.Emit
	if dir == keycode.Press {
		resolved = d.mt.NotifyInterruptPress(t, d.pending.physical)
	} else {
		resolved = d.mt.ResolveInterruptRelease(t, d.pending.physical)
	}
	if resolved == nil {
		return nil
	}
	// Permissive-hold resolution: emit the hold-down now, then replay
	// everything buffered so far (including this interrupt's own
	// press, and its release too if that's what triggered the
	// promotion). The hold-up waits for the MT key's own release,
	// which by now is no longer intercepted here: the key has left
	// Pending, so its eventual release is handled by the normal
	// HR/Overload lookup path like any resolved hold.
	if err := d.pushAllMT(resolved); err != nil {
		return err
	}
	if err := d.flushPending(); err != nil {
		return err
	}
	d.pending = nil
	return nil
}

// flushPending replays every buffered raw event as a plain key
// transition and clears the buffer. Buffered events bypass further
// sub-processor routing: they were already committed to plain pass-
// through semantics the moment they were deferred.
func (d *Dispatcher) flushPending() error {
	buf := d.pending.buffer
	d.pending.buffer = nil
	for _, ev := range buf {
		kc, ok := d.resolve(ev.Scancode)
		if !ok {
			continue
		}
		dir := keycode.Release
		if ev.Value == device.ValuePress {
			dir = keycode.Press
		}
		if err := d.push(kc, dir); err != nil {
			return err
		}
	}
	return nil
}

// --- Double-Tap ----------------------------------------------------------

func (d *Dispatcher) handleDoubleTap(t time.Time, kc keycode.KeyCode, action config.Action, dir keycode.Direction) error {
	if dir == keycode.Press {
		return d.pushAllDT(d.dt.Press(t, kc, action.Tap, action.Double))
	}
	return d.pushAllDT(d.dt.Release(t, kc))
}

// --- One-Shot Modifier ---------------------------------------------------

func (d *Dispatcher) handleOneShot(t time.Time, kc keycode.KeyCode, action config.Action, dir keycode.Direction) error {
	if dir == keycode.Press {
		d.osmHolding[kc] = pendingOSMHold{pressedAt: t}
		return nil
	}

	held, wasHeld := d.osmHolding[kc]
	delete(d.osmHolding, kc)
	if d.osmHeld[kc] {
		delete(d.osmHeld, kc)
		return d.push(action.Key, keycode.Release)
	}
	if wasHeld && t.Sub(held.pressedAt) > d.cfg.TappingTerm {
		// Held past the term without a Tick ever promoting it: treat as
		// an immediate hold (down+up), the same fallback modtap.Release
		// uses when a Tick was missed.
		if err := d.push(action.Key, keycode.Press); err != nil {
			return err
		}
		return d.push(action.Key, keycode.Release)
	}
	d.osm.Arm(t, action.Key)
	return nil
}

// --- SOCD -----------------------------------------------------------------

func (d *Dispatcher) handleSocd(kc keycode.KeyCode, action config.Action, dir keycode.Direction) error {
	key := newSocdKey(action.This, action.Opposing)
	pair, ok := d.socdPairs[key]
	if !ok {
		pair = socd.NewPair(action.This, action.Opposing)
		d.socdPairs[key] = pair
	}

	var res socd.Resolution
	if dir == keycode.Press {
		res = pair.Press(kc)
	} else {
		res = pair.Release(kc)
	}
	for _, rel := range res.Releases {
		if err := d.push(rel, keycode.Release); err != nil {
			return err
		}
	}
	for _, prs := range res.Presses {
		if err := d.push(prs, keycode.Press); err != nil {
			return err
		}
	}
	return nil
}

// --- Layer switching -------------------------------------------------------

func (d *Dispatcher) handleTapTo(kc keycode.KeyCode, action config.Action, dir keycode.Direction) error {
	if dir == keycode.Release {
		if action.Layer != layerstack.Base {
			d.stack.PopLayer(action.Layer)
			delete(d.layerPushedBy, kc)
		}
		return nil
	}

	if action.Layer == layerstack.Base {
		for d.stack.Top() != layerstack.Base {
			d.stack.Pop()
		}
		return nil
	}
	if err := d.stack.Push(action.Layer); err != nil {
		glog.Warningf("pipeline: %v: %v", ErrMissingLayer, err)
		return nil
	}
	d.layerPushedBy[kc] = action.Layer
	return nil
}

// --- Password --------------------------------------------------------------

func (d *Dispatcher) handlePassword(action config.Action, dir keycode.Direction) error {
	if dir == keycode.Release {
		return nil
	}
	if d.lookupPassword == nil {
		glog.Warningf("pipeline: %v: %s", ErrMissingPassword, action.PasswordID)
		return nil
	}
	password, ok := d.lookupPassword(action.PasswordID)
	if !ok || password == "" {
		glog.Warningf("pipeline: %v: %s", ErrMissingPassword, action.PasswordID)
		return nil
	}
	for _, r := range password {
		kc, shift, ok := runeToKey(r)
		if !ok {
			glog.Warningf("pipeline: %v: %q", ErrUnsupportedRune, r)
			continue
		}
		if shift {
			if err := d.push(keycode.LShift, keycode.Press); err != nil {
				return err
			}
		}
		if err := d.push(kc, keycode.Press); err != nil {
			return err
		}
		if err := d.push(kc, keycode.Release); err != nil {
			return err
		}
		if shift {
			if err := d.push(keycode.LShift, keycode.Release); err != nil {
				return err
			}
		}
	}
	return nil
}

// --- Plain pass-through, with one-shot-modifier wrapping --------------------

// handleSimpleKey is the fallback path for unmapped keys and
// Action::Key remaps. It is also the only path one-shot modifiers wrap,
// per the scoping decision recorded in DESIGN.md: OSM consumption does
// not reach into an MT/DT key's own multi-step resolution.
func (d *Dispatcher) handleSimpleKey(kc keycode.KeyCode, dir keycode.Direction) error {
	if dir == keycode.Press {
		if emits := d.osm.Consume(kc); emits != nil {
			return d.pushAllOSM(emits)
		}
		return d.push(kc, keycode.Press)
	}
	if emits, wrapped := d.osm.ConsumeRelease(kc); wrapped {
		return d.pushAllOSM(emits)
	}
	return d.push(kc, keycode.Release)
}

// --- Ticks and shutdown ------------------------------------------------

// Tick resolves any timed-out sub-processor state: mod-tap keys past
// their tapping term, double-tap keys past their window, and expired
// one-shot modifiers.
func (d *Dispatcher) Tick(t time.Time) error {
	if err := d.pushAllMT(d.mt.CheckTimeouts(t)); err != nil {
		return err
	}
	// A mod-tap key promoted to hold by this tick is no longer Pending;
	// stop intercepting interrupts for it and flush whatever was
	// buffered so far, mirroring the interrupt-release promotion path.
	if d.pending != nil {
		if state, ok := d.mt.State(d.pending.physical); !ok || state == modtap.ResolvedHold {
			if err := d.flushPending(); err != nil {
				return err
			}
			d.pending = nil
		}
	}
	if err := d.pushAllDT(d.dt.CheckTimeouts(t)); err != nil {
		return err
	}
	for kc, h := range d.osmHolding {
		if t.Sub(h.pressedAt) <= d.cfg.TappingTerm {
			continue
		}
		delete(d.osmHolding, kc)
		d.osmHeld[kc] = true
		action, found := d.cfg.Lookup(d.stack, d.gameMode.Load(), kc)
		if !found {
			continue
		}
		if err := d.push(action.Key, keycode.Press); err != nil {
			return err
		}
	}
	d.osm.CheckTimeouts(t)
	return nil
}

// Drain resolves every sub-processor's in-flight state as if its
// keyboard were being shut down: pending mod-taps resolve as taps,
// waiting double-taps resolve as single taps, and armed one-shots
// expire silently.
func (d *Dispatcher) Drain() error {
	if d.pending != nil {
		if err := d.flushPending(); err != nil {
			return err
		}
		d.pending = nil
	}
	if err := d.pushAllMT(d.mt.DrainAsTap()); err != nil {
		return err
	}
	if err := d.pushAllDT(d.dt.DrainAsTap()); err != nil {
		return err
	}
	d.osm.DrainExpire()
	return nil
}

// --- emit plumbing -----------------------------------------------------

func (d *Dispatcher) push(kc keycode.KeyCode, dir keycode.Direction) error {
	if err := d.emit.Emit(kc, dir); err != nil {
		return fmt.Errorf("%w: %v", ErrEmitFailed, err)
	}
	if err := d.emit.Sync(); err != nil {
		return fmt.Errorf("%w: %v", ErrEmitFailed, err)
	}
	return nil
}

func (d *Dispatcher) pushAllMT(emits []modtap.Emit) error {
	for _, e := range emits {
		if err := d.push(e.KC, e.Dir); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) pushAllDT(emits []doubletap.Emit) error {
	for _, e := range emits {
		if err := d.push(e.KC, e.Dir); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) pushAllOSM(emits []oneshot.Emit) error {
	for _, e := range emits {
		if err := d.push(e.KC, e.Dir); err != nil {
			return err
		}
	}
	return nil
}
