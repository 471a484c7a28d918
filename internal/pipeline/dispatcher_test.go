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

package pipeline

import (
	"testing"
	"time"

	"github.com/keyplex/keyplex/internal/config"
	"github.com/keyplex/keyplex/internal/device"
	"github.com/keyplex/keyplex/internal/emitter"
	"github.com/keyplex/keyplex/internal/keycode"
	"github.com/keyplex/keyplex/internal/layerstack"
)

var epoch = time.Unix(1700000000, 0)

func at(ms int) time.Time { return epoch.Add(time.Duration(ms) * time.Millisecond) }

func feed(t *testing.T, d *Dispatcher, kc keycode.KeyCode, dir keycode.Direction, ms int) {
	t.Helper()
	code, ok := emitter.ToLinux(kc)
	if !ok {
		t.Fatalf("no evdev mapping for %v", kc)
	}
	value := device.ValueRelease
	if dir == keycode.Press {
		value = device.ValuePress
	}
	if err := d.Feed(device.RawEvent{Scancode: code, Value: value, Timestamp: at(ms)}); err != nil {
		t.Fatalf("Feed(%v %v@%dms): %v", kc, dir, ms, err)
	}
}

func newDispatcher(t *testing.T, cfg *config.EffectiveConfig) (*Dispatcher, *emitter.Fake) {
	t.Helper()
	f := emitter.NewFake()
	d := New(cfg, f, emitter.FromLinux, nil, nil)
	return d, f
}

func wantRecorded(kcs ...any) []emitter.Recorded {
	var out []emitter.Recorded
	for i := 0; i < len(kcs); i += 2 {
		out = append(out, emitter.Recorded{KC: kcs[i].(keycode.KeyCode), Dir: kcs[i+1].(keycode.Direction)})
	}
	return out
}

func assertEvents(t *testing.T, got []emitter.Recorded, want []emitter.Recorded) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d events %v, want %d events %v", len(got), got, len(want), want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("event %d: got %v, want %v (full got=%v want=%v)", i, got[i], want[i], got, want)
		}
	}
}

// S1: tap-hold identity.
func TestScenarioS1TapHoldIdentity(t *testing.T) {
	cfg := &config.EffectiveConfig{
		TappingTerm: 200 * time.Millisecond,
		BaseRemaps: map[keycode.KeyCode]config.Action{
			keycode.A: {Kind: config.ActionHR, Tap: keycode.A, Hold: keycode.LShift},
		},
	}
	d, f := newDispatcher(t, cfg)
	feed(t, d, keycode.A, keycode.Press, 0)
	feed(t, d, keycode.A, keycode.Release, 50)

	assertEvents(t, f.Events(), wantRecorded(
		keycode.A, keycode.Press, keycode.A, keycode.Release,
	))
}

// S2: hold via timeout.
func TestScenarioS2HoldOnTimeout(t *testing.T) {
	cfg := &config.EffectiveConfig{
		TappingTerm: 200 * time.Millisecond,
		BaseRemaps: map[keycode.KeyCode]config.Action{
			keycode.A: {Kind: config.ActionHR, Tap: keycode.A, Hold: keycode.LShift},
		},
	}
	d, f := newDispatcher(t, cfg)
	feed(t, d, keycode.A, keycode.Press, 0)
	feed(t, d, keycode.A, keycode.Release, 300)

	assertEvents(t, f.Events(), wantRecorded(
		keycode.LShift, keycode.Press, keycode.LShift, keycode.Release,
	))
}

// S3: permissive hold.
func TestScenarioS3PermissiveHold(t *testing.T) {
	cfg := &config.EffectiveConfig{
		TappingTerm: 200 * time.Millisecond,
		BaseRemaps: map[keycode.KeyCode]config.Action{
			keycode.A: {Kind: config.ActionHR, Tap: keycode.A, Hold: keycode.LShift},
		},
	}
	d, f := newDispatcher(t, cfg)
	feed(t, d, keycode.A, keycode.Press, 0)
	feed(t, d, keycode.B, keycode.Press, 40)
	feed(t, d, keycode.B, keycode.Release, 80)
	feed(t, d, keycode.A, keycode.Release, 120)

	assertEvents(t, f.Events(), wantRecorded(
		keycode.LShift, keycode.Press,
		keycode.B, keycode.Press, keycode.B, keycode.Release,
		keycode.LShift, keycode.Release,
	))
}

// S4: Overload is not permissive.
func TestScenarioS4OverloadNotPermissive(t *testing.T) {
	cfg := &config.EffectiveConfig{
		TappingTerm: 200 * time.Millisecond,
		BaseRemaps: map[keycode.KeyCode]config.Action{
			keycode.F: {Kind: config.ActionOverload, Tap: keycode.F, Hold: keycode.LCtrl},
		},
	}
	d, f := newDispatcher(t, cfg)
	feed(t, d, keycode.F, keycode.Press, 0)
	feed(t, d, keycode.B, keycode.Press, 40)
	feed(t, d, keycode.B, keycode.Release, 80)
	feed(t, d, keycode.F, keycode.Release, 120)

	assertEvents(t, f.Events(), wantRecorded(
		keycode.F, keycode.Press,
		keycode.B, keycode.Press, keycode.B, keycode.Release,
		keycode.F, keycode.Release,
	))
}

// S5: double-tap exclusivity.
func TestScenarioS5DoubleTapDetected(t *testing.T) {
	cfg := &config.EffectiveConfig{
		TappingTerm:     200 * time.Millisecond,
		DoubleTapWindow: 250 * time.Millisecond,
		BaseRemaps: map[keycode.KeyCode]config.Action{
			keycode.X: {Kind: config.ActionDoubleTap, Tap: keycode.X, Double: keycode.F11},
		},
	}
	d, f := newDispatcher(t, cfg)
	feed(t, d, keycode.X, keycode.Press, 0)
	feed(t, d, keycode.X, keycode.Release, 20)
	feed(t, d, keycode.X, keycode.Press, 100)
	feed(t, d, keycode.X, keycode.Release, 120)

	assertEvents(t, f.Events(), wantRecorded(
		keycode.F11, keycode.Press, keycode.F11, keycode.Release,
	))
}

// S5b: DT timeout resolves as a single tap (invariant 5).
func TestDoubleTapTimeoutResolvesAsSingleTap(t *testing.T) {
	cfg := &config.EffectiveConfig{
		TappingTerm:     200 * time.Millisecond,
		DoubleTapWindow: 250 * time.Millisecond,
		BaseRemaps: map[keycode.KeyCode]config.Action{
			keycode.X: {Kind: config.ActionDoubleTap, Tap: keycode.X, Double: keycode.F11},
		},
	}
	d, f := newDispatcher(t, cfg)
	feed(t, d, keycode.X, keycode.Press, 0)
	feed(t, d, keycode.X, keycode.Release, 20)
	if err := d.Tick(at(400)); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	assertEvents(t, f.Events(), wantRecorded(
		keycode.X, keycode.Press, keycode.X, keycode.Release,
	))
}

// S6: SOCD mutual exclusion with last-input priority.
func TestScenarioS6SocdLastInputPriority(t *testing.T) {
	cfg := &config.EffectiveConfig{
		TappingTerm: 200 * time.Millisecond,
		BaseRemaps: map[keycode.KeyCode]config.Action{
			keycode.W: {Kind: config.ActionSocd, This: keycode.W, Opposing: keycode.S},
			keycode.S: {Kind: config.ActionSocd, This: keycode.S, Opposing: keycode.W},
		},
	}
	d, f := newDispatcher(t, cfg)
	feed(t, d, keycode.W, keycode.Press, 0)
	feed(t, d, keycode.S, keycode.Press, 50)
	feed(t, d, keycode.S, keycode.Release, 100)

	assertEvents(t, f.Events(), wantRecorded(
		keycode.W, keycode.Press,
		keycode.W, keycode.Release, keycode.S, keycode.Press,
		keycode.S, keycode.Release, keycode.W, keycode.Press,
	))
}

// Invariant 6: OSM wraps exactly the first non-modifier key.
func TestOSMSingleShotWrapsOnlyFirstKey(t *testing.T) {
	cfg := &config.EffectiveConfig{
		TappingTerm: 200 * time.Millisecond,
		BaseRemaps: map[keycode.KeyCode]config.Action{
			keycode.CapsLock: {Kind: config.ActionOneShot, Key: keycode.LShift},
		},
	}
	d, f := newDispatcher(t, cfg)
	feed(t, d, keycode.CapsLock, keycode.Press, 0)
	feed(t, d, keycode.CapsLock, keycode.Release, 20)
	feed(t, d, keycode.K, keycode.Press, 40)
	feed(t, d, keycode.K, keycode.Release, 60)
	feed(t, d, keycode.K, keycode.Press, 80)
	feed(t, d, keycode.K, keycode.Release, 100)

	assertEvents(t, f.Events(), wantRecorded(
		keycode.LShift, keycode.Press,
		keycode.K, keycode.Press,
		keycode.K, keycode.Release,
		keycode.LShift, keycode.Release,
		keycode.K, keycode.Press,
		keycode.K, keycode.Release,
	))
}

// Invariant 8: layer precedence.
func TestLayerPrecedenceShadowsBase(t *testing.T) {
	cfg := &config.EffectiveConfig{
		TappingTerm: 200 * time.Millisecond,
		BaseRemaps: map[keycode.KeyCode]config.Action{
			keycode.CapsLock: {Kind: config.ActionTapTo, Layer: "nav"},
			keycode.H:        {Kind: config.ActionKey, Key: keycode.H},
		},
		Layers: map[layerstack.Layer]config.LayerConfig{
			"nav": {Remaps: map[keycode.KeyCode]config.Action{
				keycode.H: {Kind: config.ActionKey, Key: keycode.Left},
			}},
		},
	}
	d, f := newDispatcher(t, cfg)
	feed(t, d, keycode.CapsLock, keycode.Press, 0)
	feed(t, d, keycode.H, keycode.Press, 10)
	feed(t, d, keycode.H, keycode.Release, 20)
	feed(t, d, keycode.CapsLock, keycode.Release, 30)
	feed(t, d, keycode.H, keycode.Press, 40)
	feed(t, d, keycode.H, keycode.Release, 50)

	assertEvents(t, f.Events(), wantRecorded(
		keycode.Left, keycode.Press, keycode.Left, keycode.Release,
		keycode.H, keycode.Press, keycode.H, keycode.Release,
	))
}

// Invariant 9: game-mode overlay replaces base remaps.
func TestGameModeOverlayReplacesBase(t *testing.T) {
	cfg := &config.EffectiveConfig{
		TappingTerm: 200 * time.Millisecond,
		BaseRemaps: map[keycode.KeyCode]config.Action{
			keycode.A: {Kind: config.ActionKey, Key: keycode.B},
		},
		GameModeRemaps: map[keycode.KeyCode]config.Action{
			keycode.A: {Kind: config.ActionKey, Key: keycode.A},
		},
	}
	d, f := newDispatcher(t, cfg)
	d.gameMode.Store(true)
	feed(t, d, keycode.A, keycode.Press, 0)
	feed(t, d, keycode.A, keycode.Release, 10)

	assertEvents(t, f.Events(), wantRecorded(keycode.A, keycode.Press, keycode.A, keycode.Release))
}

// Drain resolves a Pending MT key as a tap on shutdown.
func TestDrainResolvesPendingMTAsTap(t *testing.T) {
	cfg := &config.EffectiveConfig{
		TappingTerm: 200 * time.Millisecond,
		BaseRemaps: map[keycode.KeyCode]config.Action{
			keycode.A: {Kind: config.ActionHR, Tap: keycode.A, Hold: keycode.LShift},
		},
	}
	d, f := newDispatcher(t, cfg)
	feed(t, d, keycode.A, keycode.Press, 0)
	if err := d.Drain(); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	assertEvents(t, f.Events(), wantRecorded(keycode.A, keycode.Press, keycode.A, keycode.Release))
}

// Fatal emit errors (handle invalidation) propagate out of Feed.
func TestEmitFailurePropagatesAsFatal(t *testing.T) {
	cfg := &config.EffectiveConfig{TappingTerm: 200 * time.Millisecond}
	f := emitter.NewFake()
	f.FailNext(1)
	d := New(cfg, f, emitter.FromLinux, nil, nil)

	err := d.Feed(mustRawEvent(t, keycode.A, device.ValuePress, 0))
	if err == nil {
		t.Fatal("expected emit failure to propagate")
	}
}

func mustRawEvent(t *testing.T, kc keycode.KeyCode, value device.Value, ms int) device.RawEvent {
	t.Helper()
	code, ok := emitter.ToLinux(kc)
	if !ok {
		t.Fatalf("no evdev mapping for %v", kc)
	}
	return device.RawEvent{Scancode: code, Value: value, Timestamp: at(ms)}
}
