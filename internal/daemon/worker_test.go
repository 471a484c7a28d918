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

package daemon

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/keyplex/keyplex/internal/config"
	"github.com/keyplex/keyplex/internal/device"
	"github.com/keyplex/keyplex/internal/emitter"
	"github.com/keyplex/keyplex/internal/keycode"
	"github.com/keyplex/keyplex/internal/layerstack"
	"github.com/keyplex/keyplex/internal/pipeline"
)

func passthroughConfig() *config.EffectiveConfig {
	return &config.EffectiveConfig{
		TappingTerm:     200 * time.Millisecond,
		DoubleTapWindow: 250 * time.Millisecond,
		BaseRemaps:      map[keycode.KeyCode]config.Action{},
		Layers:          map[layerstack.Layer]config.LayerConfig{},
		GameModeRemaps:  map[keycode.KeyCode]config.Action{},
	}
}

func rawEvent(t *testing.T, kc keycode.KeyCode, val device.Value) device.RawEvent {
	t.Helper()
	code, ok := emitter.ToLinux(kc)
	if !ok {
		t.Fatalf("no evdev mapping for %v", kc)
	}
	return device.RawEvent{Scancode: code, Value: val, Timestamp: time.Now()}
}

func newTestWorker(src *device.FakeSource, fake *emitter.Fake) *worker {
	kb := device.Keyboard{ID: "kb0", Name: "Test Keyboard", Path: "/dev/input/event0", Source: src}
	return newWorker(kb, passthroughConfig(), fake, nil, &atomic.Bool{})
}

func TestWorkerRunFeedsPassthroughKey(t *testing.T) {
	src := device.NewFakeSource(4)
	fake := emitter.NewFake()
	w := newTestWorker(src, fake)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.run(ctx) }()

	src.Inject(rawEvent(t, keycode.A, device.ValuePress))
	src.Inject(rawEvent(t, keycode.A, device.ValueRelease))

	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	got := fake.Events()
	if len(got) != 2 || got[0].KC != keycode.A || got[0].Dir != keycode.Press ||
		got[1].KC != keycode.A || got[1].Dir != keycode.Release {
		t.Fatalf("got %v, want A press then A release", got)
	}
}

func TestWorkerRunDisabledDropsEvents(t *testing.T) {
	src := device.NewFakeSource(4)
	fake := emitter.NewFake()
	w := newTestWorker(src, fake)
	w.enabled.Store(false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.run(ctx) }()

	src.Inject(rawEvent(t, keycode.A, device.ValuePress))
	src.Inject(rawEvent(t, keycode.A, device.ValueRelease))

	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if got := fake.Events(); len(got) != 0 {
		t.Fatalf("got %v, want no events while disabled", got)
	}
}

func TestWorkerRunDrainsPendingModTapOnShutdown(t *testing.T) {
	src := device.NewFakeSource(4)
	fake := emitter.NewFake()
	kb := device.Keyboard{ID: "kb0", Name: "Test Keyboard", Path: "/dev/input/event0", Source: src}
	cfg := passthroughConfig()
	cfg.BaseRemaps[keycode.F] = config.Action{Kind: config.ActionHR, Tap: keycode.F, Hold: keycode.LCtrl}
	w := newWorker(kb, cfg, fake, nil, &atomic.Bool{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.run(ctx) }()

	src.Inject(rawEvent(t, keycode.F, device.ValuePress))
	time.Sleep(10 * time.Millisecond)
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	got := fake.Events()
	if len(got) != 2 || got[0].KC != keycode.F || got[0].Dir != keycode.Press ||
		got[1].KC != keycode.F || got[1].Dir != keycode.Release {
		t.Fatalf("got %v, want the pending HR key resolved as a tap on drain", got)
	}
}

func TestWorkerRunAppliesReloadedConfigToFutureKeys(t *testing.T) {
	src := device.NewFakeSource(4)
	fake := emitter.NewFake()
	kb := device.Keyboard{ID: "kb0", Name: "Test Keyboard", Path: "/dev/input/event0", Source: src}
	cfg := passthroughConfig()
	cfg.BaseRemaps[keycode.F] = config.Action{Kind: config.ActionHR, Tap: keycode.F, Hold: keycode.LCtrl}
	w := newWorker(kb, cfg, fake, nil, &atomic.Bool{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	shortTerm := passthroughConfig()
	shortTerm.TappingTerm = 10 * time.Millisecond
	shortTerm.BaseRemaps[keycode.F] = config.Action{Kind: config.ActionHR, Tap: keycode.F, Hold: keycode.LCtrl}
	w.reload(shortTerm)
	time.Sleep(15 * time.Millisecond) // let the worker's select loop pick up the reload

	src.Inject(rawEvent(t, keycode.F, device.ValuePress))
	time.Sleep(30 * time.Millisecond) // several ticks past the new 10ms tapping term

	found := false
	for _, ev := range fake.Events() {
		if ev.KC == keycode.LCtrl && ev.Dir == keycode.Press {
			found = true
		}
	}
	if !found {
		t.Fatalf("got %v, want the hold to have fired under the reloaded short tapping term", fake.Events())
	}
}

func TestWorkerRunStopsOnClosedSource(t *testing.T) {
	src := device.NewFakeSource(1)
	fake := emitter.NewFake()
	w := newTestWorker(src, fake)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- w.run(ctx) }()

	src.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected an error when the device source closes unexpectedly")
		}
	case <-time.After(time.Second):
		t.Fatal("worker.run did not return after its source closed")
	}
}

func TestWorkerRunPropagatesFatalEmitError(t *testing.T) {
	src := device.NewFakeSource(4)
	fake := emitter.NewFake()
	fake.FailNext(1)
	w := newTestWorker(src, fake)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- w.run(ctx) }()

	src.Inject(rawEvent(t, keycode.A, device.ValuePress))

	select {
	case err := <-done:
		if !errors.Is(err, pipeline.ErrEmitFailed) {
			t.Fatalf("got error %v, want ErrEmitFailed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker.run did not return after a fatal emit error")
	}
}
