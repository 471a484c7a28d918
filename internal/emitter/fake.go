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

package emitter

import (
	"sync"

	"github.com/keyplex/keyplex/internal/keycode"
)

// Recorded is one emitted transition, captured in emit order.
type Recorded struct {
	KC  keycode.KeyCode
	Dir keycode.Direction
}

// Fake is an in-memory Emitter used by pipeline tests: every call is
// recorded rather than written to a real device, and the recording can
// be inspected afterward.
type Fake struct {
	mu      sync.Mutex
	events  []Recorded
	syncs   int
	closed  bool
	failNth int // 1-based index of the Emit call to fail, 0 = never
	calls   int
}

// NewFake returns an empty Fake emitter.
func NewFake() *Fake {
	return &Fake{}
}

// Emit records kc/dir in order.
func (f *Fake) Emit(kc keycode.KeyCode, dir keycode.Direction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failNth != 0 && f.calls == f.failNth {
		return ErrHandleInvalid
	}
	f.events = append(f.events, Recorded{KC: kc, Dir: dir})
	return nil
}

// Sync records a flush point.
func (f *Fake) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs++
	return nil
}

// Close marks the fake closed; further Emit calls still succeed (tests
// that care about post-close behavior should check Closed()).
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Events returns a copy of every recorded transition, in order.
func (f *Fake) Events() []Recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Recorded, len(f.events))
	copy(out, f.events)
	return out
}

// FailNext arranges for the nth future Emit call (1-indexed from now)
// to return ErrHandleInvalid, simulating the one fatal emitter failure
// mode a real device can produce.
func (f *Fake) FailNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNth = f.calls + n
}
