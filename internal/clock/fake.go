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

package clock

import (
	"sync"
	"time"
)

// Fake is a Clock that only moves when Advance is called, so a test can
// cross a timer deadline without depending on wall-clock scheduling,
// the same way simulation.go lets
// screen tests inject synthetic events instead of real tty bytes.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*fakeTimer
}

// NewFake returns a Fake clock seeded at the given time.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) NewTimer(d time.Duration) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{
		fire: f.now.Add(d),
		ch:   make(chan time.Time, 1),
		live: true,
	}
	f.waiters = append(f.waiters, t)
	return t
}

// Advance moves the clock forward by d, firing any timer whose deadline
// has been reached, in the order the timers were created.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)

	remaining := f.waiters[:0]
	for _, t := range f.waiters {
		if t.live && !t.fire.After(f.now) {
			t.ch <- f.now
			t.live = false
			continue
		}
		remaining = append(remaining, t)
	}
	f.waiters = remaining
}

type fakeTimer struct {
	fire time.Time
	ch   chan time.Time
	live bool
}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }

func (t *fakeTimer) Stop() bool {
	wasLive := t.live
	t.live = false
	return wasLive
}
