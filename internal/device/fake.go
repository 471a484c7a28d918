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

package device

import "sync"

// FakeSource is an in-memory Source a test drives by calling Inject:
// production code reads a real device, tests push synthetic raw events
// through the same channel the dispatcher consumes.
type FakeSource struct {
	mu     sync.Mutex
	ch     chan RawEvent
	closed bool
}

// NewFakeSource returns a FakeSource with the given channel buffer
// depth.
func NewFakeSource(buffer int) *FakeSource {
	return &FakeSource{ch: make(chan RawEvent, buffer)}
}

// Inject pushes one raw event onto the source's channel. It panics if
// called after Close, the same contract a closed real device's
// read-loop goroutine exiting would produce.
func (f *FakeSource) Inject(ev RawEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		panic("device: Inject after Close")
	}
	f.ch <- ev
}

func (f *FakeSource) Events() <-chan RawEvent {
	return f.ch
}

func (f *FakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	close(f.ch)
	return nil
}
