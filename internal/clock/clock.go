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

// Package clock provides a monotonic time source and scheduled-wakeup
// primitive behind an interface: System is backed by the time package,
// and Fake advances on command, so a deadline can be crossed
// deterministically instead of racing real sleeps. The action
// processors and the dispatcher do not use it; they take explicit
// time.Time arguments (event timestamps and ticker times).
package clock

import "time"

// Clock abstracts time.Now and time.NewTimer so a caller can be driven
// by Fake instead of the time package. This is the same substitution point
// tscreen.go uses around time.After in its input-disambiguation select
// loop, generalized into an interface.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

// Timer is a single scheduled wakeup. Stop behaves like time.Timer.Stop:
// it returns false if the timer already fired or was already stopped.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

// System is the production Clock, backed directly by the time package.
type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) NewTimer(d time.Duration) Timer {
	return &systemTimer{t: time.NewTimer(d)}
}

type systemTimer struct {
	t *time.Timer
}

func (s *systemTimer) C() <-chan time.Time { return s.t.C }
func (s *systemTimer) Stop() bool          { return s.t.Stop() }
