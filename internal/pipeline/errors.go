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

import "errors"

// Error kinds the dispatcher can report. All but ErrEmitFailed are
// locally recovered: the triggering event is dropped or passed through
// and the failure is only logged.
var (
	ErrUnknownScancode = errors.New("pipeline: unknown scancode")
	ErrMissingLayer    = errors.New("pipeline: tapto references a missing layer")
	ErrMissingPassword = errors.New("pipeline: password id has no stored password")
	ErrUnsupportedRune = errors.New("pipeline: password contains a rune with no direct scancode")
	ErrConfigStale     = errors.New("pipeline: effective config was nil at dispatch time")

	// ErrEmitFailed is the one fatal dispatcher error: the emitter's
	// device handle itself is gone, not a single rejected event. The
	// owning worker must stop and surface this for a supervisor restart.
	ErrEmitFailed = errors.New("pipeline: emitter handle invalid")
)
