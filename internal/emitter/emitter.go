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

// Package emitter is the outbound capability the dispatcher calls to
// inject synthesized events into a virtual input device. The pipeline
// never retries an emit and treats the emitter as monotonic and
// non-blocking.
package emitter

import "github.com/keyplex/keyplex/internal/keycode"

// Emitter emits a single key transition, and syncs to flush it to the
// device.
type Emitter interface {
	Emit(kc keycode.KeyCode, dir keycode.Direction) error
	Sync() error
	Close() error
}
