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

import "errors"

// ErrHandleInvalid is the one fatal emitter condition: it terminates
// the owning worker rather than being locally recovered.
var ErrHandleInvalid = errors.New("emitter: device handle invalid")

// ErrUnmappedKey is returned when a KeyCode has no corresponding Linux
// evdev key code to emit.
var ErrUnmappedKey = errors.New("emitter: keycode has no evdev mapping")
