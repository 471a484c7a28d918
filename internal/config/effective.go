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

package config

import (
	"time"

	"github.com/keyplex/keyplex/internal/keycode"
	"github.com/keyplex/keyplex/internal/layerstack"
)

// EffectiveConfig is the immutable, per-keyboard merged view the
// dispatcher consults. It is rebuilt (never mutated) on config change
// or a keyboard's override changing, and swapped in atomically.
type EffectiveConfig struct {
	TappingTerm     time.Duration
	DoubleTapWindow time.Duration
	BaseRemaps      map[keycode.KeyCode]Action
	Layers          map[layerstack.Layer]LayerConfig
	GameModeRemaps  map[keycode.KeyCode]Action
}

// Lookup resolves kc against the layer stack top-down, first match
// wins. The base layer's remaps are replaced wholesale by the
// game-mode overlay when gameModeActive is true: game mode wins over
// the base layer outright, rather than layering on top of it.
func (ec *EffectiveConfig) Lookup(stack *layerstack.Stack, gameModeActive bool, kc keycode.KeyCode) (Action, bool) {
	for _, l := range stack.Layers() {
		if l == layerstack.Base {
			remaps := ec.BaseRemaps
			if gameModeActive {
				remaps = ec.GameModeRemaps
			}
			if a, ok := remaps[kc]; ok {
				return a, true
			}
			continue
		}
		if lc, ok := ec.Layers[l]; ok {
			if a, ok := lc.Remaps[kc]; ok {
				return a, true
			}
		}
	}
	return Action{}, false
}
