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
	"path/filepath"
	"testing"
	"time"

	"github.com/keyplex/keyplex/internal/keycode"
	"github.com/keyplex/keyplex/internal/layerstack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *Config {
	return &Config{
		TappingTermMS: 200,
		Remaps: map[keycode.KeyCode]Action{
			keycode.A: {Kind: ActionHR, Tap: keycode.A, Hold: keycode.LShift},
		},
		Layers: map[layerstack.Layer]LayerConfig{
			"nav": {Remaps: map[keycode.KeyCode]Action{
				keycode.H: {Kind: ActionKey, Key: keycode.Left},
			}},
		},
		GameMode: GameMode{
			Remaps: map[keycode.KeyCode]Action{
				keycode.A: {Kind: ActionKey, Key: keycode.A},
			},
		},
	}
}

func TestForKeyboardWithNoOverrideReturnsBase(t *testing.T) {
	c := baseConfig()
	ec := c.ForKeyboard("unknown-keyboard")

	assert.Equal(t, 200*time.Millisecond, ec.TappingTerm)
	assert.Equal(t, DefaultDoubleTapWindowMS*time.Millisecond, ec.DoubleTapWindow)
	assert.Equal(t, c.Remaps, ec.BaseRemaps)
}

func TestForKeyboardOverridePrecedence(t *testing.T) {
	c := baseConfig()
	newTerm := 150
	c.KeyboardOverrides = map[string]KeyboardOverride{
		"kbd1": {
			Settings: &SettingsOverride{TappingTermMS: &newTerm},
			Keymap: &KeymapOverride{
				BaseRemaps: map[keycode.KeyCode]Action{
					keycode.A: {Kind: ActionKey, Key: keycode.B},
				},
			},
		},
	}

	ec := c.ForKeyboard("kbd1")
	require.Equal(t, 150*time.Millisecond, ec.TappingTerm)
	require.Equal(t, keycode.B, ec.BaseRemaps[keycode.A].Key)
}

func TestEffectiveConfigLayerPrecedence(t *testing.T) {
	c := baseConfig()
	ec := c.ForKeyboard("any")
	stack := layerstack.New()

	a, ok := ec.Lookup(stack, false, keycode.H)
	assert.False(t, ok, "base layer has no remap for H")

	require.NoError(t, stack.Push("nav"))
	a, ok = ec.Lookup(stack, false, keycode.H)
	require.True(t, ok)
	assert.Equal(t, keycode.Left, a.Key)

	stack.Pop()
	_, ok = ec.Lookup(stack, false, keycode.H)
	assert.False(t, ok, "popping nav should restore base lookup")
}

func TestEffectiveConfigGameModeOverlay(t *testing.T) {
	c := baseConfig()
	ec := c.ForKeyboard("any")
	stack := layerstack.New()

	a, ok := ec.Lookup(stack, true, keycode.A)
	require.True(t, ok)
	assert.Equal(t, ActionKey, a.Kind)
	assert.Equal(t, keycode.A, a.Key, "game overlay remaps A to itself, not HR")

	a, ok = ec.Lookup(stack, false, keycode.A)
	require.True(t, ok)
	assert.Equal(t, ActionHR, a.Kind, "without game mode, base HR remap applies")
}

func TestKeyboardEnabled(t *testing.T) {
	c := baseConfig()
	assert.True(t, c.KeyboardEnabled("anything"), "nil EnabledKeyboards enables everything")

	c.EnabledKeyboards = []string{"kbd1"}
	assert.True(t, c.KeyboardEnabled("kbd1"))
	assert.False(t, c.KeyboardEnabled("kbd2"))
}

func TestLoadAndSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	c := baseConfig()
	require.NoError(t, Save(c, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c.TappingTermMS, loaded.TappingTermMS)
	assert.Equal(t, c.Remaps[keycode.A].Kind, loaded.Remaps[keycode.A].Kind)
	assert.Equal(t, c.Remaps[keycode.A].Hold, loaded.Remaps[keycode.A].Hold)
}

func TestPasswordStoreMissingFileIsNotError(t *testing.T) {
	store := NewPasswordStore(t.TempDir())
	pw, ok, err := store.Load("default")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, pw)
}

func TestPasswordStoreSetThenLoad(t *testing.T) {
	store := NewPasswordStore(t.TempDir())
	require.NoError(t, store.Set("default", "hunter2"))

	pw, ok, err := store.Load("default")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hunter2", pw)
}
