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

// Package config is the configuration-view collaborator: it loads the
// on-disk YAML configuration, merges per-keyboard overrides and the
// game-mode overlay into an EffectiveConfig snapshot, and loads
// per-id password files. Ported from original_source/src/config.rs,
// re-expressed in YAML (gopkg.in/yaml.v3) instead of RON.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/keyplex/keyplex/internal/keycode"
	"github.com/keyplex/keyplex/internal/layerstack"
	"gopkg.in/yaml.v3"
)

// DefaultTappingTermMS and DefaultDoubleTapWindowMS are the defaults
// applied when a config file omits them.
const (
	DefaultTappingTermMS     = 200
	DefaultDoubleTapWindowMS = 250
)

// LayerConfig is one named layer's keymap.
type LayerConfig struct {
	Remaps map[keycode.KeyCode]Action `yaml:"remaps"`
}

// GameMode is the overlay applied to the base layer while a qualifying
// application has input focus.
type GameMode struct {
	Remaps map[keycode.KeyCode]Action `yaml:"remaps"`
}

// SettingsOverride overrides timing settings for one keyboard.
type SettingsOverride struct {
	TappingTermMS     *int `yaml:"tapping_term_ms,omitempty"`
	DoubleTapWindowMS *int `yaml:"double_tap_window_ms,omitempty"`
}

// KeymapOverride overrides remaps/layers for one keyboard. Each
// populated field fully replaces the base value, mirroring the
// original's clone_from semantics rather than a deep per-key merge.
type KeymapOverride struct {
	BaseRemaps     map[keycode.KeyCode]Action       `yaml:"base_remaps,omitempty"`
	Layers         map[layerstack.Layer]LayerConfig `yaml:"layers,omitempty"`
	GameModeRemaps map[keycode.KeyCode]Action       `yaml:"game_mode_remaps,omitempty"`
}

// KeyboardOverride is the per-keyboard override block.
type KeyboardOverride struct {
	Keymap   *KeymapOverride   `yaml:"keymap,omitempty"`
	Settings *SettingsOverride `yaml:"settings,omitempty"`
}

// Config is the whole on-disk configuration.
type Config struct {
	TappingTermMS     int                               `yaml:"tapping_term_ms"`
	DoubleTapWindowMS *int                               `yaml:"double_tap_window_ms,omitempty"`
	EnabledKeyboards  []string                          `yaml:"enabled_keyboards,omitempty"`
	Remaps            map[keycode.KeyCode]Action        `yaml:"remaps"`
	Layers            map[layerstack.Layer]LayerConfig  `yaml:"layers"`
	GameMode          GameMode                          `yaml:"game_mode"`
	KeyboardOverrides map[string]KeyboardOverride       `yaml:"keyboard_overrides,omitempty"`
}

// Load reads and parses the YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if c.TappingTermMS == 0 {
		c.TappingTermMS = DefaultTappingTermMS
	}
	return &c, nil
}

// Save writes c back to path as YAML.
func Save(c *Config, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// ForKeyboard produces the EffectiveConfig for keyboardID: a
// per-keyboard override wins over the base config. Game-mode overlay
// precedence is applied at lookup time by EffectiveConfig.Lookup, not
// baked in here, since the flag can flip without a config reload.
func (c *Config) ForKeyboard(keyboardID string) *EffectiveConfig {
	tappingTerm := c.TappingTermMS
	doubleWindow := DefaultDoubleTapWindowMS
	if c.DoubleTapWindowMS != nil {
		doubleWindow = *c.DoubleTapWindowMS
	}
	baseRemaps := c.Remaps
	layers := c.Layers
	gameRemaps := c.GameMode.Remaps

	if ov, ok := c.KeyboardOverrides[keyboardID]; ok {
		if ov.Settings != nil {
			if ov.Settings.TappingTermMS != nil {
				tappingTerm = *ov.Settings.TappingTermMS
			}
			if ov.Settings.DoubleTapWindowMS != nil {
				doubleWindow = *ov.Settings.DoubleTapWindowMS
			}
		}
		if ov.Keymap != nil {
			if ov.Keymap.BaseRemaps != nil {
				baseRemaps = ov.Keymap.BaseRemaps
			}
			if ov.Keymap.Layers != nil {
				layers = ov.Keymap.Layers
			}
			if ov.Keymap.GameModeRemaps != nil {
				gameRemaps = ov.Keymap.GameModeRemaps
			}
		}
	}

	return &EffectiveConfig{
		TappingTerm:     time.Duration(tappingTerm) * time.Millisecond,
		DoubleTapWindow: time.Duration(doubleWindow) * time.Millisecond,
		BaseRemaps:      baseRemaps,
		Layers:          layers,
		GameModeRemaps:  gameRemaps,
	}
}

// KeyboardEnabled reports whether keyboardID should be grabbed. A nil
// EnabledKeyboards means every discovered keyboard is enabled.
func (c *Config) KeyboardEnabled(keyboardID string) bool {
	if c.EnabledKeyboards == nil {
		return true
	}
	for _, id := range c.EnabledKeyboards {
		if id == keyboardID {
			return true
		}
	}
	return false
}
