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
	"fmt"

	"github.com/keyplex/keyplex/internal/keycode"
	"github.com/keyplex/keyplex/internal/layerstack"
)

// ActionKind discriminates the Action variants. The original source
// expressed Action as a Rust enum with per-variant payloads; YAML has
// no native tagged union, so Action is a flat struct with a Kind
// discriminator and only the fields that kind uses populated.
type ActionKind string

const (
	ActionKey       ActionKind = "key"
	ActionHR        ActionKind = "hr"
	ActionOverload  ActionKind = "overload"
	ActionDoubleTap ActionKind = "doubletap"
	ActionOneShot   ActionKind = "oneshot"
	ActionTapTo     ActionKind = "tapto"
	ActionSocd      ActionKind = "socd"
	ActionPassword  ActionKind = "password"
)

// Action is one key's behavior: a tagged variant mirroring
// original_source/src/config.rs's Action enum (Key, HR, OVERLOAD,
// DoubleTap, OneShot, TO, Socd, Password).
type Action struct {
	Kind ActionKind `yaml:"type"`

	// ActionKey
	Key keycode.KeyCode `yaml:"key,omitempty"`

	// ActionHR, ActionOverload
	Tap  keycode.KeyCode `yaml:"tap,omitempty"`
	Hold keycode.KeyCode `yaml:"hold,omitempty"`

	// ActionDoubleTap
	Double keycode.KeyCode `yaml:"double,omitempty"`

	// ActionTapTo
	Layer layerstack.Layer `yaml:"layer,omitempty"`

	// ActionSocd
	This     keycode.KeyCode `yaml:"this,omitempty"`
	Opposing keycode.KeyCode `yaml:"opposing,omitempty"`

	// ActionPassword
	PasswordID string `yaml:"password_id,omitempty"`
}

// Validate checks that an Action's populated fields match its Kind.
// Tap and hold are allowed to name the same key for HR/Overload: that
// case is accepted rather than rejected, since it still has a well
// defined resolution (the key just never behaves as a modifier).
func (a Action) Validate() error {
	switch a.Kind {
	case ActionKey:
		if !a.Key.Valid() {
			return fmt.Errorf("config: action kind %q requires a valid key", a.Kind)
		}
	case ActionHR, ActionOverload:
		if !a.Tap.Valid() || !a.Hold.Valid() {
			return fmt.Errorf("config: action kind %q requires tap and hold", a.Kind)
		}
	case ActionDoubleTap:
		if !a.Tap.Valid() || !a.Double.Valid() {
			return fmt.Errorf("config: action kind %q requires tap and double", a.Kind)
		}
	case ActionOneShot:
		if !a.Key.Valid() || !a.Key.IsModifier() {
			return fmt.Errorf("config: action kind %q requires a modifier key", a.Kind)
		}
	case ActionTapTo:
		if a.Layer == "" {
			return fmt.Errorf("config: action kind %q requires a layer", a.Kind)
		}
	case ActionSocd:
		if !a.This.Valid() || !a.Opposing.Valid() {
			return fmt.Errorf("config: action kind %q requires this and opposing", a.Kind)
		}
	case ActionPassword:
		if a.PasswordID == "" {
			return fmt.Errorf("config: action kind %q requires a password_id", a.Kind)
		}
	default:
		return fmt.Errorf("config: unknown action kind %q", a.Kind)
	}
	return nil
}
