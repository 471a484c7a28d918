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

// Package keycode defines the logical key vocabulary that the rest of
// keyplex operates on: KeyCode (a QMK-inspired logical keycode, distinct
// from the kernel scancode that produced it) and ModifierMask (the set
// of modifiers considered held at any instant).
package keycode

import "fmt"

// KeyCode is an opaque, stable, hashable logical key identifier. It is
// intentionally a small value type: no cross-entity references use
// anything but KeyCode as a key.
type KeyCode uint16

// Direction is the half of a key event: press or release.
type Direction uint8

const (
	Release Direction = iota
	Press
)

func (d Direction) String() string {
	if d == Press {
		return "down"
	}
	return "up"
}

const (
	None KeyCode = iota

	// Letters
	A
	B
	C
	D
	E
	F
	G
	H
	I
	J
	K
	L
	M
	N
	O
	P
	Q
	R
	S
	T
	U
	V
	W
	X
	Y
	Z

	// Digits
	Digit0
	Digit1
	Digit2
	Digit3
	Digit4
	Digit5
	Digit6
	Digit7
	Digit8
	Digit9

	// Modifiers
	LCtrl
	LShift
	LAlt
	LGUI
	RCtrl
	RShift
	RAlt
	RGUI

	// Special keys
	Esc
	CapsLock
	Tab
	Space
	Enter
	Backspace
	Delete
	Grave
	Minus
	Equal
	LBracket
	RBracket
	Backslash
	Semicolon
	Quote
	Comma
	Dot
	Slash

	// Arrows
	Left
	Down
	Up
	Right

	// Function keys F1-F24
	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12
	F13
	F14
	F15
	F16
	F17
	F18
	F19
	F20
	F21
	F22
	F23
	F24

	// Navigation
	PageUp
	PageDown
	Home
	End
	Insert
	PrintScreen

	// Numpad
	KP0
	KP1
	KP2
	KP3
	KP4
	KP5
	KP6
	KP7
	KP8
	KP9
	KPSlash
	KPAsterisk
	KPMinus
	KPPlus
	KPEnter
	KPDot
	NumLock

	// Media
	Mute
	VolumeUp
	VolumeDown
	MediaPlayPause
	MediaStop
	MediaNext
	MediaPrev
	MediaSelect

	// System
	Power
	Sleep
	Wake
	Calculator
	MyComputer
	WWWSearch
	WWWHome
	WWWBack
	WWWForward
	WWWStop
	WWWRefresh
	WWWFavorites

	// Locking
	ScrollLock
	Pause

	// Application
	AppMenu
	Menu

	// Multimedia
	BrightnessUp
	BrightnessDown
	DisplayOff
	WLAN
	Bluetooth
	KeyboardLayout

	// International
	IntlBackslash
	IntlYen
	IntlRo

	// maxKeyCode marks the end of the defined range; keep it last.
	maxKeyCode
)

var names = map[KeyCode]string{
	None: "none", A: "A", B: "B", C: "C", D: "D", E: "E", F: "F", G: "G",
	H: "H", I: "I", J: "J", K: "K", L: "L", M: "M", N: "N", O: "O", P: "P",
	Q: "Q", R: "R", S: "S", T: "T", U: "U", V: "V", W: "W", X: "X", Y: "Y", Z: "Z",
	Digit0: "0", Digit1: "1", Digit2: "2", Digit3: "3", Digit4: "4",
	Digit5: "5", Digit6: "6", Digit7: "7", Digit8: "8", Digit9: "9",
	LCtrl: "LCtrl", LShift: "LShift", LAlt: "LAlt", LGUI: "LGUI",
	RCtrl: "RCtrl", RShift: "RShift", RAlt: "RAlt", RGUI: "RGUI",
	Esc: "Esc", CapsLock: "CapsLock", Tab: "Tab", Space: "Space",
	Enter: "Enter", Backspace: "Backspace", Delete: "Delete", Grave: "Grave",
	Minus: "Minus", Equal: "Equal", LBracket: "LBracket", RBracket: "RBracket",
	Backslash: "Backslash", Semicolon: "Semicolon", Quote: "Quote",
	Comma: "Comma", Dot: "Dot", Slash: "Slash",
	Left: "Left", Down: "Down", Up: "Up", Right: "Right",
	F1: "F1", F2: "F2", F3: "F3", F4: "F4", F5: "F5", F6: "F6", F7: "F7",
	F8: "F8", F9: "F9", F10: "F10", F11: "F11", F12: "F12", F13: "F13",
	F14: "F14", F15: "F15", F16: "F16", F17: "F17", F18: "F18", F19: "F19",
	F20: "F20", F21: "F21", F22: "F22", F23: "F23", F24: "F24",
	PageUp: "PageUp", PageDown: "PageDown", Home: "Home", End: "End",
	Insert: "Insert", PrintScreen: "PrintScreen",
	KP0: "KP0", KP1: "KP1", KP2: "KP2", KP3: "KP3", KP4: "KP4", KP5: "KP5",
	KP6: "KP6", KP7: "KP7", KP8: "KP8", KP9: "KP9", KPSlash: "KPSlash",
	KPAsterisk: "KPAsterisk", KPMinus: "KPMinus", KPPlus: "KPPlus",
	KPEnter: "KPEnter", KPDot: "KPDot", NumLock: "NumLock",
	Mute: "Mute", VolumeUp: "VolumeUp", VolumeDown: "VolumeDown",
	MediaPlayPause: "MediaPlayPause", MediaStop: "MediaStop",
	MediaNext: "MediaNext", MediaPrev: "MediaPrev", MediaSelect: "MediaSelect",
	Power: "Power", Sleep: "Sleep", Wake: "Wake", Calculator: "Calculator",
	MyComputer: "MyComputer", WWWSearch: "WWWSearch", WWWHome: "WWWHome",
	WWWBack: "WWWBack", WWWForward: "WWWForward", WWWStop: "WWWStop",
	WWWRefresh: "WWWRefresh", WWWFavorites: "WWWFavorites",
	ScrollLock: "ScrollLock", Pause: "Pause",
	AppMenu: "AppMenu", Menu: "Menu",
	BrightnessUp: "BrightnessUp", BrightnessDown: "BrightnessDown",
	DisplayOff: "DisplayOff", WLAN: "WLAN", Bluetooth: "Bluetooth",
	KeyboardLayout: "KeyboardLayout",
	IntlBackslash:  "IntlBackslash", IntlYen: "IntlYen", IntlRo: "IntlRo",
}

// String renders a KeyCode using its QMK-ish name, or a numeric fallback
// for anything outside the known range (e.g. a scancode that failed to
// resolve and is being logged as-is).
func (k KeyCode) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("KeyCode(%d)", uint16(k))
}

// Valid reports whether k is one of the keycodes this package defines.
func (k KeyCode) Valid() bool {
	return k > None && k < maxKeyCode
}

// IsModifier reports whether k is one of the eight modifier keys.
func (k KeyCode) IsModifier() bool {
	switch k {
	case LCtrl, LShift, LAlt, LGUI, RCtrl, RShift, RAlt, RGUI:
		return true
	default:
		return false
	}
}

// Mod returns the ModifierMask bit corresponding to k. It panics if k is
// not a modifier key; callers must check IsModifier first.
func (k KeyCode) Mod() ModifierMask {
	switch k {
	case LCtrl:
		return ModLCtrl
	case LShift:
		return ModLShift
	case LAlt:
		return ModLAlt
	case LGUI:
		return ModLGUI
	case RCtrl:
		return ModRCtrl
	case RShift:
		return ModRShift
	case RAlt:
		return ModRAlt
	case RGUI:
		return ModRGUI
	default:
		panic(fmt.Sprintf("keycode: %v is not a modifier", k))
	}
}
