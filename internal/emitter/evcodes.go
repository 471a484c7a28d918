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

import "github.com/keyplex/keyplex/internal/keycode"

// linuxKeyCode values are Linux's <linux/input-event-codes.h> KEY_*
// constants, the vocabulary both /dev/input/eventN reports in and
// /dev/uinput expects for EV_KEY events.
const (
	keyEsc        = 1
	key1          = 2
	key2          = 3
	key3          = 4
	key4          = 5
	key5          = 6
	key6          = 7
	key7          = 8
	key8          = 9
	key9          = 10
	key0          = 11
	keyMinus      = 12
	keyEqual      = 13
	keyBackspace  = 14
	keyTab        = 15
	keyQ          = 16
	keyW          = 17
	keyE          = 18
	keyR          = 19
	keyT          = 20
	keyY          = 21
	keyU          = 22
	keyI          = 23
	keyO          = 24
	keyP          = 25
	keyLeftBrace  = 26
	keyRightBrace = 27
	keyEnter      = 28
	keyLeftCtrl   = 29
	keyA          = 30
	keyS          = 31
	keyD          = 32
	keyF          = 33
	keyG          = 34
	keyH          = 35
	keyJ          = 36
	keyK          = 37
	keyL          = 38
	keySemicolon  = 39
	keyApostrophe = 40
	keyGrave      = 41
	keyLeftShift  = 42
	keyBackslash  = 43
	keyZ          = 44
	keyX          = 45
	keyC          = 46
	keyV          = 47
	keyB          = 48
	keyN          = 49
	keyM          = 50
	keyComma      = 51
	keyDot        = 52
	keySlash      = 53
	keyRightShift = 54
	keyKPAsterisk = 55
	keyLeftAlt    = 56
	keySpace      = 57
	keyCapsLock   = 58
	keyF1         = 59
	keyF2         = 60
	keyF3         = 61
	keyF4         = 62
	keyF5         = 63
	keyF6         = 64
	keyF7         = 65
	keyF8         = 66
	keyF9         = 67
	keyF10        = 68
	keyNumLock    = 69
	keyScrollLock = 70
	keyKP7        = 71
	keyKP8        = 72
	keyKP9        = 73
	keyKPMinus    = 74
	keyKP4        = 75
	keyKP5        = 76
	keyKP6        = 77
	keyKPPlus     = 78
	keyKP1        = 79
	keyKP2        = 80
	keyKP3        = 81
	keyKP0        = 82
	keyKPDot      = 83
	keyIntlRo     = 89
	keyF11        = 87
	keyF12        = 88
	keyIntlYen    = 124
	keyKPEnter    = 96
	keyRightCtrl  = 97
	keyKPSlash    = 98
	keyRightAlt   = 100
	keyHome       = 102
	keyUp         = 103
	keyPageUp     = 104
	keyLeft       = 105
	keyRight      = 106
	keyEnd        = 107
	keyDown       = 108
	keyPageDown   = 109
	keyInsert     = 110
	keyDelete     = 111
	keyMute       = 113
	keyVolumeDown = 114
	keyVolumeUp   = 115
	keyPower      = 116
	keyPause      = 119
	keyLeftMeta   = 125
	keyRightMeta  = 126
	keyMenu       = 127
	keySleep      = 142
	keyWake       = 143
	keyWWWSearch       = 217
	keyBrightnessDown = 224
	keyBrightnessUp   = 225
	keyIntlBackslash  = 86
	keyF13        = 183
	keyF14        = 184
	keyF15        = 185
	keyF16        = 186
	keyF17        = 187
	keyF18        = 188
	keyF19        = 189
	keyF20        = 190
	keyF21        = 191
	keyF22        = 192
	keyF23        = 193
	keyF24        = 194
	keyPrintScreen    = 99
	keyCalc           = 140
	keyWWWHome        = 172
	keyWWWBack        = 158
	keyWWWForward     = 159
	keyWWWStop        = 128
	keyWWWRefresh     = 173
	keyWWWFavorites   = 156
	keyMyComputer     = 157
	keyPlayPause      = 164
	keyStopCD         = 166
	keyNextSong       = 163
	keyPrevSong       = 165
	keySelect         = 353
	keyDisplayToggle  = 227
	keyWLAN           = 238
	keyBluetooth      = 237
	keyKbdLayout      = 584
)

var toLinux = map[keycode.KeyCode]uint16{
	keycode.A: keyA, keycode.B: keyB, keycode.C: keyC, keycode.D: keyD,
	keycode.E: keyE, keycode.F: keyF, keycode.G: keyG, keycode.H: keyH,
	keycode.I: keyI, keycode.J: keyJ, keycode.K: keyK, keycode.L: keyL,
	keycode.M: keyM, keycode.N: keyN, keycode.O: keyO, keycode.P: keyP,
	keycode.Q: keyQ, keycode.R: keyR, keycode.S: keyS, keycode.T: keyT,
	keycode.U: keyU, keycode.V: keyV, keycode.W: keyW, keycode.X: keyX,
	keycode.Y: keyY, keycode.Z: keyZ,

	keycode.Digit0: key0, keycode.Digit1: key1, keycode.Digit2: key2,
	keycode.Digit3: key3, keycode.Digit4: key4, keycode.Digit5: key5,
	keycode.Digit6: key6, keycode.Digit7: key7, keycode.Digit8: key8,
	keycode.Digit9: key9,

	keycode.LCtrl: keyLeftCtrl, keycode.LShift: keyLeftShift,
	keycode.LAlt: keyLeftAlt, keycode.LGUI: keyLeftMeta,
	keycode.RCtrl: keyRightCtrl, keycode.RShift: keyRightShift,
	keycode.RAlt: keyRightAlt, keycode.RGUI: keyRightMeta,

	keycode.Esc: keyEsc, keycode.CapsLock: keyCapsLock, keycode.Tab: keyTab,
	keycode.Space: keySpace, keycode.Enter: keyEnter, keycode.Backspace: keyBackspace,
	keycode.Delete: keyDelete, keycode.Grave: keyGrave, keycode.Minus: keyMinus,
	keycode.Equal: keyEqual, keycode.LBracket: keyLeftBrace, keycode.RBracket: keyRightBrace,
	keycode.Backslash: keyBackslash, keycode.Semicolon: keySemicolon,
	keycode.Quote: keyApostrophe, keycode.Comma: keyComma, keycode.Dot: keyDot,
	keycode.Slash: keySlash,

	keycode.Left: keyLeft, keycode.Down: keyDown, keycode.Up: keyUp, keycode.Right: keyRight,

	keycode.F1: keyF1, keycode.F2: keyF2, keycode.F3: keyF3, keycode.F4: keyF4,
	keycode.F5: keyF5, keycode.F6: keyF6, keycode.F7: keyF7, keycode.F8: keyF8,
	keycode.F9: keyF9, keycode.F10: keyF10, keycode.F11: keyF11, keycode.F12: keyF12,
	keycode.F13: keyF13, keycode.F14: keyF14, keycode.F15: keyF15, keycode.F16: keyF16,
	keycode.F17: keyF17, keycode.F18: keyF18, keycode.F19: keyF19, keycode.F20: keyF20,
	keycode.F21: keyF21, keycode.F22: keyF22, keycode.F23: keyF23, keycode.F24: keyF24,

	keycode.PageUp: keyPageUp, keycode.PageDown: keyPageDown, keycode.Home: keyHome,
	keycode.End: keyEnd, keycode.Insert: keyInsert, keycode.PrintScreen: keyPrintScreen,

	keycode.KP0: keyKP0, keycode.KP1: keyKP1, keycode.KP2: keyKP2, keycode.KP3: keyKP3,
	keycode.KP4: keyKP4, keycode.KP5: keyKP5, keycode.KP6: keyKP6, keycode.KP7: keyKP7,
	keycode.KP8: keyKP8, keycode.KP9: keyKP9, keycode.KPSlash: keyKPSlash,
	keycode.KPAsterisk: keyKPAsterisk, keycode.KPMinus: keyKPMinus, keycode.KPPlus: keyKPPlus,
	keycode.KPEnter: keyKPEnter, keycode.KPDot: keyKPDot, keycode.NumLock: keyNumLock,

	keycode.Mute: keyMute, keycode.VolumeUp: keyVolumeUp, keycode.VolumeDown: keyVolumeDown,
	keycode.MediaPlayPause: keyPlayPause, keycode.MediaStop: keyStopCD,
	keycode.MediaNext: keyNextSong, keycode.MediaPrev: keyPrevSong, keycode.MediaSelect: keySelect,

	keycode.Power: keyPower, keycode.Sleep: keySleep, keycode.Wake: keyWake,
	keycode.Calculator: keyCalc, keycode.MyComputer: keyMyComputer,
	keycode.WWWSearch: keyWWWSearch, keycode.WWWHome: keyWWWHome, keycode.WWWBack: keyWWWBack,
	keycode.WWWForward: keyWWWForward, keycode.WWWStop: keyWWWStop,
	keycode.WWWRefresh: keyWWWRefresh, keycode.WWWFavorites: keyWWWFavorites,

	keycode.ScrollLock: keyScrollLock, keycode.Pause: keyPause,

	keycode.AppMenu: keyMenu, keycode.Menu: keyMenu,

	keycode.BrightnessUp: keyBrightnessUp, keycode.BrightnessDown: keyBrightnessDown,
	keycode.DisplayOff: keyDisplayToggle, keycode.WLAN: keyWLAN,
	keycode.Bluetooth: keyBluetooth, keycode.KeyboardLayout: keyKbdLayout,

	keycode.IntlBackslash: keyIntlBackslash, keycode.IntlYen: keyIntlYen, keycode.IntlRo: keyIntlRo,
}

var fromLinux map[uint16]keycode.KeyCode

func init() {
	fromLinux = make(map[uint16]keycode.KeyCode, len(toLinux))
	for kc, code := range toLinux {
		fromLinux[code] = kc
	}
}

// ToLinux maps a logical KeyCode to the Linux evdev/uinput KEY_* code.
func ToLinux(kc keycode.KeyCode) (uint16, bool) {
	code, ok := toLinux[kc]
	return code, ok
}

// FromLinux maps a Linux evdev KEY_* code back to a logical KeyCode.
func FromLinux(code uint16) (keycode.KeyCode, bool) {
	kc, ok := fromLinux[code]
	return kc, ok
}
