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

import "github.com/keyplex/keyplex/internal/keycode"

// runeKeys maps a password to the restricted alphabet it can type
// directly: US-QWERTY unshifted runes. A rune typed with shift held
// maps through shiftedRuneKeys instead.
var runeKeys = map[rune]keycode.KeyCode{
	'a': keycode.A, 'b': keycode.B, 'c': keycode.C, 'd': keycode.D,
	'e': keycode.E, 'f': keycode.F, 'g': keycode.G, 'h': keycode.H,
	'i': keycode.I, 'j': keycode.J, 'k': keycode.K, 'l': keycode.L,
	'm': keycode.M, 'n': keycode.N, 'o': keycode.O, 'p': keycode.P,
	'q': keycode.Q, 'r': keycode.R, 's': keycode.S, 't': keycode.T,
	'u': keycode.U, 'v': keycode.V, 'w': keycode.W, 'x': keycode.X,
	'y': keycode.Y, 'z': keycode.Z,

	'0': keycode.Digit0, '1': keycode.Digit1, '2': keycode.Digit2,
	'3': keycode.Digit3, '4': keycode.Digit4, '5': keycode.Digit5,
	'6': keycode.Digit6, '7': keycode.Digit7, '8': keycode.Digit8,
	'9': keycode.Digit9,

	'-': keycode.Minus, '=': keycode.Equal, '[': keycode.LBracket,
	']': keycode.RBracket, '\\': keycode.Backslash, ';': keycode.Semicolon,
	'\'': keycode.Quote, ',': keycode.Comma, '.': keycode.Dot, '/': keycode.Slash,
	'`': keycode.Grave, ' ': keycode.Space,
}

var shiftedRuneKeys = map[rune]keycode.KeyCode{
	'A': keycode.A, 'B': keycode.B, 'C': keycode.C, 'D': keycode.D,
	'E': keycode.E, 'F': keycode.F, 'G': keycode.G, 'H': keycode.H,
	'I': keycode.I, 'J': keycode.J, 'K': keycode.K, 'L': keycode.L,
	'M': keycode.M, 'N': keycode.N, 'O': keycode.O, 'P': keycode.P,
	'Q': keycode.Q, 'R': keycode.R, 'S': keycode.S, 'T': keycode.T,
	'U': keycode.U, 'V': keycode.V, 'W': keycode.W, 'X': keycode.X,
	'Y': keycode.Y, 'Z': keycode.Z,

	'!': keycode.Digit1, '@': keycode.Digit2, '#': keycode.Digit3,
	'$': keycode.Digit4, '%': keycode.Digit5, '^': keycode.Digit6,
	'&': keycode.Digit7, '*': keycode.Digit8, '(': keycode.Digit9,
	')': keycode.Digit0,

	'_': keycode.Minus, '+': keycode.Equal, '{': keycode.LBracket,
	'}': keycode.RBracket, '|': keycode.Backslash, ':': keycode.Semicolon,
	'"': keycode.Quote, '<': keycode.Comma, '>': keycode.Dot, '?': keycode.Slash,
	'~': keycode.Grave,
}

// runeToKey resolves r to the physical key and shift state needed to
// type it with a direct scancode sequence. ok is false for any rune
// outside that restricted alphabet (dead keys, non-ASCII).
func runeToKey(r rune) (kc keycode.KeyCode, shift bool, ok bool) {
	if kc, ok = runeKeys[r]; ok {
		return kc, false, true
	}
	if kc, ok = shiftedRuneKeys[r]; ok {
		return kc, true, true
	}
	return keycode.None, false, false
}
