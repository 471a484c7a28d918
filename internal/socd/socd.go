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

// Package socd resolves Simultaneous Opposite Cardinal Direction
// conflicts: pairs of keys (e.g. W/S) that are never meant to be
// logically down at the same time even when both are physically held.
package socd

import "github.com/keyplex/keyplex/internal/keycode"

// side identifies which half of a pair is referred to.
type side uint8

const (
	sideNone side = iota
	sideThis
	sideOpposing
)

// Pair tracks the physical/logical state of one SOCD pair. It implements
// last-input-priority with neutral-on-both: whichever side was pressed
// most recently is the one logically down, and releasing it un-masks the
// older side if it is still physically held.
type Pair struct {
	This, Opposing keycode.KeyCode

	thisHeld     bool
	opposingHeld bool
	down         side // which side is currently logically emitted
}

// NewPair returns a Pair resolver for the given key pair.
func NewPair(this, opposing keycode.KeyCode) *Pair {
	return &Pair{This: this, Opposing: opposing}
}

// Resolution describes the key transitions the caller must emit, in
// order, as a result of a single physical press or release.
type Resolution struct {
	Releases []keycode.KeyCode
	Presses  []keycode.KeyCode
}

func (r Resolution) empty() bool { return len(r.Releases) == 0 && len(r.Presses) == 0 }

// Press records a physical press of one side of the pair and returns the
// logical transitions it causes.
func (p *Pair) Press(which keycode.KeyCode) Resolution {
	switch which {
	case p.This:
		p.thisHeld = true
	case p.Opposing:
		p.opposingHeld = true
	default:
		return Resolution{}
	}

	pressed := sideThis
	if which == p.Opposing {
		pressed = sideOpposing
	}

	if p.down == pressed {
		return Resolution{}
	}

	var res Resolution
	if p.down != sideNone {
		res.Releases = append(res.Releases, p.keyFor(p.down))
	}
	res.Presses = append(res.Presses, which)
	p.down = pressed
	return res
}

// Release records a physical release of one side of the pair and returns
// the logical transitions it causes: the released side's logical key-up
// (if it was the one emitting), and a re-press of the other side if it
// is still physically held.
func (p *Pair) Release(which keycode.KeyCode) Resolution {
	var released side
	switch which {
	case p.This:
		p.thisHeld = false
		released = sideThis
	case p.Opposing:
		p.opposingHeld = false
		released = sideOpposing
	default:
		return Resolution{}
	}

	if p.down != released {
		return Resolution{}
	}

	var res Resolution
	res.Releases = append(res.Releases, which)
	p.down = sideNone

	other := p.otherSide(released)
	if p.heldFor(other) {
		res.Presses = append(res.Presses, p.keyFor(other))
		p.down = other
	}
	return res
}

func (p *Pair) keyFor(s side) keycode.KeyCode {
	if s == sideThis {
		return p.This
	}
	return p.Opposing
}

func (p *Pair) otherSide(s side) side {
	if s == sideThis {
		return sideOpposing
	}
	return sideThis
}

func (p *Pair) heldFor(s side) bool {
	if s == sideThis {
		return p.thisHeld
	}
	return p.opposingHeld
}

// Active reports which key, if any, is currently logically down.
func (p *Pair) Active() (kc keycode.KeyCode, ok bool) {
	if p.down == sideNone {
		return keycode.None, false
	}
	return p.keyFor(p.down), true
}
