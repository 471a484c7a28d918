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

//go:build linux

package emitter

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/keyplex/keyplex/internal/keycode"
	"golang.org/x/sys/unix"
)

// Linux uinput ioctl and event-type constants, matching
// linux/uinput.h / linux/input-event-codes.h. golang.org/x/sys/unix
// doesn't export these directly, so they're declared here.
const (
	evSyn = 0x00
	evKey = 0x01

	synReport = 0

	uiSetEvBit  = 0x40045564
	uiSetKeyBit = 0x40045565
	uiDevCreate = 0x5501
	uiDevDestroy = 0x5502
	uiDevSetup  = 0x405c5503

	uinputMaxNameSize = 80
	busUSB            = 0x03
)

// uinputSetup mirrors struct uinput_setup: struct input_id (4 uint16
// fields) + a fixed name buffer + ff_effects_max, with no implicit
// padding since every field is already naturally aligned.
type uinputSetup struct {
	Bustype   uint16
	Vendor    uint16
	Product   uint16
	Version   uint16
	Name      [uinputMaxNameSize]byte
	FFEffects uint32
}

// inputEvent mirrors struct input_event.
type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// uinputEmitter opens /dev/uinput, configures a virtual keyboard
// exposing every mapped KeyCode, and writes input_event records.
// Grounded on tscreen_posix.go's open/configure/defer-restore lifecycle
// shape and other_examples' uinput.go ioctl sequence, ported from
// syscall.Syscall to golang.org/x/sys/unix.
type uinputEmitter struct {
	mu   sync.Mutex
	fd   int
	name string
}

// Open creates and configures a uinput virtual keyboard device named
// name (e.g. "keyplex virtual keyboard").
func Open(name string) (Emitter, error) {
	fd, err := unix.Open("/dev/uinput", unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("emitter: open /dev/uinput: %w (is the user in the input group?)", err)
	}

	e := &uinputEmitter{fd: fd, name: name}
	if err := e.configure(); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return e, nil
}

func (e *uinputEmitter) configure() error {
	if err := e.ioctl(uiSetEvBit, evKey); err != nil {
		return fmt.Errorf("emitter: UI_SET_EVBIT: %w", err)
	}
	for _, code := range toLinux {
		if err := e.ioctl(uiSetKeyBit, uintptr(code)); err != nil {
			return fmt.Errorf("emitter: UI_SET_KEYBIT(%d): %w", code, err)
		}
	}

	var setup uinputSetup
	setup.Bustype = busUSB
	setup.Vendor = 0x4b50 // "KP"
	setup.Product = 0x0001
	setup.Version = 1
	copy(setup.Name[:], e.name)

	if err := e.ioctlPtr(uiDevSetup, unsafe.Pointer(&setup)); err != nil {
		return fmt.Errorf("emitter: UI_DEV_SETUP: %w", err)
	}
	if err := e.ioctl(uiDevCreate, 0); err != nil {
		return fmt.Errorf("emitter: UI_DEV_CREATE: %w", err)
	}
	time.Sleep(100 * time.Millisecond) // let udev create the device node
	return nil
}

// Emit writes one EV_KEY event. It does not sync; callers batch a
// logical transition's key codes and call Sync once, matching the
// dispatcher's "emit then sync" contract.
func (e *uinputEmitter) Emit(kc keycode.KeyCode, dir keycode.Direction) error {
	code, ok := ToLinux(kc)
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnmappedKey, kc)
	}
	value := int32(0)
	if dir == keycode.Press {
		value = 1
	}
	return e.write(evKey, code, value)
}

// Sync flushes pending events with SYN_REPORT.
func (e *uinputEmitter) Sync() error {
	return e.write(evSyn, synReport, 0)
}

// Close destroys the virtual device and closes the file descriptor.
func (e *uinputEmitter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ioctl(uiDevDestroy, 0)
	return unix.Close(e.fd)
}

func (e *uinputEmitter) write(evType, code uint16, value int32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	ev := inputEvent{
		Sec:   now.Unix(),
		Usec:  int64(now.Nanosecond() / 1000),
		Type:  evType,
		Code:  code,
		Value: value,
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, ev); err != nil {
		return fmt.Errorf("emitter: encode event: %w", err)
	}
	if _, err := unix.Write(e.fd, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %v", ErrHandleInvalid, err)
	}
	return nil
}

func (e *uinputEmitter) ioctl(req, val uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(e.fd), req, val)
	if errno != 0 {
		return errno
	}
	return nil
}

func (e *uinputEmitter) ioctlPtr(req uintptr, ptr unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(e.fd), req, uintptr(ptr))
	if errno != 0 {
		return errno
	}
	return nil
}
