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

package device

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const (
	evKey = 0x01

	eviocgrab = 0x40044590 // EVIOCGRAB
)

// rawInputEvent mirrors struct input_event, matching the layout
// internal/emitter's uinput side writes.
type rawInputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

const rawInputEventSize = 24

// evdevSource reads /dev/input/eventN and optionally grabs it
// exclusively via EVIOCGRAB, the same one-ioctl-then-blocking-read
// lifecycle shape as tscreen_posix.go's terminal raw-mode setup
// followed by a read loop.
type evdevSource struct {
	fd     int
	ch     chan RawEvent
	done   chan struct{}
}

// OpenEvdev opens path (e.g. "/dev/input/event3") and, if grab is
// true, takes exclusive ownership of the device so other processes
// (and the kernel's own passthrough) stop seeing its events.
func OpenEvdev(path string, grab bool) (Source, error) {
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("device: open %s: %w", path, err)
	}
	if grab {
		if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), eviocgrab, 1); errno != 0 {
			unix.Close(fd)
			return nil, fmt.Errorf("device: EVIOCGRAB %s: %w", path, errno)
		}
	}

	s := &evdevSource{fd: fd, ch: make(chan RawEvent, 64), done: make(chan struct{})}
	go s.readLoop()
	return s, nil
}

func (s *evdevSource) readLoop() {
	defer close(s.ch)
	buf := make([]byte, rawInputEventSize)
	for {
		n, err := unix.Read(s.fd, buf)
		if err != nil || n != rawInputEventSize {
			return
		}
		var ev rawInputEvent
		if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &ev); err != nil {
			continue
		}
		if ev.Type != evKey {
			continue
		}
		select {
		case s.ch <- RawEvent{
			Scancode:  ev.Code,
			Value:     Value(ev.Value),
			Timestamp: time.Unix(ev.Sec, ev.Usec*1000),
		}:
		case <-s.done:
			return
		}
	}
}

func (s *evdevSource) Events() <-chan RawEvent {
	return s.ch
}

func (s *evdevSource) Close() error {
	close(s.done)
	unix.Syscall(unix.SYS_IOCTL, uintptr(s.fd), eviocgrab, 0)
	return unix.Close(s.fd)
}

// Enumerate lists /dev/input/eventN devices and their kernel-reported
// names, reading /sys/class/input/eventN/device/name the way udev
// itself does rather than issuing an EVIOCGNAME ioctl per candidate.
func Enumerate() ([]Keyboard, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, fmt.Errorf("device: enumerate: %w", err)
	}

	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "event") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out []Keyboard
	for _, n := range names {
		nameBytes, err := os.ReadFile(filepath.Join("/sys/class/input", n, "device", "name"))
		if err != nil {
			continue
		}
		out = append(out, Keyboard{
			ID:   n,
			Name: strings.TrimSpace(string(nameBytes)),
			Path: filepath.Join("/dev/input", n),
		})
	}
	return out, nil
}
