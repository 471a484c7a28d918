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

package daemon

import (
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/keyplex/keyplex/internal/config"
	"github.com/keyplex/keyplex/internal/device"
	"github.com/keyplex/keyplex/internal/emitter"
	"github.com/keyplex/keyplex/internal/ipc"
)

func newTestDaemon(t *testing.T, cfgPath string) *Daemon {
	t.Helper()
	d := &Daemon{
		cfgPath:   cfgPath,
		passwords: config.NewPasswordStore(t.TempDir()),
	}
	d.cfg.Store(&config.Config{TappingTermMS: config.DefaultTappingTermMS})

	src1 := device.NewFakeSource(4)
	src2 := device.NewFakeSource(4)
	w1 := newWorker(device.Keyboard{ID: "kb0", Name: "Keychron K2", Path: "/dev/input/event0", Source: src1}, passthroughConfig(), emitter.NewFake(), nil, &atomic.Bool{})
	w2 := newWorker(device.Keyboard{ID: "kb1", Name: "Generic 104-key", Path: "/dev/input/event1", Source: src2}, passthroughConfig(), emitter.NewFake(), nil, &atomic.Bool{})
	w2.enabled.Store(false)
	d.workers = []*worker{w1, w2}
	return d
}

func writeConfig(t *testing.T, tappingTermMS int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keyplex.yaml")
	contents := "tapping_term_ms: " + strconv.Itoa(tappingTermMS) + "\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestHandleRequestPing(t *testing.T) {
	d := newTestDaemon(t, "")
	resp := d.handleRequest(ipc.NewRequest(ipc.ReqPing))
	if resp.Kind != ipc.RespPong {
		t.Fatalf("got %v, want RespPong", resp.Kind)
	}
}

func TestHandleRequestListKeyboards(t *testing.T) {
	d := newTestDaemon(t, "")
	resp := d.handleRequest(ipc.NewRequest(ipc.ReqListKeyboards))
	if resp.Kind != ipc.RespKeyboardList {
		t.Fatalf("got kind %v, want RespKeyboardList", resp.Kind)
	}
	if len(resp.Keyboards) != 2 {
		t.Fatalf("got %d keyboards, want 2", len(resp.Keyboards))
	}
	if resp.Keyboards[0].HardwareID != "kb0" || !resp.Keyboards[0].Enabled {
		t.Fatalf("kb0 = %+v, want enabled", resp.Keyboards[0])
	}
	if resp.Keyboards[1].HardwareID != "kb1" || resp.Keyboards[1].Enabled {
		t.Fatalf("kb1 = %+v, want disabled", resp.Keyboards[1])
	}
}

func TestHandleRequestEnableDisableKeyboard(t *testing.T) {
	d := newTestDaemon(t, "")

	req := ipc.NewRequest(ipc.ReqEnableKeyboard)
	req.KeyboardID = "kb1"
	if resp := d.handleRequest(req); resp.Kind != ipc.RespOK {
		t.Fatalf("enable kb1: got %v, want RespOK", resp.Kind)
	}
	if !d.workerByID("kb1").enabled.Load() {
		t.Fatal("kb1 should be enabled after ReqEnableKeyboard")
	}

	req = ipc.NewRequest(ipc.ReqDisableKeyboard)
	req.KeyboardID = "kb0"
	if resp := d.handleRequest(req); resp.Kind != ipc.RespOK {
		t.Fatalf("disable kb0: got %v, want RespOK", resp.Kind)
	}
	if d.workerByID("kb0").enabled.Load() {
		t.Fatal("kb0 should be disabled after ReqDisableKeyboard")
	}
}

func TestHandleRequestEnableUnknownKeyboard(t *testing.T) {
	d := newTestDaemon(t, "")
	req := ipc.NewRequest(ipc.ReqEnableKeyboard)
	req.KeyboardID = "does-not-exist"
	resp := d.handleRequest(req)
	if resp.Kind != ipc.RespError {
		t.Fatalf("got %v, want RespError", resp.Kind)
	}
}

func TestHandleRequestSetPassword(t *testing.T) {
	d := newTestDaemon(t, "")
	req := ipc.NewRequest(ipc.ReqSetPassword)
	req.PasswordID = "wifi"
	req.Password = "hunter2"
	if resp := d.handleRequest(req); resp.Kind != ipc.RespOK {
		t.Fatalf("got %v, want RespOK", resp.Kind)
	}
	got, ok := d.lookupPassword("wifi")
	if !ok || got != "hunter2" {
		t.Fatalf("lookupPassword(wifi) = (%q, %v), want (hunter2, true)", got, ok)
	}
}

func TestHandleRequestReloadConfig(t *testing.T) {
	path := writeConfig(t, 175)
	d := newTestDaemon(t, path)

	resp := d.handleRequest(ipc.NewRequest(ipc.ReqReloadConfig))
	if resp.Kind != ipc.RespOK {
		t.Fatalf("got %v, want RespOK", resp.Kind)
	}
	if got := d.cfg.Load().TappingTermMS; got != 175 {
		t.Fatalf("TappingTermMS = %d, want 175", got)
	}

	select {
	case got := <-d.workers[0].reloadCh:
		if got.TappingTerm != 175*time.Millisecond {
			t.Fatalf("worker reload payload TappingTerm = %v, want 175ms", got.TappingTerm)
		}
	default:
		t.Fatal("reload should have queued a new EffectiveConfig on the worker's reload channel")
	}
}

func TestHandleRequestShutdownCancels(t *testing.T) {
	d := newTestDaemon(t, "")
	var canceled bool
	d.cancel = func() { canceled = true }

	resp := d.handleRequest(ipc.NewRequest(ipc.ReqShutdown))
	if resp.Kind != ipc.RespOK {
		t.Fatalf("got %v, want RespOK", resp.Kind)
	}
	if !canceled {
		t.Fatal("ReqShutdown should have invoked the cancel func")
	}
}

func TestHandleRequestUnknownKind(t *testing.T) {
	d := newTestDaemon(t, "")
	resp := d.handleRequest(ipc.Request{ID: "x", Kind: ipc.RequestKind("bogus")})
	if resp.Kind != ipc.RespError {
		t.Fatalf("got %v, want RespError", resp.Kind)
	}
}
