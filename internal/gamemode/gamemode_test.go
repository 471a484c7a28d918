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

package gamemode

import (
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
)

// withFakeProc points procRoot at a scratch directory for the duration
// of the test and restores it afterward.
func withFakeProc(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := procRoot
	procRoot = dir
	t.Cleanup(func() { procRoot = old })
	return dir
}

func writeProcFile(t *testing.T, root string, pid int, leaf, content string) {
	t.Helper()
	dir := filepath.Join(root, strconv.Itoa(pid))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, leaf), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCheckIsGameEnvFindsMarker(t *testing.T) {
	root := withFakeProc(t)
	writeProcFile(t, root, 100, "environ", "PATH=/usr/bin\x00IS_GAME=1\x00HOME=/root\x00")

	if !checkIsGameEnv(100) {
		t.Error("expected IS_GAME=1 to be detected")
	}
}

func TestCheckIsGameEnvAbsentMarker(t *testing.T) {
	root := withFakeProc(t)
	writeProcFile(t, root, 101, "environ", "PATH=/usr/bin\x00HOME=/root\x00")

	if checkIsGameEnv(101) {
		t.Error("expected no game marker to be found")
	}
}

func TestCheckIsGameEnvMissingProcess(t *testing.T) {
	withFakeProc(t)
	if checkIsGameEnv(999) {
		t.Error("expected false for a process with no environ file")
	}
}

func TestCheckProcessTreeFindsGamescopeWrapper(t *testing.T) {
	root := withFakeProc(t)
	// 300 (the game) -> 200 (gamescope wrapper) -> 1 (init).
	writeProcFile(t, root, 300, "cmdline", "mygame\x00--fullscreen\x00")
	writeProcFile(t, root, 300, "stat", "300 (mygame) S 200 300 300 0 -1 4194304")
	writeProcFile(t, root, 200, "cmdline", "gamescope\x00-w\x001920\x00")
	writeProcFile(t, root, 200, "stat", "200 (gamescope) S 1 200 200 0 -1 4194304")

	hasGamescope, hasGamemode := checkProcessTree(300)
	if !hasGamescope {
		t.Error("expected gamescope ancestor to be found")
	}
	if hasGamemode {
		t.Error("did not expect a gamemode ancestor")
	}
}

func TestCheckProcessTreeNoWrapper(t *testing.T) {
	root := withFakeProc(t)
	writeProcFile(t, root, 400, "cmdline", "plainapp\x00")
	writeProcFile(t, root, 400, "stat", "400 (plainapp) S 1 400 400 0 -1 4194304")

	hasGamescope, hasGamemode := checkProcessTree(400)
	if hasGamescope || hasGamemode {
		t.Error("expected no wrapper detected")
	}
}

func TestCheckProcessTreeHandlesParensInCommName(t *testing.T) {
	root := withFakeProc(t)
	// A comm field containing its own parens/spaces, as a hostile or
	// unusual process name might have; the parser must anchor on the
	// last ')' rather than the first.
	writeProcFile(t, root, 500, "cmdline", "weird (name) proc\x00")
	writeProcFile(t, root, 500, "stat", "500 (weird (name) proc) S 1 500 500 0 -1 4194304")

	ppid, ok := parentPID(500)
	if !ok || ppid != 1 {
		t.Errorf("parentPID = %d, %v, want 1, true", ppid, ok)
	}
}

func TestParentPIDStopsAtInit(t *testing.T) {
	root := withFakeProc(t)
	writeProcFile(t, root, 600, "stat", "600 (x) S 1 600 600 0 -1 4194304")

	ppid, ok := parentPID(600)
	if !ok || ppid != 1 {
		t.Fatalf("parentPID = %d, %v, want 1, true", ppid, ok)
	}
}

func TestShouldEnableAppID(t *testing.T) {
	p := New(DefaultConfig(), &atomic.Bool{})
	if !p.shouldEnable(WindowInfo{AppID: "gamescope"}) {
		t.Error("expected app_id gamescope to enable game mode")
	}
	if p.shouldEnable(WindowInfo{AppID: "firefox"}) {
		t.Error("did not expect firefox to enable game mode")
	}
}

func TestShouldEnableEnvMarker(t *testing.T) {
	root := withFakeProc(t)
	writeProcFile(t, root, 700, "environ", "IS_GAME=1\x00")

	p := New(DefaultConfig(), &atomic.Bool{})
	if !p.shouldEnable(WindowInfo{AppID: "some-launcher", PID: 700}) {
		t.Error("expected IS_GAME=1 to enable game mode")
	}
}

func TestShouldEnableNoSignal(t *testing.T) {
	withFakeProc(t)
	p := New(DefaultConfig(), &atomic.Bool{})
	if p.shouldEnable(WindowInfo{AppID: "firefox", PID: 1}) {
		t.Error("did not expect game mode with no signal")
	}
}

func TestParseFocusedWindowOutput(t *testing.T) {
	text := "Focused window:\n  App ID: \"org.gnome.Console\"\n  Title: \"Terminal\"\n  PID: 4242\n"
	info := parseFocusedWindowOutput(text)
	if info.AppID != "org.gnome.Console" || info.PID != 4242 {
		t.Errorf("parseFocusedWindowOutput = %+v, want AppID=org.gnome.Console PID=4242", info)
	}
}

func TestParseFocusedWindowOutputMalformedPID(t *testing.T) {
	text := "App ID: \"x\"\nPID: not-a-number\n"
	info := parseFocusedWindowOutput(text)
	if info.AppID != "x" || info.PID != 0 {
		t.Errorf("parseFocusedWindowOutput = %+v, want AppID=x PID=0", info)
	}
}

func TestProberActiveReflectsFlag(t *testing.T) {
	flag := &atomic.Bool{}
	p := New(DefaultConfig(), flag)
	if p.Active() {
		t.Error("expected inactive at start")
	}
	flag.Store(true)
	if !p.Active() {
		t.Error("expected Active to reflect an external flag flip")
	}
}
