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

// Package gamemode watches compositor window-focus changes and flips an
// atomic flag when the focused window looks like a game, so the
// dispatcher can switch to the game-mode remap overlay. Ported from
// original_source/src/niri.rs, generalized from a hardcoded "niri msg"
// invocation to a configurable focused-window command.
package gamemode

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

// WindowInfo is what a focused-window query resolves to. Either field
// may be zero if the compositor's own query failed or returned output
// this package couldn't parse.
type WindowInfo struct {
	AppID string
	PID   int
}

// restartDelay is how long the prober waits before respawning the event
// stream command after it exits or fails to start, matching the fixed
// 5-second backoff original_source/src/niri.rs uses.
const restartDelay = 5 * time.Second

// processTreeDepth bounds the ancestor walk in checkProcessTree,
// matching the original's fixed 10-level cap.
const processTreeDepth = 10

// Config tunes the prober's compositor commands and detection rules.
type Config struct {
	// EventStreamCmd streams one line per window-focus change to
	// stdout; FocusLinePrefix identifies those lines. Defaults to
	// "niri msg event-stream" / "Window focus changed:".
	EventStreamCmd   []string
	FocusLinePrefix  string
	FocusedWindowCmd []string

	// GameAppIDs are app IDs that unconditionally count as a game.
	// There is no built-in app ID check; DefaultConfig lists "gamescope".
	GameAppIDs []string
}

// DefaultConfig returns the niri-flavored defaults.
func DefaultConfig() Config {
	return Config{
		EventStreamCmd:   []string{"niri", "msg", "event-stream"},
		FocusLinePrefix:  "Window focus changed:",
		FocusedWindowCmd: []string{"niri", "msg", "focused-window"},
		GameAppIDs:       []string{"gamescope"},
	}
}

// Prober runs the compositor focus-change monitor and exposes the
// current game-mode decision through an atomic.Bool.
type Prober struct {
	cfg    Config
	active *atomic.Bool
}

// New returns a Prober that flips active whenever the focused window's
// game-ness changes. active must not be nil; the dispatcher reads the
// same pointer directly.
func New(cfg Config, active *atomic.Bool) *Prober {
	return &Prober{cfg: cfg, active: active}
}

// Active reports the prober's current decision.
func (p *Prober) Active() bool { return p.active.Load() }

// Run blocks, restarting the event-stream command on failure, until ctx
// is canceled. It is meant to run as one goroutine in the daemon's
// errgroup.
func (p *Prober) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := p.watchOnce(ctx); err != nil {
			glog.Warningf("gamemode: event stream: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(restartDelay):
		}
	}
}

// watchOnce spawns the event-stream command once and processes lines
// until it exits, ctx is canceled, or the pipe breaks.
func (p *Prober) watchOnce(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, p.cfg.EventStreamCmd[0], p.cfg.EventStreamCmd[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	defer cmd.Wait()

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(strings.TrimSpace(line), p.cfg.FocusLinePrefix) {
			continue
		}
		info := p.focusedWindow(ctx)
		game := p.shouldEnable(info)
		if game != p.active.Swap(game) {
			glog.V(1).Infof("gamemode: focus changed, app_id=%q pid=%d, game=%v", info.AppID, info.PID, game)
		}
	}
	return scanner.Err()
}

// focusedWindow runs the focused-window query and parses its "App ID:"
// and "PID:" lines, the same textual format the original Rust source
// scans.
func (p *Prober) focusedWindow(ctx context.Context) WindowInfo {
	cmd := exec.CommandContext(ctx, p.cfg.FocusedWindowCmd[0], p.cfg.FocusedWindowCmd[1:]...)
	out, err := cmd.Output()
	if err != nil {
		return WindowInfo{}
	}
	return parseFocusedWindowOutput(string(out))
}

// parseFocusedWindowOutput extracts "App ID:" and "PID:" lines from a
// `niri msg focused-window`-shaped report.
func parseFocusedWindowOutput(text string) WindowInfo {
	var info WindowInfo
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "App ID:"):
			id := strings.TrimSpace(strings.TrimPrefix(trimmed, "App ID:"))
			info.AppID = strings.Trim(id, `"`)
		case strings.HasPrefix(trimmed, "PID:"):
			pidStr := strings.TrimSpace(strings.TrimPrefix(trimmed, "PID:"))
			if pid, err := strconv.Atoi(pidStr); err == nil {
				info.PID = pid
			}
		}
	}
	return info
}

// shouldEnable applies the three heuristics original_source/src/niri.rs
// combines: a known game app ID, an IS_GAME=1 environment marker, or a
// gamescope/gamemode wrapper somewhere in the process's ancestor chain.
func (p *Prober) shouldEnable(info WindowInfo) bool {
	for _, id := range p.cfg.GameAppIDs {
		if info.AppID == id {
			return true
		}
	}
	if info.PID == 0 {
		return false
	}
	if checkIsGameEnv(info.PID) {
		return true
	}
	hasGamescope, hasGamemode := checkProcessTree(info.PID)
	return hasGamescope || hasGamemode
}

// checkIsGameEnv reports whether pid's environment carries IS_GAME=1,
// an explicit escape hatch for titles a generic heuristic can't
// recognize.
func checkIsGameEnv(pid int) bool {
	data, err := os.ReadFile(procPath(pid, "environ"))
	if err != nil {
		return false
	}
	for _, v := range strings.Split(string(data), "\x00") {
		if v == "IS_GAME=1" {
			return true
		}
	}
	return false
}

// checkProcessTree walks up to processTreeDepth ancestors of pid,
// inspecting each one's cmdline for a gamescope or gamemode wrapper.
func checkProcessTree(pid int) (hasGamescope, hasGamemode bool) {
	current := pid
	for i := 0; i < processTreeDepth; i++ {
		cmdline, err := os.ReadFile(procPath(current, "cmdline"))
		if err == nil {
			lower := strings.ToLower(string(cmdline))
			if strings.Contains(lower, "gamescope") || strings.Contains(lower, "custom-gamescope") {
				hasGamescope = true
			}
			if strings.Contains(lower, "gamemode") {
				hasGamemode = true
			}
		}

		parent, ok := parentPID(current)
		if !ok || parent <= 1 {
			break
		}
		current = parent
	}
	return hasGamescope, hasGamemode
}

// parentPID reads /proc/<pid>/stat and extracts the parent PID field.
// The comm field is parenthesized and may itself contain spaces or
// parens, so the split anchors on the last ')' rather than splitting on
// whitespace from the start, matching the original's rsplitn approach.
func parentPID(pid int) (int, bool) {
	data, err := os.ReadFile(procPath(pid, "stat"))
	if err != nil {
		return 0, false
	}
	idx := strings.LastIndexByte(string(data), ')')
	if idx < 0 || idx+1 >= len(data) {
		return 0, false
	}
	fields := strings.Fields(string(data[idx+1:]))
	// fields[0] is state, fields[1] is ppid.
	if len(fields) < 2 {
		return 0, false
	}
	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, false
	}
	return ppid, true
}

// procRoot is overridden in tests to point at a fabricated directory
// tree instead of the real /proc.
var procRoot = "/proc"

func procPath(pid int, leaf string) string {
	return procRoot + "/" + strconv.Itoa(pid) + "/" + leaf
}
