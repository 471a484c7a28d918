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
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/keyplex/keyplex/internal/config"
	"github.com/keyplex/keyplex/internal/device"
	"github.com/keyplex/keyplex/internal/emitter"
	"github.com/keyplex/keyplex/internal/pipeline"
)

// tickInterval bounds how stale a pending mod-tap or double-tap
// resolution can get before the dispatcher notices its deadline passed.
const tickInterval = 5 * time.Millisecond

// worker owns one physical keyboard end to end: its device source, its
// dispatcher, and the enabled flag ReqEnableKeyboard/ReqDisableKeyboard
// flips. Only the atomic flag and reload channel are touched from
// outside run's goroutine; the Dispatcher itself is not safe for
// concurrent use, so a config reload is delivered as a message rather
// than a direct SetConfig call from the watcher/IPC goroutine.
type worker struct {
	id       string
	name     string
	path     string
	source   device.Source
	disp     *pipeline.Dispatcher
	enabled  atomic.Bool
	reloadCh chan *config.EffectiveConfig
}

func newWorker(kb device.Keyboard, cfg *config.EffectiveConfig, emit emitter.Emitter, lookupPassword pipeline.PasswordLookup, gameMode *atomic.Bool) *worker {
	w := &worker{
		id:       kb.ID,
		name:     kb.Name,
		path:     kb.Path,
		source:   kb.Source,
		disp:     pipeline.New(cfg, emit, emitter.FromLinux, lookupPassword, gameMode),
		reloadCh: make(chan *config.EffectiveConfig, 1),
	}
	w.enabled.Store(true)
	return w
}

// reload hands cfg to the worker's own goroutine for SetConfig, dropping
// a stale pending reload in favor of the newer one rather than
// blocking the caller or queueing every intermediate edit.
func (w *worker) reload(cfg *config.EffectiveConfig) {
	select {
	case w.reloadCh <- cfg:
	default:
		select {
		case <-w.reloadCh:
		default:
		}
		w.reloadCh <- cfg
	}
}

// run feeds raw events and timer ticks into the dispatcher until ctx is
// canceled: a channel read stands in for a blocking device read, and a
// ticker drives the dispatcher's own timeout checks (mod-tap/double-tap
// deadlines) that would otherwise never fire between events.
func (w *worker) run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := w.disp.Drain(); err != nil {
				return fmt.Errorf("daemon: worker %s: drain: %w", w.id, err)
			}
			return nil
		case ev, ok := <-w.source.Events():
			if !ok {
				return fmt.Errorf("daemon: worker %s: device source closed", w.id)
			}
			if !w.enabled.Load() {
				continue
			}
			if err := w.disp.Feed(ev); err != nil {
				return fmt.Errorf("daemon: worker %s: %w", w.id, err)
			}
		case now := <-ticker.C:
			if !w.enabled.Load() {
				continue
			}
			if err := w.disp.Tick(now); err != nil {
				return fmt.Errorf("daemon: worker %s: %w", w.id, err)
			}
		case cfg := <-w.reloadCh:
			w.disp.SetConfig(cfg)
		}
	}
}
