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

// Package daemon wires together one worker goroutine per physical
// keyboard, the control-socket server, the game-mode prober, and the
// config-file watcher, and supervises all of them with an errgroup the
// same way the original process supervised its threads, generalized
// from tScreen's single Init/Fini lifecycle to N independent workers.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/keyplex/keyplex/internal/config"
	"github.com/keyplex/keyplex/internal/device"
	"github.com/keyplex/keyplex/internal/emitter"
	"github.com/keyplex/keyplex/internal/gamemode"
	"github.com/keyplex/keyplex/internal/ipc"
)

// Options configures a Daemon at startup. It is the Go equivalent of
// the flags original_source/src/main.rs parses before constructing its
// own daemon state.
type Options struct {
	ConfigPath  string
	PasswordDir string
	SocketPath  string
	EmitterName string
	Grab        bool
	GameMode    gamemode.Config
}

// Daemon is the long-lived process: it owns the virtual output device,
// every grabbed keyboard's worker, and the control channel used to
// enable/disable keyboards, reload configuration, and request shutdown.
type Daemon struct {
	cfgPath   string
	cfg       atomic.Pointer[config.Config]
	passwords *config.PasswordStore

	emit     emitter.Emitter
	gameMode atomic.Bool
	prober   *gamemode.Prober
	watcher  *config.Watcher

	workers []*worker
	ipc     *ipc.Server

	cancel context.CancelFunc
}

// New loads the configuration, opens the virtual output device, grabs
// every enabled discovered keyboard, and starts listening on the
// control socket. The returned Daemon is ready for Run.
func New(opts Options) (*Daemon, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	emit, err := emitter.Open(opts.EmitterName)
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		cfgPath:   opts.ConfigPath,
		passwords: config.NewPasswordStore(opts.PasswordDir),
		emit:      emit,
	}
	d.cfg.Store(cfg)

	keyboards, err := device.Enumerate()
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("daemon: %w", err)
	}

	for _, kb := range keyboards {
		if !cfg.KeyboardEnabled(kb.ID) {
			continue
		}
		source, err := device.OpenEvdev(kb.Path, opts.Grab)
		if err != nil {
			glog.Warningf("daemon: open %s (%s): %v", kb.Path, kb.Name, err)
			continue
		}
		kb.Source = source
		w := newWorker(kb, cfg.ForKeyboard(kb.ID), emit, d.lookupPassword, &d.gameMode)
		d.workers = append(d.workers, w)
		glog.Infof("daemon: grabbed %s (%s) as %s", kb.Path, kb.Name, kb.ID)
	}
	if len(d.workers) == 0 {
		glog.Warningf("daemon: no keyboards grabbed")
	}

	srv, err := ipc.Listen(opts.SocketPath, d.handleRequest)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.ipc = srv
	d.prober = gamemode.New(opts.GameMode, &d.gameMode)

	if w, err := config.NewWatcher(opts.ConfigPath); err != nil {
		glog.Warningf("daemon: config file watch disabled: %v", err)
	} else {
		d.watcher = w
	}

	return d, nil
}

// Run blocks, supervising every worker plus the control socket, the
// game-mode prober, and the config watcher, until ctx is canceled or a
// ReqShutdown request arrives over the control channel. On either exit
// path it drains every dispatcher before releasing the device handles.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	for _, w := range d.workers {
		w := w
		g.Go(func() error { return w.run(gctx) })
	}
	g.Go(func() error { return d.ipc.Serve(gctx) })
	g.Go(func() error { return d.prober.Run(gctx) })
	if d.watcher != nil {
		g.Go(func() error {
			d.watcher.Run(gctx, d.reload)
			return nil
		})
	}

	err := g.Wait()
	d.Close()

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases every resource New acquired. It is safe to call on a
// partially constructed Daemon (an early New error path) as well as
// after Run returns.
func (d *Daemon) Close() {
	for _, w := range d.workers {
		if w.source != nil {
			w.source.Close()
		}
	}
	if d.ipc != nil {
		d.ipc.Close()
	}
	if d.watcher != nil {
		d.watcher.Close()
	}
	if d.emit != nil {
		if err := d.emit.Close(); err != nil {
			glog.Warningf("daemon: close emitter: %v", err)
		}
	}
}

func (d *Daemon) reload() {
	cfg, err := config.Load(d.cfgPath)
	if err != nil {
		glog.Errorf("daemon: reload config: %v", err)
		return
	}
	d.cfg.Store(cfg)
	for _, w := range d.workers {
		w.reload(cfg.ForKeyboard(w.id))
	}
	glog.Infof("daemon: config reloaded")
}

func (d *Daemon) lookupPassword(id string) (string, bool) {
	password, ok, err := d.passwords.Load(id)
	if err != nil {
		glog.Warningf("daemon: load password %q: %v", id, err)
		return "", false
	}
	return password, ok
}

func (d *Daemon) workerByID(id string) *worker {
	for _, w := range d.workers {
		if w.id == id {
			return w
		}
	}
	return nil
}

func (d *Daemon) keyboardList() []ipc.KeyboardInfo {
	out := make([]ipc.KeyboardInfo, 0, len(d.workers))
	for _, w := range d.workers {
		out = append(out, ipc.KeyboardInfo{
			Name:       w.name,
			HardwareID: w.id,
			DevicePath: w.path,
			Enabled:    w.enabled.Load(),
			Connected:  true,
		})
	}
	return out
}

// handleRequest answers one control-channel request. It runs on the
// connection's own goroutine (internal/ipc.Server.handleConn), so
// ReqShutdown only signals cancellation and returns immediately rather
// than blocking for the drain Run performs after g.Wait returns.
func (d *Daemon) handleRequest(req ipc.Request) ipc.Response {
	switch req.Kind {
	case ipc.ReqPing:
		return ipc.Response{Kind: ipc.RespPong}

	case ipc.ReqListKeyboards:
		return ipc.Response{Kind: ipc.RespKeyboardList, Keyboards: d.keyboardList()}

	case ipc.ReqEnableKeyboard:
		w := d.workerByID(req.KeyboardID)
		if w == nil {
			return ipc.ErrorResponse(req, fmt.Errorf("daemon: unknown keyboard %q", req.KeyboardID))
		}
		w.enabled.Store(true)
		return ipc.OKResponse(req)

	case ipc.ReqDisableKeyboard:
		w := d.workerByID(req.KeyboardID)
		if w == nil {
			return ipc.ErrorResponse(req, fmt.Errorf("daemon: unknown keyboard %q", req.KeyboardID))
		}
		w.enabled.Store(false)
		return ipc.OKResponse(req)

	case ipc.ReqReloadConfig:
		d.reload()
		return ipc.OKResponse(req)

	case ipc.ReqSetPassword:
		if err := d.passwords.Set(req.PasswordID, req.Password); err != nil {
			return ipc.ErrorResponse(req, err)
		}
		return ipc.OKResponse(req)

	case ipc.ReqShutdown:
		if d.cancel != nil {
			d.cancel()
		}
		return ipc.OKResponse(req)

	default:
		return ipc.ErrorResponse(req, fmt.Errorf("daemon: unknown request kind %q", req.Kind))
	}
}
