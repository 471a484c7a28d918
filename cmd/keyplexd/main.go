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

// Command keyplexd is the long-lived background process: it grabs the
// configured keyboards, emits remapped events through a virtual uinput
// device, and serves the control channel keyplexctl talks to. Ported
// from original_source/src/main.rs's single-binary `--daemon`/`start`
// path, split into its own binary the way a Go daemon/CLI pair
// conventionally is.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/golang/glog"

	"github.com/keyplex/keyplex/internal/config"
	"github.com/keyplex/keyplex/internal/daemon"
	"github.com/keyplex/keyplex/internal/gamemode"
	"github.com/keyplex/keyplex/internal/ipc"
)

var (
	configPath  = flag.String("config", defaultConfigPath(), "path to the YAML config file")
	socketPath  = flag.String("socket", "", "control socket path (default $XDG_RUNTIME_DIR/keyplex.sock)")
	emitterName = flag.String("device_name", "keyplex virtual keyboard", "name exposed by the virtual uinput device")
	grab        = flag.Bool("grab", true, "grab each keyboard exclusively via EVIOCGRAB")
)

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "keyplex")
}

func defaultConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.yaml")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	sock := *socketPath
	if sock == "" {
		sock = ipc.SocketPath()
	}

	if err := os.MkdirAll(filepath.Dir(*configPath), 0o700); err != nil {
		glog.Exitf("keyplexd: create config dir: %v", err)
	}
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		glog.Infof("keyplexd: no config at %s, writing defaults", *configPath)
		def := &config.Config{TappingTermMS: config.DefaultTappingTermMS}
		if err := config.Save(def, *configPath); err != nil {
			glog.Exitf("keyplexd: write default config: %v", err)
		}
	}

	d, err := daemon.New(daemon.Options{
		ConfigPath:  *configPath,
		PasswordDir: defaultConfigDir(),
		SocketPath:  sock,
		EmitterName: *emitterName,
		Grab:        *grab,
		GameMode:    gamemode.DefaultConfig(),
	})
	if err != nil {
		glog.Exitf("keyplexd: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	glog.Infof("keyplexd: listening on %s", sock)
	if err := d.Run(ctx); err != nil {
		glog.Exitf("keyplexd: %v", err)
	}
	glog.Infof("keyplexd: shut down cleanly")
}
