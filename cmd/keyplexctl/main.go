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

// Command keyplexctl is the operator CLI: it talks to a running
// keyplexd over the control socket. Its subcommand tree mirrors
// original_source/src/cli.rs's Commands enum one-to-one (start, stop,
// status, list, toggle, reload, set-password), rebuilt on
// github.com/spf13/cobra instead of clap.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyplex/keyplex/internal/ipc"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	socketPath := ipc.SocketPath()

	root := &cobra.Command{
		Use:           "keyplexctl",
		Short:         "Control the keyplex keyboard middleware daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&socketPath, "socket", socketPath, "control socket path")

	root.AddCommand(
		newStartCmd(),
		newStopCmd(&socketPath),
		newStatusCmd(&socketPath),
		newListCmd(&socketPath),
		newToggleCmd(&socketPath),
		newReloadCmd(&socketPath),
		newSetPasswordCmd(&socketPath),
	)
	return root
}
