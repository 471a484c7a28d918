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

package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/keyplex/keyplex/internal/ipc"
)

// newStartCmd execs keyplexd in the foreground. original_source's
// handle_start ran the daemon in the same process; here the daemon is
// its own binary, so starting it is a process replacement rather than
// a function call.
func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the keyplex daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			bin, err := exec.LookPath("keyplexd")
			if err != nil {
				return fmt.Errorf("keyplexctl: keyplexd not found in PATH: %w", err)
			}
			return syscall.Exec(bin, append([]string{bin}, args...), os.Environ())
		},
	}
}

func newStopCmd(socketPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ipc.SendRequest(*socketPath, ipc.NewRequest(ipc.ReqShutdown))
			if err != nil {
				return fmt.Errorf("keyplexctl: %w", err)
			}
			if resp.Kind == ipc.RespError {
				return fmt.Errorf("keyplexctl: %s", resp.Error)
			}
			fmt.Println("Daemon stopped")
			return nil
		},
	}
}

func newStatusCmd(socketPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the daemon is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ipc.SendRequest(*socketPath, ipc.NewRequest(ipc.ReqPing)); err != nil {
				fmt.Println("daemon is not running")
				os.Exit(1)
			}
			fmt.Println("daemon is running")
			return nil
		},
	}
}

func newListCmd(socketPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List detected keyboards",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ipc.SendRequest(*socketPath, ipc.NewRequest(ipc.ReqListKeyboards))
			if err != nil {
				return fmt.Errorf("keyplexctl: %w", err)
			}
			if resp.Kind == ipc.RespError {
				return fmt.Errorf("keyplexctl: %s", resp.Error)
			}
			if len(resp.Keyboards) == 0 {
				fmt.Println("No keyboards detected")
				return nil
			}

			table := tablewriter.NewTable(os.Stdout)
			table.Header("Name", "ID", "Path", "Enabled", "Connected")
			for _, kb := range resp.Keyboards {
				table.Append([]string{kb.Name, kb.HardwareID, kb.DevicePath, yesNo(kb.Enabled), yesNo(kb.Connected)})
			}
			return table.Render()
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// newToggleCmd enables or disables one keyboard by hardware id. The
// original's handle_toggle drove an interactive dialoguer::MultiSelect
// over every detected keyboard at once; this pack carries no
// interactive-prompt library beyond golang.org/x/term's raw password
// read, so toggling is expressed as an explicit id plus flag instead.
func newToggleCmd(socketPath *string) *cobra.Command {
	var enable, disable bool
	cmd := &cobra.Command{
		Use:   "toggle <keyboard-id>",
		Short: "Enable or disable one keyboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if enable == disable {
				return fmt.Errorf("keyplexctl: exactly one of --enable or --disable is required")
			}
			kind := ipc.ReqDisableKeyboard
			if enable {
				kind = ipc.ReqEnableKeyboard
			}
			req := ipc.NewRequest(kind)
			req.KeyboardID = args[0]
			resp, err := ipc.SendRequest(*socketPath, req)
			if err != nil {
				return fmt.Errorf("keyplexctl: %w", err)
			}
			if resp.Kind == ipc.RespError {
				return fmt.Errorf("keyplexctl: %s", resp.Error)
			}
			fmt.Println("ok")
			return nil
		},
	}
	cmd.Flags().BoolVar(&enable, "enable", false, "enable the keyboard")
	cmd.Flags().BoolVar(&disable, "disable", false, "disable the keyboard")
	return cmd
}

func newReloadCmd(socketPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload the on-disk configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ipc.SendRequest(*socketPath, ipc.NewRequest(ipc.ReqReloadConfig))
			if err != nil {
				return fmt.Errorf("keyplexctl: %w", err)
			}
			if resp.Kind == ipc.RespError {
				return fmt.Errorf("keyplexctl: %s", resp.Error)
			}
			fmt.Println("configuration reloaded")
			return nil
		},
	}
}

// newSetPasswordCmd prompts for a password twice without echoing it,
// the Go equivalent of the original's dialoguer::Password::with_confirmation.
func newSetPasswordCmd(socketPath *string) *cobra.Command {
	var passwordID string
	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Set the password typed by a password action",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print("Enter password: ")
			pw1, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("keyplexctl: %w", err)
			}
			fmt.Print("Confirm password: ")
			pw2, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("keyplexctl: %w", err)
			}
			if string(pw1) != string(pw2) {
				return fmt.Errorf("keyplexctl: passwords don't match")
			}

			req := ipc.NewRequest(ipc.ReqSetPassword)
			req.PasswordID = passwordID
			req.Password = string(pw1)
			resp, err := ipc.SendRequest(*socketPath, req)
			if err != nil {
				return fmt.Errorf("keyplexctl: %w", err)
			}
			if resp.Kind == ipc.RespError {
				return fmt.Errorf("keyplexctl: %s", resp.Error)
			}
			fmt.Println("password saved")
			return nil
		},
	}
	cmd.Flags().StringVar(&passwordID, "id", "default", "password id referenced by the config's password action")
	return cmd
}
