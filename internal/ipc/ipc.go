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

// Package ipc is the control channel between keyplexctl and the
// running daemon: a length-prefixed JSON request/response protocol over
// a unix-domain socket. It is the Go equivalent of
// original_source/src/cli.rs's IpcRequest/IpcResponse enum pair, which
// in the original crossed a process boundary via an in-memory channel;
// here it genuinely crosses one over $XDG_RUNTIME_DIR/keyplex.sock.
package ipc

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// RequestKind discriminates the request variants.
type RequestKind string

const (
	ReqListKeyboards   RequestKind = "list_keyboards"
	ReqEnableKeyboard  RequestKind = "enable_keyboard"
	ReqDisableKeyboard RequestKind = "disable_keyboard"
	ReqReloadConfig    RequestKind = "reload_config"
	ReqShutdown        RequestKind = "shutdown"
	ReqPing            RequestKind = "ping"
	ReqSetPassword     RequestKind = "set_password"
)

// Request is one control-channel call. Only the fields relevant to Kind
// are populated, the same flat-struct-with-discriminator shape
// internal/config.Action uses for its tagged union.
type Request struct {
	ID         string      `json:"id"`
	Kind       RequestKind `json:"kind"`
	KeyboardID string      `json:"keyboard_id,omitempty"`
	PasswordID string      `json:"password_id,omitempty"`
	Password   string      `json:"password,omitempty"`
}

// NewRequest returns a Request with a fresh correlation ID.
func NewRequest(kind RequestKind) Request {
	return Request{ID: uuid.NewString(), Kind: kind}
}

// ResponseKind discriminates the response variants.
type ResponseKind string

const (
	RespOK           ResponseKind = "ok"
	RespError        ResponseKind = "error"
	RespPong         ResponseKind = "pong"
	RespKeyboardList ResponseKind = "keyboard_list"
)

// KeyboardInfo describes one detected keyboard, mirroring the original
// crate's struct of the same fields (hardware_id, device_path, enabled,
// connected) used by `keyplexctl list`/`toggle`.
type KeyboardInfo struct {
	Name       string `json:"name"`
	HardwareID string `json:"hardware_id"`
	DevicePath string `json:"device_path"`
	Enabled    bool   `json:"enabled"`
	Connected  bool   `json:"connected"`
}

// Response answers a Request, echoing its correlation ID.
type Response struct {
	ID        string         `json:"id"`
	Kind      ResponseKind   `json:"kind"`
	Error     string         `json:"error,omitempty"`
	Keyboards []KeyboardInfo `json:"keyboards,omitempty"`
}

// OKResponse builds a bare success response for req.
func OKResponse(req Request) Response {
	return Response{ID: req.ID, Kind: RespOK}
}

// ErrorResponse builds a failure response carrying err's message.
func ErrorResponse(req Request, err error) Response {
	return Response{ID: req.ID, Kind: RespError, Error: err.Error()}
}

// SocketPath returns the default control-socket path:
// $XDG_RUNTIME_DIR/keyplex.sock, falling back to a /tmp path when
// XDG_RUNTIME_DIR isn't set (e.g. under a minimal test environment).
func SocketPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "keyplex-"+currentUser())
	}
	return filepath.Join(dir, "keyplex.sock")
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}
