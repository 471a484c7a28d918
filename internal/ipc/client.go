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

package ipc

import (
	"fmt"
	"net"
	"time"
)

// DialTimeout bounds how long SendRequest waits to connect to the
// daemon's control socket before concluding it isn't running.
const DialTimeout = 2 * time.Second

// SendRequest opens a fresh connection to socketPath, sends req, reads
// one response, and closes the connection — the same one-shot
// request/response shape original_source/src/cli.rs's ipc::send_request
// used over its in-process channel, now genuinely crossing a process
// boundary.
func SendRequest(socketPath string, req Request) (Response, error) {
	conn, err := net.DialTimeout("unix", socketPath, DialTimeout)
	if err != nil {
		return Response{}, fmt.Errorf("ipc: connect %s: %w", socketPath, err)
	}
	defer conn.Close()

	if err := writeFrame(conn, req); err != nil {
		return Response{}, err
	}
	var resp Response
	if err := readFrame(conn, &resp); err != nil {
		return Response{}, err
	}
	if resp.ID != req.ID {
		return Response{}, fmt.Errorf("ipc: response id %q does not match request id %q", resp.ID, req.ID)
	}
	return resp, nil
}
