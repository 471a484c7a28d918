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
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/golang/glog"
)

// Handler answers one Request. It is called from the connection's own
// goroutine, so it may block, but must not retain req beyond the call.
type Handler func(req Request) Response

// Server listens on a unix-domain socket and dispatches each connection
// to Handler, one request/response pair per connection.
type Server struct {
	path    string
	ln      net.Listener
	handler Handler
}

// Listen creates (removing any stale socket file first) and binds the
// control socket at path.
func Listen(path string, handler Handler) (*Server, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("ipc: remove stale socket %s: %w", path, err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		ln.Close()
		return nil, fmt.Errorf("ipc: chmod %s: %w", path, err)
	}
	return &Server{path: path, ln: ln, handler: handler}, nil
}

// Serve accepts connections until ctx is canceled or the listener is
// closed, handling each on its own goroutine.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("ipc: accept: %w", err)
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	var req Request
	if err := readFrame(conn, &req); err != nil {
		glog.V(1).Infof("ipc: %v", err)
		return
	}
	resp := s.handler(req)
	resp.ID = req.ID
	if err := writeFrame(conn, resp); err != nil {
		glog.Warningf("ipc: write response: %v", err)
	}
}

// Close removes the socket file and stops listening.
func (s *Server) Close() error {
	err := s.ln.Close()
	if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		if err == nil {
			err = rmErr
		}
	}
	return err
}
