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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PasswordStore resolves password IDs to plaintext, stored one file per
// id under the config directory, mirroring
// original_source/src/config.rs's Passwords::path_for_id.
type PasswordStore struct {
	dir string
}

// NewPasswordStore returns a store rooted at dir (typically
// $XDG_CONFIG_HOME/keyplex).
func NewPasswordStore(dir string) *PasswordStore {
	return &PasswordStore{dir: dir}
}

// PathForID returns the on-disk path for a password id.
func (s *PasswordStore) PathForID(id string) string {
	return filepath.Join(s.dir, fmt.Sprintf("password_%s.txt", id))
}

// Load reads the password for id. A missing or empty file is treated
// as "no password configured", returning ("", false, nil) rather than
// an error, matching the original's Option-returning behavior.
func (s *PasswordStore) Load(id string) (password string, ok bool, err error) {
	path := s.PathForID(id)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("config: read password %q: %w", id, err)
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return "", false, nil
	}
	return trimmed, true, nil
}

// Set writes the password for id, creating the config directory if
// needed.
func (s *PasswordStore) Set(id, password string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("config: create %s: %w", s.dir, err)
	}
	if err := os.WriteFile(s.PathForID(id), []byte(password+"\n"), 0o600); err != nil {
		return fmt.Errorf("config: write password %q: %w", id, err)
	}
	return nil
}
