// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package settings is the persistence collaborator for the configuration
// surface: a plain key/value JSON file with read-modify-write semantics. The
// coordinator core never touches it directly; it only sees the Persister
// surface.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Store reads and writes one JSON settings file. Writes are atomic via the
// write-temp-then-rename pattern so a crash never leaves a torn file.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore opens (or prepares to create) the settings file at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("settings path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the string value for key, or "" when unset. A missing or
// unreadable file reads as empty settings.
func (s *Store) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return gjson.GetBytes(data, key).String()
}

// Put sets key to value with a read-modify-write on the whole file.
func (s *Store) Put(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read settings: %w", err)
		}
		data = []byte("{}")
	}
	if !gjson.ValidBytes(data) {
		data = []byte("{}")
	}

	updated, err := sjson.SetBytes(data, key, value)
	if err != nil {
		return fmt.Errorf("failed to update settings key %q: %w", key, err)
	}
	return s.writeAtomic(updated)
}

// writeAtomic writes data to a temporary sibling file and renames it over the
// target.
func (s *Store) writeAtomic(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".settings-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close settings: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set settings permissions: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}
