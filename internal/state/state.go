// Package state persists which workspace directory is currently selected.
package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

type document struct {
	CurrentWorkspace string `yaml:"current_workspace"`
}

// State holds the active workspace and mirrors it to a YAML file.
// It implements storage.Root.
type State struct {
	mu        sync.RWMutex
	file      string
	workspace string
}

// Open loads the state file. When the file does not exist or names no
// workspace, initial is used and nothing is written until Switch.
func Open(file, initial string) (*State, error) {
	s := &State{file: file, workspace: initial}
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("state: read %s: %w", file, err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("state: parse %s: %w", file, err)
	}
	if doc.CurrentWorkspace != "" {
		s.workspace = doc.CurrentWorkspace
	}
	return s, nil
}

// Workspace returns the active workspace directory.
func (s *State) Workspace() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workspace
}

// Switch makes path the active workspace and persists it.
func (s *State) Switch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("state: resolve %s: %w", path, err)
	}
	data, err := yaml.Marshal(document{CurrentWorkspace: abs})
	if err != nil {
		return fmt.Errorf("state: encode: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeFile(s.file, data); err != nil {
		return err
	}
	s.workspace = abs
	return nil
}

// writeFile replaces file through a temp file in the same directory.
func writeFile(file string, data []byte) error {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("state: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-tmp-*")
	if err != nil {
		return fmt.Errorf("state: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("state: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("state: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("state: close temp: %w", err)
	}
	if err := os.Rename(tmpName, file); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("state: rename: %w", err)
	}
	return nil
}
