// Package settings persists gateway preferences across restarts as a small
// JSON file next to the process.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Settings is the persisted preference set.
type Settings struct {
	// AutoFocus controls whether handled requests may raise the editor
	// window automatically.
	AutoFocus bool `json:"preference"`
}

// Store owns the settings file. Reads and writes go through the in-memory
// copy; every mutation is written back to disk before it returns.
type Store struct {
	path string

	mu      sync.RWMutex
	current Settings
}

// NewStore creates a store backed by the file at path. Nothing is read until
// Load is called.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file. A missing file is not an error: the store
// starts from defaults and the file appears on the first mutation.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("settings file not found, using defaults", "path", s.path)
			return nil
		}
		return fmt.Errorf("failed to read settings file %s: %w", s.path, err)
	}

	var loaded Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to parse settings file %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()

	slog.Debug("settings loaded", "path", s.path, "auto_focus", loaded.AutoFocus)
	return nil
}

// Reload re-reads the file, used when an external edit is detected.
func (s *Store) Reload() error {
	return s.Load()
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// AutoFocus returns the current auto-focus preference.
func (s *Store) AutoFocus() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.AutoFocus
}

// SetAutoFocus updates the preference and writes the file synchronously, so
// the value survives a crash immediately after the call.
func (s *Store) SetAutoFocus(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.AutoFocus = enabled
	if err := s.persistLocked(); err != nil {
		return err
	}

	slog.Info("settings updated", "auto_focus", enabled, "path", s.path)
	return nil
}

func (s *Store) persistLocked() error {
	data, err := json.Marshal(s.current)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", s.path, err)
	}
	return nil
}
