package config

import (
	"fmt"
	"sync"
)

// Store holds the running configuration. The file copy excludes env overrides and is
// what gets written back on Update.
type Store struct {
	mu        sync.RWMutex
	path      string
	effective *Config
	file      *Config
}

// NewStore loads path and applies env overrides to the effective copy.
func NewStore(path string) (*Store, error) {
	file, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewStoreFrom(path, file), nil
}

// NewStoreFrom wraps an already loaded config. An empty path disables saving.
func NewStoreFrom(path string, file *Config) *Store {
	effective := file.Clone()
	effective.ApplyEnv()
	return &Store{path: path, effective: effective, file: file.Clone()}
}

// Snapshot returns a copy of the effective configuration.
func (s *Store) Snapshot() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.effective.Clone()
}

// Update applies fn to both copies, validates the result and persists the file copy.
func (s *Store) Update(fn func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	effective := s.effective.Clone()
	fn(effective)
	if err := effective.Validate(); err != nil {
		return fmt.Errorf("invalid config update: %w", err)
	}
	file := s.file.Clone()
	fn(file)

	if s.path != "" {
		if err := file.Save(s.path); err != nil {
			return err
		}
	}
	s.effective = effective
	s.file = file
	return nil
}
