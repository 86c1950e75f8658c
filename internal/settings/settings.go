// Package settings persists calibration and channel mapping in a YAML file.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Store is a file-backed key/value store. Writes are kept in memory until
// Sync is called.
type Store struct {
	mu   sync.Mutex
	path string
	v    *viper.Viper
}

// Open loads the settings file at path. A missing file yields an empty store
// that will be created on the first Sync.
func Open(path string) (*Store, error) {
	if filepath.Ext(path) == "" {
		return nil, fmt.Errorf("settings: %s: file extension required", path)
	}

	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("settings: read %s: %w", path, err)
		}
	}

	return &Store{path: path, v: v}, nil
}

// Path returns the file the store syncs to.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.v.IsSet(key) {
		return nil, false
	}
	return s.v.Get(key), true
}

func (s *Store) Store(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key, value)
}

// Sync writes every setting to disk, creating the parent directory if needed.
func (s *Store) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("settings: %w", err)
		}
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("settings: write %s: %w", s.path, err)
	}
	return nil
}
