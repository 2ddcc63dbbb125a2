package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONStore persists a single JSON document on disk. All access goes
// through one mutex, so it is only suitable for a single process.
type JSONStore struct {
	mu       sync.RWMutex
	filePath string
}

// NewJSONStore creates the parent directory of path and returns a store
// backed by that file. The file itself is created on first save.
func NewJSONStore(path string) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &JSONStore{filePath: path}, nil
}

// Path returns the backing file.
func (s *JSONStore) Path() string {
	return s.filePath
}

// Load decodes the file into data. A missing file leaves data untouched.
func (s *JSONStore) Load(data interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(data)
}

// Save replaces the file contents with data.
func (s *JSONStore) Save(data interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(data)
}

// Update loads the file into data, calls mutate and writes data back, all
// while holding the write lock. If mutate fails nothing is written.
func (s *JSONStore) Update(data interface{}, mutate func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(data); err != nil {
		return err
	}
	if err := mutate(); err != nil {
		return err
	}
	return s.save(data)
}

func (s *JSONStore) load(data interface{}) error {
	file, err := os.Open(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", s.filePath, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(data); err != nil {
		return fmt.Errorf("decode %s: %w", s.filePath, err)
	}
	return nil
}

// save writes to a sibling temp file and renames it over the target.
func (s *JSONStore) save(data interface{}) error {
	tempFile := s.filePath + ".tmp"
	file, err := os.OpenFile(tempFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", tempFile, err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		file.Close()
		os.Remove(tempFile)
		return fmt.Errorf("encode %s: %w", s.filePath, err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, s.filePath)
}
