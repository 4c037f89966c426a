package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileStore persists key-value records in a single local JSON file. It is the
// default backend when no database or remote store is configured.
type FileStore struct {
	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
}

// NewFileStore creates a file-backed store at the given path, loading any
// existing content
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		data: make(map[string]json.RawMessage),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

// load reads the backing file into memory. A missing file is treated as an
// empty store.
func (s *FileStore) load() error {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	if len(content) == 0 {
		return nil
	}

	if err := json.Unmarshal(content, &s.data); err != nil {
		return fmt.Errorf("failed to parse %s: %w", s.path, err)
	}

	return nil
}

// save writes the in-memory map back to the backing file
func (s *FileStore) save() error {
	content, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize store: %w", err)
	}

	if err := os.WriteFile(s.path, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}

	return nil
}

// Get retrieves the value stored under a key, or nil if the key is absent
func (s *FileStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.data[key]
	if !ok {
		return nil, nil
	}

	return value, nil
}

// Set stores or replaces the value under a key and writes through to disk.
// A failed write leaves the store unchanged, so reads never see a value that
// was not persisted.
func (s *FileStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.data[key]
	s.data[key] = value

	if err := s.save(); err != nil {
		if existed {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}

	return nil
}

// Delete removes the record stored under a key. A failed write leaves the
// store unchanged.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.data[key]
	if !ok {
		return nil
	}

	delete(s.data, key)

	if err := s.save(); err != nil {
		s.data[key] = prev
		return err
	}

	return nil
}
