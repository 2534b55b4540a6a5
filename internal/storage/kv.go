// Package storage holds the client's persisted key-value area: the credential
// pair and the whitelisted session snapshot survive process restarts here.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrCorruptState is returned when the state file exists but cannot be parsed.
var ErrCorruptState = errors.New("corrupt state file")

const stateFileName = "state.json"

// KV is a string key-value area, the equivalent of browser local storage.
type KV interface {
	// Get returns the value and whether the key was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Delete removes the keys, missing keys are ignored.
	Delete(keys ...string) error
}

type stateFile struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values"`
}

// FileStore persists all keys in a single JSON document on the local filesystem.
type FileStore struct {
	mu      sync.Mutex
	baseDir string
}

var _ KV = (*FileStore)(nil)

// NewFileStore creates a new file backed store.
// If baseDir is empty, uses ~/.roomzy/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".roomzy")
	}

	// Tokens live here, keep it private
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	log.Debug().Str("baseDir", baseDir).Msg("state store initialized")

	return &FileStore{baseDir: baseDir}, nil
}

// Path returns the location of the state file.
func (s *FileStore) Path() string {
	return filepath.Join(s.baseDir, stateFileName)
}

func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return "", false, err
	}

	v, ok := st.Values[key]
	return v, ok, nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		if !errors.Is(err, ErrCorruptState) {
			return err
		}
		log.Warn().Err(err).Str("path", s.Path()).Msg("discarding corrupt state file")
		st = &stateFile{Version: 1, Values: make(map[string]string)}
	}

	st.Values[key] = value
	return s.save(st)
}

func (s *FileStore) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		if !errors.Is(err, ErrCorruptState) {
			return err
		}
		st = &stateFile{Version: 1, Values: make(map[string]string)}
	}

	for _, k := range keys {
		delete(st.Values, k)
	}
	return s.save(st)
}

// load reads the state file, a missing file is an empty state.
func (s *FileStore) load() (*stateFile, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return &stateFile{Version: 1, Values: make(map[string]string)}, nil
		}
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	var st stateFile
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	if st.Values == nil {
		st.Values = make(map[string]string)
	}

	return &st, nil
}

// save writes the state file atomically.
func (s *FileStore) save(st *stateFile) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	path := s.Path()
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save state: %w", err)
	}

	return nil
}

// MemoryStore implements KV using in-memory storage.
// Data is lost on restart, use it for tests and one-shot sessions.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ KV = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}
