// Package history persists calculation results locally.
//
// The store is append-only and capacity-bounded: entries beyond the cap
// are evicted oldest-first. Persistence failures are reported as errors
// but callers treat them as non-fatal — a calculation is still shown to
// the user even when it could not be saved.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Abhishek8211/energyiq/internal/calc"
)

// MaxEntries is the default capacity of a store.
const MaxEntries = 50

// ErrNotFound is returned by Remove when no entry has the given id.
var ErrNotFound = errors.New("history entry not found")

// Store is the persistence contract the dialogue and CLI depend on.
// List returns entries ordered most-recent first.
type Store interface {
	Append(result calc.Result) error
	List() ([]calc.Result, error)
	Remove(id string) error
	Clear() error
}

// FileStore keeps history as a single JSON file. Thread-safe; writes go
// through a temp file and rename for atomicity.
type FileStore struct {
	path string
	cap  int

	mu sync.Mutex
}

// NewFileStore creates a file-backed store at path with the given
// capacity (<= 0 means MaxEntries). The parent directory is created if
// missing.
func NewFileStore(path string, capacity int) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("history path cannot be empty")
	}
	if capacity <= 0 {
		capacity = MaxEntries
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &FileStore{path: path, cap: capacity}, nil
}

// Append prepends result and trims the oldest entries past capacity.
func (s *FileStore) Append(result calc.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	entries = append([]calc.Result{result}, entries...)
	if len(entries) > s.cap {
		entries = entries[:s.cap]
	}
	return s.save(entries)
}

// List returns all entries, most recent first. A missing file is an
// empty history, not an error.
func (s *FileStore) List() ([]calc.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Remove deletes the entry with the given id.
func (s *FileStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	kept := entries[:0]
	found := false
	for _, e := range entries {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return ErrNotFound
	}
	return s.save(kept)
}

// Clear removes all entries. Idempotent.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *FileStore) load() ([]calc.Result, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var entries []calc.Result
	if unmarshalErr := json.Unmarshal(data, &entries); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", unmarshalErr)
	}
	return entries, nil
}

func (s *FileStore) save(entries []calc.Result) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tempPath := s.path + ".tmp"
	if writeErr := os.WriteFile(tempPath, data, 0600); writeErr != nil {
		return fmt.Errorf("failed to write history file: %w", writeErr)
	}
	if renameErr := os.Rename(tempPath, s.path); renameErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename history file: %w", renameErr)
	}
	return nil
}

// MemoryStore is an in-memory Store used by tests and the HTTP server's
// ephemeral mode.
type MemoryStore struct {
	cap     int
	mu      sync.Mutex
	entries []calc.Result
}

// NewMemoryStore creates an in-memory store with the given capacity
// (<= 0 means MaxEntries).
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = MaxEntries
	}
	return &MemoryStore{cap: capacity}
}

// Append prepends result and trims past capacity.
func (s *MemoryStore) Append(result calc.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append([]calc.Result{result}, s.entries...)
	if len(s.entries) > s.cap {
		s.entries = s.entries[:s.cap]
	}
	return nil
}

// List returns a copy of the entries, most recent first.
func (s *MemoryStore) List() ([]calc.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]calc.Result, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Remove deletes the entry with the given id.
func (s *MemoryStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Clear removes all entries.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}
