// Package store persists window geometry as JSON files, one per window key.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
)

// ErrNotFound is returned by Load when nothing has been saved yet.
var ErrNotFound = errors.New("no saved geometry")

// IsNotFound reports whether err means there is no saved geometry.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Snapshot is what gets saved for a window: the last layout and the last
// known geometry per cached mode.
type Snapshot struct {
	Spec     layout.Spec
	Windowed *geometry.Windowed
	Music    *geometry.Music
}

// FileStore saves snapshots under Dir/<key>.json.
type FileStore struct {
	Dir string
	Key string
}

// DefaultDir is ~/.config/vidframe/windows.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "vidframe", "windows"), nil
}

// NewFileStore returns a store for key in the default directory.
func NewFileStore(key string) (*FileStore, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}
	return &FileStore{Dir: dir, Key: key}, nil
}

func validateKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("state key is required")
	}
	if strings.Contains(key, string(os.PathSeparator)) || key != filepath.Base(key) || strings.Contains(key, "..") {
		return fmt.Errorf("invalid state key %q", key)
	}
	return nil
}

// Path is the file the store reads and writes.
func (s *FileStore) Path() string {
	return filepath.Join(s.Dir, s.Key+".json")
}

func (s *FileStore) Load() (Snapshot, error) {
	if err := validateKey(s.Key); err != nil {
		return Snapshot{}, err
	}
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read geometry %q: %w", s.Key, err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse geometry %q: %w", s.Key, err)
	}
	snap, err := rec.snapshot()
	if err != nil {
		return Snapshot{}, fmt.Errorf("invalid geometry %q: %w", s.Key, err)
	}
	return snap, nil
}

func (s *FileStore) Save(snap Snapshot) error {
	if err := validateKey(s.Key); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := json.MarshalIndent(fromSnapshot(snap), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode geometry: %w", err)
	}
	// Write then rename so a crash never leaves a truncated file behind.
	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write geometry %q: %w", s.Key, err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		return fmt.Errorf("failed to write geometry %q: %w", s.Key, err)
	}
	return nil
}

// Delete removes the saved snapshot. Missing files are not an error.
func (s *FileStore) Delete() error {
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete geometry %q: %w", s.Key, err)
	}
	return nil
}

// Memory is an in-process Store, used by tests and when persistence is off.
type Memory struct {
	snap  *Snapshot
	Saves int
}

func (m *Memory) Load() (Snapshot, error) {
	if m.snap == nil {
		return Snapshot{}, ErrNotFound
	}
	return *m.snap, nil
}

func (m *Memory) Save(snap Snapshot) error {
	m.snap = &snap
	m.Saves++
	return nil
}

// Last returns the last saved snapshot.
func (m *Memory) Last() (Snapshot, bool) {
	if m.snap == nil {
		return Snapshot{}, false
	}
	return *m.snap, true
}
