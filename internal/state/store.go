// Package state persists the simulator's restart snapshot as a JSON file.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"heartbeat/types"
	"io/fs"
	"os"
	"path/filepath"
)

var ErrCorruptState = errors.New("state file is not valid JSON")

type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load returns the last saved snapshot. A missing file yields an empty
// snapshot and no error; a corrupt file yields an empty snapshot together
// with ErrCorruptState so the caller can log it and start fresh.
func (s *FileStore) Load() (types.StateSnapshot, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.StateSnapshot{}, nil
		}
		return types.StateSnapshot{}, fmt.Errorf("read state: %w", err)
	}
	var snap types.StateSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return types.StateSnapshot{}, fmt.Errorf("%w: %s: %v", ErrCorruptState, s.path, err)
	}
	return snap, nil
}

// Save replaces the state file atomically: the snapshot is written and
// synced to a temporary file in the same directory, which is then renamed
// over the target. Readers see either the old or the new document.
func (s *FileStore) Save(snap types.StateSnapshot) (err error) {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(b); err != nil {
		return fmt.Errorf("write temp state: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp state: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp state: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}
