package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// snapshotPerm is the mode of snapshot files; history may name internal hosts.
const snapshotPerm = 0o600

// FileStore persists snapshots as JSON files.
//
// Save writes to a temporary file in the target directory, syncs it and
// renames it over the destination, so a concurrent or later Load sees either
// the old snapshot or the new one, never a torn write.
type FileStore struct{}

// NewFileStore creates a [FileStore].
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Save atomically replaces the file at path with snap encoded as JSON.
func (f *FileStore) Save(path string, snap Snapshot) error {
	if snap.Version == 0 {
		snap.Version = CurrentVersion
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	// remove the temp file on any failure below
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Chmod(snapshotPerm); err != nil {
		return fmt.Errorf("failed to set snapshot permissions: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}
	committed = true

	return nil
}

// Load reads and decodes the snapshot at path.
func (f *FileStore) Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}

	return migrate(snap)
}
