package store

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// CurrentVersion is the snapshot schema version written by this package.
const CurrentVersion = 1

var (
	// ErrNotFound means no snapshot exists at the requested path.
	// It also matches fs.ErrNotExist.
	ErrNotFound = fmt.Errorf("snapshot not found: %w", fs.ErrNotExist)

	// ErrCorrupt means the stored bytes could not be decoded as a snapshot.
	ErrCorrupt = errors.New("snapshot corrupt")

	// ErrUnsupportedVersion means the snapshot was written by a newer schema.
	ErrUnsupportedVersion = errors.New("snapshot version unsupported")
)

// ServiceRecord is the stored form of one monitored service.
type ServiceRecord struct {
	// Identifier is the service kind, e.g. "bitbucket".
	Identifier string `json:"identifier"`

	// Name is the display name written into history lines.
	Name string `json:"name"`

	// URL is the status page address.
	URL string `json:"url"`
}

// Snapshot is the full persisted state of a registry.
//
// Snapshot is versioned so that older files stay readable as the schema
// evolves. Services and History keep their in-memory order.
type Snapshot struct {
	// Version is the schema version, see [CurrentVersion].
	Version int `json:"version"`

	// StoragePath is where the owning registry saves itself. It may differ
	// from the path the snapshot was read from (e.g. a backup file).
	StoragePath string `json:"storage_path"`

	// SavedAt is when the snapshot was produced.
	SavedAt time.Time `json:"saved_at"`

	// Services is the ordered service list.
	Services []ServiceRecord `json:"services"`

	// History is the ordered, append-only poll history.
	History []string `json:"history"`
}

// Store defines how snapshots are written and read.
//
// Implementations must make Save atomic from the reader's point of view:
// a Load never observes a partially written snapshot.
type Store interface {
	// Save replaces whatever is stored at path with snap.
	Save(path string, snap Snapshot) error

	// Load returns the snapshot stored at path. It fails with [ErrNotFound],
	// [ErrCorrupt] or [ErrUnsupportedVersion].
	Load(path string) (Snapshot, error)
}

// migrate brings an older snapshot up to [CurrentVersion].
func migrate(snap Snapshot) (Snapshot, error) {
	switch {
	case snap.Version <= 0:
		return Snapshot{}, fmt.Errorf("%w: missing version", ErrCorrupt)
	case snap.Version > CurrentVersion:
		return Snapshot{}, fmt.Errorf("%w: version %d, newest known is %d", ErrUnsupportedVersion, snap.Version, CurrentVersion)
	}

	// version 1 is current; future upgrades chain here
	if snap.Services == nil {
		snap.Services = []ServiceRecord{}
	}
	if snap.History == nil {
		snap.History = []string{}
	}
	return snap, nil
}

// clone returns a deep copy of snap.
func clone(snap Snapshot) Snapshot {
	cp := snap
	cp.Services = append([]ServiceRecord(nil), snap.Services...)
	cp.History = append([]string(nil), snap.History...)
	return cp
}
