package servicemonitor

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/jpalmerr/servicemonitor/internal/store"
)

// retry bounds for saves inside the fetch loop
const (
	saveInitialBackoff = 200 * time.Millisecond
	saveMaxBackoff     = 2 * time.Second
	saveMaxElapsed     = 10 * time.Second
)

// Save writes the full registry state to its storage path.
//
// The write is atomic: a later [Load] sees either the previous snapshot or
// this one, never a partial file.
func (r *Registry) Save() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saveLocked(r.storagePath)
}

// SaveTo writes the full registry state to path without changing where
// [Registry.Save] writes. The snapshot still records the registry's own
// storage path, so restoring it with replace semantics writes back to the
// live location.
func (r *Registry) SaveTo(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saveLocked(path)
}

func (r *Registry) saveLocked(path string) error {
	if err := r.store.Save(path, r.snapshotLocked()); err != nil {
		return fmt.Errorf("failed to save registry to %s: %w", path, err)
	}
	r.logger.Debug("registry saved", "path", path, "history", len(r.history))
	return nil
}

// saveWithRetry saves with exponential backoff until ctx ends or the retry
// budget is spent.
func (r *Registry) saveWithRetry(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = saveInitialBackoff
	bo.MaxInterval = saveMaxBackoff

	operation := func() (struct{}, error) {
		if err := r.Save(); err != nil {
			r.logger.Warn("save failed, retrying", "error", err.Error())
			return struct{}{}, err
		}
		return struct{}{}, nil
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxElapsedTime(saveMaxElapsed),
	)
	return err
}

// Load reads the snapshot at path and returns the registry it describes.
//
// The returned registry saves to the storage path recorded in the snapshot,
// or to path when the snapshot records none. Options configure the returned
// registry exactly as for [New].
//
// Returns an error matching [ErrStorageUnavailable] if the snapshot is
// missing (the error then also matches fs.ErrNotExist), cannot be decoded,
// or was written by an unsupported schema version.
func Load(path string, opts ...Option) (*Registry, error) {
	r, err := newRegistry(opts...)
	if err != nil {
		return nil, err
	}

	snap, err := r.store.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	r.restoreLocked(snap)
	if r.storagePath == "" {
		r.storagePath = path
	}

	r.logger.Debug("registry loaded",
		"path", path,
		"storage_path", r.storagePath,
		"services", len(r.services),
		"history", len(r.history),
	)
	return r, nil
}

// MergeFrom appends other's history, in order, to this registry's history.
// Services and the storage path are unchanged.
func (r *Registry) MergeFrom(other *Registry) {
	if other == nil {
		return
	}
	incoming := other.History()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = append(r.history, incoming...)
	r.logger.Info("history merged", "lines", len(incoming), "history", len(r.history))
}

// ReplaceWith makes this registry an exact copy of other: services, history
// and storage path all switch. The receiver stays valid, so references held
// elsewhere keep working. Fetcher, logger and callbacks are not copied.
func (r *Registry) ReplaceWith(other *Registry) {
	if other == nil || other == r {
		return
	}
	snap := other.snapshot()

	r.mu.Lock()
	defer r.mu.Unlock()

	previousPath := r.storagePath
	r.restoreLocked(snap)
	if r.storagePath == "" {
		r.storagePath = previousPath
	}
	r.logger.Info("registry replaced",
		"services", len(r.services),
		"history", len(r.history),
		"storage_path", r.storagePath,
	)
}

// snapshot captures the current state under the lock.
func (r *Registry) snapshot() store.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() store.Snapshot {
	records := make([]store.ServiceRecord, len(r.services))
	for i, s := range r.services {
		records[i] = store.ServiceRecord{
			Identifier: string(s.kind),
			Name:       s.name,
			URL:        s.url,
		}
	}

	return store.Snapshot{
		Version:     store.CurrentVersion,
		StoragePath: r.storagePath,
		SavedAt:     r.clock(),
		Services:    records,
		History:     slices.Clone(r.history),
	}
}

// restoreLocked loads snap into r. Services of kinds that are no longer
// supported are dropped with a warning; their history lines are kept.
func (r *Registry) restoreLocked(snap store.Snapshot) {
	services := make([]*Service, 0, len(snap.Services))
	for _, rec := range snap.Services {
		kind, err := ParseKind(rec.Identifier)
		if err != nil {
			r.logger.Warn("dropping unsupported service from snapshot", "service", rec.Identifier)
			continue
		}
		services = append(services, &Service{kind: kind, name: rec.Name, url: rec.URL})
	}

	r.services = services
	r.history = slices.Clone(snap.History)
	if r.history == nil {
		r.history = []string{}
	}
	r.storagePath = snap.StoragePath
}
