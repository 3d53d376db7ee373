// Package store persists registry snapshots.
//
// The main components are:
//
//   - [Snapshot]: Versioned record of services and poll history
//   - [Store]: Interface for saving and loading snapshots by path
//   - [FileStore]: JSON files written atomically via temp file and rename
//   - [MemoryStore]: In-memory implementation for tests and embedding
//
// Users of the servicemonitor library should not need to interact with this
// package directly. Persistence is driven by the Registry.
package store
