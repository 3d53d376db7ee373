// Package poller fetches status pages and drives the periodic polling loop.
//
// The main components are:
//
//   - [Client]: HTTP client that returns HTML bodies and classifies failures
//   - [FetchError]: Error carrying one of [ErrConnectionFailure], [ErrTimeout],
//     [ErrInvalidURL] or [ErrNoContent]
//   - [Scheduler]: Cooperative loop running one [Round] per interval
//
// Users of the servicemonitor library should not need to interact with this
// package directly. The classified errors are re-exported from the root package.
package poller
