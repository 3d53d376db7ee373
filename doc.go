// Package servicemonitor polls provider status pages and keeps a persisted
// history of what they reported.
//
// A [Registry] holds the monitored services, reconciles them against a
// plain-text config of identifier|name|url lines, polls them in rounds and
// saves the full state (services plus history) as a single snapshot file.
//
// # Quick Start
//
//	reg, err := servicemonitor.New("service-monitor.json")
//	if err != nil {
//	    return err
//	}
//	if err := reg.Reconcile([]string{
//	    "bitbucket|BitBucket|https://bitbucket.status.atlassian.com",
//	    "gitlab|GitLab|https://status.gitlab.com",
//	}); err != nil {
//	    return err // *BadConfigError, *UnrecognizedKindError, ...
//	}
//
//	for _, line := range reg.PollAll(ctx, nil) {
//	    fmt.Println(line) // - BitBucket 2026-10-19 10:04 [All Systems Operational]
//	}
//	return reg.Save()
//
// For continuous polling use [Registry.Watch], which runs a round, saves,
// sleeps for the refresh interval and repeats until its context is cancelled.
//
// # Service Kinds
//
// The identifier of each config line is a [Kind]. Every kind owns one
// [StatusExtractor] that reads a status label out of the fetched HTML:
//
//   - [KindBitBucket]: text of the first span.status.font-large
//   - [KindGitLab]: text of the first div.col-md-8.col-sm-6.col-xs-12
//
// Identifiers outside [SupportedKinds] are rejected during reconciliation.
//
// # Errors
//
// Configuration problems abort [Registry.Reconcile] and leave the registry
// untouched ([ErrBadConfigFormat], [ErrUnrecognizedServiceKind],
// [ErrDuplicateService]). Network problems never escape a poll round: they
// are classified ([ErrConnectionFailure], [ErrTimeout], [ErrInvalidURL],
// [ErrNoContent]) and written into the history line in place of the status.
// A missing or unreadable snapshot fails [Load] with [ErrStorageUnavailable].
//
// # Architecture
//
//   - internal/poller: HTML fetcher with error classification, and the
//     round scheduler behind Watch
//   - internal/store: versioned snapshot schema with file and memory stores
//   - config: YAML settings for the command-line tool
//   - cmd/servicemonitor: the command-line tool
package servicemonitor
