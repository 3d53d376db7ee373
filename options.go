package servicemonitor

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jpalmerr/servicemonitor/internal/store"
)

// registryConfig holds mutable state during Registry construction.
type registryConfig struct {
	fetcher        Fetcher
	requestTimeout time.Duration
	logger         *slog.Logger
	clock          func() time.Time
	lineCallbacks  []func(Line)
	store          store.Store
}

// Option is a function that configures a [Registry] during construction.
//
// Option implements the functional options pattern. Options are accepted by
// [New] and [Load] and return an error if validation fails.
type Option func(*registryConfig) error

// WithFetcher replaces the HTTP fetcher used by poll rounds.
//
// Example:
//
//	reg, err := servicemonitor.New(path,
//	    servicemonitor.WithFetcher(servicemonitor.FetcherFunc(myFetch)),
//	)
//
// Returns an error if the fetcher is nil.
func WithFetcher(f Fetcher) Option {
	return func(cfg *registryConfig) error {
		if f == nil {
			return errors.New("fetcher cannot be nil")
		}
		cfg.fetcher = f
		return nil
	}
}

// WithRequestTimeout sets the per-request timeout of the default HTTP
// fetcher. Defaults to 10 seconds. Ignored when [WithFetcher] is used.
//
// Returns an error if the duration is zero or negative.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *registryConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the registry.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *registryConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithClock sets the time source used to timestamp history lines.
// Defaults to [time.Now].
//
// Returns an error if the clock is nil.
func WithClock(now func() time.Time) Option {
	return func(cfg *registryConfig) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.clock = now
		return nil
	}
}

// WithLineCallback registers a function called for every history line
// produced by a poll round, after the line was appended to history.
//
// Multiple callbacks can be registered; they run in registration order on
// the polling goroutine, so a slow callback delays the round. A panicking
// callback is logged and does not affect other callbacks or the round.
//
// Example:
//
//	reg, err := servicemonitor.New(path,
//	    servicemonitor.WithLineCallback(func(l servicemonitor.Line) {
//	        fmt.Println(l.Text)
//	    }),
//	)
//
// Returns an error if the callback is nil.
func WithLineCallback(cb func(Line)) Option {
	return func(cfg *registryConfig) error {
		if cb == nil {
			return errors.New("line callback cannot be nil")
		}
		cfg.lineCallbacks = append(cfg.lineCallbacks, cb)
		return nil
	}
}

// withStore swaps the snapshot store; the default writes JSON files.
func withStore(st store.Store) Option {
	return func(cfg *registryConfig) error {
		if st == nil {
			return errors.New("store cannot be nil")
		}
		cfg.store = st
		return nil
	}
}
