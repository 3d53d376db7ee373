package servicemonitor

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jpalmerr/servicemonitor/internal/poller"
	"github.com/jpalmerr/servicemonitor/internal/store"
)

// Registry owns the monitored services and the shared poll history.
//
// Services are kept in config order and reconciled against a config source
// with [Registry.Reconcile]. Every poll round appends one line per polled
// service to the history, which is persisted with [Registry.Save] and
// restored with [Load], [Registry.MergeFrom] or [Registry.ReplaceWith].
//
// Reconciliation, poll rounds, saves and restores are serialized by a single
// lock, so a Registry is safe for concurrent use; polling within a round is
// sequential.
//
// The typical lifecycle is:
//
//	reg, err := servicemonitor.Load(path)
//	if errors.Is(err, fs.ErrNotExist) {
//	    reg, err = servicemonitor.New(path)
//	}
//	if err != nil {
//	    return err
//	}
//	if err := reg.ReconcileFile("services.txt"); err != nil {
//	    return err
//	}
//	reg.PollAll(ctx, nil)
//	return reg.Save()
type Registry struct {
	mu          sync.Mutex
	services    []*Service
	history     []string
	storagePath string

	fetcher       Fetcher
	client        *poller.Client // default fetcher, nil when WithFetcher is used
	store         store.Store
	logger        *slog.Logger
	clock         func() time.Time
	lineCallbacks []func(Line)
}

// New creates an empty [Registry] that saves itself to storagePath.
//
// Returns an error if storagePath is empty or any option is invalid.
//
// Example:
//
//	reg, err := servicemonitor.New("service-monitor.json",
//	    servicemonitor.WithRequestTimeout(5 * time.Second),
//	    servicemonitor.WithLogger(logger),
//	)
func New(storagePath string, opts ...Option) (*Registry, error) {
	if strings.TrimSpace(storagePath) == "" {
		return nil, errors.New("storage path cannot be empty")
	}

	r, err := newRegistry(opts...)
	if err != nil {
		return nil, err
	}
	r.storagePath = storagePath
	return r, nil
}

// newRegistry applies options and defaults to an empty registry.
func newRegistry(opts ...Option) (*Registry, error) {
	cfg := &registryConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	var client *poller.Client
	fetcher := cfg.fetcher
	if fetcher == nil {
		client = poller.NewClient(cfg.requestTimeout)
		fetcher = client
	}

	st := cfg.store
	if st == nil {
		st = store.NewFileStore()
	}

	clock := cfg.clock
	if clock == nil {
		clock = time.Now
	}

	return &Registry{
		services:      []*Service{},
		history:       []string{},
		fetcher:       fetcher,
		client:        client,
		store:         st,
		logger:        logger,
		clock:         clock,
		lineCallbacks: cfg.lineCallbacks,
	}, nil
}

// Services returns a copy of the registered services in config order.
func (r *Registry) Services() []Service {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Service, len(r.services))
	for i, s := range r.services {
		out[i] = *s
	}
	return out
}

// Service returns the service registered under identifier.
func (r *Registry) Service(identifier Kind) (Service, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s := r.lookup(identifier); s != nil {
		return *s, true
	}
	return Service{}, false
}

// Len returns the number of registered services.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.services)
}

// History returns a copy of the full poll history, oldest first.
func (r *Registry) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.history)
}

// HistoryFor returns the history lines written for the service registered
// under identifier. An unknown identifier yields nil.
//
// History lines carry only the display name, so lines are matched by the
// service's current name. After a rename through [Registry.Reconcile], lines
// written under the old name are no longer returned; they stay in
// [Registry.History].
func (r *Registry) HistoryFor(identifier Kind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.lookup(identifier)
	if s == nil {
		return nil
	}

	var out []string
	for _, line := range r.history {
		if writtenFor(line, s.name) {
			out = append(out, line)
		}
	}
	return out
}

// StoragePath returns where [Registry.Save] writes.
func (r *Registry) StoragePath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.storagePath
}

// PollAll polls every service whose identifier is not in excluded, in
// config order, and returns the lines produced this round.
//
// Every line, whether it carries a status label or an error message, is
// appended to the history before the next service is polled. A failing
// service never aborts the round. Line callbacks run after each append.
//
// Cancelling ctx interrupts the round: services not yet polled are skipped
// rather than recorded as failures.
func (r *Registry) PollAll(ctx context.Context, excluded []Kind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug("poll round starting", "services", len(r.services), "excluded", len(excluded))

	lines := make([]string, 0, len(r.services))
	for _, s := range r.services {
		if slices.Contains(excluded, s.kind) {
			continue
		}
		if ctx.Err() != nil {
			r.logger.Info("poll round interrupted", "polled", len(lines))
			break
		}

		line := s.poll(ctx, r.fetcher, r.clock(), r.logger)
		r.history = append(r.history, line.Text)
		lines = append(lines, line.Text)

		logAttrs := []any{"service", string(s.kind), "url", s.url}
		if line.Err != nil {
			r.logger.Warn("poll completed with error", append(logAttrs, "error", line.Err.Error())...)
		} else {
			r.logger.Debug("poll completed", logAttrs...)
		}

		for _, cb := range r.lineCallbacks {
			invokeCallbackSafe(cb, line, r.logger)
		}
	}

	return lines
}

// Watch runs poll rounds until ctx is cancelled: poll every non-excluded
// service, save, wait interval, repeat. The first round starts immediately.
//
// A failed save is retried with exponential backoff within the round and
// then logged; the loop keeps going. Once ctx is cancelled Watch waits for
// the in-flight round, closes the idle connections of the default HTTP
// client, saves one last time and returns the result of that save.
func (r *Registry) Watch(ctx context.Context, interval time.Duration, excluded []Kind) error {
	if interval <= 0 {
		return errors.New("refresh interval must be positive")
	}

	r.logger.Info("fetch loop starting",
		"interval", interval.String(),
		"storage_path", r.StoragePath(),
	)

	scheduler := poller.NewScheduler(interval, func(ctx context.Context) error {
		r.PollAll(ctx, excluded)
		return r.saveWithRetry(ctx)
	}, r.logger)
	scheduler.Start(ctx)
	<-ctx.Done()
	scheduler.Stop()
	r.client.Close()

	r.logger.Info("fetch loop stopped", "rounds", scheduler.Rounds())
	return r.Save()
}

// lookup returns the live service for identifier. Callers hold r.mu.
func (r *Registry) lookup(identifier Kind) *Service {
	for _, s := range r.services {
		if s.kind == identifier {
			return s
		}
	}
	return nil
}

// invokeCallbackSafe calls a line callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Line), line Line, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("line callback panicked",
				"panic", r,
				"service", string(line.Service),
			)
		}
	}()
	cb(line)
}
