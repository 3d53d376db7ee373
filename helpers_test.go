package servicemonitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/servicemonitor/internal/poller"
	"github.com/jpalmerr/servicemonitor/internal/store"
)

var testTime = time.Date(2026, 10, 19, 9, 30, 12, 0, time.UTC)

// fakeFetcher serves canned pages or errors keyed by URL.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: make(map[string]string),
		errs:  make(map[string]error),
	}
}

func (f *fakeFetcher) page(url, html string) *fakeFetcher {
	f.pages[url] = html
	return f
}

func (f *fakeFetcher) fail(url string, err error) *fakeFetcher {
	f.errs[url] = err
	return f
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)

	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if html, ok := f.pages[url]; ok {
		return []byte(html), nil
	}
	return nil, &poller.FetchError{URL: url, Kind: poller.ErrConnectionFailure, Err: errors.New("connection refused")}
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRegistry builds a registry backed by an in-memory store with a
// fixed clock.
func newTestRegistry(t *testing.T, fetcher Fetcher, st *store.MemoryStore, opts ...Option) *Registry {
	t.Helper()
	if st == nil {
		st = store.NewMemoryStore()
	}
	base := []Option{
		WithFetcher(fetcher),
		WithLogger(discardLogger()),
		WithClock(func() time.Time { return testTime }),
		withStore(st),
	}
	reg, err := New("service-monitor.json", append(base, opts...)...)
	require.NoError(t, err)
	return reg
}

func identifiers(services []Service) []Kind {
	out := make([]Kind, len(services))
	for i, s := range services {
		out[i] = s.Identifier()
	}
	return out
}
