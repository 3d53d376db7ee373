package servicemonitor

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/servicemonitor/internal/poller"
)

func TestOptions_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		opt     Option
		wantErr string
	}{
		{"nil fetcher", WithFetcher(nil), "fetcher cannot be nil"},
		{"zero timeout", WithRequestTimeout(0), "request timeout must be positive"},
		{"negative timeout", WithRequestTimeout(-time.Second), "request timeout must be positive"},
		{"nil logger", WithLogger(nil), "logger cannot be nil"},
		{"nil clock", WithClock(nil), "clock cannot be nil"},
		{"nil store", withStore(nil), "store cannot be nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("service-monitor.json", tt.opt)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWithRequestTimeout(t *testing.T) {
	reg, err := New("service-monitor.json", WithRequestTimeout(3*time.Second))
	require.NoError(t, err)

	client, ok := reg.fetcher.(*poller.Client)
	require.True(t, ok, "fetcher = %T, want *poller.Client", reg.fetcher)
	assert.Equal(t, 3*time.Second, client.Timeout())
	assert.Same(t, client, reg.client, "the default client is owned by the registry")
}

func TestWithFetcher_OverridesRequestTimeout(t *testing.T) {
	custom := FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		return nil, nil
	})

	reg, err := New("service-monitor.json", WithRequestTimeout(time.Second), WithFetcher(custom))
	require.NoError(t, err)

	_, isClient := reg.fetcher.(*poller.Client)
	assert.False(t, isClient, "custom fetcher should replace the default client")
	assert.Nil(t, reg.client)
}

func TestWithClock(t *testing.T) {
	at := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
	fetcher := newFakeFetcher().page("https://gitlab.example.com", gitlabPage)

	reg, err := New("service-monitor.json",
		WithFetcher(fetcher),
		WithLogger(discardLogger()),
		WithClock(func() time.Time { return at }),
	)
	require.NoError(t, err)
	require.NoError(t, reg.Reconcile([]string{"gitlab|GitLab|https://gitlab.example.com"}))

	lines := reg.PollAll(context.Background(), nil)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], " 2025-12-31 23:59 ")
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	reg, err := New("service-monitor.json", WithFetcher(newFakeFetcher()), WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, reg.Reconcile([]string{"gitlab|GitLab|https://gitlab.example.com"}))

	assert.Contains(t, buf.String(), "service added", "reconcile should log through the custom logger")
}

func TestWithLogger_DefaultsToSlogDefault(t *testing.T) {
	reg, err := New("service-monitor.json")
	require.NoError(t, err)
	assert.Same(t, slog.Default(), reg.logger)
}

func TestServices_Immutability(t *testing.T) {
	reg := newTestRegistry(t, newFakeFetcher(), nil)
	require.NoError(t, reg.Reconcile([]string{"gitlab|GitLab|https://gitlab.example.com"}))

	services := reg.Services()
	services[0] = Service{}

	assert.Equal(t, KindGitLab, reg.Services()[0].Identifier(), "Services() mutation affected the registry")
}
