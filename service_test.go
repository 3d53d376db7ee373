package servicemonitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/servicemonitor/internal/poller"
)

func TestNewService(t *testing.T) {
	s, err := NewService("bitbucket", "BitBucket", "https://bitbucket.status.atlassian.com")
	require.NoError(t, err)

	assert.Equal(t, KindBitBucket, s.Identifier())
	assert.Equal(t, "BitBucket", s.Name())
	assert.Equal(t, "https://bitbucket.status.atlassian.com", s.URL())
}

func TestNewService_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		svcName    string
		url        string
		wantKind   bool
	}{
		{"unknown kind", "statuspage", "Status", "https://example.com", true},
		{"empty name", "gitlab", "", "https://example.com", false},
		{"unparseable url", "gitlab", "GitLab", "http://[::1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(tt.identifier, tt.svcName, tt.url)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, errors.Is(err, ErrUnrecognizedServiceKind))
		})
	}
}

func TestService_Poll(t *testing.T) {
	s, err := NewService("gitlab", "GitLab", "https://status.gitlab.com")
	require.NoError(t, err)

	var fetched string
	fetcher := FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		fetched = url
		return []byte(gitlabPage), nil
	})

	got := s.Poll(context.Background(), fetcher, testTime)

	assert.Equal(t, "https://status.gitlab.com", fetched)
	assert.Equal(t, "- GitLab 2026-10-19 09:30 [Partial Service Disruption]", got)
}

func TestService_PollFailures(t *testing.T) {
	const url = "https://status.example.com"

	tests := []struct {
		name       string
		fetch      func() ([]byte, error)
		wantStatus string
		wantErr    error
	}{
		{
			name: "timeout",
			fetch: func() ([]byte, error) {
				return nil, &poller.FetchError{URL: url, Kind: poller.ErrTimeout}
			},
			wantStatus: "request to https://status.example.com timed out",
			wantErr:    ErrTimeout,
		},
		{
			name: "connection failure",
			fetch: func() ([]byte, error) {
				return nil, &poller.FetchError{URL: url, Kind: poller.ErrConnectionFailure, Err: errors.New("refused")}
			},
			wantStatus: "could not connect to https://status.example.com",
			wantErr:    ErrConnectionFailure,
		},
		{
			name: "invalid url",
			fetch: func() ([]byte, error) {
				return nil, &poller.FetchError{URL: "status.example.com", Kind: poller.ErrInvalidURL}
			},
			wantStatus: `invalid url "status.example.com"`,
			wantErr:    ErrInvalidURL,
		},
		{
			name: "no content",
			fetch: func() ([]byte, error) {
				return nil, &poller.FetchError{URL: url, Kind: poller.ErrNoContent, Err: errors.New("status 503")}
			},
			wantStatus: "no usable content at https://status.example.com: status 503",
			wantErr:    ErrNoContent,
		},
		{
			name: "status element missing",
			fetch: func() ([]byte, error) {
				return []byte("<html><body></body></html>"), nil
			},
			wantErr: ErrStatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewService("bitbucket", "BitBucket", url)
			require.NoError(t, err)
			fetcher := FetcherFunc(func(context.Context, string) ([]byte, error) { return tt.fetch() })

			line := s.poll(context.Background(), fetcher, testTime, discardLogger())

			assert.ErrorIs(t, line.Err, tt.wantErr)
			assert.Regexp(t, `^- BitBucket 2026-10-19 09:30 \[.+\]$`, line.Text)
			if tt.wantStatus != "" {
				assert.Equal(t, FormatLine("BitBucket", testTime, tt.wantStatus), line.Text)
			}
		})
	}
}
