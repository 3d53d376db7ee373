package servicemonitor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_AddsServicesInConfigOrder(t *testing.T) {
	reg := newTestRegistry(t, newFakeFetcher(), nil)

	err := reg.Reconcile([]string{
		"gitlab|GitLab|https://status.gitlab.com",
		"bitbucket|BitBucket|https://bitbucket.status.atlassian.com",
	})
	require.NoError(t, err)

	services := reg.Services()
	assert.Equal(t, []Kind{KindGitLab, KindBitBucket}, identifiers(services))
	assert.Equal(t, "GitLab", services[0].Name())
	assert.Equal(t, "https://status.gitlab.com", services[0].URL())
	assert.Equal(t, "BitBucket", services[1].Name())
}

func TestReconcile_Idempotent(t *testing.T) {
	fetcher := newFakeFetcher().page("https://status.gitlab.com", gitlabPage)
	reg := newTestRegistry(t, fetcher, nil)
	config := []string{
		"bitbucket|BitBucket|https://bitbucket.status.atlassian.com",
		"gitlab|GitLab|https://status.gitlab.com",
	}

	require.NoError(t, reg.Reconcile(config))
	reg.PollAll(context.Background(), []Kind{KindBitBucket})
	historyBefore := reg.History()

	require.NoError(t, reg.Reconcile(config))
	require.NoError(t, reg.Reconcile(config))

	assert.Equal(t, []Kind{KindBitBucket, KindGitLab}, identifiers(reg.Services()))
	assert.Equal(t, historyBefore, reg.History())
}

func TestReconcile_UpdatesAndRemoves(t *testing.T) {
	reg := newTestRegistry(t, newFakeFetcher(), nil)
	require.NoError(t, reg.Reconcile([]string{
		"bitbucket|BitBucket|https://old.example.com",
		"gitlab|GitLab|https://status.gitlab.com",
	}))

	require.NoError(t, reg.Reconcile([]string{
		"bitbucket|Atlassian BitBucket|https://bitbucket.status.atlassian.com",
	}))

	services := reg.Services()
	require.Len(t, services, 1)
	assert.Equal(t, KindBitBucket, services[0].Identifier())
	assert.Equal(t, "Atlassian BitBucket", services[0].Name())
	assert.Equal(t, "https://bitbucket.status.atlassian.com", services[0].URL())

	_, ok := reg.Service(KindGitLab)
	assert.False(t, ok, "gitlab should have been removed")
}

func TestReconcile_EmptyConfigRemovesEverything(t *testing.T) {
	reg := newTestRegistry(t, newFakeFetcher(), nil)
	require.NoError(t, reg.Reconcile([]string{"gitlab|GitLab|https://status.gitlab.com"}))

	require.NoError(t, reg.Reconcile(nil))
	assert.Empty(t, reg.Services())
}

func TestReconcile_CommentsAndBlankLines(t *testing.T) {
	reg := newTestRegistry(t, newFakeFetcher(), nil)

	err := reg.Reconcile([]string{
		"# monitored providers",
		"",
		"  gitlab | GitLab | https://status.gitlab.com  ",
	})
	require.NoError(t, err)

	s, ok := reg.Service(KindGitLab)
	require.True(t, ok)
	assert.Equal(t, "GitLab", s.Name())
	assert.Equal(t, "https://status.gitlab.com", s.URL())
}

func TestReconcile_BadConfigReportsLine(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		wantLine int
	}{
		{
			name:     "two fields",
			lines:    []string{"bitbucket|BitBucket"},
			wantLine: 1,
		},
		{
			name:     "four fields on line 2",
			lines:    []string{"gitlab|GitLab|https://status.gitlab.com", "bitbucket|BitBucket|https://a|extra"},
			wantLine: 2,
		},
		{
			name:     "no separators after a comment",
			lines:    []string{"# header", "", "bitbucket BitBucket https://a"},
			wantLine: 3,
		},
		{
			name:     "empty name",
			lines:    []string{"bitbucket||https://a"},
			wantLine: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestRegistry(t, newFakeFetcher(), nil)

			err := reg.Reconcile(tt.lines)
			require.ErrorIs(t, err, ErrBadConfigFormat)

			var bad *BadConfigError
			require.ErrorAs(t, err, &bad)
			assert.Equal(t, tt.wantLine, bad.Line)
			assert.Contains(t, err.Error(), "identifier|name|url")
		})
	}
}

func TestReconcile_UnrecognizedKind(t *testing.T) {
	reg := newTestRegistry(t, newFakeFetcher(), nil)

	err := reg.Reconcile([]string{
		"gitlab|GitLab|https://status.gitlab.com",
		"slack|Slack|https://status.slack.com",
	})
	require.ErrorIs(t, err, ErrUnrecognizedServiceKind)

	var uerr *UnrecognizedKindError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "slack", uerr.Identifier)
	assert.Equal(t, 2, uerr.Line)
	assert.Contains(t, err.Error(), `"slack"`)
	assert.Contains(t, err.Error(), "bitbucket")
	assert.Contains(t, err.Error(), "gitlab")
}

func TestReconcile_DuplicateIdentifier(t *testing.T) {
	reg := newTestRegistry(t, newFakeFetcher(), nil)

	err := reg.Reconcile([]string{
		"gitlab|GitLab|https://status.gitlab.com",
		"bitbucket|BitBucket|https://bitbucket.status.atlassian.com",
		"gitlab|GitLab Mirror|https://mirror.example.com",
	})

	var dup *DuplicateServiceError
	require.ErrorAs(t, err, &dup)
	assert.True(t, errors.Is(err, ErrDuplicateService))
	assert.Equal(t, KindGitLab, dup.Identifier)
	assert.Equal(t, 3, dup.Line)
	assert.Equal(t, 1, dup.FirstLine)
}

func TestReconcile_DuplicateName(t *testing.T) {
	reg := newTestRegistry(t, newFakeFetcher(), nil)

	err := reg.Reconcile([]string{
		"bitbucket|Status|https://bitbucket.status.atlassian.com",
		"gitlab|Status|https://status.gitlab.com",
	})

	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.True(t, errors.Is(err, ErrDuplicateService))
	assert.Equal(t, "Status", dup.Name)
	assert.Equal(t, 2, dup.Line)
	assert.Equal(t, 1, dup.FirstLine)
	assert.Empty(t, reg.Services())
}

func TestReconcile_FailureLeavesServicesUntouched(t *testing.T) {
	reg := newTestRegistry(t, newFakeFetcher(), nil)
	require.NoError(t, reg.Reconcile([]string{
		"bitbucket|BitBucket|https://bitbucket.status.atlassian.com",
	}))
	before := reg.Services()

	// line 1 would rename bitbucket and line 2 would add gitlab, but line 3 is bad
	err := reg.Reconcile([]string{
		"bitbucket|Renamed|https://elsewhere.example.com",
		"gitlab|GitLab|https://status.gitlab.com",
		"broken line",
	})
	require.ErrorIs(t, err, ErrBadConfigFormat)

	assert.Equal(t, before, reg.Services())
}

func TestReconcile_KeepsServiceIdentityAcrossUpdates(t *testing.T) {
	reg := newTestRegistry(t, newFakeFetcher(), nil)
	require.NoError(t, reg.Reconcile([]string{"gitlab|GitLab|https://a.example.com"}))

	reg.mu.Lock()
	first := reg.services[0]
	reg.mu.Unlock()

	require.NoError(t, reg.Reconcile([]string{"gitlab|GitLab|https://b.example.com"}))

	reg.mu.Lock()
	defer reg.mu.Unlock()
	assert.Same(t, first, reg.services[0])
	assert.Equal(t, "https://b.example.com", first.url)
}

func TestReconcileReader(t *testing.T) {
	reg := newTestRegistry(t, newFakeFetcher(), nil)

	err := reg.ReconcileReader(strings.NewReader(
		"bitbucket|BitBucket|https://bitbucket.status.atlassian.com\ngitlab|GitLab|https://status.gitlab.com\n",
	))
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindBitBucket, KindGitLab}, identifiers(reg.Services()))
}

func TestReconcileFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "services.txt")
	require.NoError(t, os.WriteFile(path, []byte("gitlab|GitLab|https://status.gitlab.com\n"), 0o644))

	reg := newTestRegistry(t, newFakeFetcher(), nil)
	require.NoError(t, reg.ReconcileFile(path))
	assert.Equal(t, []Kind{KindGitLab}, identifiers(reg.Services()))

	err := reg.ReconcileFile(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseConfig(t *testing.T) {
	specs, err := ParseConfig([]string{
		"# comment",
		"gitlab|GitLab|https://status.gitlab.com",
	})
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, ServiceSpec{
		Identifier: KindGitLab,
		Name:       "GitLab",
		URL:        "https://status.gitlab.com",
		Line:       2,
	}, specs[0])
}
