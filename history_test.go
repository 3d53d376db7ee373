package servicemonitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatLine(t *testing.T) {
	at := time.Date(2026, 3, 7, 8, 5, 59, 999, time.UTC)
	assert.Equal(t, "- BitBucket 2026-03-07 08:05 [All Systems Operational]",
		FormatLine("BitBucket", at, "All Systems Operational"))
}

func TestFormatLine_UsesTimeLocation(t *testing.T) {
	at := time.Date(2026, 3, 7, 23, 30, 0, 0, time.FixedZone("UTC+2", 2*60*60))
	assert.Equal(t, "- GitLab 2026-03-07 23:30 [ok]", FormatLine("GitLab", at, "ok"))
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   Record
		wantOK bool
	}{
		{
			name:   "status label",
			line:   "- BitBucket 2026-10-19 09:30 [All Systems Operational]",
			want:   Record{Service: "BitBucket", Date: "2026-10-19", Time: "09:30", Status: "All Systems Operational"},
			wantOK: true,
		},
		{
			name:   "error message",
			line:   "- GitLab 2026-10-19 09:30 [request to https://status.gitlab.com timed out]",
			want:   Record{Service: "GitLab", Date: "2026-10-19", Time: "09:30", Status: "request to https://status.gitlab.com timed out"},
			wantOK: true,
		},
		{
			name:   "unbracketed status",
			line:   "- GitLab 2026-10-19 09:30 degraded",
			want:   Record{Service: "GitLab", Date: "2026-10-19", Time: "09:30", Status: "degraded"},
			wantOK: true,
		},
		{
			name:   "too short",
			line:   "- GitLab 2026-10-19",
			want:   Record{Status: "- GitLab 2026-10-19"},
			wantOK: false,
		},
		{
			name:   "missing dash",
			line:   "  GitLab 2026-10-19 09:30 [ok] ",
			want:   Record{Status: "GitLab 2026-10-19 09:30 [ok]"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLine(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWrittenFor(t *testing.T) {
	tests := []struct {
		name string
		line string
		svc  string
		want bool
	}{
		{"own line", "- Status 2026-10-19 09:30 [ok]", "Status", true},
		{"longer name sharing a prefix", "- Status Page 2026-10-19 09:30 [ok]", "Status", false},
		{"multi-word name", "- Status Page 2026-10-19 09:30 [ok]", "Status Page", true},
		{"other service", "- GitLab 2026-10-19 09:30 [ok]", "Status", false},
		{"no bracket after timestamp", "- Status 2026-10-19 09:30 ok", "Status", false},
		{"bad timestamp", "- Status 2026-19-10 09:30 [ok]", "Status", false},
		{"truncated", "- Status 2026-10-19", "Status", false},
		{"empty", "", "Status", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, writtenFor(tt.line, tt.svc))
		})
	}
}
