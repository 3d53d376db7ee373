package servicemonitor

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayout gives history lines minute precision.
const timestampLayout = "2006-01-02 15:04"

// FormatLine renders one history line:
//
//	- <name> <YYYY-MM-DD> <HH:MM> [<status>]
//
// at is rendered in its own location; seconds and below are dropped.
func FormatLine(name string, at time.Time, status string) string {
	return fmt.Sprintf("- %s %s [%s]", name, at.Format(timestampLayout), status)
}

// Record is a history line split into the columns used by the CSV backup.
type Record struct {
	// Service is the first token after the leading dash, usually the
	// display name.
	Service string

	// Date is the YYYY-MM-DD token.
	Date string

	// Time is the HH:MM token.
	Time string

	// Status is every remaining token rejoined with single spaces, without
	// the surrounding brackets.
	Status string
}

// ParseLine splits a history line on whitespace. Tokens 1-3 become Service,
// Date and Time; the rest is the status.
//
// ok is false when the line does not have that shape. The returned Record
// then carries the whole line as Status so nothing is lost on export.
func ParseLine(line string) (rec Record, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 5 || fields[0] != "-" {
		return Record{Status: strings.TrimSpace(line)}, false
	}

	status := strings.Join(fields[4:], " ")
	if strings.HasPrefix(status, "[") && strings.HasSuffix(status, "]") {
		status = status[1 : len(status)-1]
	}

	return Record{
		Service: fields[1],
		Date:    fields[2],
		Time:    fields[3],
		Status:  status,
	}, true
}

// writtenFor reports whether line was written by [FormatLine] for a service
// displayed as name. The name must be followed by a timestamp and an opening
// bracket, so "Status" does not claim lines of "Status Page".
func writtenFor(line, name string) bool {
	rest, ok := strings.CutPrefix(line, "- "+name+" ")
	if !ok || len(rest) < len(timestampLayout)+2 {
		return false
	}
	if _, err := time.Parse(timestampLayout, rest[:len(timestampLayout)]); err != nil {
		return false
	}
	return strings.HasPrefix(rest[len(timestampLayout):], " [")
}
