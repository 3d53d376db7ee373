package servicemonitor

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
)

// csvHeader names the columns written by [WriteCSV].
var csvHeader = []string{"service_id", "date", "time", "status"}

// WriteText writes history lines to w, one per row.
func WriteText(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("failed to write history: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// WriteCSV writes history lines to w as CSV with a
// service_id,date,time,status header. Each line is split with [ParseLine];
// lines that do not parse keep their full text in the status column.
func WriteCSV(w io.Writer, lines []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, line := range lines {
		rec, _ := ParseLine(line)
		if err := cw.Write([]string{rec.Service, rec.Date, rec.Time, rec.Status}); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
